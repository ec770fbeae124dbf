package feed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/teamfeed/app/database"
)

// Resolver finds or creates the guild, client and project a post refers to, and links the
// guild to the project. Steps run in that order; each may create a row.
type Resolver struct {
	guildRepo   database.GuildRepository
	clientRepo  database.ClientRepository
	projectRepo database.ProjectRepository
	linkRepo    database.ProjectGuildRepository
	matcher     *Matcher
}

func NewResolver(
	guildRepo database.GuildRepository,
	clientRepo database.ClientRepository,
	projectRepo database.ProjectRepository,
	linkRepo database.ProjectGuildRepository,
) *Resolver {
	return &Resolver{
		guildRepo:   guildRepo,
		clientRepo:  clientRepo,
		projectRepo: projectRepo,
		linkRepo:    linkRepo,
		matcher:     NewMatcher(),
	}
}

// Snapshot reads the current clients and projects in store order.
func (r *Resolver) Snapshot(ctx context.Context) (*Snapshot, error) {
	clients, err := r.clientRepo.ListClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}

	projects, err := r.projectRepo.ListProjects(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	return &Snapshot{Clients: clients, Projects: projects}, nil
}

// Run resolves the entities of one post. On error the returned Resolution holds whatever
// was resolved before the failing step; nothing is rolled back.
func (r *Resolver) Run(ctx context.Context, post *database.FeedPost, parsed ParseResult) (*Resolution, error) {
	res := &Resolution{}
	text := post.Title + "\n" + post.Content

	if parsed.GuildName != "" {
		guild, err := r.resolveGuild(ctx, parsed.GuildName)
		if err != nil {
			return res, err
		}
		res.Guild = guild
	}

	snapshot, err := r.Snapshot(ctx)
	if err != nil {
		return res, err
	}

	res.Client, err = r.resolveClient(ctx, snapshot, text)
	if err != nil {
		return res, err
	}

	res.Project, err = r.resolveProject(ctx, snapshot, text, parsed.TitleName, res.Client)
	if err != nil {
		return res, err
	}

	if res.Guild != nil && res.Project != nil {
		link, err := r.linkRepo.CreateOrGetLink(ctx, res.Project.ID, res.Guild.ID)
		if err != nil {
			return res, fmt.Errorf("failed to link guild %d to project %d: %w", res.Guild.ID, res.Project.ID, err)
		}
		res.Link = link
	}

	return res, nil
}

func (r *Resolver) resolveGuild(ctx context.Context, name string) (*database.Guild, error) {
	guild, err := r.guildRepo.GetGuildByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up guild %q: %w", name, err)
	}
	if guild != nil {
		return guild, nil
	}

	guild, err = r.guildRepo.CreateGuild(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create guild %q: %w", name, err)
	}
	slog.Info("Guild created", "guild_id", guild.ID, "name", guild.Name)

	return guild, nil
}

// resolveClient prefers an explicit @client:<name> tag and creates the client when the
// snapshot has none by that name. Without a tag the first client whose name occurs in the
// post text wins.
func (r *Resolver) resolveClient(ctx context.Context, snapshot *Snapshot, text string) (*database.Client, error) {
	if name, _, ok := colonTag(text, "client"); ok {
		if client := r.matcher.ClientNamed(snapshot.Clients, name); client != nil {
			return client, nil
		}

		client, err := r.clientRepo.CreateClient(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to create client %q: %w", name, err)
		}
		slog.Info("Client created", "client_id", client.ID, "name", client.Name)
		return client, nil
	}

	return r.matcher.ClientIn(snapshot.Clients, text), nil
}

// resolveProject matches an explicit title across all projects and creates it under the
// resolved client when missing. Otherwise it falls back to a name scan of the post text.
func (r *Resolver) resolveProject(ctx context.Context, snapshot *Snapshot, text, titleName string, client *database.Client) (*database.Project, error) {
	var clientID *int64
	if client != nil {
		clientID = &client.ID
	}

	if titleName != "" {
		if project := r.matcher.ProjectNamed(snapshot.Projects, titleName); project != nil {
			return project, nil
		}

		if clientID != nil {
			project, err := r.projectRepo.CreateProject(ctx, database.NewProject{
				Name:     titleName,
				ClientID: *clientID,
				Status:   database.ProjectStatusActive,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to create project %q: %w", titleName, err)
			}
			slog.Info("Project created", "project_id", project.ID, "name", project.Name, "client_id", project.ClientID)
			return project, nil
		}
	}

	return r.matcher.ProjectIn(snapshot.Projects, text, clientID), nil
}
