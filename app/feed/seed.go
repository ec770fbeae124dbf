package feed

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/lysyi3m/teamfeed/app/database"
	"gopkg.in/yaml.v3"
)

// memberNamespace derives stable ids for roster members listed without one, so restarts
// upsert the same rows.
var memberNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("teamfeed:team-member"))

// Seeder applies a YAML seed file. The team roster is upserted on every run; clients,
// projects and guilds are only written into an empty database.
type Seeder struct {
	userRepo    database.UserRepository
	clientRepo  database.ClientRepository
	projectRepo database.ProjectRepository
	guildRepo   database.GuildRepository
}

func NewSeeder(
	userRepo database.UserRepository,
	clientRepo database.ClientRepository,
	projectRepo database.ProjectRepository,
	guildRepo database.GuildRepository,
) *Seeder {
	return &Seeder{
		userRepo:    userRepo,
		clientRepo:  clientRepo,
		projectRepo: projectRepo,
		guildRepo:   guildRepo,
	}
}

// Run is a no-op when path is empty or the file does not exist.
func (s *Seeder) Run(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		slog.Warn("Seed file not found, skipping", "path", path)
		return nil
	}

	seed, err := s.LoadSeed(path)
	if err != nil {
		return err
	}

	if err := s.applyTeam(ctx, seed.Team); err != nil {
		return err
	}

	count, err := s.clientRepo.GetClientCount(ctx)
	if err != nil {
		return fmt.Errorf("failed to count clients: %w", err)
	}
	if count > 0 {
		slog.Debug("Clients already present, skipping catalog seed", "clients", count)
		return nil
	}

	return s.applyCatalog(ctx, seed)
}

func (s *Seeder) LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i := range seed.Team {
		member := &seed.Team[i]
		if member.ID == "" {
			member.ID = MemberID(*member)
		}
	}
	for i := range seed.Clients {
		for j := range seed.Clients[i].Projects {
			project := &seed.Clients[i].Projects[j]
			project.Status = cmp.Or(project.Status, database.ProjectStatusActive)
		}
	}

	if err := s.validateSeed(&seed); err != nil {
		return nil, fmt.Errorf("invalid seed %s: %w", path, err)
	}

	return &seed, nil
}

// MemberID is the id given to a seeded member without one, derived from the email or,
// failing that, the full name.
func MemberID(member SeedMember) string {
	key := strings.ToLower(strings.TrimSpace(cmp.Or(member.Email, member.FirstName+" "+member.LastName)))
	return uuid.NewSHA1(memberNamespace, []byte(key)).String()
}

func (s *Seeder) validateSeed(seed *Seed) error {
	ids := make(map[string]bool)
	for i, member := range seed.Team {
		if member.FirstName == "" && member.Email == "" {
			return fmt.Errorf("team member at index %d needs a first name or an email", i)
		}
		if ids[member.ID] {
			return fmt.Errorf("duplicate team member id %q", member.ID)
		}
		ids[member.ID] = true
	}

	for i, client := range seed.Clients {
		if strings.TrimSpace(client.Name) == "" {
			return fmt.Errorf("client name is required at index %d", i)
		}
		for j, project := range client.Projects {
			if strings.TrimSpace(project.Name) == "" {
				return fmt.Errorf("project name is required at index %d of client %q", j, client.Name)
			}
		}
	}

	for i, guild := range seed.Guilds {
		if strings.TrimSpace(guild) == "" {
			return fmt.Errorf("guild name is required at index %d", i)
		}
	}

	return nil
}

func (s *Seeder) applyTeam(ctx context.Context, team []SeedMember) error {
	for _, member := range team {
		err := s.userRepo.UpsertUser(ctx, database.User{
			ID:        member.ID,
			FirstName: member.FirstName,
			LastName:  member.LastName,
			Email:     member.Email,
		})
		if err != nil {
			return fmt.Errorf("failed to seed team member %s: %w", member.ID, err)
		}
	}

	slog.Info("Team roster seeded", "members", len(team))
	return nil
}

func (s *Seeder) applyCatalog(ctx context.Context, seed *Seed) error {
	projects := 0
	for _, seedClient := range seed.Clients {
		client, err := s.clientRepo.CreateClient(ctx, strings.TrimSpace(seedClient.Name))
		if err != nil {
			return fmt.Errorf("failed to seed client %q: %w", seedClient.Name, err)
		}

		for _, seedProject := range seedClient.Projects {
			_, err := s.projectRepo.CreateProject(ctx, database.NewProject{
				Name:        strings.TrimSpace(seedProject.Name),
				ClientID:    client.ID,
				Status:      seedProject.Status,
				Description: seedProject.Description,
			})
			if err != nil {
				return fmt.Errorf("failed to seed project %q: %w", seedProject.Name, err)
			}
			projects++
		}
	}

	for _, name := range seed.Guilds {
		if _, err := s.guildRepo.CreateGuild(ctx, strings.TrimSpace(name)); err != nil {
			return fmt.Errorf("failed to seed guild %q: %w", name, err)
		}
	}

	slog.Info("Catalog seeded", "clients", len(seed.Clients), "projects", projects, "guilds", len(seed.Guilds))
	return nil
}
