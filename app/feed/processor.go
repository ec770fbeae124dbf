package feed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/teamfeed/app/database"
)

// Stores bundles the repositories the post pipeline reads and writes.
type Stores struct {
	Users         database.UserRepository
	Clients       database.ClientRepository
	Guilds        database.GuildRepository
	Projects      database.ProjectRepository
	Links         database.ProjectGuildRepository
	Tasks         database.TaskRepository
	Notifications database.NotificationRepository
}

type Result struct {
	Parsed     ParseResult
	Resolution *Resolution
	Outcome    *Outcome
}

// Processor runs parse, resolve and fan-out for a stored post, in that order.
type Processor struct {
	parser     *Parser
	resolver   *Resolver
	dispatcher *Dispatcher
}

func NewProcessor(stores Stores) *Processor {
	return &Processor{
		parser:     NewParser(),
		resolver:   NewResolver(stores.Guilds, stores.Clients, stores.Projects, stores.Links),
		dispatcher: NewDispatcher(stores.Users, stores.Tasks, stores.Notifications),
	}
}

// Run returns a partial Result alongside any error; completed steps are kept.
func (p *Processor) Run(ctx context.Context, post *database.FeedPost) (*Result, error) {
	result := &Result{Parsed: p.parser.Run(post.Title, post.Content)}

	slog.Debug("Post parsed",
		"post_id", post.ID,
		"guild", result.Parsed.GuildName,
		"title", result.Parsed.TitleName,
		"assignee", result.Parsed.MainAssignee,
		"subtasks", len(result.Parsed.Subtasks))

	res, err := p.resolver.Run(ctx, post, result.Parsed)
	result.Resolution = res
	if err != nil {
		return result, fmt.Errorf("failed to resolve entities for post %d: %w", post.ID, err)
	}

	outcome, err := p.dispatcher.Run(ctx, post, result.Parsed, res)
	result.Outcome = outcome
	if err != nil {
		return result, fmt.Errorf("failed to create tasks for post %d: %w", post.ID, err)
	}

	slog.Info("Post processed",
		"post_id", post.ID,
		"client_id", deref(res.ClientID()),
		"project_id", deref(res.ProjectID()),
		"guild_id", deref(res.GuildID()),
		"tasks", outcome.TaskCount(),
		"notifications", outcome.Notified)

	return result, nil
}

func deref(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}
