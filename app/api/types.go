package api

import (
	"context"
	"time"

	"github.com/lysyi3m/teamfeed/app/database"
	"github.com/lysyi3m/teamfeed/app/feed"
)

type GeneratorInterface interface {
	Run(posts []database.FeedPost, authors map[string]string) (string, error)
}

var _ GeneratorInterface = (*feed.Generator)(nil)

type PostProcessor interface {
	Run(ctx context.Context, post *database.FeedPost) (*feed.Result, error)
}

var _ PostProcessor = (*feed.Processor)(nil)

type Handler struct {
	userRepo         database.UserRepository
	clientRepo       database.ClientRepository
	guildRepo        database.GuildRepository
	projectRepo      database.ProjectRepository
	linkRepo         database.ProjectGuildRepository
	taskRepo         database.TaskRepository
	notificationRepo database.NotificationRepository
	postRepo         database.PostRepository
	processor        PostProcessor
	generator        GeneratorInterface
	feedLimit        int
}

// Request bodies

type CreatePostRequest struct {
	Title   string   `json:"title" binding:"required"`
	Content string   `json:"content" binding:"required"`
	Tags    []string `json:"tags"`
}

type CreateNamedRequest struct {
	Name string `json:"name" binding:"required"`
}

type CreateTaskRequest struct {
	Description  string                `json:"description" binding:"required"`
	Status       database.TaskStatus   `json:"status"`
	Priority     database.TaskPriority `json:"priority"`
	DueDate      *time.Time            `json:"due_date"`
	ProjectID    *int64                `json:"project_id"`
	ClientID     int64                 `json:"client_id" binding:"required"`
	AssigneeID   *string               `json:"assignee_id"`
	ParentTaskID *int64                `json:"parent_task_id"`
	GuildID      *int64                `json:"guild_id"`
}

type UpdateTaskRequest struct {
	Description *string                `json:"description"`
	Status      *database.TaskStatus   `json:"status"`
	Priority    *database.TaskPriority `json:"priority"`
	DueDate     *time.Time             `json:"due_date"`
	ProjectID   *int64                 `json:"project_id"`
	AssigneeID  *string                `json:"assignee_id"`
	GuildID     *int64                 `json:"guild_id"`
}

type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	ClientID    int64  `json:"client_id" binding:"required"`
	Status      string `json:"status"`
	Description string `json:"description"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name"`
	ClientID    *int64  `json:"client_id"`
	Status      *string `json:"status"`
	Description *string `json:"description"`
}

type UpdateTaskStatusRequest struct {
	Status database.TaskStatus `json:"status" binding:"required"`
}
