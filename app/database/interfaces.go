package database

import (
	"context"
)

// Lookups that find nothing return (nil, nil). List* calls return rows newest first
// (created_at DESC, id DESC); callers that scan for a "first match" rely on that order.

type UserRepository interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id string) (*User, error)
	UpsertUser(ctx context.Context, user User) error
}

type ClientRepository interface {
	ListClients(ctx context.Context) ([]Client, error)
	GetClient(ctx context.Context, id int64) (*Client, error)
	GetClientCount(ctx context.Context) (int, error)

	CreateClient(ctx context.Context, name string) (*Client, error)
	UpdateClient(ctx context.Context, id int64, name string) (*Client, error)
}

type GuildRepository interface {
	ListGuilds(ctx context.Context) ([]Guild, error)
	GetGuild(ctx context.Context, id int64) (*Guild, error)
	// GetGuildByName compares Unicode case-folded names.
	GetGuildByName(ctx context.Context, name string) (*Guild, error)

	CreateGuild(ctx context.Context, name string) (*Guild, error)
}

type ProjectRepository interface {
	// ListProjects returns every project when clientID is nil.
	ListProjects(ctx context.Context, clientID *int64) ([]Project, error)
	GetProject(ctx context.Context, id int64) (*Project, error)

	CreateProject(ctx context.Context, project NewProject) (*Project, error)
	UpdateProject(ctx context.Context, id int64, update ProjectUpdate) (*Project, error)
}

type ProjectGuildRepository interface {
	ListLinks(ctx context.Context, projectID, guildID *int64) ([]ProjectGuild, error)

	// CreateOrGetLink is idempotent: an existing (project, guild) pair is returned as is.
	CreateOrGetLink(ctx context.Context, projectID, guildID int64) (*ProjectGuild, error)
}

type TaskRepository interface {
	GetTask(ctx context.Context, id int64) (*Task, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]Task, error)
	GetSubtasks(ctx context.Context, parentTaskID int64) ([]Task, error)

	CreateTask(ctx context.Context, task NewTask) (*Task, error)
	// UpdateTask and UpdateTaskStatus also complete the parent once every sibling subtask
	// is done.
	UpdateTask(ctx context.Context, id int64, update TaskUpdate) (*Task, error)
	UpdateTaskStatus(ctx context.Context, id int64, status TaskStatus) (*Task, error)
}

type NotificationRepository interface {
	ListNotifications(ctx context.Context, userID string) ([]Notification, error)

	CreateNotification(ctx context.Context, notification NewNotification) (*Notification, error)
	MarkNotificationRead(ctx context.Context, id int64) (*Notification, error)
}

type PostRepository interface {
	ListPosts(ctx context.Context, limit int) ([]FeedPost, error)

	CreatePost(ctx context.Context, title, content, authorID string, tags []string) (*FeedPost, error)
}
