package database

import (
	"time"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusReview     TaskStatus = "review"
	TaskStatusDone       TaskStatus = "done"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusReview, TaskStatusDone:
		return true
	}
	return false
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

const (
	ProjectStatusActive = "active"

	NotificationTypeAssignment = "assignment"
	ResourceTypeTask           = "task"
)

// User is a team roster member. IDs come from the identity provider, so they are strings.
type User struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func (u User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Email
	}
}

type Client struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Project is what the feed grammar calls a "Title".
type Project struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	ClientID    int64     `json:"client_id"`
	Status      string    `json:"status"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type Guild struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type ProjectGuild struct {
	ID        int64 `json:"id"`
	ProjectID int64 `json:"project_id"`
	GuildID   int64 `json:"guild_id"`
}

type FeedPost struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	AuthorID  string    `json:"author_id"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
}

// Task is either a top-level task or, when ParentTaskID is set, a subtask one level below it.
type Task struct {
	ID           int64        `json:"id"`
	Description  string       `json:"description"`
	Status       TaskStatus   `json:"status"`
	Priority     TaskPriority `json:"priority"`
	DueDate      *time.Time   `json:"due_date,omitempty"`
	ProjectID    *int64       `json:"project_id"`
	ClientID     int64        `json:"client_id"`
	AssigneeID   *string      `json:"assignee_id"`
	CreatorID    string       `json:"creator_id"`
	ParentTaskID *int64       `json:"parent_task_id"`
	GuildID      *int64       `json:"guild_id"`
	CreatedAt    time.Time    `json:"created_at"`
	CompletedAt  *time.Time   `json:"completed_at,omitempty"`
}

type Notification struct {
	ID           int64     `json:"id"`
	UserID       string    `json:"user_id"`
	Type         string    `json:"type"`
	Message      string    `json:"message"`
	ResourceID   *int64    `json:"resource_id"`
	ResourceType string    `json:"resource_type,omitempty"`
	Read         bool      `json:"read"`
	CreatedAt    time.Time `json:"created_at"`
}
