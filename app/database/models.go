package database

import (
	"time"
)

// Input records for the Create* repository calls.

type NewProject struct {
	Name        string
	ClientID    int64
	Status      string
	Description string
}

type NewTask struct {
	Description  string
	Status       TaskStatus
	Priority     TaskPriority
	DueDate      *time.Time
	ProjectID    *int64
	ClientID     int64
	AssigneeID   *string
	CreatorID    string
	ParentTaskID *int64
	GuildID      *int64
}

type NewNotification struct {
	UserID       string
	Type         string
	Message      string
	ResourceID   *int64
	ResourceType string
}

// TaskFilter narrows ListTasks. Zero values mean "any"; subtasks are never listed.
type TaskFilter struct {
	AssigneeID string
	ProjectID  int64
	ClientID   int64
	Status     TaskStatus
}

// Update records for the Update* repository calls. Nil fields are left unchanged.

type ProjectUpdate struct {
	Name        *string
	ClientID    *int64
	Status      *string
	Description *string
}

type TaskUpdate struct {
	Description *string
	Status      *TaskStatus
	Priority    *TaskPriority
	DueDate     *time.Time
	ProjectID   *int64
	AssigneeID  *string
	GuildID     *int64
}
