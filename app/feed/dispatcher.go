package feed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/teamfeed/app/database"
)

const (
	mentionTaskPrefix = "Task from Team Feed: "
	maxMentionTitle   = 50
)

// Dispatcher turns a resolved post into tasks and assignment notifications.
//
// A post with subtasks or a header assignee gets one main task plus one child task per
// checklist line. Any other post gets one task per distinct mentioned roster member.
// Nothing is created when the post has no client.
type Dispatcher struct {
	userRepo         database.UserRepository
	taskRepo         database.TaskRepository
	notificationRepo database.NotificationRepository
}

func NewDispatcher(
	userRepo database.UserRepository,
	taskRepo database.TaskRepository,
	notificationRepo database.NotificationRepository,
) *Dispatcher {
	return &Dispatcher{
		userRepo:         userRepo,
		taskRepo:         taskRepo,
		notificationRepo: notificationRepo,
	}
}

// Run stops at the first task that fails to be created and returns what was created so far.
// Notification failures are logged and skipped.
func (d *Dispatcher) Run(ctx context.Context, post *database.FeedPost, parsed ParseResult, res *Resolution) (*Outcome, error) {
	outcome := &Outcome{}

	clientID := res.ClientID()
	if clientID == nil {
		slog.Debug("No client resolved, skipping task creation", "post_id", post.ID)
		return outcome, nil
	}

	roster, err := d.userRepo.ListUsers(ctx)
	if err != nil {
		return outcome, fmt.Errorf("failed to list team members: %w", err)
	}

	base := database.NewTask{
		Status:    database.TaskStatusTodo,
		Priority:  database.TaskPriorityMedium,
		ProjectID: res.ProjectID(),
		ClientID:  *clientID,
		CreatorID: post.AuthorID,
		GuildID:   res.GuildID(),
	}

	if len(parsed.Subtasks) > 0 || parsed.MainAssignee != "" {
		return outcome, d.structured(ctx, post, parsed, roster, base, outcome)
	}
	return outcome, d.mentions(ctx, post, roster, base, outcome)
}

func (d *Dispatcher) structured(ctx context.Context, post *database.FeedPost, parsed ParseResult, roster []database.User, base database.NewTask, outcome *Outcome) error {
	mainAssignee := ResolveUser(roster, parsed.MainAssignee)

	main := base
	main.Description = parsed.MainDescription
	main.AssigneeID = userID(mainAssignee)

	mainTask, err := d.taskRepo.CreateTask(ctx, main)
	if err != nil {
		return fmt.Errorf("failed to create main task: %w", err)
	}
	outcome.MainTask = mainTask
	d.notify(ctx, post, mainTask, "You were assigned a task: "+mainTask.Description, outcome)

	for i, subtask := range parsed.Subtasks {
		assignee := ResolveUser(roster, subtask.AssigneeName)
		if assignee == nil {
			assignee = mainAssignee
		}

		child := base
		child.Description = subtask.Description
		child.AssigneeID = userID(assignee)
		child.ParentTaskID = &mainTask.ID
		if subtask.Completed {
			child.Status = database.TaskStatusDone
		}

		task, err := d.taskRepo.CreateTask(ctx, child)
		if err != nil {
			return fmt.Errorf("failed to create subtask %d of task %d: %w", i+1, mainTask.ID, err)
		}
		outcome.Subtasks = append(outcome.Subtasks, *task)
		d.notify(ctx, post, task, "You were assigned a subtask: "+task.Description, outcome)
	}

	return nil
}

func (d *Dispatcher) mentions(ctx context.Context, post *database.FeedPost, roster []database.User, base database.NewTask, outcome *Outcome) error {
	seen := make(map[string]bool)
	var assignees []database.User
	for _, word := range personMentions(post.Title + "\n" + post.Content) {
		user := ResolveUser(roster, word)
		if user == nil || seen[user.ID] {
			continue
		}
		seen[user.ID] = true
		assignees = append(assignees, *user)
	}

	for _, assignee := range assignees {
		task := base
		task.Description = mentionTaskPrefix + truncateTitle(post.Title)
		task.AssigneeID = &assignee.ID

		created, err := d.taskRepo.CreateTask(ctx, task)
		if err != nil {
			return fmt.Errorf("failed to create task for %s: %w", assignee.ID, err)
		}
		outcome.MentionTasks = append(outcome.MentionTasks, *created)
		d.notify(ctx, post, created, "Auto-assigned task from team feed: "+post.Title, outcome)
	}

	return nil
}

// notify sends an assignment notification unless the task is unassigned or self-assigned.
func (d *Dispatcher) notify(ctx context.Context, post *database.FeedPost, task *database.Task, message string, outcome *Outcome) {
	if task.AssigneeID == nil || *task.AssigneeID == post.AuthorID {
		return
	}

	_, err := d.notificationRepo.CreateNotification(ctx, database.NewNotification{
		UserID:       *task.AssigneeID,
		Type:         database.NotificationTypeAssignment,
		Message:      message,
		ResourceID:   &task.ID,
		ResourceType: database.ResourceTypeTask,
	})
	if err != nil {
		slog.Error("Failed to create notification", "post_id", post.ID, "task_id", task.ID, "user_id", *task.AssigneeID, "error", err)
		return
	}
	outcome.Notified++
}

func truncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) > maxMentionTitle {
		return string(runes[:maxMentionTitle-3]) + "..."
	}
	return title
}

func userID(user *database.User) *string {
	if user == nil {
		return nil
	}
	return &user.ID
}
