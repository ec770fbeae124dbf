package database

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidStatus   = errors.New("invalid task status")
	ErrInvalidPriority = errors.New("invalid task priority")
)

var _ TaskRepository = (*TaskStore)(nil)

type TaskStore struct {
	db *DB
}

func NewTaskStore(db *DB) *TaskStore {
	return &TaskStore{db: db}
}

const taskColumns = `id, description, status, priority, due_date, project_id, client_id,
	assignee_id, creator_id, parent_task_id, guild_id, created_at, completed_at`

func scanTask(row rowScanner) (*Task, error) {
	var t Task
	var dueDate, completedAt sql.NullTime
	var projectID, parentTaskID, guildID sql.NullInt64
	var assigneeID sql.NullString

	err := row.Scan(
		&t.ID, &t.Description, &t.Status, &t.Priority, &dueDate, &projectID, &t.ClientID,
		&assigneeID, &t.CreatorID, &parentTaskID, &guildID, &t.CreatedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}

	t.DueDate = timePtr(dueDate)
	t.ProjectID = int64Ptr(projectID)
	t.AssigneeID = stringPtr(assigneeID)
	t.ParentTaskID = int64Ptr(parentTaskID)
	t.GuildID = int64Ptr(guildID)
	t.CompletedAt = timePtr(completedAt)

	return &t, nil
}

func queryTasks(ctx context.Context, q interface {
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
}, query string, args ...any) ([]Task, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		tasks = append(tasks, *t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}

	return tasks, nil
}

func (s *TaskStore) GetTask(ctx context.Context, id int64) (*Task, error) {
	t, err := scanTask(s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return t, nil
}

// ListTasks returns top-level tasks only; subtasks are reached through GetSubtasks.
func (s *TaskStore) ListTasks(ctx context.Context, filter TaskFilter) ([]Task, error) {
	conditions := []string{"parent_task_id IS NULL"}
	var args []any

	if filter.AssigneeID != "" {
		conditions = append(conditions, "assignee_id = ?")
		args = append(args, filter.AssigneeID)
	}
	if filter.ProjectID != 0 {
		conditions = append(conditions, "project_id = ?")
		args = append(args, filter.ProjectID)
	}
	if filter.ClientID != 0 {
		conditions = append(conditions, "client_id = ?")
		args = append(args, filter.ClientID)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(filter.Status))
	}

	tasks, err := queryTasks(ctx, s.db, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE `+strings.Join(conditions, " AND ")+`
		ORDER BY created_at DESC, id DESC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, nil
}

func (s *TaskStore) GetSubtasks(ctx context.Context, parentTaskID int64) ([]Task, error) {
	tasks, err := queryTasks(ctx, s.db, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE parent_task_id = ?
		ORDER BY created_at, id
	`, parentTaskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get subtasks: %w", err)
	}

	return tasks, nil
}

func (s *TaskStore) CreateTask(ctx context.Context, task NewTask) (*Task, error) {
	status := cmp.Or(task.Status, TaskStatusTodo)
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	completedAt := "NULL"
	if status == TaskStatusDone {
		completedAt = "CURRENT_TIMESTAMP"
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (
			description, status, priority, due_date, project_id, client_id,
			assignee_id, creator_id, parent_task_id, guild_id, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, `+completedAt+`)
	`, task.Description, string(status), string(cmp.Or(task.Priority, TaskPriorityMedium)),
		nullableTime(task.DueDate), nullableInt64(task.ProjectID), task.ClientID,
		nullableString(task.AssigneeID), task.CreatorID, nullableInt64(task.ParentTaskID),
		nullableInt64(task.GuildID))
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read task id: %w", err)
	}

	return s.GetTask(ctx, id)
}

// UpdateTaskStatus sets the status of a task and stamps completed_at when it becomes done.
func (s *TaskStore) UpdateTaskStatus(ctx context.Context, id int64, status TaskStatus) (*Task, error) {
	return s.UpdateTask(ctx, id, TaskUpdate{Status: &status})
}

// UpdateTask applies the non-nil fields of update. A status of done stamps completed_at; if
// the task is a subtask and the update leaves every sibling done, the parent is completed
// in the same transaction.
func (s *TaskStore) UpdateTask(ctx context.Context, id int64, update TaskUpdate) (*Task, error) {
	var status, priority any
	if update.Status != nil {
		if !update.Status.Valid() {
			return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, *update.Status)
		}
		status = string(*update.Status)
	}
	if update.Priority != nil {
		if !update.Priority.Valid() {
			return nil, fmt.Errorf("%w: %s", ErrInvalidPriority, *update.Priority)
		}
		priority = string(*update.Priority)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE tasks
		SET description = COALESCE(?, description),
		    status = COALESCE(?, status),
		    priority = COALESCE(?, priority),
		    due_date = COALESCE(?, due_date),
		    project_id = COALESCE(?, project_id),
		    assignee_id = COALESCE(?, assignee_id),
		    guild_id = COALESCE(?, guild_id),
		    completed_at = CASE WHEN ? = 'done' THEN CURRENT_TIMESTAMP ELSE completed_at END
		WHERE id = ?
	`, nullableString(update.Description), status, priority, nullableTime(update.DueDate),
		nullableInt64(update.ProjectID), nullableString(update.AssigneeID),
		nullableInt64(update.GuildID), status, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}

	task, err := scanTask(tx.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	if task.Status == TaskStatusDone && update.Status != nil && task.ParentTaskID != nil {
		if err := completeParentIfDone(ctx, tx, *task.ParentTaskID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit task update: %w", err)
	}

	return task, nil
}

func completeParentIfDone(ctx context.Context, tx *sql.Tx, parentTaskID int64) error {
	var open int
	err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM tasks WHERE parent_task_id = ? AND status <> 'done'
	`, parentTaskID).Scan(&open)
	if err != nil {
		return fmt.Errorf("failed to count open subtasks: %w", err)
	}
	if open > 0 {
		return nil
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE tasks
		SET status = 'done', completed_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status <> 'done'
	`, parentTaskID)
	if err != nil {
		return fmt.Errorf("failed to complete parent task: %w", err)
	}

	return nil
}
