package database

import (
	"context"
	"database/sql"
	"fmt"
)

var _ NotificationRepository = (*NotificationStore)(nil)

type NotificationStore struct {
	db *DB
}

func NewNotificationStore(db *DB) *NotificationStore {
	return &NotificationStore{db: db}
}

const notificationColumns = `id, user_id, type, message, resource_id, resource_type, read, created_at`

func scanNotification(row rowScanner) (*Notification, error) {
	var n Notification
	var resourceID sql.NullInt64
	err := row.Scan(&n.ID, &n.UserID, &n.Type, &n.Message, &resourceID, &n.ResourceType, &n.Read, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	n.ResourceID = int64Ptr(resourceID)
	return &n, nil
}

func (s *NotificationStore) ListNotifications(ctx context.Context, userID string) ([]Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification row: %w", err)
		}
		notifications = append(notifications, *n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification rows: %w", err)
	}

	return notifications, nil
}

func (s *NotificationStore) getNotification(ctx context.Context, id int64) (*Notification, error) {
	n, err := scanNotification(s.db.QueryRowContext(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE id = ?
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return n, nil
}

func (s *NotificationStore) CreateNotification(ctx context.Context, notification NewNotification) (*Notification, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (user_id, type, message, resource_id, resource_type)
		VALUES (?, ?, ?, ?, ?)
	`, notification.UserID, notification.Type, notification.Message,
		nullableInt64(notification.ResourceID), notification.ResourceType)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read notification id: %w", err)
	}

	return s.getNotification(ctx, id)
}

func (s *NotificationStore) MarkNotificationRead(ctx context.Context, id int64) (*Notification, error) {
	result, err := s.db.ExecContext(ctx, `UPDATE notifications SET read = 1 WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to mark notification read: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}

	return s.getNotification(ctx, id)
}
