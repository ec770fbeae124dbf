package database

import (
	"context"
	"database/sql"
	"fmt"
)

var _ ClientRepository = (*ClientStore)(nil)

type ClientStore struct {
	db *DB
}

func NewClientStore(db *DB) *ClientStore {
	return &ClientStore{db: db}
}

func (s *ClientStore) ListClients(ctx context.Context) ([]Client, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, created_at
		FROM clients
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan client row: %w", err)
		}
		clients = append(clients, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating client rows: %w", err)
	}

	return clients, nil
}

func (s *ClientStore) GetClientCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM clients").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get client count: %w", err)
	}
	return count, nil
}

func (s *ClientStore) GetClient(ctx context.Context, id int64) (*Client, error) {
	var c Client
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, created_at
		FROM clients
		WHERE id = ?
	`, id).Scan(&c.ID, &c.Name, &c.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	return &c, nil
}

func (s *ClientStore) CreateClient(ctx context.Context, name string) (*Client, error) {
	result, err := s.db.ExecContext(ctx, `INSERT INTO clients (name) VALUES (?)`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read client id: %w", err)
	}

	return s.GetClient(ctx, id)
}

func (s *ClientStore) UpdateClient(ctx context.Context, id int64, name string) (*Client, error) {
	result, err := s.db.ExecContext(ctx, `UPDATE clients SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}

	return s.GetClient(ctx, id)
}
