package database

import (
	"cmp"
	"context"
	"database/sql"
	"fmt"
)

var _ ProjectRepository = (*ProjectStore)(nil)

type ProjectStore struct {
	db *DB
}

func NewProjectStore(db *DB) *ProjectStore {
	return &ProjectStore{db: db}
}

func (s *ProjectStore) ListProjects(ctx context.Context, clientID *int64) ([]Project, error) {
	query := `
		SELECT id, name, client_id, status, description, created_at
		FROM projects
	`
	var args []any
	if clientID != nil {
		query += ` WHERE client_id = ?`
		args = append(args, *clientID)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.ClientID, &p.Status, &p.Description, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}

	return projects, nil
}

func (s *ProjectStore) GetProject(ctx context.Context, id int64) (*Project, error) {
	var p Project
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, client_id, status, description, created_at
		FROM projects
		WHERE id = ?
	`, id).Scan(&p.ID, &p.Name, &p.ClientID, &p.Status, &p.Description, &p.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return &p, nil
}

func (s *ProjectStore) CreateProject(ctx context.Context, project NewProject) (*Project, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (name, client_id, status, description)
		VALUES (?, ?, ?, ?)
	`, project.Name, project.ClientID, cmp.Or(project.Status, ProjectStatusActive), project.Description)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read project id: %w", err)
	}

	return s.GetProject(ctx, id)
}

func (s *ProjectStore) UpdateProject(ctx context.Context, id int64, update ProjectUpdate) (*Project, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE projects
		SET name = COALESCE(?, name),
		    client_id = COALESCE(?, client_id),
		    status = COALESCE(?, status),
		    description = COALESCE(?, description)
		WHERE id = ?
	`, nullableString(update.Name), nullableInt64(update.ClientID), nullableString(update.Status),
		nullableString(update.Description), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}

	return s.GetProject(ctx, id)
}
