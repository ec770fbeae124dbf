package database

import (
	"context"
	"fmt"
	"strings"
)

var _ ProjectGuildRepository = (*ProjectGuildStore)(nil)

type ProjectGuildStore struct {
	db *DB
}

func NewProjectGuildStore(db *DB) *ProjectGuildStore {
	return &ProjectGuildStore{db: db}
}

func (s *ProjectGuildStore) ListLinks(ctx context.Context, projectID, guildID *int64) ([]ProjectGuild, error) {
	var conditions []string
	var args []any
	if projectID != nil {
		conditions = append(conditions, "project_id = ?")
		args = append(args, *projectID)
	}
	if guildID != nil {
		conditions = append(conditions, "guild_id = ?")
		args = append(args, *guildID)
	}

	query := `SELECT id, project_id, guild_id FROM project_guilds`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list project guilds: %w", err)
	}
	defer rows.Close()

	var links []ProjectGuild
	for rows.Next() {
		var pg ProjectGuild
		if err := rows.Scan(&pg.ID, &pg.ProjectID, &pg.GuildID); err != nil {
			return nil, fmt.Errorf("failed to scan project guild row: %w", err)
		}
		links = append(links, pg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project guild rows: %w", err)
	}

	return links, nil
}

func (s *ProjectGuildStore) CreateOrGetLink(ctx context.Context, projectID, guildID int64) (*ProjectGuild, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO project_guilds (project_id, guild_id)
		VALUES (?, ?)
		ON CONFLICT (project_id, guild_id) DO NOTHING
	`, projectID, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to create project guild: %w", err)
	}

	var pg ProjectGuild
	err = s.db.QueryRowContext(ctx, `
		SELECT id, project_id, guild_id
		FROM project_guilds
		WHERE project_id = ? AND guild_id = ?
	`, projectID, guildID).Scan(&pg.ID, &pg.ProjectID, &pg.GuildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project guild: %w", err)
	}

	return &pg, nil
}
