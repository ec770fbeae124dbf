package database

import (
	"context"
	"database/sql"
	"fmt"
)

var _ GuildRepository = (*GuildStore)(nil)

type GuildStore struct {
	db *DB
}

func NewGuildStore(db *DB) *GuildStore {
	return &GuildStore{db: db}
}

func (s *GuildStore) ListGuilds(ctx context.Context) ([]Guild, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, created_at
		FROM guilds
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list guilds: %w", err)
	}
	defer rows.Close()

	var guilds []Guild
	for rows.Next() {
		var g Guild
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan guild row: %w", err)
		}
		guilds = append(guilds, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating guild rows: %w", err)
	}

	return guilds, nil
}

func (s *GuildStore) GetGuild(ctx context.Context, id int64) (*Guild, error) {
	var g Guild
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, created_at
		FROM guilds
		WHERE id = ?
	`, id).Scan(&g.ID, &g.Name, &g.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guild: %w", err)
	}

	return &g, nil
}

func (s *GuildStore) GetGuildByName(ctx context.Context, name string) (*Guild, error) {
	var g Guild
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, created_at
		FROM guilds
		WHERE name_key = ?
	`, FoldName(name)).Scan(&g.ID, &g.Name, &g.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guild by name: %w", err)
	}

	return &g, nil
}

// CreateGuild leans on the unique name_key index: when a guild with the same folded name
// already exists, that row is returned instead of a new one.
func (s *GuildStore) CreateGuild(ctx context.Context, name string) (*Guild, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO guilds (name, name_key)
		VALUES (?, ?)
		ON CONFLICT DO NOTHING
	`, name, FoldName(name))
	if err != nil {
		return nil, fmt.Errorf("failed to create guild: %w", err)
	}

	guild, err := s.GetGuildByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if guild == nil {
		return nil, fmt.Errorf("failed to create guild: %q not found after insert", name)
	}

	return guild, nil
}
