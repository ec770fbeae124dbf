package database

import (
	"context"
	"encoding/json"
	"fmt"
)

var _ PostRepository = (*PostStore)(nil)

type PostStore struct {
	db *DB
}

func NewPostStore(db *DB) *PostStore {
	return &PostStore{db: db}
}

func scanPost(row rowScanner) (*FeedPost, error) {
	var p FeedPost
	var rawTags string
	if err := row.Scan(&p.ID, &p.Title, &p.Content, &p.AuthorID, &rawTags, &p.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(rawTags), &p.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags of post %d: %w", p.ID, err)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return &p, nil
}

func (s *PostStore) ListPosts(ctx context.Context, limit int) ([]FeedPost, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, content, author_id, tags, created_at
		FROM posts
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []FeedPost
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}
		posts = append(posts, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating post rows: %w", err)
	}

	return posts, nil
}

func (s *PostStore) CreatePost(ctx context.Context, title, content, authorID string, tags []string) (*FeedPost, error) {
	if tags == nil {
		tags = []string{}
	}
	rawTags, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO posts (title, content, author_id, tags)
		VALUES (?, ?, ?, ?)
	`, title, content, authorID, string(rawTags))
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read post id: %w", err)
	}

	post, err := scanPost(s.db.QueryRowContext(ctx, `
		SELECT id, title, content, author_id, tags, created_at
		FROM posts
		WHERE id = ?
	`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return post, nil
}
