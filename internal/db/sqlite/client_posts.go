package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iamwavecut/tool"

	"github.com/murmurhq/murmur/internal/db"
	errs "github.com/murmurhq/murmur/internal/errors"
)

func (c *sqliteClient) CreatePost(ctx context.Context, post *db.Post) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	query := `
		INSERT INTO posts (id, author_alias, actor_id, fingerprint, content, category, page, severity, hidden, removed, report_count, reactions, created_at)
		VALUES (:id, :author_alias, :actor_id, :fingerprint, :content, :category, :page, :severity, :hidden, :removed, :report_count, :reactions, :created_at)
	`
	return tool.Err(c.db.NamedExecContext(ctx, query, post))
}

func (c *sqliteClient) GetPost(ctx context.Context, id string) (*db.Post, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	post := &db.Post{}
	err := c.db.GetContext(ctx, post, `
		SELECT id, author_alias, actor_id, fingerprint, content, category, page, severity, hidden, removed, report_count, reactions, created_at
		FROM posts WHERE id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (c *sqliteClient) GetPostsByActor(ctx context.Context, actorID string) ([]*db.Post, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	var posts []*db.Post
	err := c.db.SelectContext(ctx, &posts, `
		SELECT id, author_alias, actor_id, fingerprint, content, category, page, severity, hidden, removed, report_count, reactions, created_at
		FROM posts WHERE actor_id = ? ORDER BY created_at DESC
	`, actorID)
	return posts, err
}

func (c *sqliteClient) DeletePost(ctx context.Context, id string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return tool.Err(c.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id))
}

func (c *sqliteClient) CountPostEngagement(ctx context.Context, postID string) (int, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	var total int
	err := c.db.GetContext(ctx, &total, `
		SELECT reactions + (SELECT COUNT(*) FROM comments WHERE post_id = posts.id)
		FROM posts WHERE id = ?
	`, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, errs.ErrNotFound
	}
	return total, err
}

func (c *sqliteClient) CreateComment(ctx context.Context, comment *db.Comment) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	query := `
		INSERT INTO comments (id, post_id, actor_id, author_alias, content, severity, hidden, created_at)
		VALUES (:id, :post_id, :actor_id, :author_alias, :content, :severity, :hidden, :created_at)
	`
	return tool.Err(c.db.NamedExecContext(ctx, query, comment))
}
