package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iamwavecut/tool"

	"github.com/murmurhq/murmur/internal/db"
	errs "github.com/murmurhq/murmur/internal/errors"
)

func (c *sqliteClient) CreateReport(ctx context.Context, report *db.Report) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	query := `
		INSERT INTO reports (id, post_id, reporter_id, reason, created_at)
		VALUES (:id, :post_id, :reporter_id, :reason, :created_at)
	`
	_, err := c.db.NamedExecContext(ctx, query, report)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return errs.ErrAlreadyReported
	}
	return err
}

func (c *sqliteClient) HasReport(ctx context.Context, postID, reporterID string) (bool, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	var count int
	err := c.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM reports WHERE post_id = ? AND reporter_id = ?
	`, postID, reporterID)
	return count > 0, err
}

func (c *sqliteClient) IncrementReportCount(ctx context.Context, postID string) (int, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if err := tool.Err(c.db.ExecContext(ctx, `
		UPDATE posts SET report_count = report_count + 1 WHERE id = ?
	`, postID)); err != nil {
		return 0, err
	}

	var count int
	err := c.db.GetContext(ctx, &count, `SELECT report_count FROM posts WHERE id = ?`, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, errs.ErrNotFound
	}
	return count, err
}

// MarkPostRemoved flips removed exactly once; a second call reports
// false so threshold transitions never re-trigger.
func (c *sqliteClient) MarkPostRemoved(ctx context.Context, postID string) (bool, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	result, err := c.db.ExecContext(ctx, `
		UPDATE posts SET removed = 1, hidden = 1 WHERE id = ? AND removed = 0
	`, postID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (c *sqliteClient) GetUserFlag(ctx context.Context, actorID string) (*db.UserFlag, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	flag := &db.UserFlag{}
	err := c.db.GetContext(ctx, flag, `
		SELECT actor_id, fingerprint, flag_count, is_banned, updated_at
		FROM user_flags WHERE actor_id = ?
	`, actorID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return flag, nil
}

func (c *sqliteClient) UpsertUserFlag(ctx context.Context, flag *db.UserFlag) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	query := `
		INSERT INTO user_flags (actor_id, fingerprint, flag_count, is_banned, updated_at)
		VALUES (:actor_id, :fingerprint, :flag_count, :is_banned, :updated_at)
		ON CONFLICT(actor_id) DO UPDATE SET
		fingerprint=excluded.fingerprint,
		flag_count=excluded.flag_count,
		is_banned=excluded.is_banned,
		updated_at=excluded.updated_at;
	`
	return tool.Err(c.db.NamedExecContext(ctx, query, flag))
}
