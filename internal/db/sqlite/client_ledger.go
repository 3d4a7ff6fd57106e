package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iamwavecut/tool"

	"github.com/murmurhq/murmur/internal/db"
)

func (c *sqliteClient) GetBan(ctx context.Context, fingerprint string) (*db.BanRecord, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	ban := &db.BanRecord{}
	err := c.db.GetContext(ctx, ban, `
		SELECT fingerprint, banned_by, reason, is_temporary, banned_at, expires_at
		FROM ban_records WHERE fingerprint = ?
	`, fingerprint)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ban, nil
}

func (c *sqliteClient) UpsertBan(ctx context.Context, ban *db.BanRecord) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	query := `
		INSERT INTO ban_records (fingerprint, banned_by, reason, is_temporary, banned_at, expires_at)
		VALUES (:fingerprint, :banned_by, :reason, :is_temporary, :banned_at, :expires_at)
		ON CONFLICT(fingerprint) DO UPDATE SET
		banned_by=excluded.banned_by,
		reason=excluded.reason,
		is_temporary=excluded.is_temporary,
		banned_at=excluded.banned_at,
		expires_at=excluded.expires_at;
	`
	return tool.Err(c.db.NamedExecContext(ctx, query, ban))
}

func (c *sqliteClient) DeleteBan(ctx context.Context, fingerprint string) (bool, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	result, err := c.db.ExecContext(ctx, `DELETE FROM ban_records WHERE fingerprint = ?`, fingerprint)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (c *sqliteClient) DeleteExpiredBans(ctx context.Context, now time.Time) (int, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	result, err := c.db.ExecContext(ctx, `
		DELETE FROM ban_records WHERE is_temporary = 1 AND expires_at IS NOT NULL AND expires_at < ?
	`, now)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

func (c *sqliteClient) GetRestriction(ctx context.Context, fingerprint string) (*db.RestrictionRecord, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	restriction := &db.RestrictionRecord{}
	err := c.db.GetContext(ctx, restriction, `
		SELECT fingerprint, restricted_by, reason, restriction_type, restrictions, is_temporary, created_at, expires_at
		FROM restriction_records WHERE fingerprint = ?
	`, fingerprint)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return restriction, nil
}

func (c *sqliteClient) UpsertRestriction(ctx context.Context, restriction *db.RestrictionRecord) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	query := `
		INSERT INTO restriction_records (fingerprint, restricted_by, reason, restriction_type, restrictions, is_temporary, created_at, expires_at)
		VALUES (:fingerprint, :restricted_by, :reason, :restriction_type, :restrictions, :is_temporary, :created_at, :expires_at)
		ON CONFLICT(fingerprint) DO UPDATE SET
		restricted_by=excluded.restricted_by,
		reason=excluded.reason,
		restriction_type=excluded.restriction_type,
		restrictions=excluded.restrictions,
		is_temporary=excluded.is_temporary,
		created_at=excluded.created_at,
		expires_at=excluded.expires_at;
	`
	return tool.Err(c.db.NamedExecContext(ctx, query, restriction))
}

func (c *sqliteClient) DeleteRestriction(ctx context.Context, fingerprint string) (bool, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	result, err := c.db.ExecContext(ctx, `DELETE FROM restriction_records WHERE fingerprint = ?`, fingerprint)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
