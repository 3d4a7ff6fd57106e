package db

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type (
	// BanRecord is a device-level ban keyed by fingerprint. A temporary
	// record whose ExpiresAt has passed is logically absent; readers are
	// expected to delete it on sight.
	BanRecord struct {
		Fingerprint string     `db:"fingerprint"`
		BannedBy    string     `db:"banned_by"`
		Reason      string     `db:"reason"`
		IsTemporary bool       `db:"is_temporary"`
		BannedAt    time.Time  `db:"banned_at"`
		ExpiresAt   *time.Time `db:"expires_at"`
	}

	// RestrictionRecord limits specific actions for a device instead of
	// blocking it outright.
	RestrictionRecord struct {
		Fingerprint     string       `db:"fingerprint"`
		RestrictedBy    string       `db:"restricted_by"`
		Reason          string       `db:"reason"`
		RestrictionType string       `db:"restriction_type"`
		Restrictions    Restrictions `db:"restrictions"`
		IsTemporary     bool         `db:"is_temporary"`
		CreatedAt       time.Time    `db:"created_at"`
		ExpiresAt       *time.Time   `db:"expires_at"`
	}

	Report struct {
		ID         string    `db:"id"`
		PostID     string    `db:"post_id"`
		ReporterID string    `db:"reporter_id"`
		Reason     string    `db:"reason"`
		CreatedAt  time.Time `db:"created_at"`
	}

	UserFlag struct {
		ActorID     string    `db:"actor_id"`
		Fingerprint string    `db:"fingerprint"`
		FlagCount   int       `db:"flag_count"`
		IsBanned    bool      `db:"is_banned"`
		UpdatedAt   time.Time `db:"updated_at"`
	}

	Post struct {
		ID          string    `db:"id"`
		AuthorAlias string    `db:"author_alias"`
		ActorID     string    `db:"actor_id"`
		Fingerprint string    `db:"fingerprint"`
		Content     string    `db:"content"`
		Category    string    `db:"category"`
		Page        string    `db:"page"`
		Severity    int       `db:"severity"`
		Hidden      bool      `db:"hidden"`
		Removed     bool      `db:"removed"`
		ReportCount int       `db:"report_count"`
		Reactions   int       `db:"reactions"`
		CreatedAt   time.Time `db:"created_at"`
	}

	Comment struct {
		ID          string    `db:"id"`
		PostID      string    `db:"post_id"`
		ActorID     string    `db:"actor_id"`
		AuthorAlias string    `db:"author_alias"`
		Content     string    `db:"content"`
		Severity    int       `db:"severity"`
		Hidden      bool      `db:"hidden"`
		CreatedAt   time.Time `db:"created_at"`
	}

	// Restrictions is a free-form action->detail payload stored as JSON.
	Restrictions map[string]string
)

func (r Restrictions) Value() (driver.Value, error) {
	return json.Marshal(r)
}

func (r *Restrictions) Scan(v interface{}) error {
	if v == nil {
		return nil
	}
	switch data := v.(type) {
	case string:
		return json.Unmarshal([]byte(data), r)
	case []byte:
		return json.Unmarshal(data, r)
	default:
		return fmt.Errorf("cannot scan type %t into Restrictions", v)
	}
}

// Expired reports whether a temporary ban's deadline has passed.
func (b *BanRecord) Expired(now time.Time) bool {
	return b.IsTemporary && b.ExpiresAt != nil && b.ExpiresAt.Before(now)
}

// Active reports whether the restriction still applies at the given time.
// Stale restriction rows are left in place; expiry is computed on read.
func (r *RestrictionRecord) Active(now time.Time) bool {
	if !r.IsTemporary {
		return true
	}
	return r.ExpiresAt != nil && r.ExpiresAt.After(now)
}
