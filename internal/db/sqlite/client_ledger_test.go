package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/murmurhq/murmur/internal/db"
)

func TestBanRecordRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client, err := NewSQLiteClient(ctx, t.TempDir(), "test.db")
	if err != nil {
		t.Fatalf("new sqlite client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	expires := time.Now().Add(time.Hour).UTC()
	record := &db.BanRecord{
		Fingerprint: "fp-1",
		BannedBy:    "system",
		Reason:      "spam",
		IsTemporary: true,
		BannedAt:    time.Now().UTC(),
		ExpiresAt:   &expires,
	}
	if err := client.UpsertBan(ctx, record); err != nil {
		t.Fatalf("upsert ban: %v", err)
	}

	got, err := client.GetBan(ctx, "fp-1")
	if err != nil {
		t.Fatalf("get ban: %v", err)
	}
	if got == nil {
		t.Fatal("expected a ban record")
	}
	if got.Reason != "spam" || !got.IsTemporary {
		t.Errorf("record = %+v, want temporary spam ban", got)
	}
	if got.ExpiresAt == nil || !got.ExpiresAt.Equal(expires) {
		t.Errorf("expires_at = %v, want %v", got.ExpiresAt, expires)
	}

	missing, err := client.GetBan(ctx, "fp-unknown")
	if err != nil {
		t.Fatalf("get missing ban: %v", err)
	}
	if missing != nil {
		t.Errorf("missing fingerprint returned %+v", missing)
	}
}

func TestDeleteExpiredBansKeepsPermanentRecords(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client, err := NewSQLiteClient(ctx, t.TempDir(), "test.db")
	if err != nil {
		t.Fatalf("new sqlite client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	now := time.Now().UTC()
	expired := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	records := []*db.BanRecord{
		{Fingerprint: "fp-expired", BannedBy: "system", IsTemporary: true, BannedAt: now.Add(-2 * time.Hour), ExpiresAt: &expired},
		{Fingerprint: "fp-active", BannedBy: "system", IsTemporary: true, BannedAt: now, ExpiresAt: &future},
		{Fingerprint: "fp-permanent", BannedBy: "system", IsTemporary: false, BannedAt: now},
	}
	for _, record := range records {
		if err := client.UpsertBan(ctx, record); err != nil {
			t.Fatalf("upsert %s: %v", record.Fingerprint, err)
		}
	}

	removed, err := client.DeleteExpiredBans(ctx, now)
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	for _, fingerprint := range []string{"fp-active", "fp-permanent"} {
		got, err := client.GetBan(ctx, fingerprint)
		if err != nil {
			t.Fatalf("get %s: %v", fingerprint, err)
		}
		if got == nil {
			t.Errorf("%s should survive the sweep", fingerprint)
		}
	}
	if got, _ := client.GetBan(ctx, "fp-expired"); got != nil {
		t.Error("expired record should be gone")
	}
}

func TestRestrictionRecordKeepsActionMap(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client, err := NewSQLiteClient(ctx, t.TempDir(), "test.db")
	if err != nil {
		t.Fatalf("new sqlite client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	record := &db.RestrictionRecord{
		Fingerprint:     "fp-2",
		RestrictedBy:    "system",
		Reason:          "harassment",
		RestrictionType: "no_comments",
		Restrictions:    db.Restrictions{"comment": "harassment"},
		CreatedAt:       time.Now().UTC(),
	}
	if err := client.UpsertRestriction(ctx, record); err != nil {
		t.Fatalf("upsert restriction: %v", err)
	}

	got, err := client.GetRestriction(ctx, "fp-2")
	if err != nil {
		t.Fatalf("get restriction: %v", err)
	}
	if got == nil {
		t.Fatal("expected a restriction record")
	}
	if got.Restrictions["comment"] != "harassment" {
		t.Errorf("restrictions = %v, want comment action", got.Restrictions)
	}

	deleted, err := client.DeleteRestriction(ctx, "fp-2")
	if err != nil {
		t.Fatalf("delete restriction: %v", err)
	}
	if !deleted {
		t.Error("expected deletion to report true")
	}
}
