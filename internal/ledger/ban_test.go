package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/murmurhq/murmur/internal/db"
	errs "github.com/murmurhq/murmur/internal/errors"
)

type fakeBanStore struct {
	mu   sync.Mutex
	bans map[string]*db.BanRecord
	err  error
}

func newFakeBanStore() *fakeBanStore {
	return &fakeBanStore{bans: map[string]*db.BanRecord{}}
}

func (f *fakeBanStore) GetBan(_ context.Context, fingerprint string) (*db.BanRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	ban, ok := f.bans[fingerprint]
	if !ok {
		return nil, nil
	}
	copied := *ban
	return &copied, nil
}

func (f *fakeBanStore) UpsertBan(_ context.Context, ban *db.BanRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	copied := *ban
	f.bans[ban.Fingerprint] = &copied
	return nil
}

func (f *fakeBanStore) DeleteBan(_ context.Context, fingerprint string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.bans[fingerprint]
	delete(f.bans, fingerprint)
	return ok, nil
}

func (f *fakeBanStore) DeleteExpiredBans(_ context.Context, now time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cleaned := 0
	for fp, ban := range f.bans {
		if ban.Expired(now) {
			delete(f.bans, fp)
			cleaned++
		}
	}
	return cleaned, nil
}

func (f *fakeBanStore) has(fingerprint string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.bans[fingerprint]
	return ok
}

func newTestLedger(store banStore) (*defaultBanLedger, *time.Time) {
	l := NewBanLedger(store, time.Hour).(*defaultBanLedger)
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return current }
	return l, &current
}

func TestBanRoundTrip(t *testing.T) {
	t.Parallel()

	store := newFakeBanStore()
	l, _ := newTestLedger(store)
	ctx := context.Background()

	if err := l.Ban(ctx, "device-1", "system", "repeated abuse", false, nil); err != nil {
		t.Fatalf("ban failed: %v", err)
	}

	status := l.IsBanned(ctx, "device-1")
	if !status.Banned {
		t.Fatalf("expected device to be banned")
	}
	if status.Reason != "repeated abuse" {
		t.Fatalf("unexpected reason: %q", status.Reason)
	}
	if status.IsTemporary {
		t.Fatalf("permanent ban reported temporary")
	}

	existed, err := l.Unban(ctx, "device-1", "admin")
	if err != nil || !existed {
		t.Fatalf("unban: existed=%v err=%v", existed, err)
	}
	if l.IsBanned(ctx, "device-1").Banned {
		t.Fatalf("device still banned after unban")
	}
}

func TestIsBannedLazyExpiry(t *testing.T) {
	t.Parallel()

	store := newFakeBanStore()
	l, current := newTestLedger(store)
	ctx := context.Background()

	expires := current.Add(time.Hour)
	if err := l.Ban(ctx, "device-2", "system", "cooldown abuse", true, &expires); err != nil {
		t.Fatalf("ban failed: %v", err)
	}
	if !l.IsBanned(ctx, "device-2").Banned {
		t.Fatalf("temporary ban should be active before expiry")
	}

	*current = current.Add(2 * time.Hour)

	// first read observes the expired record, deletes it, reports clean
	if l.IsBanned(ctx, "device-2").Banned {
		t.Fatalf("expired ban reported active")
	}
	if store.has("device-2") {
		t.Fatalf("expired record must be deleted as a side effect of the read")
	}
	// second read is identical from the caller's perspective
	if l.IsBanned(ctx, "device-2").Banned {
		t.Fatalf("second read after expiry reported banned")
	}
}

func TestBanValidatesInvariant(t *testing.T) {
	t.Parallel()

	l, _ := newTestLedger(newFakeBanStore())
	ctx := context.Background()

	if err := l.Ban(ctx, "device-3", "system", "", true, nil); !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("temporary ban without expiry must be rejected, got %v", err)
	}
	if err := l.Ban(ctx, "", "system", "", false, nil); !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("empty fingerprint must be rejected, got %v", err)
	}
}

func TestRebanResetsTerms(t *testing.T) {
	t.Parallel()

	store := newFakeBanStore()
	l, current := newTestLedger(store)
	ctx := context.Background()

	expires := current.Add(time.Hour)
	if err := l.Ban(ctx, "device-4", "system", "first offense", true, &expires); err != nil {
		t.Fatalf("ban failed: %v", err)
	}
	if err := l.Ban(ctx, "device-4", "escalation", "flag threshold", false, nil); err != nil {
		t.Fatalf("re-ban failed: %v", err)
	}

	status := l.IsBanned(ctx, "device-4")
	if !status.Banned || status.IsTemporary {
		t.Fatalf("re-ban should have replaced terms: %+v", status)
	}
	if status.Reason != "flag threshold" {
		t.Fatalf("unexpected reason: %q", status.Reason)
	}
}

func TestIsBannedFailsOpenOnStoreError(t *testing.T) {
	t.Parallel()

	store := newFakeBanStore()
	store.err = errs.ErrDatabaseError
	l, _ := newTestLedger(store)

	if l.IsBanned(context.Background(), "device-5").Banned {
		t.Fatalf("store failure must fail open to not-banned")
	}
}

func TestIsBannedConcurrentSameFingerprint(t *testing.T) {
	t.Parallel()

	store := newFakeBanStore()
	l, current := newTestLedger(store)
	ctx := context.Background()

	expires := current.Add(time.Minute)
	if err := l.Ban(ctx, "device-6", "system", "spam", true, &expires); err != nil {
		t.Fatalf("ban failed: %v", err)
	}
	*current = current.Add(time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.IsBanned(ctx, "device-6").Banned {
				t.Errorf("expired ban reported active")
			}
		}()
	}
	wg.Wait()

	if store.has("device-6") {
		t.Fatalf("expired record should be gone after concurrent reads")
	}
}
