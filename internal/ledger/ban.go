package ledger

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/murmurhq/murmur/internal/db"
	errs "github.com/murmurhq/murmur/internal/errors"
	"github.com/murmurhq/murmur/internal/infra"
	"github.com/murmurhq/murmur/internal/observability"
)

// BanStatus is the ban-check response shape exposed to callers.
type BanStatus struct {
	Banned      bool       `json:"banned"`
	Reason      string     `json:"banReason,omitempty"`
	IsTemporary bool       `json:"isTemporary,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}

type BanLedger interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	// IsBanned reports whether the device is actively banned. Reading an
	// expired temporary ban deletes it as a side effect. Store failures
	// fail open: the device is reported not banned.
	IsBanned(ctx context.Context, fingerprint string) BanStatus
	Ban(ctx context.Context, fingerprint, bannedBy, reason string, isTemporary bool, expiresAt *time.Time) error
	Unban(ctx context.Context, fingerprint, by string) (bool, error)
}

type banStore interface {
	GetBan(ctx context.Context, fingerprint string) (*db.BanRecord, error)
	UpsertBan(ctx context.Context, ban *db.BanRecord) error
	DeleteBan(ctx context.Context, fingerprint string) (bool, error)
	DeleteExpiredBans(ctx context.Context, now time.Time) (int, error)
}

type defaultBanLedger struct {
	store         banStore
	sweepInterval time.Duration
	logger        *log.Entry
	now           func() time.Time

	locks keyedMutex

	runMutex  sync.Mutex
	started   bool
	runCancel context.CancelFunc
	workersWg sync.WaitGroup
}

func NewBanLedger(store banStore, sweepInterval time.Duration) BanLedger {
	if sweepInterval <= 0 {
		sweepInterval = time.Hour
	}
	return &defaultBanLedger{
		store:         store,
		sweepInterval: sweepInterval,
		logger:        log.WithField("service", "ban_ledger"),
		now:           time.Now,
	}
}

func (l *defaultBanLedger) Start(ctx context.Context) error {
	l.runMutex.Lock()
	defer l.runMutex.Unlock()
	if l.started {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	l.runCancel = cancel
	l.started = true

	l.workersWg.Add(1)
	go infra.GoRecoverable(3, "ban_ledger_sweep", func() {
		defer l.workersWg.Done()
		l.sweepLoop(runCtx)
	})
	return nil
}

func (l *defaultBanLedger) Stop(ctx context.Context) error {
	l.runMutex.Lock()
	if !l.started {
		l.runMutex.Unlock()
		return nil
	}
	l.started = false
	cancel := l.runCancel
	l.runMutex.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		l.workersWg.Wait()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (l *defaultBanLedger) IsBanned(ctx context.Context, fingerprint string) BanStatus {
	unlock := l.locks.lock(fingerprint)
	defer unlock()

	ban, err := l.store.GetBan(ctx, fingerprint)
	if err != nil {
		// fail open: a ledger outage must not lock out the service
		l.logger.WithError(err).WithField("fingerprint", fingerprint).Error("ban lookup failed, failing open")
		return BanStatus{}
	}
	if ban == nil {
		return BanStatus{}
	}

	if ban.Expired(l.now()) {
		if _, err := l.store.DeleteBan(ctx, fingerprint); err != nil {
			l.logger.WithError(err).WithField("fingerprint", fingerprint).Error("cant delete expired ban")
		}
		return BanStatus{}
	}

	return BanStatus{
		Banned:      true,
		Reason:      ban.Reason,
		IsTemporary: ban.IsTemporary,
		ExpiresAt:   ban.ExpiresAt,
	}
}

// Ban creates or overwrites the record unconditionally; re-banning
// resets terms. A temporary ban without an expiry is rejected at this
// write boundary.
func (l *defaultBanLedger) Ban(ctx context.Context, fingerprint, bannedBy, reason string, isTemporary bool, expiresAt *time.Time) error {
	if fingerprint == "" {
		return errs.ErrInvalidInput
	}
	if isTemporary && expiresAt == nil {
		return errs.ErrInvalidInput
	}

	unlock := l.locks.lock(fingerprint)
	defer unlock()

	err := l.store.UpsertBan(ctx, &db.BanRecord{
		Fingerprint: fingerprint,
		BannedBy:    bannedBy,
		Reason:      reason,
		IsTemporary: isTemporary,
		BannedAt:    l.now(),
		ExpiresAt:   expiresAt,
	})
	if err != nil {
		return err
	}

	l.logger.WithFields(log.Fields{
		"fingerprint": fingerprint,
		"banned_by":   bannedBy,
		"temporary":   isTemporary,
	}).Info("device banned")
	return nil
}

func (l *defaultBanLedger) Unban(ctx context.Context, fingerprint, by string) (bool, error) {
	unlock := l.locks.lock(fingerprint)
	defer unlock()

	existed, err := l.store.DeleteBan(ctx, fingerprint)
	if err != nil {
		return false, err
	}
	if existed {
		l.logger.WithFields(log.Fields{
			"fingerprint": fingerprint,
			"unbanned_by": by,
		}).Info("device unbanned")
	}
	return existed, nil
}

// sweepLoop bounds ledger growth; lazy expiry already keeps lookups
// correct, so the sweep needs no coordination with live reads beyond
// the store's own synchronization.
func (l *defaultBanLedger) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(l.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cleaned, err := l.store.DeleteExpiredBans(ctx, l.now())
			if err != nil {
				l.logger.WithError(err).Error("ban sweep failed")
				continue
			}
			if cleaned > 0 {
				observability.RecordBansCleaned(cleaned)
				l.logger.WithField("cleaned", cleaned).Info("swept expired bans")
			}
		}
	}
}
