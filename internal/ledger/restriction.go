package ledger

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/murmurhq/murmur/internal/db"
	errs "github.com/murmurhq/murmur/internal/errors"
)

// RestrictionStatus describes which actions are limited for a device.
type RestrictionStatus struct {
	Restricted      bool              `json:"restricted"`
	RestrictionType string            `json:"restrictionType,omitempty"`
	Restrictions    map[string]string `json:"restrictions,omitempty"`
	Reason          string            `json:"reason,omitempty"`
	ExpiresAt       *time.Time        `json:"expiresAt,omitempty"`
}

type RestrictionLedger interface {
	// IsRestricted reports whether the named action is limited for the
	// device. Expiry is computed at read time; stale rows are left in
	// place. Store failures fail open.
	IsRestricted(ctx context.Context, fingerprint, action string) RestrictionStatus
	Restrict(ctx context.Context, record *db.RestrictionRecord) error
	Unrestrict(ctx context.Context, fingerprint string) (bool, error)
}

type restrictionStore interface {
	GetRestriction(ctx context.Context, fingerprint string) (*db.RestrictionRecord, error)
	UpsertRestriction(ctx context.Context, restriction *db.RestrictionRecord) error
	DeleteRestriction(ctx context.Context, fingerprint string) (bool, error)
}

type defaultRestrictionLedger struct {
	store  restrictionStore
	logger *log.Entry
	now    func() time.Time
}

func NewRestrictionLedger(store restrictionStore) RestrictionLedger {
	return &defaultRestrictionLedger{
		store:  store,
		logger: log.WithField("service", "restriction_ledger"),
		now:    time.Now,
	}
}

func (l *defaultRestrictionLedger) IsRestricted(ctx context.Context, fingerprint, action string) RestrictionStatus {
	restriction, err := l.store.GetRestriction(ctx, fingerprint)
	if err != nil {
		l.logger.WithError(err).WithField("fingerprint", fingerprint).Error("restriction lookup failed, failing open")
		return RestrictionStatus{}
	}
	if restriction == nil || !restriction.Active(l.now()) {
		return RestrictionStatus{}
	}
	if action != "" {
		if _, ok := restriction.Restrictions[action]; !ok {
			return RestrictionStatus{}
		}
	}

	return RestrictionStatus{
		Restricted:      true,
		RestrictionType: restriction.RestrictionType,
		Restrictions:    restriction.Restrictions,
		Reason:          restriction.Reason,
		ExpiresAt:       restriction.ExpiresAt,
	}
}

func (l *defaultRestrictionLedger) Restrict(ctx context.Context, record *db.RestrictionRecord) error {
	if record == nil || record.Fingerprint == "" || record.RestrictionType == "" {
		return errs.ErrInvalidInput
	}
	if record.IsTemporary && record.ExpiresAt == nil {
		return errs.ErrInvalidInput
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = l.now()
	}

	if err := l.store.UpsertRestriction(ctx, record); err != nil {
		return err
	}
	l.logger.WithFields(log.Fields{
		"fingerprint": record.Fingerprint,
		"type":        record.RestrictionType,
	}).Info("device restricted")
	return nil
}

func (l *defaultRestrictionLedger) Unrestrict(ctx context.Context, fingerprint string) (bool, error) {
	return l.store.DeleteRestriction(ctx, fingerprint)
}
