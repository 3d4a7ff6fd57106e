package escalation

import (
	"context"
	"fmt"
	"time"

	"github.com/pborman/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/murmurhq/murmur/internal/config"
	"github.com/murmurhq/murmur/internal/db"
	"github.com/murmurhq/murmur/internal/event"
	"github.com/murmurhq/murmur/internal/ledger"
)

// Outcome is the report response returned to the reporter.
type Outcome struct {
	Success     bool `json:"success"`
	PostRemoved bool `json:"postRemoved,omitempty"`
	UserFlagged bool `json:"userFlagged,omitempty"`
}

type reportStore interface {
	GetPost(ctx context.Context, id string) (*db.Post, error)
	CreateReport(ctx context.Context, report *db.Report) error
	IncrementReportCount(ctx context.Context, postID string) (int, error)
	MarkPostRemoved(ctx context.Context, postID string) (bool, error)
	GetUserFlag(ctx context.Context, actorID string) (*db.UserFlag, error)
	UpsertUserFlag(ctx context.Context, flag *db.UserFlag) error
}

// Tracker counts community reports and drives the
// report → removal → flag → ban chain. The chain is one-directional;
// escalation never un-bans.
type Tracker struct {
	store  reportStore
	bans   ledger.BanLedger
	cfg    config.Escalation
	logger *log.Entry
	now    func() time.Time
}

func NewTracker(store reportStore, bans ledger.BanLedger, cfg config.Escalation) *Tracker {
	if cfg.ReportRemovalThreshold <= 0 {
		cfg.ReportRemovalThreshold = 3
	}
	if cfg.FlagBanThreshold <= 0 {
		cfg.FlagBanThreshold = 3
	}
	return &Tracker{
		store:  store,
		bans:   bans,
		cfg:    cfg,
		logger: log.WithField("service", "escalation"),
		now:    time.Now,
	}
}

// Report records one report. A repeat report by the same reporter on
// the same post returns errors.ErrAlreadyReported. Crossing the removal
// threshold removes the post and flags its author exactly once.
func (t *Tracker) Report(ctx context.Context, postID, reporterID, reason string) (Outcome, error) {
	post, err := t.store.GetPost(ctx, postID)
	if err != nil {
		return Outcome{}, fmt.Errorf("get post: %w", err)
	}

	if err := t.store.CreateReport(ctx, &db.Report{
		ID:         uuid.New(),
		PostID:     postID,
		ReporterID: reporterID,
		Reason:     reason,
		CreatedAt:  t.now(),
	}); err != nil {
		return Outcome{}, err
	}

	count, err := t.store.IncrementReportCount(ctx, postID)
	if err != nil {
		return Outcome{}, fmt.Errorf("increment report count: %w", err)
	}

	outcome := Outcome{Success: true}
	if count < t.cfg.ReportRemovalThreshold {
		return outcome, nil
	}

	// the removed flag flips at most once, so the author is flagged
	// once per qualifying batch, not once per report
	removed, err := t.store.MarkPostRemoved(ctx, postID)
	if err != nil {
		return outcome, fmt.Errorf("mark post removed: %w", err)
	}
	if !removed {
		return outcome, nil
	}
	outcome.PostRemoved = true

	t.logger.WithFields(log.Fields{
		"post_id": postID,
		"reports": count,
	}).Info("post removed by community reports")
	t.announce("post_removed", post.ActorID, post.Fingerprint, postID, reason)

	flagged, err := t.flagAuthor(ctx, post)
	if err != nil {
		t.logger.WithError(err).WithField("actor_id", post.ActorID).Error("cant flag author")
		return outcome, nil
	}
	outcome.UserFlagged = flagged
	return outcome, nil
}

func (t *Tracker) flagAuthor(ctx context.Context, post *db.Post) (bool, error) {
	flag, err := t.store.GetUserFlag(ctx, post.ActorID)
	if err != nil {
		return false, err
	}
	if flag == nil {
		flag = &db.UserFlag{ActorID: post.ActorID}
	}

	flag.FlagCount++
	if post.Fingerprint != "" {
		flag.Fingerprint = post.Fingerprint
	}
	flag.UpdatedAt = t.now()

	if flag.FlagCount >= t.cfg.FlagBanThreshold && !flag.IsBanned {
		flag.IsBanned = true
		if flag.Fingerprint == "" {
			t.logger.WithField("actor_id", post.ActorID).Warn("flag threshold reached without device fingerprint")
		} else if err := t.bans.Ban(ctx, flag.Fingerprint, "escalation",
			fmt.Sprintf("flagged %d times by community reports", flag.FlagCount), false, nil); err != nil {
			t.logger.WithError(err).WithField("fingerprint", flag.Fingerprint).Error("cant ban flagged author")
		} else {
			t.announce("author_banned", post.ActorID, flag.Fingerprint, post.ID, "flag threshold reached")
		}
	}

	if err := t.store.UpsertUserFlag(ctx, flag); err != nil {
		return false, err
	}
	t.announce("author_flagged", post.ActorID, flag.Fingerprint, post.ID, "post removed by reports")
	return true, nil
}

func (t *Tracker) announce(kind, actorID, fingerprint, postID, reason string) {
	event.Bus.Enqueue(&event.ModerationEvent{
		Base:        event.CreateBase(event.TypeModeration, t.now().Add(time.Hour)),
		Kind:        kind,
		ActorID:     actorID,
		Fingerprint: fingerprint,
		PostID:      postID,
		Reason:      reason,
	})
}
