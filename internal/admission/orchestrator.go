package admission

import (
	"context"
	"fmt"
	"time"

	"github.com/pborman/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/murmurhq/murmur/internal/db"
	"github.com/murmurhq/murmur/internal/escalation"
	"github.com/murmurhq/murmur/internal/event"
	"github.com/murmurhq/murmur/internal/guard"
	"github.com/murmurhq/murmur/internal/ledger"
	"github.com/murmurhq/murmur/internal/moderation"
	"github.com/murmurhq/murmur/internal/observability"
)

type contentStore interface {
	CreatePost(ctx context.Context, post *db.Post) error
	CreateComment(ctx context.Context, comment *db.Comment) error
	GetPost(ctx context.Context, id string) (*db.Post, error)
}

// Submission is one inbound write action.
type Submission struct {
	ActorID     string `json:"actorId"`
	Fingerprint string `json:"fingerprint,omitempty"`
	AuthorAlias string `json:"authorAlias,omitempty"`
	Content     string `json:"content"`
	Category    string `json:"category,omitempty"`
	Page        string `json:"page,omitempty"`
	PostID      string `json:"postId,omitempty"` // comment target
}

// Result is the admitted outcome: the stored item id plus the guard
// warning (if any) and the moderation metadata the caller surfaces.
type Result struct {
	ID         string             `json:"id"`
	Guard      guard.Verdict      `json:"guard"`
	Moderation moderation.Verdict `json:"moderation"`
}

// Orchestrator sequences the admission pipeline per write request:
// ban check, cooldown check, spam guard, content classifier, then the
// persistence collaborator. Severity-3 content is still stored, hidden.
type Orchestrator struct {
	guard        *guard.SpamGuard
	classifier   *moderation.Service
	bans         ledger.BanLedger
	restrictions ledger.RestrictionLedger
	tracker      *escalation.Tracker
	store        contentStore
	logger       *log.Entry
	now          func() time.Time
}

func NewOrchestrator(
	spamGuard *guard.SpamGuard,
	classifier *moderation.Service,
	bans ledger.BanLedger,
	restrictions ledger.RestrictionLedger,
	tracker *escalation.Tracker,
	store contentStore,
) *Orchestrator {
	return &Orchestrator{
		guard:        spamGuard,
		classifier:   classifier,
		bans:         bans,
		restrictions: restrictions,
		tracker:      tracker,
		store:        store,
		logger:       log.WithField("service", "admission"),
		now:          time.Now,
	}
}

func (o *Orchestrator) SubmitPost(ctx context.Context, sub Submission) (*Result, error) {
	done := observability.StartAdmission()

	result, err := o.admit(ctx, sub, "post")
	if err != nil {
		done("rejected")
		return nil, err
	}

	post := &db.Post{
		ID:          uuid.New(),
		AuthorAlias: sub.AuthorAlias,
		ActorID:     sub.ActorID,
		Fingerprint: sub.Fingerprint,
		Content:     sub.Content,
		Category:    sub.Category,
		Page:        sub.Page,
		Severity:    result.Moderation.SeverityLevel,
		Hidden:      result.Moderation.Action == moderation.ActionHide,
		CreatedAt:   o.now(),
	}
	if err := o.store.CreatePost(ctx, post); err != nil {
		done("error")
		return nil, fmt.Errorf("create post: %w", err)
	}
	result.ID = post.ID

	// engagement accrual is best-effort and off the admission path
	event.Bus.Enqueue(&event.EngagementEvent{
		Base:    event.CreateBase(event.TypeEngagement, o.now().Add(time.Hour)),
		ActorID: sub.ActorID,
		PostID:  post.ID,
	})

	observability.RecordAdmissionDecision(string(result.Guard.Action))
	done("admitted")
	return result, nil
}

func (o *Orchestrator) SubmitComment(ctx context.Context, sub Submission) (*Result, error) {
	done := observability.StartAdmission()

	if sub.Fingerprint != "" {
		if status := o.restrictions.IsRestricted(ctx, sub.Fingerprint, "comment"); status.Restricted {
			observability.RecordAdmissionDecision("restricted")
			done("rejected")
			return nil, &RestrictionRejection{Status: status}
		}
	}

	if _, err := o.store.GetPost(ctx, sub.PostID); err != nil {
		done("error")
		return nil, fmt.Errorf("get post: %w", err)
	}

	result, err := o.admit(ctx, sub, "comment")
	if err != nil {
		done("rejected")
		return nil, err
	}

	comment := &db.Comment{
		ID:          uuid.New(),
		PostID:      sub.PostID,
		ActorID:     sub.ActorID,
		AuthorAlias: sub.AuthorAlias,
		Content:     sub.Content,
		Severity:    result.Moderation.SeverityLevel,
		Hidden:      result.Moderation.Action == moderation.ActionHide,
		CreatedAt:   o.now(),
	}
	if err := o.store.CreateComment(ctx, comment); err != nil {
		done("error")
		return nil, fmt.Errorf("create comment: %w", err)
	}
	result.ID = comment.ID

	observability.RecordAdmissionDecision(string(result.Guard.Action))
	done("admitted")
	return result, nil
}

// admit runs the shared rejection stages and, on success, the content
// classifier. The guard's warning verdict is threaded through so the
// caller can surface it without re-querying.
func (o *Orchestrator) admit(ctx context.Context, sub Submission, kind string) (*Result, error) {
	if sub.ActorID == "" || sub.Content == "" {
		return nil, fmt.Errorf("%s submission: actor id and content are required", kind)
	}

	if sub.Fingerprint != "" {
		if status := o.bans.IsBanned(ctx, sub.Fingerprint); status.Banned {
			o.logger.WithField("fingerprint", sub.Fingerprint).Info("rejected banned device")
			observability.RecordAdmissionDecision("banned")
			return nil, &BanRejection{Status: status}
		}
	}

	if cooldown := o.guard.IsInCooldown(sub.ActorID); cooldown.InCooldown {
		observability.RecordAdmissionDecision("cooldown")
		return nil, &CooldownRejection{RemainingMinutes: cooldown.RemainingMinutes}
	}

	verdict := o.guard.Evaluate(sub.ActorID, sub.Content, sub.Category, sub.Page, sub.Fingerprint)
	switch verdict.Action {
	case guard.ActionThrottle, guard.ActionBlock:
		o.logger.WithFields(log.Fields{
			"actor_id": sub.ActorID,
			"action":   verdict.Action,
		}).Info("guard rejected submission")
		observability.RecordAdmissionDecision(string(verdict.Action))
		return nil, &GuardRejection{Verdict: verdict}
	}

	// the classifier verdict sets visibility metadata; it never rejects
	moderationVerdict := o.classifier.Classify(ctx, sub.Content)

	return &Result{
		Guard:      verdict,
		Moderation: moderationVerdict,
	}, nil
}

// Report drives the escalation tracker for a community report.
func (o *Orchestrator) Report(ctx context.Context, postID, reporterID, reason string) (escalation.Outcome, error) {
	return o.tracker.Report(ctx, postID, reporterID, reason)
}

// CheckBan exposes the ban-check contract to the transport layer.
func (o *Orchestrator) CheckBan(ctx context.Context, fingerprint string) ledger.BanStatus {
	return o.bans.IsBanned(ctx, fingerprint)
}
