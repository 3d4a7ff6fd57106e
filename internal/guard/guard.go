package guard

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/murmurhq/murmur/internal/config"
	"github.com/murmurhq/murmur/internal/observability"
	"github.com/murmurhq/murmur/internal/textsim"
)

type Action string

const (
	ActionAllow    Action = "allow"
	ActionWarn     Action = "warn"
	ActionThrottle Action = "throttle"
	ActionBlock    Action = "block"
)

// Verdict is the guard's admission outcome for one submission.
type Verdict struct {
	IsSpam          bool   `json:"isSpam"`
	Action          Action `json:"action"`
	Message         string `json:"message,omitempty"`
	Severity        string `json:"severity"`
	CooldownMinutes int    `json:"cooldownMinutes,omitempty"`
}

// CooldownStatus is the answer to a cooldown query.
type CooldownStatus struct {
	InCooldown       bool `json:"inCooldown"`
	RemainingMinutes int  `json:"remainingMinutes,omitempty"`
}

type engagementStore interface {
	CountPostEngagement(ctx context.Context, postID string) (int, error)
}

// SpamGuard enforces frequency and similarity limits over a per-actor
// rolling window of recent submissions.
type SpamGuard struct {
	cfg      config.SpamGuard
	isExempt func(actorID string) bool
	registry *registry
	store    engagementStore
	logger   *log.Entry
	now      func() time.Time
}

func NewSpamGuard(cfg config.SpamGuard, isExempt func(string) bool, store engagementStore) *SpamGuard {
	if isExempt == nil {
		isExempt = func(string) bool { return false }
	}
	return &SpamGuard{
		cfg:      cfg,
		isExempt: isExempt,
		registry: newRegistry(),
		store:    store,
		logger:   log.WithField("service", "spam_guard"),
		now:      time.Now,
	}
}

// Evaluate classifies one submission, short-circuiting on the first
// matching check, and records the outcome into the actor's metrics.
func (g *SpamGuard) Evaluate(actorID, content, category, page, fingerprint string) Verdict {
	if g.isExempt(actorID) {
		return Verdict{Action: ActionAllow, Severity: "none"}
	}

	now := g.now()
	actor := g.registry.get(actorID)

	actor.mu.Lock()
	defer actor.mu.Unlock()

	if fingerprint != "" {
		actor.fingerprint = fingerprint
	}

	entry := submission{Content: content, Timestamp: now, Category: category, Page: page}

	if actor.whitelisted {
		actor.pruneLocked(now.Add(-g.cfg.TimeWindow))
		actor.recent = append(actor.recent, entry)
		return Verdict{Action: ActionAllow, Severity: "none"}
	}

	actor.pruneLocked(now.Add(-g.cfg.TimeWindow))

	cooldownMinutes := int(g.cfg.ViolationCooldown.Minutes())

	if len(actor.recent) >= g.cfg.PostLimitPerWindow {
		actor.recordViolationLocked(ViolationFrequency, "medium", now)
		observability.RecordGuardViolation(string(ViolationFrequency))
		g.logger.WithFields(log.Fields{
			"actor_id": actorID,
			"window":   len(actor.recent),
		}).Info("frequency limit hit")
		// the throttled attempt does not consume a window slot
		return Verdict{
			IsSpam:          true,
			Action:          ActionThrottle,
			Message:         fmt.Sprintf("You're posting too quickly. Please wait %d minutes before trying again.", cooldownMinutes),
			Severity:        "medium",
			CooldownMinutes: cooldownMinutes,
		}
	}

	for _, previous := range actor.recent {
		if textsim.Score(content, previous.Content) >= g.cfg.SimilarityThreshold {
			actor.recordViolationLocked(ViolationSimilarity, "medium", now)
			actor.warningCount++
			observability.RecordGuardViolation(string(ViolationSimilarity))
			if actor.warningCount >= g.cfg.MaxWarnings {
				return Verdict{
					IsSpam:   true,
					Action:   ActionBlock,
					Message:  "Repeated duplicate content. Submissions from this session are blocked.",
					Severity: "high",
				}
			}
			actor.recent = append(actor.recent, entry)
			return Verdict{
				IsSpam:   true,
				Action:   ActionWarn,
				Message:  "This looks very similar to something you recently posted.",
				Severity: "medium",
			}
		}
	}

	if sharesURL(content, actor.recent) {
		actor.recordViolationLocked(ViolationLinkSpam, "low", now)
		observability.RecordGuardViolation(string(ViolationLinkSpam))
		actor.recent = append(actor.recent, entry)
		return Verdict{
			IsSpam:   true,
			Action:   ActionWarn,
			Message:  "You've already shared this link recently.",
			Severity: "low",
		}
	}

	if countKeywordMatches(content) >= 2 {
		actor.recordViolationLocked(ViolationKeywordSpam, "low", now)
		observability.RecordGuardViolation(string(ViolationKeywordSpam))
		actor.recent = append(actor.recent, entry)
		return Verdict{
			IsSpam:   true,
			Action:   ActionWarn,
			Message:  "This post reads like promotional content.",
			Severity: "low",
		}
	}

	actor.recent = append(actor.recent, entry)
	return Verdict{Action: ActionAllow, Severity: "none"}
}

// IsInCooldown inspects only the most recent violation; administrative
// identities always report no cooldown.
func (g *SpamGuard) IsInCooldown(actorID string) CooldownStatus {
	if g.isExempt(actorID) {
		return CooldownStatus{}
	}

	last, ok := g.registry.get(actorID).lastViolation()
	if !ok {
		return CooldownStatus{}
	}

	expiry := last.Timestamp.Add(g.cfg.ViolationCooldown)
	remaining := expiry.Sub(g.now())
	if remaining <= 0 {
		return CooldownStatus{}
	}

	minutes := int(remaining.Minutes())
	if remaining > time.Duration(minutes)*time.Minute {
		minutes++
	}
	return CooldownStatus{InCooldown: true, RemainingMinutes: minutes}
}

// RecordEngagement folds a post's current reaction+comment total into
// the author's engagement score. Invoked from the event worker, never
// on the admission path; a lost update is acceptable.
func (g *SpamGuard) RecordEngagement(ctx context.Context, actorID, postID string) {
	if g.store == nil {
		return
	}
	total, err := g.store.CountPostEngagement(ctx, postID)
	if err != nil {
		g.logger.WithError(err).WithField("post_id", postID).Warn("cant count post engagement")
		return
	}

	actor := g.registry.get(actorID)
	actor.mu.Lock()
	defer actor.mu.Unlock()

	actor.engagementScore += total
	if !actor.whitelisted && actor.engagementScore >= g.cfg.WhitelistThreshold {
		actor.whitelisted = true
		g.logger.WithField("actor_id", actorID).Info("actor whitelisted")
	}
}

// Fingerprint returns the device fingerprint last seen for the actor.
func (g *SpamGuard) Fingerprint(actorID string) string {
	actor := g.registry.get(actorID)
	actor.mu.Lock()
	defer actor.mu.Unlock()
	return actor.fingerprint
}

// IsWhitelisted reports whether the actor earned enforcement exemption.
func (g *SpamGuard) IsWhitelisted(actorID string) bool {
	actor := g.registry.get(actorID)
	actor.mu.Lock()
	defer actor.mu.Unlock()
	return actor.whitelisted
}
