package guard

import (
	"sync"
	"time"
)

type ViolationKind string

const (
	ViolationFrequency   ViolationKind = "frequency"
	ViolationSimilarity  ViolationKind = "similarity"
	ViolationKeywordSpam ViolationKind = "keyword_spam"
	ViolationLinkSpam    ViolationKind = "link_spam"
)

type (
	submission struct {
		Content   string
		Timestamp time.Time
		Category  string
		Page      string
	}

	violation struct {
		Kind      ViolationKind
		Timestamp time.Time
		Severity  string
	}

	// actorMetrics is the per-actor bookkeeping record. Its mutex is the
	// critical section for the read-prune-decide-append sequence; two
	// concurrent submissions by the same actor serialize on it.
	actorMetrics struct {
		mu              sync.Mutex
		recent          []submission
		violations      []violation
		warningCount    int
		engagementScore int
		whitelisted     bool
		fingerprint     string
	}
)

// registry holds actor records keyed by session identifier. Records are
// created lazily on first reference and live for the process lifetime.
type registry struct {
	mu     sync.RWMutex
	actors map[string]*actorMetrics
}

func newRegistry() *registry {
	return &registry{actors: map[string]*actorMetrics{}}
}

func (r *registry) get(actorID string) *actorMetrics {
	r.mu.RLock()
	actor, ok := r.actors[actorID]
	r.mu.RUnlock()
	if ok {
		return actor
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if actor, ok = r.actors[actorID]; ok {
		return actor
	}
	actor = &actorMetrics{}
	r.actors[actorID] = actor
	return actor
}

// pruneLocked drops window entries older than the cutoff. Callers must
// hold the actor's mutex.
func (a *actorMetrics) pruneLocked(cutoff time.Time) {
	kept := a.recent[:0]
	for _, s := range a.recent {
		if !s.Timestamp.Before(cutoff) {
			kept = append(kept, s)
		}
	}
	a.recent = kept
}

func (a *actorMetrics) recordViolationLocked(kind ViolationKind, severity string, now time.Time) {
	a.violations = append(a.violations, violation{
		Kind:      kind,
		Timestamp: now,
		Severity:  severity,
	})
}

func (a *actorMetrics) lastViolation() (violation, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.violations) == 0 {
		return violation{}, false
	}
	return a.violations[len(a.violations)-1], true
}
