package event

import (
	"time"
)

type (
	bus struct {
		q chan Queueable
	}

	Queueable interface {
		Process()
		IsProcessed() bool
		Drop()
		IsDropped() bool
		Expired() bool
		Type() string
	}

	Base struct {
		processed bool
		dropped   bool
		expireAt  time.Time
		eventType string
	}
)

const (
	TypeEngagement = "engagement"
	TypeModeration = "moderation"
)

// EngagementEvent asks the worker to fold a post's engagement total
// into its author's score.
type EngagementEvent struct {
	*Base
	ActorID string
	PostID  string
}

// ModerationEvent announces a ban, removal, or flag transition for
// downstream user messaging.
type ModerationEvent struct {
	*Base
	Kind        string
	ActorID     string
	Fingerprint string
	PostID      string
	Reason      string
}

func CreateBase(eventType string, expiresAt time.Time) *Base {
	return &Base{
		expireAt:  expiresAt,
		eventType: eventType,
	}
}

func (b *Base) Process() {
	b.processed = true
}

func (b *Base) IsProcessed() bool {
	return b.processed
}

func (b *Base) Drop() {
	b.dropped = true
}

func (b *Base) IsDropped() bool {
	return b.dropped
}

func (b *Base) Expired() bool {
	return time.Until(b.expireAt) < 0
}

func (b *Base) Type() string {
	return b.eventType
}

var Bus = &bus{q: make(chan Queueable, 100000)}

// Enqueue is at-most-once and never blocks the caller; when the queue
// is full the event is silently lost.
func (b *bus) Enqueue(event Queueable) {
	select {
	case b.q <- event:
	default:
	}
}

func (b *bus) pop() Queueable {
	select {
	case q := <-b.q:
		return q
	default:
		return nil
	}
}
