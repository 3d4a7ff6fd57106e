// Package notify is the outbound messaging collaborator. Transitions
// (ban, removal, flag) are announced fire-and-forget; delivery is
// best-effort and never gates an admission decision.
package notify

import (
	log "github.com/sirupsen/logrus"
)

type Notification struct {
	Kind        string
	ActorID     string
	Fingerprint string
	PostID      string
	Reason      string
}

// Dispatcher is implemented by downstream messaging integrations.
type Dispatcher interface {
	Dispatch(n Notification)
}

type logDispatcher struct {
	logger *log.Entry
}

func NewLogDispatcher() Dispatcher {
	return &logDispatcher{logger: log.WithField("service", "notify")}
}

func (d *logDispatcher) Dispatch(n Notification) {
	d.logger.WithFields(log.Fields{
		"kind":     n.Kind,
		"actor_id": n.ActorID,
		"post_id":  n.PostID,
		"reason":   n.Reason,
	}).Info("notification dispatched")
}
