package admission

import (
	"fmt"

	"github.com/murmurhq/murmur/internal/guard"
	"github.com/murmurhq/murmur/internal/ledger"
)

// Policy rejections are expected, user-facing outcomes. Each carries
// the detail the transport layer needs to render a specific response.

type BanRejection struct {
	Status ledger.BanStatus
}

func (r *BanRejection) Error() string {
	return fmt.Sprintf("device banned: %s", r.Status.Reason)
}

type CooldownRejection struct {
	RemainingMinutes int
}

func (r *CooldownRejection) Error() string {
	return fmt.Sprintf("in cooldown for %d more minutes", r.RemainingMinutes)
}

type GuardRejection struct {
	Verdict guard.Verdict
}

func (r *GuardRejection) Error() string {
	return fmt.Sprintf("submission %s: %s", r.Verdict.Action, r.Verdict.Message)
}

type RestrictionRejection struct {
	Status ledger.RestrictionStatus
}

func (r *RestrictionRejection) Error() string {
	return fmt.Sprintf("action restricted: %s", r.Status.Reason)
}
