package adapters

import (
	"context"
	"errors"
)

// ErrQuotaExceeded is returned when the external classifier reports
// rate-limit or quota exhaustion; callers treat it as a fail-open signal.
var ErrQuotaExceeded = errors.New("classifier quota exceeded")

// Classification is the normalized output of an external text
// classification call.
type Classification struct {
	Flagged    bool
	Categories []string
}

// Classifier defines the interface for external content classification
type Classifier interface {
	// Classify evaluates the given text and returns the flagged
	// categories, if any
	Classify(ctx context.Context, text string) (Classification, error)
}
