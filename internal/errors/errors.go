package errors

import (
	"github.com/pkg/errors"
)

// Common error types
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrDatabaseError   = errors.New("database error")
	ErrNotFound        = errors.New("not found")
	ErrAlreadyReported = errors.New("already reported")
	ErrBanned          = errors.New("device banned")
	ErrRestricted      = errors.New("action restricted")
	ErrInCooldown      = errors.New("actor in cooldown")
	ErrInternal        = errors.New("internal error")
)
