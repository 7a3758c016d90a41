package jobfair_errors

import (
	"errors"
	"time"
)

// Common errors
var (
	ErrNotFound             = errors.New("not found")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrNotActive            = errors.New("call is not active")
	ErrDuplicateActiveEntry = errors.New("job seeker already has an active entry in this booth queue")
	ErrAlreadyInvited       = errors.New("interpreter already invited to this call")
	ErrAlreadyBusy          = errors.New("interpreter is already in another meeting")
	ErrTransportFailure     = errors.New("video room provider failure")
	ErrInvalidInput         = errors.New("invalid input")
	ErrRateLimited          = errors.New("rate limited")
	ErrServiceUnavailable   = errors.New("service unavailable")
)

// NowPtr returns a pointer to current time
func NowPtr() *time.Time {
	now := time.Now().UTC()
	return &now
}
