package scoreservice

import "errors"

// Business failures. Handlers ack these instead of retrying.
var (
	// ErrNonPositiveDelta rejects zero and negative score changes.
	ErrNonPositiveDelta = errors.New("score delta must be positive")

	// ErrProfileNotFound is returned when the user has no competition profile.
	ErrProfileNotFound = errors.New("profile not found")
)

// Reasons a delta did not reach the weekly score. The total score still moves.
const (
	WeeklySkipNoActiveWeek = "no_active_week"
	WeeklySkipNoMembership = "no_membership"
	WeeklySkipFrozen       = "frozen"
)
