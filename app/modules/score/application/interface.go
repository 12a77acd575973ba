package scoreservice

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Service is the score ledger.
type Service interface {
	// ApplyScoreDelta adds delta to the user's total score and, when the
	// user's membership for the week covering at is still open, to the
	// weekly score as well.
	ApplyScoreDelta(ctx context.Context, userID uuid.UUID, delta int, at time.Time) (*ApplyResult, error)
}

// ApplyResult reports where a delta landed.
type ApplyResult struct {
	UserID       uuid.UUID
	Delta        int
	TotalScore   int
	LevelID      *int64
	LevelChanged bool

	WeekID        *int64
	MembershipID  *int64
	WeeklyApplied bool
	WeeklySkip    string
}
