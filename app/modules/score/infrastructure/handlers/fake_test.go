package scorehandlers

import (
	"context"
	"time"

	scoreservice "github.com/Black-And-White-Club/quiz-league/app/modules/score/application"
	"github.com/google/uuid"
)

// FakeScoreService is a programmable scoreservice.Service.
type FakeScoreService struct {
	ApplyScoreDeltaFunc func(ctx context.Context, userID uuid.UUID, delta int, at time.Time) (*scoreservice.ApplyResult, error)
	calls               int
}

func (f *FakeScoreService) ApplyScoreDelta(ctx context.Context, userID uuid.UUID, delta int, at time.Time) (*scoreservice.ApplyResult, error) {
	f.calls++
	if f.ApplyScoreDeltaFunc != nil {
		return f.ApplyScoreDeltaFunc(ctx, userID, delta, at)
	}
	return &scoreservice.ApplyResult{UserID: userID, Delta: delta, TotalScore: delta, WeeklyApplied: true}, nil
}

var _ scoreservice.Service = (*FakeScoreService)(nil)
