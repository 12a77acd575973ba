package scoreservice

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	competitiondb "github.com/Black-And-White-Club/quiz-league/app/modules/competition/infrastructure/repositories"
	userdb "github.com/Black-And-White-Club/quiz-league/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/quiz-league/pkg/observability/metrics"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

var tehran = time.FixedZone("IRST", 3*3600+1800)

type fakes struct {
	users       *userdb.FakeRepository
	competition *competitiondb.FakeRepository
}

func newTestService(t *testing.T) (*ScoreService, *fakes) {
	t.Helper()
	f := &fakes{
		users:       userdb.NewFakeRepository(),
		competition: competitiondb.NewFakeRepository(),
	}
	svc := NewScoreService(f.users, f.competition, tehran, slog.New(slog.DiscardHandler), metrics.NewNoop(), nil, nil)
	return svc, f
}

func ptrInt(v int) *int { return &v }

func ptrInt64(v int64) *int64 { return &v }

func TestApplyScoreDelta(t *testing.T) {
	userID := uuid.New()
	at := time.Date(2026, 10, 17, 21, 0, 0, 0, time.UTC) // 00:30 on the 18th in Tehran
	week := &competitiondb.Week{ID: 9, Status: "active"}
	levels := []userdb.Level{{ID: 1, Order: 1, MinScore: 0}, {ID: 2, Order: 2, MinScore: 100}}

	withProfile := func(f *fakes) {
		f.users.GetProfileFn = func(ctx context.Context, db bun.IDB, id uuid.UUID) (*userdb.Profile, error) {
			return &userdb.Profile{UserID: id, TotalScore: 90, LevelID: ptrInt64(1)}, nil
		}
		f.users.IncrementTotalScoreFn = func(ctx context.Context, db bun.IDB, id uuid.UUID, delta int) (int, error) {
			return 90 + delta, nil
		}
		f.users.ListLevelsFn = func(ctx context.Context, db bun.IDB) ([]userdb.Level, error) { return levels, nil }
	}

	tests := []struct {
		name          string
		delta         int
		setup         func(t *testing.T, f *fakes)
		wantErr       error
		wantWeekly    bool
		wantSkip      string
		wantTotal     int
		wantLevel     int64
		wantTrace     []string
		wantUserTrace []string
	}{
		{
			name:  "applies to the open membership",
			delta: 15,
			setup: func(t *testing.T, f *fakes) {
				withProfile(f)
				f.competition.GetActiveWeekCoveringFn = func(ctx context.Context, db bun.IDB, date time.Time) (*competitiondb.Week, error) {
					assert.Equal(t, time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC), date)
					return week, nil
				}
				f.competition.LockMembershipForWeekFn = func(ctx context.Context, db bun.IDB, id uuid.UUID, weekID int64) (*competitiondb.DivisionMembership, error) {
					return &competitiondb.DivisionMembership{ID: 41, UserID: id, WeeklyScore: 20}, nil
				}
				f.competition.IncrementWeeklyScoreFn = func(ctx context.Context, db bun.IDB, membershipID int64, delta int) error {
					assert.Equal(t, int64(41), membershipID)
					assert.Equal(t, 15, delta)
					return nil
				}
			},
			wantWeekly:    true,
			wantTotal:     105,
			wantLevel:     2,
			wantTrace:     []string{"GetActiveWeekCovering", "LockMembershipForWeek", "IncrementWeeklyScore"},
			wantUserTrace: []string{"GetProfile", "IncrementTotalScore", "ListLevels", "SetLevel"},
		},
		{
			name:  "ranked membership keeps its weekly score",
			delta: 5,
			setup: func(t *testing.T, f *fakes) {
				withProfile(f)
				f.competition.GetActiveWeekCoveringFn = func(ctx context.Context, db bun.IDB, date time.Time) (*competitiondb.Week, error) {
					return week, nil
				}
				f.competition.LockMembershipForWeekFn = func(ctx context.Context, db bun.IDB, id uuid.UUID, weekID int64) (*competitiondb.DivisionMembership, error) {
					return &competitiondb.DivisionMembership{ID: 41, RankInDivision: ptrInt(3)}, nil
				}
			},
			wantSkip:      WeeklySkipFrozen,
			wantTotal:     95,
			wantLevel:     1,
			wantTrace:     []string{"GetActiveWeekCovering", "LockMembershipForWeek"},
			wantUserTrace: []string{"GetProfile", "IncrementTotalScore", "ListLevels"},
		},
		{
			name:  "no active week still moves the total",
			delta: 10,
			setup: func(t *testing.T, f *fakes) {
				withProfile(f)
			},
			wantSkip:      WeeklySkipNoActiveWeek,
			wantTotal:     100,
			wantLevel:     2,
			wantTrace:     []string{"GetActiveWeekCovering"},
			wantUserTrace: []string{"GetProfile", "IncrementTotalScore", "ListLevels", "SetLevel"},
		},
		{
			name:  "user joined after the week opened",
			delta: 1,
			setup: func(t *testing.T, f *fakes) {
				withProfile(f)
				f.competition.GetActiveWeekCoveringFn = func(ctx context.Context, db bun.IDB, date time.Time) (*competitiondb.Week, error) {
					return week, nil
				}
			},
			wantSkip:      WeeklySkipNoMembership,
			wantTotal:     91,
			wantLevel:     1,
			wantTrace:     []string{"GetActiveWeekCovering", "LockMembershipForWeek"},
			wantUserTrace: []string{"GetProfile", "IncrementTotalScore", "ListLevels"},
		},
		{
			name:    "zero delta",
			delta:   0,
			wantErr: ErrNonPositiveDelta,
		},
		{
			name:    "negative delta",
			delta:   -4,
			wantErr: ErrNonPositiveDelta,
		},
		{
			name:          "unknown profile",
			delta:         10,
			wantErr:       ErrProfileNotFound,
			wantUserTrace: []string{"GetProfile"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, f := newTestService(t)
			if tt.setup != nil {
				tt.setup(t, f)
			}

			res, err := svc.ApplyScoreDelta(context.Background(), userID, tt.delta, at)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, res)
				assert.Empty(t, f.competition.Trace())
				if tt.wantUserTrace != nil {
					assert.Equal(t, tt.wantUserTrace, f.users.Trace())
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantWeekly, res.WeeklyApplied)
			assert.Equal(t, tt.wantSkip, res.WeeklySkip)
			assert.Equal(t, tt.wantTotal, res.TotalScore)
			require.NotNil(t, res.LevelID)
			assert.Equal(t, tt.wantLevel, *res.LevelID)
			assert.Equal(t, tt.wantTrace, f.competition.Trace())
			assert.Equal(t, tt.wantUserTrace, f.users.Trace())
		})
	}
}

func TestApplyScoreDeltaInfraError(t *testing.T) {
	svc, f := newTestService(t)
	f.users.GetProfileFn = func(ctx context.Context, db bun.IDB, id uuid.UUID) (*userdb.Profile, error) {
		return &userdb.Profile{UserID: id}, nil
	}
	f.competition.GetActiveWeekCoveringFn = func(ctx context.Context, db bun.IDB, date time.Time) (*competitiondb.Week, error) {
		return &competitiondb.Week{ID: 1}, nil
	}
	f.competition.LockMembershipForWeekFn = func(ctx context.Context, db bun.IDB, id uuid.UUID, weekID int64) (*competitiondb.DivisionMembership, error) {
		return nil, errors.New("lock timeout")
	}

	_, err := svc.ApplyScoreDelta(context.Background(), uuid.New(), 3, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ApplyScoreDelta")
	assert.NotContains(t, f.users.Trace(), "IncrementTotalScore")
}
