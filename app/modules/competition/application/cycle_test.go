package competitionservice

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	competitiondomain "github.com/Black-And-White-Club/quiz-league/app/modules/competition/domain"
	competitiondb "github.com/Black-And-White-Club/quiz-league/app/modules/competition/infrastructure/repositories"
	userdb "github.com/Black-And-White-Club/quiz-league/app/modules/user/infrastructure/repositories"
	competitionevents "github.com/Black-And-White-Club/quiz-league/pkg/events/competition"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCloseCycleNoActiveWeek(t *testing.T) {
	svc, f := newTestService(t)

	report, err := svc.CloseCycle(context.Background(), date(2026, 3, 10))
	require.NoError(t, err)
	assert.True(t, report.Skipped)
	assert.Equal(t, CycleClose, report.Cycle)
	assert.False(t, report.OpenPending)
	assert.Equal(t, []string{"AcquireCycleLock", "GetActiveWeekEndedBy", "GetLatestWeek"}, f.repo.Trace())
	assert.Empty(t, f.pub.topics)
}

func TestCloseCycleReportsPendingOpen(t *testing.T) {
	tests := []struct {
		name   string
		latest *competitiondb.Week
		err    error
		want   bool
	}{
		{name: "passed week without successor", latest: &competitiondb.Week{ID: 11, Status: "passed"}, want: true},
		{name: "active week still running", latest: &competitiondb.Week{ID: 12, Status: "active"}},
		{name: "no weeks yet", err: competitiondb.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, f := newTestService(t)
			f.repo.GetLatestWeekFn = func(ctx context.Context, db bun.IDB) (*competitiondb.Week, error) {
				return tt.latest, tt.err
			}

			report, err := svc.CloseCycle(context.Background(), date(2026, 3, 10))
			require.NoError(t, err)
			assert.True(t, report.Skipped)
			assert.Equal(t, tt.want, report.OpenPending)
		})
	}
}

func TestCloseCycle(t *testing.T) {
	svc, f := newTestService(t)
	week := &competitiondb.Week{ID: 11, Year: 2026, WeekNumber: 10, StartDate: date(2026, 3, 2), EndDate: date(2026, 3, 9), Status: "active"}

	f.repo.GetActiveWeekEndedByFn = func(ctx context.Context, db bun.IDB, d time.Time) (*competitiondb.Week, error) {
		assert.Equal(t, date(2026, 3, 10), d)
		return week, nil
	}
	f.repo.ListLeaguesFn = func(ctx context.Context, db bun.IDB) ([]competitiondb.League, error) {
		return testLeagueRows(), nil
	}
	var statuses []string
	f.repo.UpdateWeekStatusFn = func(ctx context.Context, db bun.IDB, id int64, status string) error {
		assert.Equal(t, week.ID, id)
		statuses = append(statuses, status)
		return nil
	}
	f.repo.ListDivisionsByWeekFn = func(ctx context.Context, db bun.IDB, weekID int64) ([]competitiondb.Division, error) {
		return []competitiondb.Division{
			{ID: 1, LeagueID: 1, WeekID: weekID, Size: 10},
			{ID: 2, LeagueID: 2, WeekID: weekID, Size: 10},
		}, nil
	}
	f.repo.LockDivisionMembershipsFn = func(ctx context.Context, db bun.IDB, divisionID int64) ([]competitiondb.DivisionMembership, error) {
		return testMemberships(divisionID, 10), nil
	}
	f.users.LockProfilesFn = func(ctx context.Context, db bun.IDB, ids []uuid.UUID) ([]userdb.Profile, error) {
		out := make([]userdb.Profile, len(ids))
		for i, id := range ids {
			out[i] = userdb.Profile{UserID: id, Diamonds: 80}
		}
		return out, nil
	}

	report, err := svc.CloseCycle(context.Background(), date(2026, 3, 10))
	require.NoError(t, err)

	assert.False(t, report.Skipped)
	assert.Equal(t, []string{"passed"}, statuses)
	assert.Equal(t, "passed", report.Week.Status)
	assert.Equal(t, 2, report.Divisions)
	assert.Equal(t, 20, report.Members)
	// Bronze promotes 2, Silver promotes 2 and demotes 3
	assert.Equal(t, 4, report.Promoted)
	assert.Equal(t, 3, report.Demoted)
	assert.Equal(t, 13, report.Stayed)
	require.Len(t, report.Leagues, 2)
	assert.Equal(t, "Bronze", report.Leagues[0].Name)
	assert.Equal(t, "Silver", report.Leagues[1].Name)

	assert.Equal(t, 7, f.pub.count(competitionevents.MemberMovedV1))
	assert.Equal(t, 1, f.pub.count(competitionevents.WeekClosedV1))

	last := f.pub.messages[len(f.pub.messages)-1]
	var closed competitionevents.WeekClosedPayloadV1
	require.NoError(t, json.Unmarshal(last.Payload, &closed))
	assert.Equal(t, competitionevents.WeekClosedPayloadV1{
		WeekID: 11, Year: 2026, WeekNumber: 10, Divisions: 2, Promoted: 4, Demoted: 3, Stayed: 13,
	}, closed)

	assert.Equal(t, []string{
		"AcquireCycleLock", "GetActiveWeekEndedBy", "ListLeagues", "UpdateWeekStatus", "ListDivisionsByWeek",
		"LockDivisionMemberships", "ApplyRankings",
		"LockDivisionMemberships", "ApplyRankings",
	}, f.repo.Trace())
}

func TestCloseCycleAbortsOnDivisionFailure(t *testing.T) {
	svc, f := newTestService(t)
	boom := errors.New("deadlock detected")

	f.repo.GetActiveWeekEndedByFn = func(ctx context.Context, db bun.IDB, d time.Time) (*competitiondb.Week, error) {
		return &competitiondb.Week{ID: 3, Status: "active"}, nil
	}
	f.repo.ListLeaguesFn = func(ctx context.Context, db bun.IDB) ([]competitiondb.League, error) {
		return testLeagueRows(), nil
	}
	f.repo.ListDivisionsByWeekFn = func(ctx context.Context, db bun.IDB, weekID int64) ([]competitiondb.Division, error) {
		return []competitiondb.Division{{ID: 1, LeagueID: 1, Size: 10}, {ID: 2, LeagueID: 2, Size: 10}}, nil
	}
	f.repo.LockDivisionMembershipsFn = func(ctx context.Context, db bun.IDB, divisionID int64) ([]competitiondb.DivisionMembership, error) {
		if divisionID == 2 {
			return nil, boom
		}
		return nil, nil
	}

	report, err := svc.CloseCycle(context.Background(), date(2026, 3, 10))
	require.ErrorIs(t, err, boom)
	assert.Nil(t, report)
	assert.Contains(t, err.Error(), "division 2")
	assert.Empty(t, f.pub.topics)
}

func TestCloseCyclePublishFailureKeepsResult(t *testing.T) {
	svc, f := newTestService(t)
	f.pub.err = errors.New("nats down")

	f.repo.GetActiveWeekEndedByFn = func(ctx context.Context, db bun.IDB, d time.Time) (*competitiondb.Week, error) {
		return &competitiondb.Week{ID: 3, Status: "active"}, nil
	}

	report, err := svc.CloseCycle(context.Background(), date(2026, 3, 10))
	require.NoError(t, err)
	assert.False(t, report.Skipped)
}

func TestOpenCycle(t *testing.T) {
	tests := []struct {
		name       string
		latest     *competitiondb.Week
		today      time.Time
		wantErr    error
		wantWeek   competitiondb.Week
		wantCreate bool
	}{
		{
			name:   "bootstrap starts week one today",
			latest: nil,
			today:  date(2026, 1, 5),
			wantWeek: competitiondb.Week{
				Year: 2026, WeekNumber: 1, StartDate: date(2026, 1, 5), EndDate: date(2026, 1, 12), Status: "active",
			},
			wantCreate: true,
		},
		{
			name:   "follows a passed week in the same year",
			latest: &competitiondb.Week{ID: 4, Year: 2026, WeekNumber: 9, EndDate: date(2026, 3, 9), Status: "passed"},
			today:  date(2026, 3, 10),
			wantWeek: competitiondb.Week{
				Year: 2026, WeekNumber: 10, StartDate: date(2026, 3, 10), EndDate: date(2026, 3, 17), Status: "active",
			},
			wantCreate: true,
		},
		{
			name:   "calendar year rollover resets numbering",
			latest: &competitiondb.Week{ID: 4, Year: 2025, WeekNumber: 52, EndDate: date(2025, 12, 31), Status: "passed"},
			today:  date(2026, 1, 1),
			wantWeek: competitiondb.Week{
				Year: 2026, WeekNumber: 1, StartDate: date(2026, 1, 1), EndDate: date(2026, 1, 8), Status: "active",
			},
			wantCreate: true,
		},
		{
			name:    "active week blocks a second open",
			latest:  &competitiondb.Week{ID: 4, Year: 2026, WeekNumber: 9, EndDate: date(2026, 3, 9), Status: "active"},
			today:   date(2026, 3, 10),
			wantErr: competitiondomain.ErrInvalidWeekTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, f := newTestService(t)

			f.repo.GetLatestWeekFn = func(ctx context.Context, db bun.IDB) (*competitiondb.Week, error) {
				if tt.latest == nil {
					return nil, competitiondb.ErrNotFound
				}
				return tt.latest, nil
			}
			f.repo.CreateWeekFn = func(ctx context.Context, db bun.IDB, week *competitiondb.Week) error {
				assert.Equal(t, "upcoming", week.Status)
				week.ID = 99
				return nil
			}
			f.repo.ListLeaguesFn = func(ctx context.Context, db bun.IDB) ([]competitiondb.League, error) {
				return testLeagueRows(), nil
			}
			f.users.ListActiveByLeagueFn = func(ctx context.Context, db bun.IDB, leagueID int64) ([]userdb.Profile, error) {
				if leagueID == 1 {
					return testProfiles(20, leagueID), nil
				}
				return nil, nil
			}
			var activated int64
			f.repo.UpdateWeekStatusFn = func(ctx context.Context, db bun.IDB, id int64, status string) error {
				assert.Equal(t, "active", status)
				activated = id
				return nil
			}

			report, err := svc.OpenCycle(context.Background(), tt.today)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.NotContains(t, f.repo.Trace(), "CreateWeek")
				assert.Empty(t, f.pub.topics)
				return
			}
			require.NoError(t, err)

			got := *report.Week
			got.ID = 0
			assert.Equal(t, tt.wantWeek, got)
			assert.Equal(t, int64(99), activated)
			assert.Equal(t, 2, report.Divisions)
			assert.Equal(t, 20, report.Members)
			assert.Len(t, report.Leagues, 3)
			assert.Equal(t, 1, f.pub.count(competitionevents.WeekOpenedV1))
		})
	}
}

func TestOpenCycleAbortsOnConflict(t *testing.T) {
	svc, f := newTestService(t)
	f.repo.ListLeaguesFn = func(ctx context.Context, db bun.IDB) ([]competitiondb.League, error) {
		return testLeagueRows(), nil
	}
	f.repo.DivisionsExistFn = func(ctx context.Context, db bun.IDB, leagueID, weekID int64) (bool, error) {
		return leagueID == 2, nil
	}

	_, err := svc.OpenCycle(context.Background(), date(2026, 3, 10))
	require.ErrorIs(t, err, ErrDivisionsAlreadyExist)
	assert.NotContains(t, f.repo.Trace(), "UpdateWeekStatus")
}

func TestEndCurrentWeekIgnoresInactiveWeek(t *testing.T) {
	svc, f := newTestService(t)
	week := &competitiondb.Week{ID: 1, Status: "upcoming"}

	require.NoError(t, svc.EndCurrentWeek(context.Background(), nil, week))
	assert.Equal(t, "upcoming", week.Status)
	assert.Empty(t, f.repo.Trace())
}
