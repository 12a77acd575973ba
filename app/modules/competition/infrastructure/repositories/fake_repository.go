package competitiondb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// FakeRepository is a programmable Repository. Unset funcs return zero values
// or ErrNotFound for single-row lookups.
type FakeRepository struct {
	trace []string

	ListLeaguesFn             func(ctx context.Context, db bun.IDB) ([]League, error)
	GetLeagueFn               func(ctx context.Context, db bun.IDB, id int64) (*League, error)
	CreateLeagueFn            func(ctx context.Context, db bun.IDB, league *League) error
	UpdateLeagueFn            func(ctx context.Context, db bun.IDB, league *League) error
	DeleteLeagueFn            func(ctx context.Context, db bun.IDB, id int64) error
	LeagueHasDivisionsFn      func(ctx context.Context, db bun.IDB, leagueID int64) (bool, error)
	GetActiveWeekEndedByFn    func(ctx context.Context, db bun.IDB, date time.Time) (*Week, error)
	GetLatestWeekFn           func(ctx context.Context, db bun.IDB) (*Week, error)
	GetActiveWeekCoveringFn   func(ctx context.Context, db bun.IDB, date time.Time) (*Week, error)
	GetWeekFn                 func(ctx context.Context, db bun.IDB, id int64) (*Week, error)
	CreateWeekFn              func(ctx context.Context, db bun.IDB, week *Week) error
	UpdateWeekStatusFn        func(ctx context.Context, db bun.IDB, id int64, status string) error
	ListWeeksFn               func(ctx context.Context, db bun.IDB, status string) ([]Week, error)
	DivisionsExistFn          func(ctx context.Context, db bun.IDB, leagueID, weekID int64) (bool, error)
	CreateDivisionsFn         func(ctx context.Context, db bun.IDB, divisions []Division) error
	ListDivisionsByWeekFn     func(ctx context.Context, db bun.IDB, weekID int64) ([]Division, error)
	GetDivisionFn             func(ctx context.Context, db bun.IDB, id int64) (*Division, error)
	ListUserDivisionsFn       func(ctx context.Context, db bun.IDB, userID uuid.UUID, filter DivisionFilter) ([]Division, error)
	CreateMembershipsFn       func(ctx context.Context, db bun.IDB, memberships []DivisionMembership) error
	LockDivisionMembershipsFn func(ctx context.Context, db bun.IDB, divisionID int64) ([]DivisionMembership, error)
	ApplyRankingsFn           func(ctx context.Context, db bun.IDB, memberships []DivisionMembership) (int, error)
	LockMembershipForWeekFn   func(ctx context.Context, db bun.IDB, userID uuid.UUID, weekID int64) (*DivisionMembership, error)
	IncrementWeeklyScoreFn    func(ctx context.Context, db bun.IDB, membershipID int64, delta int) error
	DivisionLeaderboardFn     func(ctx context.Context, db bun.IDB, divisionID int64, limit, offset int) ([]DivisionMembership, int, error)
	AcquireCycleLockFn        func(ctx context.Context, db bun.IDB) error
}

func NewFakeRepository() *FakeRepository {
	return &FakeRepository{trace: []string{}}
}

func (f *FakeRepository) record(step string) {
	f.trace = append(f.trace, step)
}

// Trace returns the repository calls in the order they were made.
func (f *FakeRepository) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeRepository) ListLeagues(ctx context.Context, db bun.IDB) ([]League, error) {
	f.record("ListLeagues")
	if f.ListLeaguesFn != nil {
		return f.ListLeaguesFn(ctx, db)
	}
	return nil, nil
}

func (f *FakeRepository) GetLeague(ctx context.Context, db bun.IDB, id int64) (*League, error) {
	f.record("GetLeague")
	if f.GetLeagueFn != nil {
		return f.GetLeagueFn(ctx, db, id)
	}
	return nil, ErrNotFound
}

func (f *FakeRepository) CreateLeague(ctx context.Context, db bun.IDB, league *League) error {
	f.record("CreateLeague")
	if f.CreateLeagueFn != nil {
		return f.CreateLeagueFn(ctx, db, league)
	}
	return nil
}

func (f *FakeRepository) UpdateLeague(ctx context.Context, db bun.IDB, league *League) error {
	f.record("UpdateLeague")
	if f.UpdateLeagueFn != nil {
		return f.UpdateLeagueFn(ctx, db, league)
	}
	return nil
}

func (f *FakeRepository) DeleteLeague(ctx context.Context, db bun.IDB, id int64) error {
	f.record("DeleteLeague")
	if f.DeleteLeagueFn != nil {
		return f.DeleteLeagueFn(ctx, db, id)
	}
	return nil
}

func (f *FakeRepository) LeagueHasDivisions(ctx context.Context, db bun.IDB, leagueID int64) (bool, error) {
	f.record("LeagueHasDivisions")
	if f.LeagueHasDivisionsFn != nil {
		return f.LeagueHasDivisionsFn(ctx, db, leagueID)
	}
	return false, nil
}

func (f *FakeRepository) GetActiveWeekEndedBy(ctx context.Context, db bun.IDB, date time.Time) (*Week, error) {
	f.record("GetActiveWeekEndedBy")
	if f.GetActiveWeekEndedByFn != nil {
		return f.GetActiveWeekEndedByFn(ctx, db, date)
	}
	return nil, ErrNotFound
}

func (f *FakeRepository) GetLatestWeek(ctx context.Context, db bun.IDB) (*Week, error) {
	f.record("GetLatestWeek")
	if f.GetLatestWeekFn != nil {
		return f.GetLatestWeekFn(ctx, db)
	}
	return nil, ErrNotFound
}

func (f *FakeRepository) GetActiveWeekCovering(ctx context.Context, db bun.IDB, date time.Time) (*Week, error) {
	f.record("GetActiveWeekCovering")
	if f.GetActiveWeekCoveringFn != nil {
		return f.GetActiveWeekCoveringFn(ctx, db, date)
	}
	return nil, ErrNotFound
}

func (f *FakeRepository) GetWeek(ctx context.Context, db bun.IDB, id int64) (*Week, error) {
	f.record("GetWeek")
	if f.GetWeekFn != nil {
		return f.GetWeekFn(ctx, db, id)
	}
	return nil, ErrNotFound
}

func (f *FakeRepository) CreateWeek(ctx context.Context, db bun.IDB, week *Week) error {
	f.record("CreateWeek")
	if f.CreateWeekFn != nil {
		return f.CreateWeekFn(ctx, db, week)
	}
	return nil
}

func (f *FakeRepository) UpdateWeekStatus(ctx context.Context, db bun.IDB, id int64, status string) error {
	f.record("UpdateWeekStatus")
	if f.UpdateWeekStatusFn != nil {
		return f.UpdateWeekStatusFn(ctx, db, id, status)
	}
	return nil
}

func (f *FakeRepository) ListWeeks(ctx context.Context, db bun.IDB, status string) ([]Week, error) {
	f.record("ListWeeks")
	if f.ListWeeksFn != nil {
		return f.ListWeeksFn(ctx, db, status)
	}
	return nil, nil
}

func (f *FakeRepository) DivisionsExist(ctx context.Context, db bun.IDB, leagueID, weekID int64) (bool, error) {
	f.record("DivisionsExist")
	if f.DivisionsExistFn != nil {
		return f.DivisionsExistFn(ctx, db, leagueID, weekID)
	}
	return false, nil
}

func (f *FakeRepository) CreateDivisions(ctx context.Context, db bun.IDB, divisions []Division) error {
	f.record("CreateDivisions")
	if f.CreateDivisionsFn != nil {
		return f.CreateDivisionsFn(ctx, db, divisions)
	}
	return nil
}

func (f *FakeRepository) ListDivisionsByWeek(ctx context.Context, db bun.IDB, weekID int64) ([]Division, error) {
	f.record("ListDivisionsByWeek")
	if f.ListDivisionsByWeekFn != nil {
		return f.ListDivisionsByWeekFn(ctx, db, weekID)
	}
	return nil, nil
}

func (f *FakeRepository) GetDivision(ctx context.Context, db bun.IDB, id int64) (*Division, error) {
	f.record("GetDivision")
	if f.GetDivisionFn != nil {
		return f.GetDivisionFn(ctx, db, id)
	}
	return nil, ErrNotFound
}

func (f *FakeRepository) ListUserDivisions(ctx context.Context, db bun.IDB, userID uuid.UUID, filter DivisionFilter) ([]Division, error) {
	f.record("ListUserDivisions")
	if f.ListUserDivisionsFn != nil {
		return f.ListUserDivisionsFn(ctx, db, userID, filter)
	}
	return nil, nil
}

func (f *FakeRepository) CreateMemberships(ctx context.Context, db bun.IDB, memberships []DivisionMembership) error {
	f.record("CreateMemberships")
	if f.CreateMembershipsFn != nil {
		return f.CreateMembershipsFn(ctx, db, memberships)
	}
	return nil
}

func (f *FakeRepository) LockDivisionMemberships(ctx context.Context, db bun.IDB, divisionID int64) ([]DivisionMembership, error) {
	f.record("LockDivisionMemberships")
	if f.LockDivisionMembershipsFn != nil {
		return f.LockDivisionMembershipsFn(ctx, db, divisionID)
	}
	return nil, nil
}

func (f *FakeRepository) ApplyRankings(ctx context.Context, db bun.IDB, memberships []DivisionMembership) (int, error) {
	f.record("ApplyRankings")
	if f.ApplyRankingsFn != nil {
		return f.ApplyRankingsFn(ctx, db, memberships)
	}
	return len(memberships), nil
}

func (f *FakeRepository) LockMembershipForWeek(ctx context.Context, db bun.IDB, userID uuid.UUID, weekID int64) (*DivisionMembership, error) {
	f.record("LockMembershipForWeek")
	if f.LockMembershipForWeekFn != nil {
		return f.LockMembershipForWeekFn(ctx, db, userID, weekID)
	}
	return nil, ErrNotFound
}

func (f *FakeRepository) IncrementWeeklyScore(ctx context.Context, db bun.IDB, membershipID int64, delta int) error {
	f.record("IncrementWeeklyScore")
	if f.IncrementWeeklyScoreFn != nil {
		return f.IncrementWeeklyScoreFn(ctx, db, membershipID, delta)
	}
	return nil
}

func (f *FakeRepository) DivisionLeaderboard(ctx context.Context, db bun.IDB, divisionID int64, limit, offset int) ([]DivisionMembership, int, error) {
	f.record("DivisionLeaderboard")
	if f.DivisionLeaderboardFn != nil {
		return f.DivisionLeaderboardFn(ctx, db, divisionID, limit, offset)
	}
	return nil, 0, nil
}

func (f *FakeRepository) AcquireCycleLock(ctx context.Context, db bun.IDB) error {
	f.record("AcquireCycleLock")
	if f.AcquireCycleLockFn != nil {
		return f.AcquireCycleLockFn(ctx, db)
	}
	return nil
}

var _ Repository = (*FakeRepository)(nil)
