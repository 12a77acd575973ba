package userdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// FakeRepository is a programmable Repository for tests in this and other modules.
type FakeRepository struct {
	trace []string

	GetProfileFn                  func(ctx context.Context, db bun.IDB, userID uuid.UUID) (*Profile, error)
	CreateProfileFn               func(ctx context.Context, db bun.IDB, profile *Profile) (bool, error)
	SetActiveFn                   func(ctx context.Context, db bun.IDB, userID uuid.UUID, active bool) error
	LockProfileFn                 func(ctx context.Context, db bun.IDB, userID uuid.UUID) (*Profile, error)
	LockProfilesFn                func(ctx context.Context, db bun.IDB, userIDs []uuid.UUID) ([]Profile, error)
	ListActiveByLeagueFn          func(ctx context.Context, db bun.IDB, leagueID int64) ([]Profile, error)
	CountByLeagueFn               func(ctx context.Context, db bun.IDB, leagueID int64) (int, error)
	LeagueLeaderboardFn           func(ctx context.Context, db bun.IDB, leagueID int64, limit, offset int) ([]Profile, int, error)
	BulkUpdateLeagueAndDiamondsFn func(ctx context.Context, db bun.IDB, profiles []Profile) error
	UpdateDiamondsFn              func(ctx context.Context, db bun.IDB, userID uuid.UUID, diamonds int) error
	IncrementTotalScoreFn         func(ctx context.Context, db bun.IDB, userID uuid.UUID, delta int) (int, error)
	SetLevelFn                    func(ctx context.Context, db bun.IDB, userID uuid.UUID, levelID *int64) error
	ListLevelsFn                  func(ctx context.Context, db bun.IDB) ([]Level, error)
	CreateLevelFn                 func(ctx context.Context, db bun.IDB, level *Level) error
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

func (f *FakeRepository) GetProfile(ctx context.Context, db bun.IDB, userID uuid.UUID) (*Profile, error) {
	f.record("GetProfile")
	if f.GetProfileFn != nil {
		return f.GetProfileFn(ctx, db, userID)
	}
	return nil, ErrNotFound
}

func (f *FakeRepository) CreateProfile(ctx context.Context, db bun.IDB, profile *Profile) (bool, error) {
	f.record("CreateProfile")
	if f.CreateProfileFn != nil {
		return f.CreateProfileFn(ctx, db, profile)
	}
	return true, nil
}

func (f *FakeRepository) SetActive(ctx context.Context, db bun.IDB, userID uuid.UUID, active bool) error {
	f.record("SetActive")
	if f.SetActiveFn != nil {
		return f.SetActiveFn(ctx, db, userID, active)
	}
	return nil
}

func (f *FakeRepository) LockProfile(ctx context.Context, db bun.IDB, userID uuid.UUID) (*Profile, error) {
	f.record("LockProfile")
	if f.LockProfileFn != nil {
		return f.LockProfileFn(ctx, db, userID)
	}
	return nil, ErrNotFound
}

func (f *FakeRepository) LockProfiles(ctx context.Context, db bun.IDB, userIDs []uuid.UUID) ([]Profile, error) {
	f.record("LockProfiles")
	if f.LockProfilesFn != nil {
		return f.LockProfilesFn(ctx, db, userIDs)
	}
	return nil, nil
}

func (f *FakeRepository) ListActiveByLeague(ctx context.Context, db bun.IDB, leagueID int64) ([]Profile, error) {
	f.record("ListActiveByLeague")
	if f.ListActiveByLeagueFn != nil {
		return f.ListActiveByLeagueFn(ctx, db, leagueID)
	}
	return nil, nil
}

func (f *FakeRepository) CountByLeague(ctx context.Context, db bun.IDB, leagueID int64) (int, error) {
	f.record("CountByLeague")
	if f.CountByLeagueFn != nil {
		return f.CountByLeagueFn(ctx, db, leagueID)
	}
	return 0, nil
}

func (f *FakeRepository) LeagueLeaderboard(ctx context.Context, db bun.IDB, leagueID int64, limit, offset int) ([]Profile, int, error) {
	f.record("LeagueLeaderboard")
	if f.LeagueLeaderboardFn != nil {
		return f.LeagueLeaderboardFn(ctx, db, leagueID, limit, offset)
	}
	return nil, 0, nil
}

func (f *FakeRepository) BulkUpdateLeagueAndDiamonds(ctx context.Context, db bun.IDB, profiles []Profile) error {
	f.record("BulkUpdateLeagueAndDiamonds")
	if f.BulkUpdateLeagueAndDiamondsFn != nil {
		return f.BulkUpdateLeagueAndDiamondsFn(ctx, db, profiles)
	}
	return nil
}

func (f *FakeRepository) UpdateDiamonds(ctx context.Context, db bun.IDB, userID uuid.UUID, diamonds int) error {
	f.record("UpdateDiamonds")
	if f.UpdateDiamondsFn != nil {
		return f.UpdateDiamondsFn(ctx, db, userID, diamonds)
	}
	return nil
}

func (f *FakeRepository) IncrementTotalScore(ctx context.Context, db bun.IDB, userID uuid.UUID, delta int) (int, error) {
	f.record("IncrementTotalScore")
	if f.IncrementTotalScoreFn != nil {
		return f.IncrementTotalScoreFn(ctx, db, userID, delta)
	}
	return delta, nil
}

func (f *FakeRepository) SetLevel(ctx context.Context, db bun.IDB, userID uuid.UUID, levelID *int64) error {
	f.record("SetLevel")
	if f.SetLevelFn != nil {
		return f.SetLevelFn(ctx, db, userID, levelID)
	}
	return nil
}

func (f *FakeRepository) ListLevels(ctx context.Context, db bun.IDB) ([]Level, error) {
	f.record("ListLevels")
	if f.ListLevelsFn != nil {
		return f.ListLevelsFn(ctx, db)
	}
	return nil, nil
}

func (f *FakeRepository) CreateLevel(ctx context.Context, db bun.IDB, level *Level) error {
	f.record("CreateLevel")
	if f.CreateLevelFn != nil {
		return f.CreateLevelFn(ctx, db, level)
	}
	return nil
}

var _ Repository = (*FakeRepository)(nil)
