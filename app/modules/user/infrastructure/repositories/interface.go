package userdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the contract for profile and level persistence.
type Repository interface {
	GetProfile(ctx context.Context, db bun.IDB, userID uuid.UUID) (*Profile, error)
	// CreateProfile inserts a profile and leaves an existing one untouched.
	// It reports whether a row was inserted.
	CreateProfile(ctx context.Context, db bun.IDB, profile *Profile) (bool, error)
	SetActive(ctx context.Context, db bun.IDB, userID uuid.UUID, active bool) error
	// LockProfile selects the profile FOR UPDATE.
	LockProfile(ctx context.Context, db bun.IDB, userID uuid.UUID) (*Profile, error)
	// LockProfiles selects the given profiles FOR UPDATE in user id order.
	LockProfiles(ctx context.Context, db bun.IDB, userIDs []uuid.UUID) ([]Profile, error)
	// ListActiveByLeague returns active profiles in a league by total score
	// ascending, ties by user id.
	ListActiveByLeague(ctx context.Context, db bun.IDB, leagueID int64) ([]Profile, error)
	CountByLeague(ctx context.Context, db bun.IDB, leagueID int64) (int, error)
	// LeagueLeaderboard pages a league's profiles by total score descending.
	LeagueLeaderboard(ctx context.Context, db bun.IDB, leagueID int64, limit, offset int) ([]Profile, int, error)
	// BulkUpdateLeagueAndDiamonds writes current_league_id and diamonds for every profile given.
	BulkUpdateLeagueAndDiamonds(ctx context.Context, db bun.IDB, profiles []Profile) error
	UpdateDiamonds(ctx context.Context, db bun.IDB, userID uuid.UUID, diamonds int) error
	// IncrementTotalScore adds delta in the database and returns the new total.
	IncrementTotalScore(ctx context.Context, db bun.IDB, userID uuid.UUID, delta int) (int, error)
	SetLevel(ctx context.Context, db bun.IDB, userID uuid.UUID, levelID *int64) error

	ListLevels(ctx context.Context, db bun.IDB) ([]Level, error)
	CreateLevel(ctx context.Context, db bun.IDB, level *Level) error
}
