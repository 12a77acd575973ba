package competitiondb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the contract for leagues, weeks, divisions and memberships.
// Every method takes the db handle to run on so callers can share a transaction;
// a nil handle falls back to the repository's connection.
type Repository interface {
	// ListLeagues returns every league ordered by tier, lowest first.
	ListLeagues(ctx context.Context, db bun.IDB) ([]League, error)
	GetLeague(ctx context.Context, db bun.IDB, id int64) (*League, error)
	CreateLeague(ctx context.Context, db bun.IDB, league *League) error
	UpdateLeague(ctx context.Context, db bun.IDB, league *League) error
	DeleteLeague(ctx context.Context, db bun.IDB, id int64) error
	// LeagueHasDivisions reports whether any division references the league.
	LeagueHasDivisions(ctx context.Context, db bun.IDB, leagueID int64) (bool, error)

	// GetActiveWeekEndedBy locks the active week with end_date <= date, latest first.
	GetActiveWeekEndedBy(ctx context.Context, db bun.IDB, date time.Time) (*Week, error)
	// GetLatestWeek returns the week with the latest end_date.
	GetLatestWeek(ctx context.Context, db bun.IDB) (*Week, error)
	// GetActiveWeekCovering returns the active week whose range contains date.
	GetActiveWeekCovering(ctx context.Context, db bun.IDB, date time.Time) (*Week, error)
	GetWeek(ctx context.Context, db bun.IDB, id int64) (*Week, error)
	CreateWeek(ctx context.Context, db bun.IDB, week *Week) error
	UpdateWeekStatus(ctx context.Context, db bun.IDB, id int64, status string) error
	// ListWeeks returns weeks ordered by start date; an empty status matches all.
	ListWeeks(ctx context.Context, db bun.IDB, status string) ([]Week, error)

	DivisionsExist(ctx context.Context, db bun.IDB, leagueID, weekID int64) (bool, error)
	// CreateDivisions inserts all divisions and fills in their ids.
	CreateDivisions(ctx context.Context, db bun.IDB, divisions []Division) error
	ListDivisionsByWeek(ctx context.Context, db bun.IDB, weekID int64) ([]Division, error)
	GetDivision(ctx context.Context, db bun.IDB, id int64) (*Division, error)
	ListUserDivisions(ctx context.Context, db bun.IDB, userID uuid.UUID, filter DivisionFilter) ([]Division, error)

	CreateMemberships(ctx context.Context, db bun.IDB, memberships []DivisionMembership) error
	// LockDivisionMemberships selects a division's memberships FOR UPDATE,
	// ordered by weekly score descending then id.
	LockDivisionMemberships(ctx context.Context, db bun.IDB, divisionID int64) ([]DivisionMembership, error)
	// ApplyRankings writes rank and status for memberships not yet ranked and
	// returns how many rows changed.
	ApplyRankings(ctx context.Context, db bun.IDB, memberships []DivisionMembership) (int, error)
	// LockMembershipForWeek selects the user's membership in a week FOR UPDATE.
	LockMembershipForWeek(ctx context.Context, db bun.IDB, userID uuid.UUID, weekID int64) (*DivisionMembership, error)
	IncrementWeeklyScore(ctx context.Context, db bun.IDB, membershipID int64, delta int) error
	// DivisionLeaderboard pages memberships by weekly score and returns the total count.
	DivisionLeaderboard(ctx context.Context, db bun.IDB, divisionID int64, limit, offset int) ([]DivisionMembership, int, error)

	// AcquireCycleLock serializes cycle runs. Must be called within a transaction.
	AcquireCycleLock(ctx context.Context, db bun.IDB) error
}
