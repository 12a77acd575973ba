package competitionservice

import (
	"context"
	"time"

	competitiondb "github.com/Black-And-White-Club/quiz-league/app/modules/competition/infrastructure/repositories"
	userdb "github.com/Black-And-White-Club/quiz-league/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/quiz-league/pkg/pagination"
	"github.com/google/uuid"
)

// Service runs the weekly competition cycle and serves its read models.
type Service interface {
	// CloseCycle finalizes the active week that ended on or before today.
	CloseCycle(ctx context.Context, today time.Time) (*CycleReport, error)
	// OpenCycle creates the week after the latest one and its divisions.
	OpenCycle(ctx context.Context, today time.Time) (*CycleReport, error)

	ListLeagues(ctx context.Context) ([]competitiondb.League, error)
	GetLeague(ctx context.Context, id int64) (*competitiondb.League, error)
	CreateLeague(ctx context.Context, league *competitiondb.League) (*competitiondb.League, error)
	UpdateLeague(ctx context.Context, league *competitiondb.League) (*competitiondb.League, error)
	DeleteLeague(ctx context.Context, id int64) error
	LeagueLeaderboard(ctx context.Context, leagueID int64, page pagination.Page) (pagination.Result[userdb.Profile], error)

	ListWeeks(ctx context.Context, status string) ([]competitiondb.Week, error)
	GetDivision(ctx context.Context, id int64) (*competitiondb.Division, error)
	ListUserDivisions(ctx context.Context, userID uuid.UUID, filter competitiondb.DivisionFilter) ([]competitiondb.Division, error)
	DivisionLeaderboard(ctx context.Context, divisionID int64, page pagination.Page) (pagination.Result[competitiondb.DivisionMembership], error)
	DivisionChart(ctx context.Context, divisionID int64) ([]byte, error)
	ExportDivision(ctx context.Context, divisionID int64) ([]byte, error)
}

// CycleReport summarizes one close or open run.
type CycleReport struct {
	Cycle   string `json:"cycle"`
	Skipped bool   `json:"skipped"`
	// OpenPending is set on a skipped close when the latest week is already
	// passed and nothing follows it yet.
	OpenPending bool                `json:"open_pending,omitempty"`
	Week        *competitiondb.Week `json:"week,omitempty"`
	Divisions   int                 `json:"divisions"`
	Members     int                 `json:"members"`
	Promoted    int                 `json:"promoted"`
	Demoted     int                 `json:"demoted"`
	Stayed      int                 `json:"stayed"`
	Leagues     []LeagueReport      `json:"leagues,omitempty"`
	Moves       []Move              `json:"-"`
}

// LeagueReport is the per-league part of a CycleReport.
type LeagueReport struct {
	LeagueID  int64  `json:"league_id"`
	Name      string `json:"name"`
	Divisions int    `json:"divisions"`
	Members   int    `json:"members"`
	Promoted  int    `json:"promoted"`
	Demoted   int    `json:"demoted"`
	Stayed    int    `json:"stayed"`
}

// Move is a promotion or demotion decided at finalization.
type Move struct {
	UserID       uuid.UUID
	DivisionID   int64
	FromLeagueID int64
	ToLeagueID   int64
	Status       string
	Rank         int
	Penalty      int
}

const (
	CycleClose = "close"
	CycleOpen  = "open"
)
