package competitionhandlers

import (
	"context"
	"time"

	competitionservice "github.com/Black-And-White-Club/quiz-league/app/modules/competition/application"
	competitiondb "github.com/Black-And-White-Club/quiz-league/app/modules/competition/infrastructure/repositories"
	economyservice "github.com/Black-And-White-Club/quiz-league/app/modules/economy/application"
	economydb "github.com/Black-And-White-Club/quiz-league/app/modules/economy/infrastructure/repositories"
	userdb "github.com/Black-And-White-Club/quiz-league/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/quiz-league/pkg/pagination"
	"github.com/google/uuid"
)

// FakeService implements competitionservice.Service. Unset funcs return zero values.
type FakeService struct {
	CloseCycleFunc          func(ctx context.Context, today time.Time) (*competitionservice.CycleReport, error)
	OpenCycleFunc           func(ctx context.Context, today time.Time) (*competitionservice.CycleReport, error)
	ListLeaguesFunc         func(ctx context.Context) ([]competitiondb.League, error)
	GetLeagueFunc           func(ctx context.Context, id int64) (*competitiondb.League, error)
	CreateLeagueFunc        func(ctx context.Context, league *competitiondb.League) (*competitiondb.League, error)
	UpdateLeagueFunc        func(ctx context.Context, league *competitiondb.League) (*competitiondb.League, error)
	DeleteLeagueFunc        func(ctx context.Context, id int64) error
	LeagueLeaderboardFunc   func(ctx context.Context, leagueID int64, page pagination.Page) (pagination.Result[userdb.Profile], error)
	ListWeeksFunc           func(ctx context.Context, status string) ([]competitiondb.Week, error)
	GetDivisionFunc         func(ctx context.Context, id int64) (*competitiondb.Division, error)
	ListUserDivisionsFunc   func(ctx context.Context, userID uuid.UUID, filter competitiondb.DivisionFilter) ([]competitiondb.Division, error)
	DivisionLeaderboardFunc func(ctx context.Context, divisionID int64, page pagination.Page) (pagination.Result[competitiondb.DivisionMembership], error)
	DivisionChartFunc       func(ctx context.Context, divisionID int64) ([]byte, error)
	ExportDivisionFunc      func(ctx context.Context, divisionID int64) ([]byte, error)
}

var _ competitionservice.Service = (*FakeService)(nil)

func (f *FakeService) CloseCycle(ctx context.Context, today time.Time) (*competitionservice.CycleReport, error) {
	if f.CloseCycleFunc != nil {
		return f.CloseCycleFunc(ctx, today)
	}
	return &competitionservice.CycleReport{Cycle: competitionservice.CycleClose}, nil
}

func (f *FakeService) OpenCycle(ctx context.Context, today time.Time) (*competitionservice.CycleReport, error) {
	if f.OpenCycleFunc != nil {
		return f.OpenCycleFunc(ctx, today)
	}
	return &competitionservice.CycleReport{Cycle: competitionservice.CycleOpen}, nil
}

func (f *FakeService) ListLeagues(ctx context.Context) ([]competitiondb.League, error) {
	if f.ListLeaguesFunc != nil {
		return f.ListLeaguesFunc(ctx)
	}
	return nil, nil
}

func (f *FakeService) GetLeague(ctx context.Context, id int64) (*competitiondb.League, error) {
	if f.GetLeagueFunc != nil {
		return f.GetLeagueFunc(ctx, id)
	}
	return nil, competitionservice.ErrLeagueNotFound
}

func (f *FakeService) CreateLeague(ctx context.Context, league *competitiondb.League) (*competitiondb.League, error) {
	if f.CreateLeagueFunc != nil {
		return f.CreateLeagueFunc(ctx, league)
	}
	return league, nil
}

func (f *FakeService) UpdateLeague(ctx context.Context, league *competitiondb.League) (*competitiondb.League, error) {
	if f.UpdateLeagueFunc != nil {
		return f.UpdateLeagueFunc(ctx, league)
	}
	return league, nil
}

func (f *FakeService) DeleteLeague(ctx context.Context, id int64) error {
	if f.DeleteLeagueFunc != nil {
		return f.DeleteLeagueFunc(ctx, id)
	}
	return nil
}

func (f *FakeService) LeagueLeaderboard(ctx context.Context, leagueID int64, page pagination.Page) (pagination.Result[userdb.Profile], error) {
	if f.LeagueLeaderboardFunc != nil {
		return f.LeagueLeaderboardFunc(ctx, leagueID, page)
	}
	return pagination.NewResult[userdb.Profile](page, 0, nil), nil
}

func (f *FakeService) ListWeeks(ctx context.Context, status string) ([]competitiondb.Week, error) {
	if f.ListWeeksFunc != nil {
		return f.ListWeeksFunc(ctx, status)
	}
	return nil, nil
}

func (f *FakeService) GetDivision(ctx context.Context, id int64) (*competitiondb.Division, error) {
	if f.GetDivisionFunc != nil {
		return f.GetDivisionFunc(ctx, id)
	}
	return nil, competitionservice.ErrDivisionNotFound
}

func (f *FakeService) ListUserDivisions(ctx context.Context, userID uuid.UUID, filter competitiondb.DivisionFilter) ([]competitiondb.Division, error) {
	if f.ListUserDivisionsFunc != nil {
		return f.ListUserDivisionsFunc(ctx, userID, filter)
	}
	return nil, nil
}

func (f *FakeService) DivisionLeaderboard(ctx context.Context, divisionID int64, page pagination.Page) (pagination.Result[competitiondb.DivisionMembership], error) {
	if f.DivisionLeaderboardFunc != nil {
		return f.DivisionLeaderboardFunc(ctx, divisionID, page)
	}
	return pagination.NewResult[competitiondb.DivisionMembership](page, 0, nil), nil
}

func (f *FakeService) DivisionChart(ctx context.Context, divisionID int64) ([]byte, error) {
	if f.DivisionChartFunc != nil {
		return f.DivisionChartFunc(ctx, divisionID)
	}
	return nil, nil
}

func (f *FakeService) ExportDivision(ctx context.Context, divisionID int64) ([]byte, error) {
	if f.ExportDivisionFunc != nil {
		return f.ExportDivisionFunc(ctx, divisionID)
	}
	return nil, nil
}

// FakeEconomy implements economyservice.Service.
type FakeEconomy struct {
	RecordTransactionFunc func(ctx context.Context, req economyservice.RecordTransactionRequest) (*economydb.DiamondTransaction, error)
	ListTransactionsFunc  func(ctx context.Context, userID uuid.UUID, page pagination.Page) (pagination.Result[economydb.DiamondTransaction], error)
}

var _ economyservice.Service = (*FakeEconomy)(nil)

func (f *FakeEconomy) RecordTransaction(ctx context.Context, req economyservice.RecordTransactionRequest) (*economydb.DiamondTransaction, error) {
	if f.RecordTransactionFunc != nil {
		return f.RecordTransactionFunc(ctx, req)
	}
	return &economydb.DiamondTransaction{UserID: req.UserID, Amount: req.Amount}, nil
}

func (f *FakeEconomy) ListTransactions(ctx context.Context, userID uuid.UUID, page pagination.Page) (pagination.Result[economydb.DiamondTransaction], error) {
	if f.ListTransactionsFunc != nil {
		return f.ListTransactionsFunc(ctx, userID, page)
	}
	return pagination.NewResult[economydb.DiamondTransaction](page, 0, nil), nil
}

type fakeScheduler struct {
	closes []time.Time
	opens  []time.Time
	err    error
}

func (f *fakeScheduler) EnqueueCloseCycle(ctx context.Context, asOf time.Time) error {
	f.closes = append(f.closes, asOf)
	return f.err
}

func (f *fakeScheduler) EnqueueOpenCycle(ctx context.Context, asOf time.Time) error {
	f.opens = append(f.opens, asOf)
	return f.err
}
