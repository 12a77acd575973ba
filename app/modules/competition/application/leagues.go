package competitionservice

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	competitiondomain "github.com/Black-And-White-Club/quiz-league/app/modules/competition/domain"
	competitiondb "github.com/Black-And-White-Club/quiz-league/app/modules/competition/infrastructure/repositories"
	"github.com/Black-And-White-Club/quiz-league/pkg/results"
	"github.com/uptrace/bun"
)

// ListLeagues returns the ladder lowest tier first.
func (s *CompetitionService) ListLeagues(ctx context.Context) ([]competitiondb.League, error) {
	result, err := withTelemetry(s, ctx, "ListLeagues", "all", func(ctx context.Context) (results.OperationResult[[]competitiondb.League, error], error) {
		leagues, err := s.repo.ListLeagues(ctx, nil)
		if err != nil {
			return results.OperationResult[[]competitiondb.League, error]{}, err
		}
		return results.SuccessResult[[]competitiondb.League, error](leagues), nil
	})
	if err != nil {
		return nil, err
	}
	return *result.Success, nil
}

func (s *CompetitionService) GetLeague(ctx context.Context, id int64) (*competitiondb.League, error) {
	result, err := withTelemetry(s, ctx, "GetLeague", strconv.FormatInt(id, 10), func(ctx context.Context) (results.OperationResult[*competitiondb.League, error], error) {
		return s.getLeague(ctx, nil, id)
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

func (s *CompetitionService) getLeague(ctx context.Context, db bun.IDB, id int64) (results.OperationResult[*competitiondb.League, error], error) {
	league, err := s.repo.GetLeague(ctx, db, id)
	if err != nil {
		if errors.Is(err, competitiondb.ErrNotFound) {
			return results.FailureResult[*competitiondb.League, error](ErrLeagueNotFound), nil
		}
		return results.OperationResult[*competitiondb.League, error]{}, err
	}
	return results.SuccessResult[*competitiondb.League, error](league), nil
}

// CreateLeague validates and inserts a league. Its order must not clash with
// an existing tier.
func (s *CompetitionService) CreateLeague(ctx context.Context, league *competitiondb.League) (*competitiondb.League, error) {
	createTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*competitiondb.League, error], error) {
		if failure, err := s.checkLeague(ctx, db, league); err != nil || failure != nil {
			return results.OperationResult[*competitiondb.League, error]{Failure: failure}, err
		}
		if err := s.repo.CreateLeague(ctx, db, league); err != nil {
			return results.OperationResult[*competitiondb.League, error]{}, err
		}
		return results.SuccessResult[*competitiondb.League, error](league), nil
	}

	result, err := withTelemetry(s, ctx, "CreateLeague", league.Name, func(ctx context.Context) (results.OperationResult[*competitiondb.League, error], error) {
		return runInTx(s, ctx, createTx)
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

// UpdateLeague replaces a league's configuration. It waits for any running
// cycle so a cycle never sees a league change halfway.
func (s *CompetitionService) UpdateLeague(ctx context.Context, league *competitiondb.League) (*competitiondb.League, error) {
	updateTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*competitiondb.League, error], error) {
		if err := s.repo.AcquireCycleLock(ctx, db); err != nil {
			return results.OperationResult[*competitiondb.League, error]{}, err
		}
		existing, err := s.getLeague(ctx, db, league.ID)
		if err != nil || existing.IsFailure() {
			return existing, err
		}
		if failure, err := s.checkLeague(ctx, db, league); err != nil || failure != nil {
			return results.OperationResult[*competitiondb.League, error]{Failure: failure}, err
		}
		league.CreatedAt = (*existing.Success).CreatedAt
		if err := s.repo.UpdateLeague(ctx, db, league); err != nil {
			return results.OperationResult[*competitiondb.League, error]{}, err
		}
		return results.SuccessResult[*competitiondb.League, error](league), nil
	}

	result, err := withTelemetry(s, ctx, "UpdateLeague", strconv.FormatInt(league.ID, 10), func(ctx context.Context) (results.OperationResult[*competitiondb.League, error], error) {
		return runInTx(s, ctx, updateTx)
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

// DeleteLeague removes a league no profile or division refers to.
func (s *CompetitionService) DeleteLeague(ctx context.Context, id int64) error {
	deleteTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[bool, error], error) {
		if err := s.repo.AcquireCycleLock(ctx, db); err != nil {
			return results.OperationResult[bool, error]{}, err
		}
		if _, err := s.repo.GetLeague(ctx, db, id); err != nil {
			if errors.Is(err, competitiondb.ErrNotFound) {
				return results.FailureResult[bool, error](ErrLeagueNotFound), nil
			}
			return results.OperationResult[bool, error]{}, err
		}

		members, err := s.users.CountByLeague(ctx, db, id)
		if err != nil {
			return results.OperationResult[bool, error]{}, err
		}
		used, err := s.repo.LeagueHasDivisions(ctx, db, id)
		if err != nil {
			return results.OperationResult[bool, error]{}, err
		}
		if members > 0 || used {
			return results.FailureResult[bool, error](fmt.Errorf("%w: %d profiles", ErrLeagueInUse, members)), nil
		}

		if err := s.repo.DeleteLeague(ctx, db, id); err != nil {
			return results.OperationResult[bool, error]{}, err
		}
		return results.SuccessResult[bool, error](true), nil
	}

	result, err := withTelemetry(s, ctx, "DeleteLeague", strconv.FormatInt(id, 10), func(ctx context.Context) (results.OperationResult[bool, error], error) {
		return runInTx(s, ctx, deleteTx)
	})
	if err != nil {
		return err
	}
	if result.IsFailure() {
		return *result.Failure
	}
	return nil
}

// checkLeague validates the league and that the ladder stays consistent with
// it in place. It returns a failure for invalid input and an error otherwise.
func (s *CompetitionService) checkLeague(ctx context.Context, db bun.IDB, league *competitiondb.League) (*error, error) {
	candidate := toDomainLeague(*league)
	if err := candidate.Validate(); err != nil {
		return &err, nil
	}

	rows, err := s.repo.ListLeagues(ctx, db)
	if err != nil {
		return nil, err
	}
	leagues := []competitiondomain.League{candidate}
	for _, row := range rows {
		if row.ID != league.ID {
			leagues = append(leagues, toDomainLeague(row))
		}
	}
	if _, err := competitiondomain.NewLadder(leagues); err != nil {
		return &err, nil
	}
	return nil, nil
}
