package competitionservice

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	competitiondomain "github.com/Black-And-White-Club/quiz-league/app/modules/competition/domain"
	competitiondb "github.com/Black-And-White-Club/quiz-league/app/modules/competition/infrastructure/repositories"
	userdb "github.com/Black-And-White-Club/quiz-league/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/quiz-league/pkg/pagination"
	"github.com/Black-And-White-Club/quiz-league/pkg/results"
	"github.com/google/uuid"
)

type (
	profilePage    = pagination.Result[userdb.Profile]
	membershipPage = pagination.Result[competitiondb.DivisionMembership]
)

// LeagueLeaderboard pages the profiles of a league by total score.
func (s *CompetitionService) LeagueLeaderboard(ctx context.Context, leagueID int64, page pagination.Page) (profilePage, error) {
	result, err := withTelemetry(s, ctx, "LeagueLeaderboard", strconv.FormatInt(leagueID, 10), func(ctx context.Context) (results.OperationResult[profilePage, error], error) {
		if _, err := s.repo.GetLeague(ctx, nil, leagueID); err != nil {
			if errors.Is(err, competitiondb.ErrNotFound) {
				return results.FailureResult[profilePage, error](ErrLeagueNotFound), nil
			}
			return results.OperationResult[profilePage, error]{}, err
		}
		profiles, count, err := s.users.LeagueLeaderboard(ctx, nil, leagueID, page.Limit(), page.Offset())
		if err != nil {
			return results.OperationResult[profilePage, error]{}, err
		}
		return results.SuccessResult[profilePage, error](pagination.NewResult(page, count, profiles)), nil
	})
	if err != nil {
		return profilePage{}, err
	}
	if result.IsFailure() {
		return profilePage{}, *result.Failure
	}
	return *result.Success, nil
}

// ListWeeks returns weeks by start date. An empty status lists all of them.
func (s *CompetitionService) ListWeeks(ctx context.Context, status string) ([]competitiondb.Week, error) {
	result, err := withTelemetry(s, ctx, "ListWeeks", status, func(ctx context.Context) (results.OperationResult[[]competitiondb.Week, error], error) {
		if status != "" && !competitiondomain.WeekStatus(status).Valid() {
			return results.FailureResult[[]competitiondb.Week, error](fmt.Errorf("%w: %q", ErrInvalidWeekStatus, status)), nil
		}
		weeks, err := s.repo.ListWeeks(ctx, nil, status)
		if err != nil {
			return results.OperationResult[[]competitiondb.Week, error]{}, err
		}
		return results.SuccessResult[[]competitiondb.Week, error](weeks), nil
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

// GetDivision returns a division with its league and week.
func (s *CompetitionService) GetDivision(ctx context.Context, id int64) (*competitiondb.Division, error) {
	result, err := withTelemetry(s, ctx, "GetDivision", strconv.FormatInt(id, 10), func(ctx context.Context) (results.OperationResult[*competitiondb.Division, error], error) {
		return s.getDivision(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

func (s *CompetitionService) getDivision(ctx context.Context, id int64) (results.OperationResult[*competitiondb.Division, error], error) {
	division, err := s.repo.GetDivision(ctx, nil, id)
	if err != nil {
		if errors.Is(err, competitiondb.ErrNotFound) {
			return results.FailureResult[*competitiondb.Division, error](ErrDivisionNotFound), nil
		}
		return results.OperationResult[*competitiondb.Division, error]{}, err
	}
	return results.SuccessResult[*competitiondb.Division, error](division), nil
}

// ListUserDivisions returns the divisions a user was placed in.
func (s *CompetitionService) ListUserDivisions(ctx context.Context, userID uuid.UUID, filter competitiondb.DivisionFilter) ([]competitiondb.Division, error) {
	result, err := withTelemetry(s, ctx, "ListUserDivisions", userID.String(), func(ctx context.Context) (results.OperationResult[[]competitiondb.Division, error], error) {
		divisions, err := s.repo.ListUserDivisions(ctx, nil, userID, filter)
		if err != nil {
			return results.OperationResult[[]competitiondb.Division, error]{}, err
		}
		return results.SuccessResult[[]competitiondb.Division, error](divisions), nil
	})
	if err != nil {
		return nil, err
	}
	return *result.Success, nil
}

// DivisionLeaderboard pages a division's memberships by weekly score.
func (s *CompetitionService) DivisionLeaderboard(ctx context.Context, divisionID int64, page pagination.Page) (membershipPage, error) {
	result, err := withTelemetry(s, ctx, "DivisionLeaderboard", strconv.FormatInt(divisionID, 10), func(ctx context.Context) (results.OperationResult[membershipPage, error], error) {
		division, err := s.getDivision(ctx, divisionID)
		if err != nil {
			return results.OperationResult[membershipPage, error]{}, err
		}
		if division.IsFailure() {
			return results.FailureResult[membershipPage, error](*division.Failure), nil
		}
		memberships, count, err := s.repo.DivisionLeaderboard(ctx, nil, divisionID, page.Limit(), page.Offset())
		if err != nil {
			return results.OperationResult[membershipPage, error]{}, err
		}
		return results.SuccessResult[membershipPage, error](pagination.NewResult(page, count, memberships)), nil
	})
	if err != nil {
		return membershipPage{}, err
	}
	if result.IsFailure() {
		return membershipPage{}, *result.Failure
	}
	return *result.Success, nil
}

// divisionStandings loads a division and all of its memberships by weekly score.
func (s *CompetitionService) divisionStandings(ctx context.Context, divisionID int64) (results.OperationResult[*standingsView, error], error) {
	division, err := s.getDivision(ctx, divisionID)
	if err != nil {
		return results.OperationResult[*standingsView, error]{}, err
	}
	if division.IsFailure() {
		return results.FailureResult[*standingsView, error](*division.Failure), nil
	}
	// limit 0 reads the whole division
	memberships, _, err := s.repo.DivisionLeaderboard(ctx, nil, divisionID, 0, 0)
	if err != nil {
		return results.OperationResult[*standingsView, error]{}, err
	}
	return results.SuccessResult[*standingsView, error](&standingsView{Division: *division.Success, Memberships: memberships}), nil
}

type standingsView struct {
	Division    *competitiondb.Division
	Memberships []competitiondb.DivisionMembership
}

func (v *standingsView) title() string {
	d := v.Division
	title := fmt.Sprintf("Division %d", d.ID)
	if d.League != nil {
		title = fmt.Sprintf("%s - %s", d.League.Name, title)
	}
	if d.Week != nil {
		title = fmt.Sprintf("%s (%d/W%d)", title, d.Week.Year, d.Week.WeekNumber)
	}
	return title
}
