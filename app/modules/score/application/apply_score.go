package scoreservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	competitiondomain "github.com/Black-And-White-Club/quiz-league/app/modules/competition/domain"
	competitiondb "github.com/Black-And-White-Club/quiz-league/app/modules/competition/infrastructure/repositories"
	userservice "github.com/Black-And-White-Club/quiz-league/app/modules/user/application"
	userdb "github.com/Black-And-White-Club/quiz-league/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/quiz-league/pkg/observability/attr"
	"github.com/Black-And-White-Club/quiz-league/pkg/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ApplyScoreDelta runs in one transaction. The membership row is locked
// before the profile row is touched, the same order the division finalizer
// takes its locks in.
func (s *ScoreService) ApplyScoreDelta(ctx context.Context, userID uuid.UUID, delta int, at time.Time) (*ApplyResult, error) {
	applyTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*ApplyResult, error], error) {
		return s.applyScoreDeltaLogic(ctx, db, userID, delta, at)
	}

	result, err := withTelemetry(s, ctx, "ApplyScoreDelta", userID.String(), func(ctx context.Context) (results.OperationResult[*ApplyResult, error], error) {
		if delta <= 0 {
			return results.FailureResult[*ApplyResult, error](fmt.Errorf("%w: %d", ErrNonPositiveDelta, delta)), nil
		}
		return runInTx(s, ctx, applyTx)
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

func (s *ScoreService) applyScoreDeltaLogic(ctx context.Context, db bun.IDB, userID uuid.UUID, delta int, at time.Time) (results.OperationResult[*ApplyResult, error], error) {
	profile, err := s.users.GetProfile(ctx, db, userID)
	if err != nil {
		if errors.Is(err, userdb.ErrNotFound) {
			return results.FailureResult[*ApplyResult, error](ErrProfileNotFound), nil
		}
		return results.OperationResult[*ApplyResult, error]{}, err
	}

	res := &ApplyResult{UserID: userID, Delta: delta}

	if err := s.applyWeekly(ctx, db, res, at); err != nil {
		return results.OperationResult[*ApplyResult, error]{}, err
	}

	total, err := s.users.IncrementTotalScore(ctx, db, userID, delta)
	if err != nil {
		return results.OperationResult[*ApplyResult, error]{}, err
	}
	res.TotalScore = total

	levelID, changed, err := userservice.RecomputeLevel(ctx, s.users, db, profile, total)
	if err != nil {
		return results.OperationResult[*ApplyResult, error]{}, err
	}
	res.LevelID = levelID
	res.LevelChanged = changed

	return results.SuccessResult[*ApplyResult, error](res), nil
}

// applyWeekly adds the delta to the membership of the active week covering at,
// unless that membership was already ranked.
func (s *ScoreService) applyWeekly(ctx context.Context, db bun.IDB, res *ApplyResult, at time.Time) error {
	date := competitiondomain.DateOf(at.In(s.location))

	week, err := s.competition.GetActiveWeekCovering(ctx, db, date)
	if err != nil {
		if errors.Is(err, competitiondb.ErrNotFound) {
			res.WeeklySkip = WeeklySkipNoActiveWeek
			s.logger.DebugContext(ctx, "No active week covers score date",
				attr.UserID("user_id", res.UserID),
				attr.Time("date", date),
			)
			return nil
		}
		return err
	}
	res.WeekID = &week.ID

	membership, err := s.competition.LockMembershipForWeek(ctx, db, res.UserID, week.ID)
	if err != nil {
		if errors.Is(err, competitiondb.ErrNotFound) {
			res.WeeklySkip = WeeklySkipNoMembership
			return nil
		}
		return err
	}
	res.MembershipID = &membership.ID

	if membership.RankInDivision != nil {
		res.WeeklySkip = WeeklySkipFrozen
		s.logger.InfoContext(ctx, "Weekly score frozen, applying total only",
			attr.UserID("user_id", res.UserID),
			attr.Int64("membership_id", membership.ID),
		)
		return nil
	}

	if err := s.competition.IncrementWeeklyScore(ctx, db, membership.ID, res.Delta); err != nil {
		return err
	}
	res.WeeklyApplied = true
	return nil
}
