package competitionservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	competitiondomain "github.com/Black-And-White-Club/quiz-league/app/modules/competition/domain"
	competitiondb "github.com/Black-And-White-Club/quiz-league/app/modules/competition/infrastructure/repositories"
	"github.com/Black-And-White-Club/quiz-league/pkg/eventbus"
	competitionevents "github.com/Black-And-White-Club/quiz-league/pkg/events/competition"
	"github.com/Black-And-White-Club/quiz-league/pkg/observability/attr"
	"github.com/Black-And-White-Club/quiz-league/pkg/results"
	"github.com/uptrace/bun"
)

// CloseCycle ends the active week whose end date is on or before today and
// finalizes all of its divisions in one transaction. No such week is a no-op.
// Any division failing rolls the whole close back.
func (s *CompetitionService) CloseCycle(ctx context.Context, today time.Time) (*CycleReport, error) {
	closeTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*CycleReport, error], error) {
		return s.closeCycleLogic(ctx, db, today)
	}

	result, err := withTelemetry(s, ctx, "CloseCycle", competitiondomain.DateOf(today).Format(time.DateOnly), func(ctx context.Context) (results.OperationResult[*CycleReport, error], error) {
		return runInTx(s, ctx, closeTx)
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}

	report := *result.Success
	s.recordCycle(ctx, report)
	if !report.Skipped {
		s.publishWeekClosed(ctx, report)
	}
	return report, nil
}

func (s *CompetitionService) closeCycleLogic(ctx context.Context, db bun.IDB, today time.Time) (results.OperationResult[*CycleReport, error], error) {
	if err := s.repo.AcquireCycleLock(ctx, db); err != nil {
		return results.OperationResult[*CycleReport, error]{}, fmt.Errorf("failed to acquire cycle lock: %w", err)
	}

	week, err := s.repo.GetActiveWeekEndedBy(ctx, db, competitiondomain.DateOf(today))
	if err != nil {
		if errors.Is(err, competitiondb.ErrNotFound) {
			s.logger.WarnContext(ctx, "No active week has ended, nothing to close",
				attr.ExtractCorrelationID(ctx),
				attr.Time("today", today),
			)
			pending, err := s.openPending(ctx, db)
			if err != nil {
				return results.OperationResult[*CycleReport, error]{}, err
			}
			return results.SuccessResult[*CycleReport, error](&CycleReport{Cycle: CycleClose, Skipped: true, OpenPending: pending}), nil
		}
		return results.OperationResult[*CycleReport, error]{}, fmt.Errorf("failed to find active week: %w", err)
	}

	ladder, err := s.loadLadder(ctx, db)
	if err != nil {
		return results.OperationResult[*CycleReport, error]{}, err
	}

	if err := s.EndCurrentWeek(ctx, db, week); err != nil {
		return results.OperationResult[*CycleReport, error]{}, err
	}

	divisions, err := s.repo.ListDivisionsByWeek(ctx, db, week.ID)
	if err != nil {
		return results.OperationResult[*CycleReport, error]{}, fmt.Errorf("failed to list divisions: %w", err)
	}

	report := &CycleReport{Cycle: CycleClose, Week: week}
	leagues := map[int64]*LeagueReport{}
	for _, division := range divisions {
		outcome, err := s.FinalizeDivision(ctx, db, ladder, division)
		if err != nil {
			s.logger.ErrorContext(ctx, "Division finalization failed, aborting close",
				attr.ExtractCorrelationID(ctx),
				attr.Int64("week_id", week.ID),
				attr.Int64("league_id", division.LeagueID),
				attr.Int64("division_id", division.ID),
				attr.Error(err),
			)
			return results.OperationResult[*CycleReport, error]{}, fmt.Errorf("division %d: %w", division.ID, err)
		}

		lr, ok := leagues[division.LeagueID]
		if !ok {
			league, _ := ladder.Get(division.LeagueID)
			lr = &LeagueReport{LeagueID: league.ID, Name: league.Name}
			leagues[division.LeagueID] = lr
		}
		lr.Divisions++
		lr.Members += outcome.Promoted + outcome.Demoted + outcome.Stayed
		lr.Promoted += outcome.Promoted
		lr.Demoted += outcome.Demoted
		lr.Stayed += outcome.Stayed
		report.Moves = append(report.Moves, outcome.Moves...)
	}

	for _, league := range ladder.Leagues() {
		if lr, ok := leagues[league.ID]; ok {
			report.add(*lr)
		}
	}
	return results.SuccessResult[*CycleReport, error](report), nil
}

// openPending reports whether the latest week is passed with no successor,
// which happens when a close committed but its open never ran.
func (s *CompetitionService) openPending(ctx context.Context, db bun.IDB) (bool, error) {
	latest, err := s.repo.GetLatestWeek(ctx, db)
	if err != nil {
		if errors.Is(err, competitiondb.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to find latest week: %w", err)
	}
	if latest.Status != string(competitiondomain.WeekStatusPassed) {
		return false, nil
	}
	s.logger.WarnContext(ctx, "Latest week is passed and no week follows it",
		attr.ExtractCorrelationID(ctx),
		attr.Int64("week_id", latest.ID),
	)
	return true, nil
}

// OpenCycle creates the week after the latest one, builds divisions for every
// league and activates the week, all in one transaction.
func (s *CompetitionService) OpenCycle(ctx context.Context, today time.Time) (*CycleReport, error) {
	openTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*CycleReport, error], error) {
		return s.openCycleLogic(ctx, db, today)
	}

	result, err := withTelemetry(s, ctx, "OpenCycle", competitiondomain.DateOf(today).Format(time.DateOnly), func(ctx context.Context) (results.OperationResult[*CycleReport, error], error) {
		return runInTx(s, ctx, openTx)
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}

	report := *result.Success
	s.recordCycle(ctx, report)
	s.publishWeekOpened(ctx, report)
	return report, nil
}

func (s *CompetitionService) openCycleLogic(ctx context.Context, db bun.IDB, today time.Time) (results.OperationResult[*CycleReport, error], error) {
	if err := s.repo.AcquireCycleLock(ctx, db); err != nil {
		return results.OperationResult[*CycleReport, error]{}, fmt.Errorf("failed to acquire cycle lock: %w", err)
	}

	latest, err := s.repo.GetLatestWeek(ctx, db)
	if err != nil {
		if !errors.Is(err, competitiondb.ErrNotFound) {
			return results.OperationResult[*CycleReport, error]{}, fmt.Errorf("failed to find latest week: %w", err)
		}
		latest = nil
	}

	week, err := s.CreateNewWeek(ctx, db, latest, today)
	if err != nil {
		return results.OperationResult[*CycleReport, error]{}, err
	}

	ladder, err := s.loadLadder(ctx, db)
	if err != nil {
		return results.OperationResult[*CycleReport, error]{}, err
	}

	report := &CycleReport{Cycle: CycleOpen, Week: week}
	for _, league := range ladder.Leagues() {
		lr, err := s.BuildDivisions(ctx, db, league, week.ID)
		if err != nil {
			s.logger.ErrorContext(ctx, "Division building failed, aborting open",
				attr.ExtractCorrelationID(ctx),
				attr.Int64("week_id", week.ID),
				attr.Int64("league_id", league.ID),
				attr.Error(err),
			)
			return results.OperationResult[*CycleReport, error]{}, fmt.Errorf("league %d: %w", league.ID, err)
		}
		report.add(lr)
	}

	if err := s.repo.UpdateWeekStatus(ctx, db, week.ID, string(competitiondomain.WeekStatusActive)); err != nil {
		return results.OperationResult[*CycleReport, error]{}, fmt.Errorf("failed to activate week %d: %w", week.ID, err)
	}
	week.Status = string(competitiondomain.WeekStatusActive)

	return results.SuccessResult[*CycleReport, error](report), nil
}

func (r *CycleReport) add(lr LeagueReport) {
	r.Leagues = append(r.Leagues, lr)
	r.Divisions += lr.Divisions
	r.Members += lr.Members
	r.Promoted += lr.Promoted
	r.Demoted += lr.Demoted
	r.Stayed += lr.Stayed
}

func (s *CompetitionService) recordCycle(ctx context.Context, report *CycleReport) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordCycleRun(ctx, report.Cycle, report.Skipped)
	for _, lr := range report.Leagues {
		switch report.Cycle {
		case CycleClose:
			s.metrics.RecordOutcomes(ctx, lr.Name, lr.Promoted, lr.Demoted, lr.Stayed)
		case CycleOpen:
			s.metrics.RecordDivisionsCreated(ctx, lr.Name, lr.Divisions, lr.Members)
		}
	}
}

// publishWeekClosed runs after commit. A failed publish is logged and the
// committed cycle stands.
func (s *CompetitionService) publishWeekClosed(ctx context.Context, report *CycleReport) {
	week := report.Week
	for _, m := range report.Moves {
		s.publish(ctx, competitionevents.MemberMovedV1, &competitionevents.MemberMovedPayloadV1{
			UserID:       m.UserID,
			WeekID:       week.ID,
			DivisionID:   m.DivisionID,
			FromLeagueID: m.FromLeagueID,
			ToLeagueID:   m.ToLeagueID,
			Status:       m.Status,
			Rank:         m.Rank,
			Penalty:      m.Penalty,
		})
	}
	s.publish(ctx, competitionevents.WeekClosedV1, &competitionevents.WeekClosedPayloadV1{
		WeekID:     week.ID,
		Year:       week.Year,
		WeekNumber: week.WeekNumber,
		Divisions:  report.Divisions,
		Promoted:   report.Promoted,
		Demoted:    report.Demoted,
		Stayed:     report.Stayed,
	})
}

func (s *CompetitionService) publishWeekOpened(ctx context.Context, report *CycleReport) {
	week := report.Week
	s.publish(ctx, competitionevents.WeekOpenedV1, &competitionevents.WeekOpenedPayloadV1{
		WeekID:     week.ID,
		Year:       week.Year,
		WeekNumber: week.WeekNumber,
		StartDate:  week.StartDate,
		EndDate:    week.EndDate,
		Divisions:  report.Divisions,
		Members:    report.Members,
	})
}

func (s *CompetitionService) publish(ctx context.Context, topic string, payload any) {
	if s.publisher == nil {
		return
	}
	msg, err := eventbus.NewJSONMessage(ctx, payload)
	if err == nil {
		err = s.publisher.Publish(topic, msg)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish cycle event",
			attr.ExtractCorrelationID(ctx),
			attr.String("topic", topic),
			attr.Error(err),
		)
	}
}
