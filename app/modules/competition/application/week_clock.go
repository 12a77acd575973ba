package competitionservice

import (
	"context"
	"fmt"
	"time"

	competitiondomain "github.com/Black-And-White-Club/quiz-league/app/modules/competition/domain"
	competitiondb "github.com/Black-And-White-Club/quiz-league/app/modules/competition/infrastructure/repositories"
	"github.com/Black-And-White-Club/quiz-league/pkg/observability/attr"
	"github.com/uptrace/bun"
)

// EndCurrentWeek marks an active week passed. Any other status is left as is.
func (s *CompetitionService) EndCurrentWeek(ctx context.Context, db bun.IDB, week *competitiondb.Week) error {
	dw := toDomainWeek(*week)
	if !dw.MarkPassed() {
		s.logger.WarnContext(ctx, "Week is not active, leaving status unchanged",
			attr.Int64("week_id", week.ID),
			attr.String("status", week.Status),
		)
		return nil
	}
	if err := s.repo.UpdateWeekStatus(ctx, db, week.ID, string(dw.Status)); err != nil {
		return fmt.Errorf("failed to end week %d: %w", week.ID, err)
	}
	week.Status = string(dw.Status)
	return nil
}

// CreateNewWeek inserts the week following previous in upcoming status. A nil
// previous bootstraps week 1 starting today.
func (s *CompetitionService) CreateNewWeek(ctx context.Context, db bun.IDB, previous *competitiondb.Week, today time.Time) (*competitiondb.Week, error) {
	var prev *competitiondomain.Week
	if previous != nil {
		dw := toDomainWeek(*previous)
		prev = &dw
	}

	next, err := competitiondomain.NextWeek(prev, today, s.calendar)
	if err != nil {
		return nil, err
	}

	week := &competitiondb.Week{
		Year:       next.Year,
		WeekNumber: next.WeekNumber,
		StartDate:  next.StartDate,
		EndDate:    next.EndDate,
		Status:     string(next.Status),
	}
	if err := s.repo.CreateWeek(ctx, db, week); err != nil {
		return nil, fmt.Errorf("failed to create week %s: %w", next, err)
	}
	return week, nil
}
