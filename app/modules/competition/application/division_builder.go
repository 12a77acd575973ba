package competitionservice

import (
	"context"
	"fmt"

	competitiondomain "github.com/Black-And-White-Club/quiz-league/app/modules/competition/domain"
	competitiondb "github.com/Black-And-White-Club/quiz-league/app/modules/competition/infrastructure/repositories"
	"github.com/Black-And-White-Club/quiz-league/pkg/observability/attr"
	"github.com/uptrace/bun"
)

// BuildDivisions splits the active users of a league into divisions for a week.
// It must run inside the caller's transaction; any error leaves nothing behind
// once the caller rolls back.
func (s *CompetitionService) BuildDivisions(ctx context.Context, db bun.IDB, league competitiondomain.League, weekID int64) (LeagueReport, error) {
	report := LeagueReport{LeagueID: league.ID, Name: league.Name}

	exists, err := s.repo.DivisionsExist(ctx, db, league.ID, weekID)
	if err != nil {
		return report, fmt.Errorf("failed to check divisions: %w", err)
	}
	if exists {
		return report, fmt.Errorf("%w: league %d week %d", ErrDivisionsAlreadyExist, league.ID, weekID)
	}

	profiles, err := s.users.ListActiveByLeague(ctx, db, league.ID)
	if err != nil {
		return report, fmt.Errorf("failed to list league members: %w", err)
	}

	sizes, err := competitiondomain.DivisionSizes(len(profiles), league.Bounds())
	if err != nil {
		return report, fmt.Errorf("league %q with %d users: %w", league.Name, len(profiles), err)
	}
	if len(sizes) == 0 {
		s.logger.InfoContext(ctx, "League has no active users, no divisions created",
			attr.Int64("league_id", league.ID),
			attr.Int64("week_id", weekID),
		)
		return report, nil
	}

	buckets, err := competitiondomain.AssignRoundRobin(profiles, sizes)
	if err != nil {
		return report, err
	}

	divisions := make([]competitiondb.Division, len(sizes))
	for i, size := range sizes {
		divisions[i] = competitiondb.Division{LeagueID: league.ID, WeekID: weekID, Size: size}
	}
	if err := s.repo.CreateDivisions(ctx, db, divisions); err != nil {
		return report, fmt.Errorf("failed to create divisions: %w", err)
	}

	memberships := make([]competitiondb.DivisionMembership, 0, len(profiles))
	for i, bucket := range buckets {
		for _, p := range bucket {
			memberships = append(memberships, competitiondb.DivisionMembership{
				DivisionID: divisions[i].ID,
				UserID:     p.UserID,
			})
		}
	}
	if err := s.repo.CreateMemberships(ctx, db, memberships); err != nil {
		return report, fmt.Errorf("failed to create memberships: %w", err)
	}

	report.Divisions = len(divisions)
	report.Members = len(memberships)
	s.logger.InfoContext(ctx, "Divisions created",
		attr.Int64("league_id", league.ID),
		attr.Int64("week_id", weekID),
		attr.Int("divisions", report.Divisions),
		attr.Int("members", report.Members),
	)
	return report, nil
}
