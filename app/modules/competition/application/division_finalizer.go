package competitionservice

import (
	"context"
	"fmt"

	competitiondomain "github.com/Black-And-White-Club/quiz-league/app/modules/competition/domain"
	competitiondb "github.com/Black-And-White-Club/quiz-league/app/modules/competition/infrastructure/repositories"
	economyservice "github.com/Black-And-White-Club/quiz-league/app/modules/economy/application"
	economydomain "github.com/Black-And-White-Club/quiz-league/app/modules/economy/domain"
	economydb "github.com/Black-And-White-Club/quiz-league/app/modules/economy/infrastructure/repositories"
	userdb "github.com/Black-And-White-Club/quiz-league/app/modules/user/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DivisionOutcome is what finalizing one division decided.
type DivisionOutcome struct {
	DivisionID int64
	LeagueID   int64
	Promoted   int
	Demoted    int
	Stayed     int
	Moves      []Move
}

// FinalizeDivision ranks a division, moves promoted and demoted members to the
// adjacent league and charges the demotion penalty. It writes three batches
// (rankings, profiles, ledger rows) on db, which must be the caller's
// transaction.
func (s *CompetitionService) FinalizeDivision(ctx context.Context, db bun.IDB, ladder competitiondomain.Ladder, division competitiondb.Division) (*DivisionOutcome, error) {
	league, ok := ladder.Get(division.LeagueID)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrLeagueNotFound, division.LeagueID)
	}
	outcome := &DivisionOutcome{DivisionID: division.ID, LeagueID: league.ID}

	memberships, err := s.repo.LockDivisionMemberships(ctx, db, division.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock memberships: %w", err)
	}
	if len(memberships) == 0 {
		return outcome, nil
	}

	standings := make([]competitiondomain.Standing, len(memberships))
	for i, m := range memberships {
		if m.RankInDivision != nil {
			return nil, fmt.Errorf("%w: division %d", ErrDivisionAlreadyFinalized, division.ID)
		}
		standings[i] = competitiondomain.Standing{MembershipID: m.ID, UserID: m.UserID, WeeklyScore: m.WeeklyScore}
	}

	placements := competitiondomain.Finalize(league, ladder, division.Size, standings)
	outcome.Promoted, outcome.Demoted, outcome.Stayed = competitiondomain.Tally(placements)

	profiles, err := s.lockMovedProfiles(ctx, db, placements)
	if err != nil {
		return nil, err
	}

	rankings := make([]competitiondb.DivisionMembership, len(placements))
	updated := make([]userdb.Profile, 0, len(profiles))
	var penalties []economydb.DiamondTransaction

	for i, p := range placements {
		rank, status := p.Rank, string(p.Status)
		rankings[i] = competitiondb.DivisionMembership{
			ID:              p.MembershipID,
			RankInDivision:  &rank,
			PromotionStatus: &status,
		}
		if p.Status == competitiondomain.StatusStayed {
			continue
		}

		profile, ok := profiles[p.UserID]
		if !ok {
			return nil, fmt.Errorf("profile %s: %w", p.UserID, userdb.ErrNotFound)
		}
		target := p.TargetLeagueID
		profile.CurrentLeagueID = &target

		move := Move{
			UserID:       p.UserID,
			DivisionID:   division.ID,
			FromLeagueID: league.ID,
			ToLeagueID:   target,
			Status:       status,
			Rank:         p.Rank,
		}

		if p.Status == competitiondomain.StatusDemoted {
			entry, err := economydomain.BuildTransaction(
				profile.Diamonds,
				league.DemotionPenalty,
				economydomain.Deduction,
				economydomain.ReasonDemotion,
				fmt.Sprintf("Demoted from %s", league.Name),
				true,
			)
			if err != nil {
				return nil, fmt.Errorf("failed to build penalty for %s: %w", p.UserID, err)
			}
			profile.Diamonds = entry.BalanceAfter
			penalties = append(penalties, economyservice.ToModel(p.UserID, entry))
			move.Penalty = entry.Amount
		}

		updated = append(updated, profile)
		outcome.Moves = append(outcome.Moves, move)
	}

	n, err := s.repo.ApplyRankings(ctx, db, rankings)
	if err != nil {
		return nil, fmt.Errorf("failed to apply rankings: %w", err)
	}
	if n != len(rankings) {
		return nil, fmt.Errorf("%w: division %d ranked %d of %d", ErrDivisionAlreadyFinalized, division.ID, n, len(rankings))
	}

	if len(updated) > 0 {
		if err := s.users.BulkUpdateLeagueAndDiamonds(ctx, db, updated); err != nil {
			return nil, fmt.Errorf("failed to move profiles: %w", err)
		}
	}
	if len(penalties) > 0 {
		if err := s.ledger.InsertTransactions(ctx, db, penalties); err != nil {
			return nil, fmt.Errorf("failed to record penalties: %w", err)
		}
	}
	return outcome, nil
}

// lockMovedProfiles locks the profiles of every member changing league.
func (s *CompetitionService) lockMovedProfiles(ctx context.Context, db bun.IDB, placements []competitiondomain.Placement) (map[uuid.UUID]userdb.Profile, error) {
	var ids []uuid.UUID
	for _, p := range placements {
		if p.Status != competitiondomain.StatusStayed {
			ids = append(ids, p.UserID)
		}
	}
	profiles := make(map[uuid.UUID]userdb.Profile, len(ids))
	if len(ids) == 0 {
		return profiles, nil
	}

	rows, err := s.users.LockProfiles(ctx, db, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to lock profiles: %w", err)
	}
	for _, row := range rows {
		profiles[row.UserID] = row
	}
	return profiles, nil
}
