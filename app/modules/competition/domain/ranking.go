package competitiondomain

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PromotionStatus is the outcome written to a membership at finalization.
type PromotionStatus string

const (
	StatusPromoted PromotionStatus = "promoted"
	StatusDemoted  PromotionStatus = "demoted"
	StatusStayed   PromotionStatus = "stayed"
)

// Standing is a membership's score snapshot at finalization time.
type Standing struct {
	MembershipID int64
	UserID       uuid.UUID
	WeeklyScore  int
}

// Placement is the finalized result for one membership.
type Placement struct {
	Standing
	Rank   int
	Status PromotionStatus
	// TargetLeagueID is the league the user moves to; zero when staying.
	TargetLeagueID int64
}

// Zones are the number of ranks eligible for promotion and demotion.
type Zones struct {
	Promote int
	Demote  int
}

// ComputeZones sizes the zones for a division of the given size. The top tier
// never promotes and the bottom tier never demotes; otherwise each zone is at
// least one rank. Rounding is half-to-even.
func ComputeZones(league League, ladder Ladder, size int) Zones {
	var z Zones
	if !ladder.IsTop(league.ID) {
		z.Promote = zoneSize(league.PromoteRate, size)
	}
	if !ladder.IsBottom(league.ID) {
		z.Demote = zoneSize(league.DemoteRate, size)
	}
	return z
}

func zoneSize(rate decimal.Decimal, size int) int {
	n := int(rate.Mul(decimal.NewFromInt(int64(size))).RoundBank(0).IntPart())
	return max(n, 1)
}

// SortStandings orders by weekly score descending; ties keep membership id order.
func SortStandings(standings []Standing) []Standing {
	sorted := make([]Standing, len(standings))
	copy(sorted, standings)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].WeeklyScore != sorted[j].WeeklyScore {
			return sorted[i].WeeklyScore > sorted[j].WeeklyScore
		}
		return sorted[i].MembershipID < sorted[j].MembershipID
	})
	return sorted
}

// CompetitionRanks assigns 1-based ranks to standings already sorted by score
// descending. Equal scores share a rank and the next distinct score takes its
// position, so 100, 90, 90, 80 ranks as 1, 2, 2, 4.
func CompetitionRanks(sorted []Standing) []int {
	ranks := make([]int, len(sorted))
	rank := 0
	for i, s := range sorted {
		if i == 0 || s.WeeklyScore != sorted[i-1].WeeklyScore {
			rank = i + 1
		}
		ranks[i] = rank
	}
	return ranks
}

// DecideOutcome applies the zone rules to one ranked membership. Promotion also
// requires the score floor; demotion is by rank alone.
func DecideOutcome(rank, weeklyScore, divisionSize int, zones Zones, promotionMinimumScore int) PromotionStatus {
	if rank <= zones.Promote && weeklyScore >= promotionMinimumScore {
		return StatusPromoted
	}
	if rank > divisionSize-zones.Demote {
		return StatusDemoted
	}
	return StatusStayed
}

// Finalize ranks a division and decides every member's outcome. It is pure:
// calling it twice on the same snapshot yields the same placements.
func Finalize(league League, ladder Ladder, divisionSize int, standings []Standing) []Placement {
	sorted := SortStandings(standings)
	ranks := CompetitionRanks(sorted)
	zones := ComputeZones(league, ladder, divisionSize)

	placements := make([]Placement, len(sorted))
	for i, s := range sorted {
		p := Placement{
			Standing: s,
			Rank:     ranks[i],
			Status:   DecideOutcome(ranks[i], s.WeeklyScore, divisionSize, zones, league.PromotionMinimumScore),
		}
		switch p.Status {
		case StatusPromoted:
			if next, ok := ladder.Next(league.ID); ok {
				p.TargetLeagueID = next.ID
			} else {
				p.Status = StatusStayed
			}
		case StatusDemoted:
			if prev, ok := ladder.Previous(league.ID); ok {
				p.TargetLeagueID = prev.ID
			} else {
				p.Status = StatusStayed
			}
		}
		placements[i] = p
	}
	return placements
}

// Tally counts placements per outcome.
func Tally(placements []Placement) (promoted, demoted, stayed int) {
	for _, p := range placements {
		switch p.Status {
		case StatusPromoted:
			promoted++
		case StatusDemoted:
			demoted++
		default:
			stayed++
		}
	}
	return promoted, demoted, stayed
}
