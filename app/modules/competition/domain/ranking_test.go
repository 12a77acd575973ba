package competitiondomain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func standings(scores ...int) []Standing {
	out := make([]Standing, len(scores))
	for i, s := range scores {
		out[i] = Standing{MembershipID: int64(i + 1), UserID: uuid.New(), WeeklyScore: s}
	}
	return out
}

func TestCompetitionRanks(t *testing.T) {
	sorted := SortStandings(standings(80, 100, 90, 90))
	assert.Equal(t, []int{1, 2, 2, 4}, CompetitionRanks(sorted))
	assert.Equal(t, int64(3), sorted[1].MembershipID, "ties keep membership order")

	assert.Equal(t, []int{1, 1, 1}, CompetitionRanks(SortStandings(standings(0, 0, 0))))
	assert.Empty(t, CompetitionRanks(nil))
}

func TestComputeZones(t *testing.T) {
	ladder, bronze, silver, gold := testLadder(t)

	assert.Equal(t, Zones{Promote: 2, Demote: 3}, ComputeZones(silver, ladder, 10))
	assert.Equal(t, Zones{Promote: 2, Demote: 0}, ComputeZones(bronze, ladder, 10))
	assert.Equal(t, Zones{Promote: 0, Demote: 3}, ComputeZones(gold, ladder, 10))

	half := silver
	half.PromoteRate = decimal.RequireFromString("0.25")
	half.DemoteRate = decimal.RequireFromString("0.35")
	assert.Equal(t, Zones{Promote: 2, Demote: 4}, ComputeZones(half, ladder, 10), "half rounds to even")

	tiny := silver
	tiny.PromoteRate = decimal.RequireFromString("0.01")
	tiny.DemoteRate = decimal.RequireFromString("0.01")
	assert.Equal(t, Zones{Promote: 1, Demote: 1}, ComputeZones(tiny, ladder, 10), "zones are at least one rank")
}

func TestFinalize(t *testing.T) {
	ladder, bronze, silver, gold := testLadder(t)

	tests := []struct {
		name      string
		league    League
		standings []Standing
		want      map[int64]PromotionStatus
		targets   map[int64]int64
	}{
		{
			name:      "middle tier promotes and demotes",
			league:    silver,
			standings: standings(100, 90, 80, 70, 60, 50, 40, 30, 20, 10),
			want: map[int64]PromotionStatus{
				1: StatusPromoted, 2: StatusPromoted,
				3: StatusStayed, 4: StatusStayed, 5: StatusStayed, 6: StatusStayed, 7: StatusStayed,
				8: StatusDemoted, 9: StatusDemoted, 10: StatusDemoted,
			},
			targets: map[int64]int64{1: gold.ID, 2: gold.ID, 8: bronze.ID, 9: bronze.ID, 10: bronze.ID},
		},
		{
			name:      "top tier never promotes",
			league:    gold,
			standings: standings(100, 90, 80, 70, 60, 50, 40, 30, 20, 10),
			want: map[int64]PromotionStatus{
				1: StatusStayed, 2: StatusStayed, 8: StatusDemoted,
			},
		},
		{
			name:      "bottom tier never demotes",
			league:    bronze,
			standings: standings(100, 90, 80, 70, 60, 50, 40, 30, 20, 10),
			want: map[int64]PromotionStatus{
				1: StatusPromoted, 10: StatusStayed,
			},
		},
		{
			name: "score floor blocks promotion",
			league: func() League {
				l := silver
				l.PromotionMinimumScore = 95
				return l
			}(),
			standings: standings(100, 90, 80, 70, 60, 50, 40, 30, 20, 10),
			want: map[int64]PromotionStatus{
				1: StatusPromoted, 2: StatusStayed,
			},
		},
		{
			name:      "tied scores share the outcome",
			league:    silver,
			standings: standings(100, 90, 90, 80, 70, 60, 50, 40, 30, 20),
			want: map[int64]PromotionStatus{
				1: StatusPromoted, 2: StatusPromoted, 3: StatusPromoted, 4: StatusStayed,
			},
		},
		{
			name:      "all zero scores share the top rank",
			league:    silver,
			standings: standings(0, 0, 0, 0, 0, 0, 0, 0, 0, 0),
			want: map[int64]PromotionStatus{
				1: StatusPromoted, 10: StatusPromoted,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			placements := Finalize(tt.league, ladder, len(tt.standings), tt.standings)
			require.Len(t, placements, len(tt.standings))

			byID := make(map[int64]Placement, len(placements))
			for _, p := range placements {
				byID[p.MembershipID] = p
			}
			for id, status := range tt.want {
				assert.Equal(t, status, byID[id].Status, "membership %d", id)
			}
			for id, target := range tt.targets {
				assert.Equal(t, target, byID[id].TargetLeagueID, "membership %d", id)
			}
			for _, p := range placements {
				if p.Status == StatusStayed {
					assert.Zero(t, p.TargetLeagueID)
				}
			}
		})
	}
}

func TestFinalizeIsDeterministic(t *testing.T) {
	ladder, _, silver, _ := testLadder(t)
	snapshot := standings(40, 70, 70, 10, 90, 0, 55, 55, 30, 80)

	first := Finalize(silver, ladder, len(snapshot), snapshot)
	second := Finalize(silver, ladder, len(snapshot), snapshot)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("finalize not deterministic (-first +second):\n%s", diff)
	}
}

func TestFinalizeTiesNeverSplit(t *testing.T) {
	ladder, _, silver, _ := testLadder(t)
	snapshot := standings(50, 50, 50, 50, 50, 40, 40, 40, 40, 40)

	placements := Finalize(silver, ladder, len(snapshot), snapshot)
	byScore := make(map[int]PromotionStatus)
	for _, p := range placements {
		if prev, ok := byScore[p.WeeklyScore]; ok {
			assert.Equal(t, prev, p.Status, "score %d split across outcomes", p.WeeklyScore)
		}
		byScore[p.WeeklyScore] = p.Status
	}
}

func TestTally(t *testing.T) {
	promoted, demoted, stayed := Tally([]Placement{
		{Status: StatusPromoted}, {Status: StatusDemoted}, {Status: StatusStayed}, {Status: StatusStayed},
	})
	assert.Equal(t, 1, promoted)
	assert.Equal(t, 1, demoted)
	assert.Equal(t, 2, stayed)
}
