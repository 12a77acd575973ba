package competitiondomain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func testLeague(id int64, name string, order int) League {
	return League{
		ID:                    id,
		Name:                  name,
		Order:                 order,
		PromoteRate:           decimal.RequireFromString("0.20"),
		DemoteRate:            decimal.RequireFromString("0.30"),
		PromotionMinimumScore: 0,
		DemotionPenalty:       50,
		TargetDivisionSize:    10,
		MinDivisionSize:       8,
		MaxDivisionSize:       12,
	}
}

func testLadder(t *testing.T) (Ladder, League, League, League) {
	t.Helper()
	bronze := testLeague(1, "Bronze", 1)
	silver := testLeague(2, "Silver", 2)
	gold := testLeague(3, "Gold", 3)
	ladder, err := NewLadder([]League{gold, bronze, silver})
	require.NoError(t, err)
	return ladder, bronze, silver, gold
}
