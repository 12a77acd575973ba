package main

import (
	"bytes"
	"strings"
	"testing"

	competitiondb "github.com/Black-And-White-Club/quiz-league/app/modules/competition/infrastructure/repositories"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedYAML = `
leagues:
  - name: Bronze
    order: 1
    promote_rate: "0.20"
    demote_rate: "0.00"
    target_division_size: 30
    min_division_size: 20
    max_division_size: 40
  - name: Silver
    order: 2
    promote_rate: "0.15"
    demote_rate: "0.25"
    promotion_minimum_score: 10
    demotion_penalty: 5
    target_division_size: 25
    min_division_size: 15
    max_division_size: 35
`

func TestReadSeedFile(t *testing.T) {
	leagues, err := readSeedFile(strings.NewReader(seedYAML))
	require.NoError(t, err)
	require.Len(t, leagues, 2)

	assert.Equal(t, "Silver", leagues[1].Name)
	assert.True(t, decimal.RequireFromString("0.15").Equal(leagues[1].PromoteRate))
	assert.True(t, decimal.RequireFromString("0.25").Equal(leagues[1].DemoteRate))
	assert.Equal(t, 10, leagues[1].PromotionMinimumScore)
	assert.Equal(t, 5, leagues[1].DemotionPenalty)
	assert.Equal(t, 15, leagues[1].MinDivisionSize)
}

func TestReadSeedFileRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: "leagues: []\n"},
		{name: "unknown field", input: "leagues:\n  - name: Bronze\n    colour: brown\n"},
		{name: "bad rate", input: "leagues:\n  - name: Bronze\n    promote_rate: lots\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readSeedFile(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestPlanSeed(t *testing.T) {
	existing := []competitiondb.League{{ID: 7, Name: "Bronze", Order: 1}}
	desired := []competitiondb.League{
		{Name: "Bronze", Order: 1, TargetDivisionSize: 30},
		{Name: "Silver", Order: 2},
	}

	creates, updates := planSeed(existing, desired)

	opt := cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })
	if diff := cmp.Diff([]competitiondb.League{{Name: "Silver", Order: 2}}, creates, opt); diff != "" {
		t.Errorf("creates mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]competitiondb.League{{ID: 7, Name: "Bronze", Order: 1, TargetDivisionSize: 30}}, updates, opt); diff != "" {
		t.Errorf("updates mismatch (-want +got):\n%s", diff)
	}
}

func TestPrintLeagues(t *testing.T) {
	var buf bytes.Buffer
	printLeagues(&buf, []competitiondb.League{{
		Name: "Gold", Order: 3,
		PromoteRate: decimal.RequireFromString("0.1"), DemoteRate: decimal.RequireFromString("0.3"),
		PromotionMinimumScore: 20, DemotionPenalty: 20,
		MinDivisionSize: 15, TargetDivisionSize: 25, MaxDivisionSize: 35,
	}})
	assert.Regexp(t, `3\s+Gold\s+0\.10\s+0\.30\s+20\s+20\s+15/25/35`, buf.String())
}
