package competitiondomain

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

var (
	minRate = decimal.RequireFromString("0.01")
	maxRate = decimal.RequireFromString("0.99")
)

// League is one tier of the ladder. Higher Order means a higher tier.
type League struct {
	ID                    int64
	Name                  string
	Order                 int
	PromoteRate           decimal.Decimal
	DemoteRate            decimal.Decimal
	PromotionMinimumScore int
	DemotionPenalty       int
	TargetDivisionSize    int
	MinDivisionSize       int
	MaxDivisionSize       int
}

// SizeBounds are the division size constraints of a league.
type SizeBounds struct {
	Min    int
	Target int
	Max    int
}

func (l League) Bounds() SizeBounds {
	return SizeBounds{Min: l.MinDivisionSize, Target: l.TargetDivisionSize, Max: l.MaxDivisionSize}
}

// Validate checks the invariants an administrator must respect when editing a league.
func (l League) Validate() error {
	switch {
	case l.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidLeague)
	case l.Order < 0:
		return fmt.Errorf("%w: order must not be negative", ErrInvalidLeague)
	case l.PromoteRate.LessThan(minRate) || l.PromoteRate.GreaterThan(maxRate):
		return fmt.Errorf("%w: promote rate %s outside [0.01, 0.99]", ErrInvalidLeague, l.PromoteRate)
	case l.DemoteRate.LessThan(minRate) || l.DemoteRate.GreaterThan(maxRate):
		return fmt.Errorf("%w: demote rate %s outside [0.01, 0.99]", ErrInvalidLeague, l.DemoteRate)
	case l.PromotionMinimumScore < 0 || l.DemotionPenalty < 0:
		return fmt.Errorf("%w: score floor and penalty must not be negative", ErrInvalidLeague)
	case l.MinDivisionSize <= 0:
		return fmt.Errorf("%w: min division size must be positive", ErrInvalidLeague)
	case l.MinDivisionSize > l.TargetDivisionSize || l.TargetDivisionSize > l.MaxDivisionSize:
		return fmt.Errorf("%w: need min <= target <= max, got %d/%d/%d",
			ErrInvalidLeague, l.MinDivisionSize, l.TargetDivisionSize, l.MaxDivisionSize)
	}
	return nil
}

// Ladder is the ordered list of leagues, lowest tier first.
type Ladder struct {
	leagues []League
	index   map[int64]int
}

// NewLadder sorts leagues by order. Orders must be unique.
func NewLadder(leagues []League) (Ladder, error) {
	sorted := make([]League, len(leagues))
	copy(sorted, leagues)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	index := make(map[int64]int, len(sorted))
	for i, l := range sorted {
		if i > 0 && sorted[i-1].Order == l.Order {
			return Ladder{}, fmt.Errorf("%w: %d", ErrDuplicateLeagueOrder, l.Order)
		}
		index[l.ID] = i
	}
	return Ladder{leagues: sorted, index: index}, nil
}

// Leagues returns the tiers lowest first.
func (l Ladder) Leagues() []League {
	out := make([]League, len(l.leagues))
	copy(out, l.leagues)
	return out
}

func (l Ladder) Len() int { return len(l.leagues) }

func (l Ladder) Get(id int64) (League, bool) {
	i, ok := l.index[id]
	if !ok {
		return League{}, false
	}
	return l.leagues[i], true
}

func (l Ladder) IsTop(id int64) bool {
	i, ok := l.index[id]
	return ok && i == len(l.leagues)-1
}

func (l Ladder) IsBottom(id int64) bool {
	i, ok := l.index[id]
	return ok && i == 0
}

// Next returns the tier directly above id.
func (l Ladder) Next(id int64) (League, bool) {
	i, ok := l.index[id]
	if !ok || i == len(l.leagues)-1 {
		return League{}, false
	}
	return l.leagues[i+1], true
}

// Previous returns the tier directly below id.
func (l Ladder) Previous(id int64) (League, bool) {
	i, ok := l.index[id]
	if !ok || i == 0 {
		return League{}, false
	}
	return l.leagues[i-1], true
}
