package competitiondomain

import "errors"

var (
	// ErrInfeasibleSplit means no division count satisfies the league's size bounds.
	ErrInfeasibleSplit = errors.New("impossible to split users with given constraints")

	// ErrInvalidWeekTransition guards against opening a week while another is live.
	ErrInvalidWeekTransition = errors.New("an active or upcoming week already exists")

	// ErrInvalidLeague is returned by League.Validate.
	ErrInvalidLeague = errors.New("invalid league configuration")

	// ErrDuplicateLeagueOrder is returned when two leagues share an order.
	ErrDuplicateLeagueOrder = errors.New("duplicate league order")

	// ErrCapacityExceeded means more users than division slots were handed to the assigner.
	ErrCapacityExceeded = errors.New("users exceed division capacity")
)
