package competitionservice

import "errors"

var (
	// ErrDivisionsAlreadyExist means the builder already ran for a league and week.
	ErrDivisionsAlreadyExist = errors.New("divisions already exist for league and week")

	// ErrDivisionAlreadyFinalized means some membership of the division already has a rank.
	ErrDivisionAlreadyFinalized = errors.New("division already finalized")

	ErrLeagueNotFound   = errors.New("league not found")
	ErrWeekNotFound     = errors.New("week not found")
	ErrDivisionNotFound = errors.New("division not found")

	// ErrLeagueInUse blocks deleting a league that profiles or divisions still reference.
	ErrLeagueInUse = errors.New("league is referenced by profiles or divisions")

	ErrInvalidWeekStatus = errors.New("invalid week status")
)
