package userservice

import "errors"

var (
	// ErrProfileNotFound is returned when no profile exists for the user.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrInvalidLevel covers blank titles and negative thresholds.
	ErrInvalidLevel = errors.New("invalid level")
)
