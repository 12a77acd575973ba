package economyservice

import "errors"

// ErrProfileNotFound is returned when the ledger owner has no profile.
var ErrProfileNotFound = errors.New("profile not found")
