package userservice

import (
	"context"

	competitiondb "github.com/Black-And-White-Club/quiz-league/app/modules/competition/infrastructure/repositories"
	userdb "github.com/Black-And-White-Club/quiz-league/app/modules/user/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Service manages competition profiles and levels.
type Service interface {
	// EnsureProfile creates a profile in the lowest league if none exists.
	EnsureProfile(ctx context.Context, userID uuid.UUID, displayName string) (*EnsureProfileResult, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*userdb.Profile, error)
	SetActive(ctx context.Context, userID uuid.UUID, active bool) error
	ListLevels(ctx context.Context) ([]userdb.Level, error)
	CreateLevel(ctx context.Context, level *userdb.Level) (*userdb.Level, error)
}

// LeagueLister is the slice of the competition repository needed to place new users.
type LeagueLister interface {
	ListLeagues(ctx context.Context, db bun.IDB) ([]competitiondb.League, error)
}

// EnsureProfileResult reports the profile and whether it was just created.
type EnsureProfileResult struct {
	Profile *userdb.Profile
	Created bool
}
