package userhandlers

import (
	"context"

	userservice "github.com/Black-And-White-Club/quiz-league/app/modules/user/application"
	userdb "github.com/Black-And-White-Club/quiz-league/app/modules/user/infrastructure/repositories"
	"github.com/google/uuid"
)

// FakeUserService is a programmable userservice.Service.
type FakeUserService struct {
	EnsureProfileFunc func(ctx context.Context, userID uuid.UUID, displayName string) (*userservice.EnsureProfileResult, error)
}

func (f *FakeUserService) EnsureProfile(ctx context.Context, userID uuid.UUID, displayName string) (*userservice.EnsureProfileResult, error) {
	if f.EnsureProfileFunc != nil {
		return f.EnsureProfileFunc(ctx, userID, displayName)
	}
	return &userservice.EnsureProfileResult{Profile: &userdb.Profile{UserID: userID}}, nil
}

func (f *FakeUserService) GetProfile(ctx context.Context, userID uuid.UUID) (*userdb.Profile, error) {
	return nil, userservice.ErrProfileNotFound
}

func (f *FakeUserService) SetActive(ctx context.Context, userID uuid.UUID, active bool) error {
	return nil
}

func (f *FakeUserService) ListLevels(ctx context.Context) ([]userdb.Level, error) {
	return nil, nil
}

func (f *FakeUserService) CreateLevel(ctx context.Context, level *userdb.Level) (*userdb.Level, error) {
	return level, nil
}

var _ userservice.Service = (*FakeUserService)(nil)
