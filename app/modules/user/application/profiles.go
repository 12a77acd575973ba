package userservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	userdb "github.com/Black-And-White-Club/quiz-league/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/quiz-league/pkg/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// EnsureProfile creates a profile in the lowest league when the user has none.
// An existing profile is returned unchanged.
func (s *UserService) EnsureProfile(ctx context.Context, userID uuid.UUID, displayName string) (*EnsureProfileResult, error) {
	ensureTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*EnsureProfileResult, error], error) {
		return s.ensureProfileLogic(ctx, db, userID, displayName)
	}

	result, err := withTelemetry(s, ctx, "EnsureProfile", userID.String(), func(ctx context.Context) (results.OperationResult[*EnsureProfileResult, error], error) {
		return runInTx(s, ctx, ensureTx)
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

func (s *UserService) ensureProfileLogic(ctx context.Context, db bun.IDB, userID uuid.UUID, displayName string) (results.OperationResult[*EnsureProfileResult, error], error) {
	existing, err := s.repo.GetProfile(ctx, db, userID)
	if err == nil {
		return results.SuccessResult[*EnsureProfileResult, error](&EnsureProfileResult{Profile: existing}), nil
	}
	if !errors.Is(err, userdb.ErrNotFound) {
		return results.OperationResult[*EnsureProfileResult, error]{}, fmt.Errorf("failed to get profile: %w", err)
	}

	profile := &userdb.Profile{
		UserID:      userID,
		DisplayName: strings.TrimSpace(displayName),
		IsActive:    true,
	}

	if s.leagues != nil {
		leagues, err := s.leagues.ListLeagues(ctx, db)
		if err != nil {
			return results.OperationResult[*EnsureProfileResult, error]{}, fmt.Errorf("failed to list leagues: %w", err)
		}
		// ListLeagues is ordered lowest tier first.
		if len(leagues) > 0 {
			id := leagues[0].ID
			profile.CurrentLeagueID = &id
		}
	}

	levels, err := s.repo.ListLevels(ctx, db)
	if err != nil {
		return results.OperationResult[*EnsureProfileResult, error]{}, fmt.Errorf("failed to list levels: %w", err)
	}
	if l := ResolveLevel(levels, 0); l != nil {
		id := l.ID
		profile.LevelID = &id
	}

	created, err := s.repo.CreateProfile(ctx, db, profile)
	if err != nil {
		return results.OperationResult[*EnsureProfileResult, error]{}, fmt.Errorf("failed to create profile: %w", err)
	}
	if !created {
		// Lost a race with a concurrent registration.
		existing, err := s.repo.GetProfile(ctx, db, userID)
		if err != nil {
			return results.OperationResult[*EnsureProfileResult, error]{}, fmt.Errorf("failed to reload profile: %w", err)
		}
		profile = existing
	}
	return results.SuccessResult[*EnsureProfileResult, error](&EnsureProfileResult{Profile: profile, Created: created}), nil
}

// GetProfile retrieves a profile by user id.
func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*userdb.Profile, error) {
	result, err := withTelemetry(s, ctx, "GetProfile", userID.String(), func(ctx context.Context) (results.OperationResult[*userdb.Profile, error], error) {
		profile, err := s.repo.GetProfile(ctx, nil, userID)
		if err != nil {
			if errors.Is(err, userdb.ErrNotFound) {
				return results.FailureResult[*userdb.Profile, error](ErrProfileNotFound), nil
			}
			return results.OperationResult[*userdb.Profile, error]{}, err
		}
		return results.SuccessResult[*userdb.Profile, error](profile), nil
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

// SetActive toggles whether the user is placed into divisions.
func (s *UserService) SetActive(ctx context.Context, userID uuid.UUID, active bool) error {
	result, err := withTelemetry(s, ctx, "SetActive", userID.String(), func(ctx context.Context) (results.OperationResult[bool, error], error) {
		if err := s.repo.SetActive(ctx, nil, userID, active); err != nil {
			if errors.Is(err, userdb.ErrNoRowsAffected) {
				return results.FailureResult[bool, error](ErrProfileNotFound), nil
			}
			return results.OperationResult[bool, error]{}, err
		}
		return results.SuccessResult[bool, error](active), nil
	})
	if err != nil {
		return err
	}
	if result.IsFailure() {
		return *result.Failure
	}
	return nil
}
