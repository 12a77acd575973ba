package userservice

import (
	"context"
	"fmt"
	"strings"

	userdb "github.com/Black-And-White-Club/quiz-league/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/quiz-league/pkg/results"
	"github.com/uptrace/bun"
)

// ResolveLevel returns the highest-order level whose threshold the score
// reaches, or nil when none does.
func ResolveLevel(levels []userdb.Level, totalScore int) *userdb.Level {
	var best *userdb.Level
	for i := range levels {
		l := &levels[i]
		if l.MinScore > totalScore {
			continue
		}
		if best == nil || l.Order > best.Order {
			best = l
		}
	}
	return best
}

// RecomputeLevel stores the level matching totalScore when it differs from
// current. It runs on the caller's handle so it can join a score transaction.
func RecomputeLevel(ctx context.Context, repo userdb.Repository, db bun.IDB, profile *userdb.Profile, totalScore int) (*int64, bool, error) {
	levels, err := repo.ListLevels(ctx, db)
	if err != nil {
		return profile.LevelID, false, fmt.Errorf("failed to list levels: %w", err)
	}

	var next *int64
	if l := ResolveLevel(levels, totalScore); l != nil {
		id := l.ID
		next = &id
	}
	if sameLevel(profile.LevelID, next) {
		return next, false, nil
	}
	if err := repo.SetLevel(ctx, db, profile.UserID, next); err != nil {
		return profile.LevelID, false, fmt.Errorf("failed to set level: %w", err)
	}
	return next, true, nil
}

func sameLevel(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// ListLevels returns levels lowest first.
func (s *UserService) ListLevels(ctx context.Context) ([]userdb.Level, error) {
	result, err := withTelemetry(s, ctx, "ListLevels", "all", func(ctx context.Context) (results.OperationResult[[]userdb.Level, error], error) {
		levels, err := s.repo.ListLevels(ctx, nil)
		if err != nil {
			return results.OperationResult[[]userdb.Level, error]{}, err
		}
		return results.SuccessResult[[]userdb.Level, error](levels), nil
	})
	if err != nil {
		return nil, err
	}
	return *result.Success, nil
}

// CreateLevel validates and stores a level.
func (s *UserService) CreateLevel(ctx context.Context, level *userdb.Level) (*userdb.Level, error) {
	createTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*userdb.Level, error], error) {
		level.Title = strings.TrimSpace(level.Title)
		if level.Title == "" || level.MinScore < 0 || level.Order < 0 {
			return results.FailureResult[*userdb.Level, error](ErrInvalidLevel), nil
		}
		if err := s.repo.CreateLevel(ctx, db, level); err != nil {
			return results.OperationResult[*userdb.Level, error]{}, err
		}
		return results.SuccessResult[*userdb.Level, error](level), nil
	}

	result, err := withTelemetry(s, ctx, "CreateLevel", level.Title, func(ctx context.Context) (results.OperationResult[*userdb.Level, error], error) {
		return runInTx(s, ctx, createTx)
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}
