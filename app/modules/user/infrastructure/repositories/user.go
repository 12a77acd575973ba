package userdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new user repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) GetProfile(ctx context.Context, db bun.IDB, userID uuid.UUID) (*Profile, error) {
	db = r.resolveDB(db)
	profile := new(Profile)
	err := db.NewSelect().
		Model(profile).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("userdb.GetProfile: %w", err)
	}
	return profile, nil
}

func (r *Impl) CreateProfile(ctx context.Context, db bun.IDB, profile *Profile) (bool, error) {
	db = r.resolveDB(db)
	now := time.Now().UTC()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	res, err := db.NewInsert().
		Model(profile).
		On("CONFLICT (user_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("userdb.CreateProfile: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *Impl) SetActive(ctx context.Context, db bun.IDB, userID uuid.UUID, active bool) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*Profile)(nil)).
		Set("is_active = ?", active).
		Set("updated_at = ?", time.Now().UTC()).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("userdb.SetActive: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *Impl) LockProfile(ctx context.Context, db bun.IDB, userID uuid.UUID) (*Profile, error) {
	db = r.resolveDB(db)
	profile := new(Profile)
	err := db.NewSelect().
		Model(profile).
		Where("user_id = ?", userID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("userdb.LockProfile: %w", err)
	}
	return profile, nil
}

func (r *Impl) LockProfiles(ctx context.Context, db bun.IDB, userIDs []uuid.UUID) ([]Profile, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	db = r.resolveDB(db)
	var profiles []Profile
	err := db.NewSelect().
		Model(&profiles).
		Where("user_id IN (?)", bun.In(userIDs)).
		Order("user_id ASC").
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("userdb.LockProfiles: %w", err)
	}
	return profiles, nil
}

func (r *Impl) ListActiveByLeague(ctx context.Context, db bun.IDB, leagueID int64) ([]Profile, error) {
	db = r.resolveDB(db)
	var profiles []Profile
	err := db.NewSelect().
		Model(&profiles).
		Where("current_league_id = ?", leagueID).
		Where("is_active = TRUE").
		Order("total_score ASC", "user_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("userdb.ListActiveByLeague: %w", err)
	}
	return profiles, nil
}

func (r *Impl) CountByLeague(ctx context.Context, db bun.IDB, leagueID int64) (int, error) {
	db = r.resolveDB(db)
	count, err := db.NewSelect().
		Model((*Profile)(nil)).
		Where("current_league_id = ?", leagueID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("userdb.CountByLeague: %w", err)
	}
	return count, nil
}

func (r *Impl) LeagueLeaderboard(ctx context.Context, db bun.IDB, leagueID int64, limit, offset int) ([]Profile, int, error) {
	db = r.resolveDB(db)
	var profiles []Profile
	count, err := db.NewSelect().
		Model(&profiles).
		Where("current_league_id = ?", leagueID).
		Order("total_score DESC", "user_id ASC").
		Limit(limit).
		Offset(offset).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("userdb.LeagueLeaderboard: %w", err)
	}
	return profiles, count, nil
}

func (r *Impl) BulkUpdateLeagueAndDiamonds(ctx context.Context, db bun.IDB, profiles []Profile) error {
	if len(profiles) == 0 {
		return nil
	}
	db = r.resolveDB(db)
	now := time.Now().UTC()
	for i := range profiles {
		profiles[i].UpdatedAt = now
	}
	_, err := db.NewUpdate().
		Model(&profiles).
		Column("current_league_id", "diamonds", "updated_at").
		Bulk().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("userdb.BulkUpdateLeagueAndDiamonds: %w", err)
	}
	return nil
}

func (r *Impl) UpdateDiamonds(ctx context.Context, db bun.IDB, userID uuid.UUID, diamonds int) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*Profile)(nil)).
		Set("diamonds = ?", diamonds).
		Set("updated_at = ?", time.Now().UTC()).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("userdb.UpdateDiamonds: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *Impl) IncrementTotalScore(ctx context.Context, db bun.IDB, userID uuid.UUID, delta int) (int, error) {
	db = r.resolveDB(db)
	var total int
	err := db.NewUpdate().
		Model((*Profile)(nil)).
		Set("total_score = total_score + ?", delta).
		Set("updated_at = ?", time.Now().UTC()).
		Where("user_id = ?", userID).
		Returning("total_score").
		Scan(ctx, &total)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("userdb.IncrementTotalScore: %w", err)
	}
	return total, nil
}

func (r *Impl) SetLevel(ctx context.Context, db bun.IDB, userID uuid.UUID, levelID *int64) error {
	db = r.resolveDB(db)
	_, err := db.NewUpdate().
		Model((*Profile)(nil)).
		Set("level_id = ?", levelID).
		Set("updated_at = ?", time.Now().UTC()).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("userdb.SetLevel: %w", err)
	}
	return nil
}

func (r *Impl) ListLevels(ctx context.Context, db bun.IDB) ([]Level, error) {
	db = r.resolveDB(db)
	var levels []Level
	err := db.NewSelect().
		Model(&levels).
		Order("order_index ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("userdb.ListLevels: %w", err)
	}
	return levels, nil
}

func (r *Impl) CreateLevel(ctx context.Context, db bun.IDB, level *Level) error {
	db = r.resolveDB(db)
	level.CreatedAt = time.Now().UTC()
	_, err := db.NewInsert().
		Model(level).
		Returning("id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("userdb.CreateLevel: %w", err)
	}
	return nil
}
