package competitiondb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// cycleLockKey is hashed into the advisory lock that serializes cycle runs.
const cycleLockKey = "competition.cycle"

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new competition repository.
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

func (r *Impl) ListLeagues(ctx context.Context, db bun.IDB) ([]League, error) {
	db = r.resolveDB(db)
	var leagues []League
	err := db.NewSelect().
		Model(&leagues).
		Order("order_index ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("competitiondb.ListLeagues: %w", err)
	}
	return leagues, nil
}

func (r *Impl) GetLeague(ctx context.Context, db bun.IDB, id int64) (*League, error) {
	db = r.resolveDB(db)
	league := new(League)
	err := db.NewSelect().
		Model(league).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("competitiondb.GetLeague: %w", err)
	}
	return league, nil
}

func (r *Impl) CreateLeague(ctx context.Context, db bun.IDB, league *League) error {
	db = r.resolveDB(db)
	now := time.Now().UTC()
	league.CreatedAt = now
	league.UpdatedAt = now
	_, err := db.NewInsert().
		Model(league).
		Returning("id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("competitiondb.CreateLeague: %w", err)
	}
	return nil
}

func (r *Impl) UpdateLeague(ctx context.Context, db bun.IDB, league *League) error {
	db = r.resolveDB(db)
	league.UpdatedAt = time.Now().UTC()
	res, err := db.NewUpdate().
		Model(league).
		ExcludeColumn("id", "created_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("competitiondb.UpdateLeague: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *Impl) DeleteLeague(ctx context.Context, db bun.IDB, id int64) error {
	db = r.resolveDB(db)
	res, err := db.NewDelete().
		Model((*League)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("competitiondb.DeleteLeague: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *Impl) LeagueHasDivisions(ctx context.Context, db bun.IDB, leagueID int64) (bool, error) {
	db = r.resolveDB(db)
	exists, err := db.NewSelect().
		Model((*Division)(nil)).
		Where("league_id = ?", leagueID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("competitiondb.LeagueHasDivisions: %w", err)
	}
	return exists, nil
}

func (r *Impl) AcquireCycleLock(ctx context.Context, db bun.IDB) error {
	db = r.resolveDB(db)
	_, err := db.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", cycleLockKey).Exec(ctx)
	if err != nil {
		return fmt.Errorf("competitiondb.AcquireCycleLock: %w", err)
	}
	return nil
}
