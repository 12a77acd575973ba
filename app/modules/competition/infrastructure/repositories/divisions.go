package competitiondb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func (r *Impl) DivisionsExist(ctx context.Context, db bun.IDB, leagueID, weekID int64) (bool, error) {
	db = r.resolveDB(db)
	exists, err := db.NewSelect().
		Model((*Division)(nil)).
		Where("league_id = ?", leagueID).
		Where("week_id = ?", weekID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("competitiondb.DivisionsExist: %w", err)
	}
	return exists, nil
}

func (r *Impl) CreateDivisions(ctx context.Context, db bun.IDB, divisions []Division) error {
	if len(divisions) == 0 {
		return nil
	}
	db = r.resolveDB(db)
	now := time.Now().UTC()
	for i := range divisions {
		divisions[i].CreatedAt = now
	}
	_, err := db.NewInsert().
		Model(&divisions).
		Returning("id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("competitiondb.CreateDivisions: %w", err)
	}
	return nil
}

func (r *Impl) ListDivisionsByWeek(ctx context.Context, db bun.IDB, weekID int64) ([]Division, error) {
	db = r.resolveDB(db)
	var divisions []Division
	err := db.NewSelect().
		Model(&divisions).
		Where("week_id = ?", weekID).
		Order("league_id ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("competitiondb.ListDivisionsByWeek: %w", err)
	}
	return divisions, nil
}

func (r *Impl) GetDivision(ctx context.Context, db bun.IDB, id int64) (*Division, error) {
	db = r.resolveDB(db)
	division := new(Division)
	err := db.NewSelect().
		Model(division).
		Relation("League").
		Relation("Week").
		Where("d.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("competitiondb.GetDivision: %w", err)
	}
	return division, nil
}

func (r *Impl) ListUserDivisions(ctx context.Context, db bun.IDB, userID uuid.UUID, filter DivisionFilter) ([]Division, error) {
	db = r.resolveDB(db)
	var divisions []Division
	q := db.NewSelect().
		Model(&divisions).
		Relation("League").
		Relation("Week").
		Join("JOIN division_memberships AS dm ON dm.division_id = d.id").
		Where("dm.user_id = ?", userID)
	if filter.WeekNumber != nil {
		q = q.Where("week.week_number = ?", *filter.WeekNumber)
	}
	if filter.Year != nil {
		q = q.Where("week.year = ?", *filter.Year)
	}
	if err := q.Order("week.start_date DESC", "d.id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("competitiondb.ListUserDivisions: %w", err)
	}
	return divisions, nil
}
