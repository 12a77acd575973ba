package competitiondb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

func (r *Impl) GetActiveWeekEndedBy(ctx context.Context, db bun.IDB, date time.Time) (*Week, error) {
	db = r.resolveDB(db)
	week := new(Week)
	err := db.NewSelect().
		Model(week).
		Where("status = ?", "active").
		Where("end_date <= ?", date).
		Order("end_date DESC").
		Limit(1).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("competitiondb.GetActiveWeekEndedBy: %w", err)
	}
	return week, nil
}

func (r *Impl) GetLatestWeek(ctx context.Context, db bun.IDB) (*Week, error) {
	db = r.resolveDB(db)
	week := new(Week)
	err := db.NewSelect().
		Model(week).
		Order("end_date DESC", "id DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("competitiondb.GetLatestWeek: %w", err)
	}
	return week, nil
}

func (r *Impl) GetActiveWeekCovering(ctx context.Context, db bun.IDB, date time.Time) (*Week, error) {
	db = r.resolveDB(db)
	week := new(Week)
	err := db.NewSelect().
		Model(week).
		Where("status = ?", "active").
		Where("start_date <= ?", date).
		Where("end_date >= ?", date).
		Order("end_date DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("competitiondb.GetActiveWeekCovering: %w", err)
	}
	return week, nil
}

func (r *Impl) GetWeek(ctx context.Context, db bun.IDB, id int64) (*Week, error) {
	db = r.resolveDB(db)
	week := new(Week)
	err := db.NewSelect().
		Model(week).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("competitiondb.GetWeek: %w", err)
	}
	return week, nil
}

func (r *Impl) CreateWeek(ctx context.Context, db bun.IDB, week *Week) error {
	db = r.resolveDB(db)
	now := time.Now().UTC()
	week.CreatedAt = now
	week.UpdatedAt = now
	_, err := db.NewInsert().
		Model(week).
		Returning("id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("competitiondb.CreateWeek: %w", err)
	}
	return nil
}

func (r *Impl) UpdateWeekStatus(ctx context.Context, db bun.IDB, id int64, status string) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*Week)(nil)).
		Set("status = ?", status).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("competitiondb.UpdateWeekStatus: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *Impl) ListWeeks(ctx context.Context, db bun.IDB, status string) ([]Week, error) {
	db = r.resolveDB(db)
	var weeks []Week
	q := db.NewSelect().
		Model(&weeks).
		Order("start_date ASC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("competitiondb.ListWeeks: %w", err)
	}
	return weeks, nil
}
