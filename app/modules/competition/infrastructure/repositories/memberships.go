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

func (r *Impl) CreateMemberships(ctx context.Context, db bun.IDB, memberships []DivisionMembership) error {
	if len(memberships) == 0 {
		return nil
	}
	db = r.resolveDB(db)
	now := time.Now().UTC()
	for i := range memberships {
		memberships[i].CreatedAt = now
		memberships[i].UpdatedAt = now
	}
	_, err := db.NewInsert().
		Model(&memberships).
		Returning("id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("competitiondb.CreateMemberships: %w", err)
	}
	return nil
}

func (r *Impl) LockDivisionMemberships(ctx context.Context, db bun.IDB, divisionID int64) ([]DivisionMembership, error) {
	db = r.resolveDB(db)
	var memberships []DivisionMembership
	err := db.NewSelect().
		Model(&memberships).
		Where("division_id = ?", divisionID).
		Order("weekly_score DESC", "id ASC").
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("competitiondb.LockDivisionMemberships: %w", err)
	}
	return memberships, nil
}

func (r *Impl) ApplyRankings(ctx context.Context, db bun.IDB, memberships []DivisionMembership) (int, error) {
	if len(memberships) == 0 {
		return 0, nil
	}
	db = r.resolveDB(db)
	now := time.Now().UTC()
	for i := range memberships {
		memberships[i].UpdatedAt = now
	}
	res, err := db.NewUpdate().
		Model(&memberships).
		Column("rank_in_division", "promotion_status", "updated_at").
		Bulk().
		Where("dm.rank_in_division IS NULL").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("competitiondb.ApplyRankings: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("competitiondb.ApplyRankings: %w", err)
	}
	return int(n), nil
}

func (r *Impl) LockMembershipForWeek(ctx context.Context, db bun.IDB, userID uuid.UUID, weekID int64) (*DivisionMembership, error) {
	db = r.resolveDB(db)
	membership := new(DivisionMembership)
	err := db.NewSelect().
		Model(membership).
		Join("JOIN divisions AS d ON d.id = dm.division_id").
		Where("dm.user_id = ?", userID).
		Where("d.week_id = ?", weekID).
		Limit(1).
		For("UPDATE OF dm").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("competitiondb.LockMembershipForWeek: %w", err)
	}
	return membership, nil
}

func (r *Impl) IncrementWeeklyScore(ctx context.Context, db bun.IDB, membershipID int64, delta int) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*DivisionMembership)(nil)).
		Set("weekly_score = weekly_score + ?", delta).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", membershipID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("competitiondb.IncrementWeeklyScore: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *Impl) DivisionLeaderboard(ctx context.Context, db bun.IDB, divisionID int64, limit, offset int) ([]DivisionMembership, int, error) {
	db = r.resolveDB(db)
	var memberships []DivisionMembership
	count, err := db.NewSelect().
		Model(&memberships).
		Where("division_id = ?", divisionID).
		Order("weekly_score DESC", "id ASC").
		Limit(limit).
		Offset(offset).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("competitiondb.DivisionLeaderboard: %w", err)
	}
	return memberships, count, nil
}
