package economydb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new economy repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) InsertTransactions(ctx context.Context, db bun.IDB, txs []DiamondTransaction) error {
	if len(txs) == 0 {
		return nil
	}
	db = r.resolveDB(db)
	now := time.Now().UTC()
	for i := range txs {
		txs[i].CreatedAt = now
	}
	_, err := db.NewInsert().
		Model(&txs).
		Returning("id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("economydb.InsertTransactions: %w", err)
	}
	return nil
}

func (r *Impl) ListByUser(ctx context.Context, db bun.IDB, userID uuid.UUID, limit, offset int) ([]DiamondTransaction, int, error) {
	db = r.resolveDB(db)
	var txs []DiamondTransaction
	count, err := db.NewSelect().
		Model(&txs).
		Where("user_id = ?", userID).
		Order("created_at DESC", "id DESC").
		Limit(limit).
		Offset(offset).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("economydb.ListByUser: %w", err)
	}
	return txs, count, nil
}
