package economydb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the contract for the diamond ledger.
type Repository interface {
	InsertTransactions(ctx context.Context, db bun.IDB, txs []DiamondTransaction) error
	// ListByUser pages a user's transactions newest first and returns the total count.
	ListByUser(ctx context.Context, db bun.IDB, userID uuid.UUID, limit, offset int) ([]DiamondTransaction, int, error)
}
