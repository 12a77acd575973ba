package economydb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DiamondTransaction is an append-only ledger row.
type DiamondTransaction struct {
	bun.BaseModel   `bun:"table:diamond_transactions,alias:dt"`
	ID              int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID          uuid.UUID `bun:"user_id,type:uuid,notnull" json:"user_id"`
	TransactionType string    `bun:"transaction_type,notnull" json:"transaction_type"`
	Reason          string    `bun:"reason,notnull,default:'Other'" json:"reason"`
	Amount          int       `bun:"amount,notnull" json:"amount"`
	BalanceAfter    int       `bun:"balance_after,notnull" json:"balance_after"`
	Description     *string   `bun:"description" json:"description,omitempty"`
	CreatedAt       time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}
