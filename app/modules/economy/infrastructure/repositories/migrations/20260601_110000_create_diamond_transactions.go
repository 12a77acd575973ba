package economymigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating diamond_transactions table...")

		_, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS diamond_transactions (
				id BIGSERIAL PRIMARY KEY,
				user_id UUID NOT NULL,
				transaction_type VARCHAR(10) NOT NULL CHECK (transaction_type IN ('Increment', 'Deduction')),
				reason VARCHAR(20) NOT NULL DEFAULT 'Other'
					CHECK (reason IN ('Reward', 'Purchase', 'Demotion', 'Promotion', 'Admin', 'Other')),
				amount INTEGER NOT NULL CHECK (amount >= 0),
				balance_after INTEGER NOT NULL CHECK (balance_after >= 0),
				description TEXT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS idx_diamond_transactions_user_created
				ON diamond_transactions (user_id, created_at DESC);
		`)
		if err != nil {
			return fmt.Errorf("failed to create diamond_transactions table: %w", err)
		}

		fmt.Println("diamond_transactions table created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping diamond_transactions table...")
		_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS diamond_transactions;`)
		return err
	})
}
