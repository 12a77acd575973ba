package usermigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating profiles and levels tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS levels (
					id BIGSERIAL PRIMARY KEY,
					title VARCHAR(100) NOT NULL,
					order_index INTEGER NOT NULL UNIQUE CHECK (order_index >= 0),
					min_score INTEGER NOT NULL CHECK (min_score >= 0),
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`); err != nil {
				return fmt.Errorf("failed to create levels table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS profiles (
					user_id UUID PRIMARY KEY,
					display_name VARCHAR(100) NOT NULL DEFAULT '',
					is_active BOOLEAN NOT NULL DEFAULT TRUE,
					total_score INTEGER NOT NULL DEFAULT 0 CHECK (total_score >= 0),
					diamonds INTEGER NOT NULL DEFAULT 0 CHECK (diamonds >= 0),
					level_id BIGINT REFERENCES levels(id) ON DELETE RESTRICT,
					current_league_id BIGINT,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS idx_profiles_league_active_score
					ON profiles (current_league_id, is_active, total_score);
			`); err != nil {
				return fmt.Errorf("failed to create profiles table: %w", err)
			}

			fmt.Println("Profiles and levels tables created successfully!")
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping profiles and levels tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				DROP TABLE IF EXISTS profiles;
				DROP TABLE IF EXISTS levels;
			`); err != nil {
				return fmt.Errorf("failed to drop profiles and levels tables: %w", err)
			}
			return nil
		})
	})
}
