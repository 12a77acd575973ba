package competitionmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating leagues, weeks, divisions and division_memberships tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS leagues (
					id BIGSERIAL PRIMARY KEY,
					name VARCHAR(100) NOT NULL UNIQUE,
					order_index INTEGER NOT NULL UNIQUE CHECK (order_index >= 0),
					promote_rate NUMERIC(3,2) NOT NULL CHECK (promote_rate BETWEEN 0.01 AND 0.99),
					demote_rate NUMERIC(3,2) NOT NULL CHECK (demote_rate BETWEEN 0.01 AND 0.99),
					promotion_minimum_score INTEGER NOT NULL DEFAULT 0 CHECK (promotion_minimum_score >= 0),
					demotion_penalty INTEGER NOT NULL DEFAULT 0 CHECK (demotion_penalty >= 0),
					target_division_size INTEGER NOT NULL,
					min_division_size INTEGER NOT NULL CHECK (min_division_size > 0),
					max_division_size INTEGER NOT NULL,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					CHECK (min_division_size <= target_division_size AND target_division_size <= max_division_size)
				);
			`); err != nil {
				return fmt.Errorf("failed to create leagues table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS weeks (
					id BIGSERIAL PRIMARY KEY,
					year INTEGER NOT NULL,
					week_number INTEGER NOT NULL CHECK (week_number > 0),
					start_date DATE NOT NULL,
					end_date DATE NOT NULL,
					status VARCHAR(10) NOT NULL DEFAULT 'upcoming'
						CHECK (status IN ('upcoming', 'active', 'passed')),
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					UNIQUE (year, week_number)
				);
				CREATE INDEX IF NOT EXISTS idx_weeks_status_end_date ON weeks (status, end_date DESC);
			`); err != nil {
				return fmt.Errorf("failed to create weeks table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS divisions (
					id BIGSERIAL PRIMARY KEY,
					league_id BIGINT NOT NULL REFERENCES leagues(id) ON DELETE RESTRICT,
					week_id BIGINT NOT NULL REFERENCES weeks(id) ON DELETE CASCADE,
					size INTEGER NOT NULL CHECK (size >= 0),
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS idx_divisions_league_week ON divisions (league_id, week_id);
				CREATE INDEX IF NOT EXISTS idx_divisions_week ON divisions (week_id);
			`); err != nil {
				return fmt.Errorf("failed to create divisions table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS division_memberships (
					id BIGSERIAL PRIMARY KEY,
					division_id BIGINT NOT NULL REFERENCES divisions(id) ON DELETE CASCADE,
					user_id UUID NOT NULL,
					weekly_score INTEGER NOT NULL DEFAULT 0 CHECK (weekly_score >= 0),
					rank_in_division INTEGER CHECK (rank_in_division > 0),
					promotion_status VARCHAR(10)
						CHECK (promotion_status IN ('promoted', 'demoted', 'stayed')),
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					UNIQUE (division_id, user_id)
				);
				CREATE INDEX IF NOT EXISTS idx_division_memberships_user ON division_memberships (user_id);
				CREATE INDEX IF NOT EXISTS idx_division_memberships_score
					ON division_memberships (division_id, weekly_score DESC);
			`); err != nil {
				return fmt.Errorf("failed to create division_memberships table: %w", err)
			}

			fmt.Println("Competition tables created successfully!")
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping competition tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				DROP TABLE IF EXISTS division_memberships;
				DROP TABLE IF EXISTS divisions;
				DROP TABLE IF EXISTS weeks;
				DROP TABLE IF EXISTS leagues;
			`); err != nil {
				return fmt.Errorf("failed to drop competition tables: %w", err)
			}
			fmt.Println("Competition tables dropped successfully!")
			return nil
		})
	})
}
