package competitionmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Seeding default league ladder...")

		_, err := db.ExecContext(ctx, `
			INSERT INTO leagues (name, order_index, promote_rate, demote_rate,
				promotion_minimum_score, demotion_penalty,
				target_division_size, min_division_size, max_division_size)
			VALUES
				('Bronze',  1, 0.20, 0.20,  0,  0, 30, 20, 40),
				('Silver',  2, 0.20, 0.20, 10, 10, 30, 20, 40),
				('Gold',    3, 0.15, 0.25, 20, 20, 25, 15, 35),
				('Diamond', 4, 0.10, 0.30, 30, 30, 20, 10, 30)
			ON CONFLICT DO NOTHING;
		`)
		if err != nil {
			return fmt.Errorf("failed to seed leagues: %w", err)
		}
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Removing default league ladder...")
		_, err := db.ExecContext(ctx, `
			DELETE FROM leagues l
			WHERE l.name IN ('Bronze', 'Silver', 'Gold', 'Diamond')
			  AND NOT EXISTS (SELECT 1 FROM divisions d WHERE d.league_id = l.id);
		`)
		return err
	})
}
