package testutils

import (
	"context"
	"fmt"
	"strings"

	userdb "github.com/Black-And-White-Club/quiz-league/app/modules/user/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// appTables are truncated between tests. Leagues and levels come from the seed
// migrations and are kept.
var appTables = []string{
	"diamond_transactions",
	"division_memberships",
	"divisions",
	"weeks",
	"profiles",
}

// CleanupDatabase truncates the application tables and River's job table.
func CleanupDatabase(ctx context.Context, db *bun.DB) error {
	if err := TruncateTables(ctx, db, appTables...); err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM river_job"); err != nil {
		if !strings.Contains(err.Error(), "does not exist") {
			return fmt.Errorf("failed to cleanup river jobs: %w", err)
		}
	}
	return nil
}

// TruncateTables truncates the specified tables
func TruncateTables(ctx context.Context, db *bun.DB, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}

	quoted := make([]string, len(tables))
	for i, table := range tables {
		quoted[i] = fmt.Sprintf("%q", table)
	}
	query := "TRUNCATE TABLE " + strings.Join(quoted, ", ") + " RESTART IDENTITY CASCADE"
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to truncate tables %v: %w", tables, err)
	}
	return nil
}

// InsertProfiles writes profiles directly, bypassing registration.
func InsertProfiles(ctx context.Context, db *bun.DB, profiles []userdb.Profile) error {
	if len(profiles) == 0 {
		return nil
	}
	if _, err := db.NewInsert().Model(&profiles).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert profiles: %w", err)
	}
	return nil
}
