// Package migrations runs the per-module bun migrations and River's own schema.
package migrations

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	competitionmigrations "github.com/Black-And-White-Club/quiz-league/app/modules/competition/infrastructure/repositories/migrations"
	economymigrations "github.com/Black-And-White-Club/quiz-league/app/modules/economy/infrastructure/repositories/migrations"
	usermigrations "github.com/Black-And-White-Club/quiz-league/app/modules/user/infrastructure/repositories/migrations"
	"github.com/Black-And-White-Club/quiz-league/pkg/observability/attr"
)

// Module pairs a module name with its migration set.
type Module struct {
	Name       string
	Migrations *migrate.Migrations
}

// Modules returns every module's migrations in foreign key order: leagues
// before the profiles that reference them.
func Modules() []Module {
	return []Module{
		{"competition", competitionmigrations.Migrations},
		{"user", usermigrations.Migrations},
		{"economy", economymigrations.Migrations},
	}
}

// Migrators builds one bun migrator per module, keyed by module name.
func Migrators(db *bun.DB) map[string]*migrate.Migrator {
	out := make(map[string]*migrate.Migrator)
	for _, m := range Modules() {
		out[m.Name] = migrate.NewMigrator(db, m.Migrations)
	}
	return out
}

// Up initializes the migration tables and applies every pending module
// migration in order.
func Up(ctx context.Context, db *bun.DB, logger *slog.Logger) error {
	modules := Modules()

	// All modules share bun's migration tables.
	if err := migrate.NewMigrator(db, modules[0].Migrations).Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize migration tables: %w", err)
	}

	for _, m := range modules {
		group, err := migrate.NewMigrator(db, m.Migrations).Migrate(ctx)
		if err != nil {
			return fmt.Errorf("failed to run %s migrations: %w", m.Name, err)
		}
		if group.IsZero() {
			logger.InfoContext(ctx, "No new migrations", attr.String("module", m.Name))
			continue
		}
		logger.InfoContext(ctx, "Migrated module",
			attr.String("module", m.Name),
			attr.String("group", group.String()),
		)
	}
	return nil
}

// River applies River's queue schema using its own pgx pool.
func River(ctx context.Context, dsn string, logger *slog.Logger) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool for River migrations: %w", err)
	}
	defer pool.Close()

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("failed to create River migrator: %w", err)
	}

	res, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{})
	if err != nil {
		return fmt.Errorf("failed to run River migrations: %w", err)
	}
	logger.InfoContext(ctx, "River migrations applied", attr.Int("versions", len(res.Versions)))
	return nil
}
