package main

import (
	"fmt"
	"strings"

	"github.com/Black-And-White-Club/quiz-league/app/migrations"
	"github.com/fatih/color"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

func newDBCommand() *cli.Command {
	return &cli.Command{
		Name:  "db",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create migration tables",
				Action: withEnv(func(c *cli.Context, e *env) error {
					// bun keeps one migrations table for every module.
					migrator := migrate.NewMigrator(e.db, migrations.Modules()[0].Migrations)
					if err := migrator.Init(c.Context); err != nil {
						return fmt.Errorf("failed to initialize migration tables: %w", err)
					}
					color.Green("Migration tables ready")
					return nil
				}),
			},
			{
				Name:  "migrate",
				Usage: "apply River and module migrations",
				Action: withEnv(func(c *cli.Context, e *env) error {
					if err := migrateAll(c.Context, e); err != nil {
						return err
					}
					color.Green("Database is up to date")
					return nil
				}),
			},
			{
				Name:  "rollback",
				Usage: "rollback the last migration group of every module",
				Action: withEnv(func(c *cli.Context, e *env) error {
					modules := migrations.Modules()
					for i := len(modules) - 1; i >= 0; i-- {
						m := modules[i]
						group, err := migrate.NewMigrator(e.db, m.Migrations).Rollback(c.Context)
						if err != nil {
							return fmt.Errorf("failed to roll back %s: %w", m.Name, err)
						}
						if group.IsZero() {
							fmt.Printf("No groups to roll back for module: %s\n", m.Name)
						} else {
							color.Yellow("Rolled back module: %s to %s", m.Name, group)
						}
					}
					return nil
				}),
			},
			{
				Name:  "status",
				Usage: "print migrations status",
				Action: withEnv(func(c *cli.Context, e *env) error {
					for _, m := range migrations.Modules() {
						ms, err := migrate.NewMigrator(e.db, m.Migrations).MigrationsWithStatus(c.Context)
						if err != nil {
							return err
						}
						color.Cyan("Migrations for module: %s", m.Name)
						fmt.Printf("  Applied: %s\n", ms.Applied())
						unapplied := ms.Unapplied()
						if len(unapplied) > 0 {
							color.Yellow("  Unapplied: %s", unapplied)
						} else {
							fmt.Printf("  Unapplied: %s\n", unapplied)
						}
					}
					return nil
				}),
			},
			{
				Name:      "create_go",
				Usage:     "create Go migration",
				ArgsUsage: "<module> <name...>",
				Action: withEnv(func(c *cli.Context, e *env) error {
					migrator, err := moduleMigrator(e, c.Args().First())
					if err != nil {
						return err
					}
					name := strings.Join(c.Args().Tail(), "_")
					mf, err := migrator.CreateGoMigration(c.Context, name)
					if err != nil {
						return err
					}
					fmt.Printf("Created migration %s (%s)\n", mf.Name, mf.Path)
					return nil
				}),
			},
			{
				Name:      "create_sql",
				Usage:     "create up and down SQL migrations",
				ArgsUsage: "<module> <name...>",
				Action: withEnv(func(c *cli.Context, e *env) error {
					migrator, err := moduleMigrator(e, c.Args().First())
					if err != nil {
						return err
					}
					name := strings.Join(c.Args().Tail(), "_")
					files, err := migrator.CreateSQLMigrations(c.Context, name)
					if err != nil {
						return err
					}
					for _, mf := range files {
						fmt.Printf("Created migration %s (%s)\n", mf.Name, mf.Path)
					}
					return nil
				}),
			},
		},
	}
}

func moduleMigrator(e *env, name string) (*migrate.Migrator, error) {
	migrator, ok := migrations.Migrators(e.db)[name]
	if !ok {
		return nil, fmt.Errorf("invalid module name: %q", name)
	}
	return migrator, nil
}
