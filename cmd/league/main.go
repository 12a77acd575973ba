// Command league is the operator CLI: database migrations, manual cycle runs
// and league ladder seeding.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Black-And-White-Club/quiz-league/app"
	"github.com/Black-And-White-Club/quiz-league/app/migrations"
	"github.com/Black-And-White-Club/quiz-league/config"
	"github.com/Black-And-White-Club/quiz-league/pkg/observability"
	"github.com/fatih/color"
	"github.com/uptrace/bun"
	"github.com/urfave/cli/v2"
)

func main() {
	cliApp := &cli.App{
		Name:  "league",
		Usage: "quiz league operations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yaml",
				Usage:   "path to the configuration file",
				EnvVars: []string{"LEAGUE_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			newDBCommand(),
			newCycleCommand(),
			newLeagueCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		color.Red("error: %v", err)
		os.Exit(1)
	}
}

// env is what every subcommand needs: config, logging and a database handle.
type env struct {
	cfg *config.Config
	obs *observability.Observability
	db  *bun.DB
}

func loadEnv(c *cli.Context) (*env, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	obsCfg := config.ToObsConfig(cfg)
	obsCfg.ServiceName = "league-cli"
	if obsCfg.LogFormat == "" {
		obsCfg.LogFormat = "text"
	}
	return &env{cfg: cfg, obs: observability.Init(obsCfg), db: app.OpenDB(cfg.Postgres.DSN)}, nil
}

func (e *env) close() {
	_ = e.db.Close()
}

func withEnv(action func(c *cli.Context, e *env) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		e, err := loadEnv(c)
		if err != nil {
			return err
		}
		defer e.close()
		return action(c, e)
	}
}

func migrateAll(ctx context.Context, e *env) error {
	if err := migrations.River(ctx, e.cfg.Postgres.DSN, e.obs.Logger); err != nil {
		return err
	}
	return migrations.Up(ctx, e.db, e.obs.Logger)
}
