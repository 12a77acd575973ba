package testutils

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Black-And-White-Club/quiz-league/app"
	"github.com/Black-And-White-Club/quiz-league/app/migrations"
	"github.com/Black-And-White-Club/quiz-league/config"
	"github.com/Black-And-White-Club/quiz-league/integration_tests/containers"
	"github.com/Black-And-White-Club/quiz-league/pkg/eventbus"
	"github.com/Black-And-White-Club/quiz-league/pkg/observability"
	"github.com/Black-And-White-Club/quiz-league/pkg/observability/metrics"
)

// Options selects which containers a test package needs.
type Options struct {
	NATS bool
}

// TestEnvironment holds all resources needed for integration testing
type TestEnvironment struct {
	Ctx           context.Context
	CancelContext context.CancelFunc
	PgContainer   *postgres.PostgresContainer
	NatsContainer testcontainers.Container
	DB            *bun.DB
	EventBus      eventbus.EventBus
	Config        *config.Config
	Observability *observability.Observability
}

// NewTestEnvironment starts Postgres, and NATS when asked, runs every
// migration and connects the event bus. Without NATS the bus is in memory.
func NewTestEnvironment(opts Options) (*TestEnvironment, error) {
	ctx, cancel := context.WithCancel(context.Background())
	env := &TestEnvironment{
		Ctx:           ctx,
		CancelContext: cancel,
		Observability: &observability.Observability{
			Logger:  slog.New(slog.DiscardHandler),
			Tracer:  noop.NewTracerProvider().Tracer("test"),
			Metrics: metrics.NewNoop(),
		},
	}

	if err := env.setup(opts); err != nil {
		env.Cleanup()
		return nil, err
	}
	return env, nil
}

func (env *TestEnvironment) setup(opts Options) error {
	ctx := env.Ctx

	pgContainer, dsn, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		return fmt.Errorf("failed to setup postgres container: %w", err)
	}
	env.PgContainer = pgContainer

	env.Config = &config.Config{
		Postgres: config.PostgresConfig{DSN: dsn},
		Competition: config.CompetitionConfig{
			Calendar:       "gregorian",
			Timezone:       "UTC",
			CycleRunAt:     "00:05",
			QueueMaxWorker: 1,
		},
		NATS: config.NATSConfig{QueueGroup: "league-test"},
	}

	if opts.NATS {
		natsContainer, natsURL, err := containers.SetupNatsContainer(ctx)
		if err != nil {
			return fmt.Errorf("failed to setup nats container: %w", err)
		}
		env.NatsContainer = natsContainer
		env.Config.NATS.URL = natsURL
	}

	env.DB = app.OpenDB(dsn)
	if err := env.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	logger := env.Observability.Logger
	if err := migrations.River(ctx, dsn, logger); err != nil {
		return err
	}
	if err := migrations.Up(ctx, env.DB, logger); err != nil {
		return err
	}

	bus, err := app.NewEventBus(env.Config, env.Observability)
	if err != nil {
		return err
	}
	env.EventBus = bus
	return nil
}

// Reset clears the data written by a previous test.
func (env *TestEnvironment) Reset() error {
	return CleanupDatabase(env.Ctx, env.DB)
}

// Cleanup closes connections and terminates the containers.
func (env *TestEnvironment) Cleanup() {
	ctx := context.Background()
	if env.EventBus != nil {
		_ = env.EventBus.Close()
	}
	if env.DB != nil {
		_ = env.DB.Close()
	}
	if env.NatsContainer != nil {
		_ = env.NatsContainer.Terminate(ctx)
	}
	if env.PgContainer != nil {
		_ = env.PgContainer.Terminate(ctx)
	}
	env.CancelContext()
}
