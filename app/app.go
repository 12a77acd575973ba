package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/Black-And-White-Club/quiz-league/app/modules/competition"
	economyservice "github.com/Black-And-White-Club/quiz-league/app/modules/economy/application"
	economydb "github.com/Black-And-White-Club/quiz-league/app/modules/economy/infrastructure/repositories"
	"github.com/Black-And-White-Club/quiz-league/app/modules/score"
	"github.com/Black-And-White-Club/quiz-league/app/modules/user"
	userdb "github.com/Black-And-White-Club/quiz-league/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/quiz-league/config"
	"github.com/Black-And-White-Club/quiz-league/pkg/eventbus"
	"github.com/Black-And-White-Club/quiz-league/pkg/observability"
	"github.com/Black-And-White-Club/quiz-league/pkg/observability/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// App holds the process-wide resources and the modules built on them.
type App struct {
	Config        *config.Config
	Observability *observability.Observability
	DB            *bun.DB
	EventBus      eventbus.EventBus
	Router        *message.Router
	HTTPServer    *http.Server

	UserModule        *user.Module
	ScoreModule       *score.Module
	CompetitionModule *competition.Module
}

// NewApp loads the configuration and wires every module.
func NewApp(ctx context.Context, configFile string) (*App, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	obs := observability.Init(config.ToObsConfig(cfg))

	app := &App{Config: cfg, Observability: obs}
	if err := app.Initialize(ctx); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

// Initialize connects the database and event bus, then builds the modules
// on a shared watermill router and chi router.
func (app *App) Initialize(ctx context.Context) error {
	logger := app.Observability.Logger
	cfg := app.Config

	app.DB = OpenDB(cfg.Postgres.DSN)
	if err := app.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	bus, err := NewEventBus(cfg, app.Observability)
	if err != nil {
		return err
	}
	app.EventBus = bus

	router, err := message.NewRouter(message.RouterConfig{}, watermill.NewSlogLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create watermill router: %w", err)
	}
	router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
	)
	app.Router = router

	httpRouter := newHTTPRouter(cfg, app.Observability)

	app.UserModule, err = user.NewUserModule(ctx, app.Observability, bus, router, app.DB)
	if err != nil {
		return fmt.Errorf("failed to initialize user module: %w", err)
	}

	app.ScoreModule, err = score.NewScoreModule(ctx, cfg, app.Observability, bus, router, app.DB)
	if err != nil {
		return fmt.Errorf("failed to initialize score module: %w", err)
	}

	economy := economyservice.NewEconomyService(
		economydb.NewRepository(app.DB),
		userdb.NewRepository(app.DB),
		logger,
		app.Observability.Metrics,
		app.Observability.Tracer,
		app.DB,
	)

	app.CompetitionModule, err = competition.NewCompetitionModule(ctx, cfg, app.Observability, bus, app.DB, economy, httpRouter)
	if err != nil {
		return fmt.Errorf("failed to initialize competition module: %w", err)
	}

	app.HTTPServer = newHTTPServer(cfg.HTTP.Address, httpRouter)

	logger.InfoContext(ctx, "Application initialized",
		attr.String("http_address", cfg.HTTP.Address),
		attr.Bool("nats", cfg.NATS.URL != ""),
		attr.Bool("queue", app.CompetitionModule.Queue != nil),
	)
	return nil
}

// OpenDB opens a bun handle over pgdriver.
func OpenDB(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// NewEventBus connects to NATS when a url is configured and falls back to an
// in-memory bus otherwise.
func NewEventBus(cfg *config.Config, obs *observability.Observability) (eventbus.EventBus, error) {
	if cfg.NATS.URL == "" {
		obs.Logger.Warn("No NATS url configured, using in-memory event bus")
		return eventbus.NewInMemory(obs.Logger), nil
	}
	bus, err := eventbus.NewEventBus(eventbus.Config{
		URL:           cfg.NATS.URL,
		NKeySeed:      cfg.NATS.NKeySeed,
		JetStream:     cfg.NATS.JetStream,
		QueueGroup:    cfg.NATS.QueueGroup,
		DurablePrefix: cfg.NATS.DurablePrefix,
		ClientName:    "quiz-league",
	}, obs.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}
	return bus, nil
}
