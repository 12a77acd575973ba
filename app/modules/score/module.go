package score

import (
	"context"
	"fmt"
	"sync"

	competitiondb "github.com/Black-And-White-Club/quiz-league/app/modules/competition/infrastructure/repositories"
	scoreservice "github.com/Black-And-White-Club/quiz-league/app/modules/score/application"
	scorehandlers "github.com/Black-And-White-Club/quiz-league/app/modules/score/infrastructure/handlers"
	scorerouter "github.com/Black-And-White-Club/quiz-league/app/modules/score/infrastructure/router"
	userdb "github.com/Black-And-White-Club/quiz-league/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/quiz-league/config"
	"github.com/Black-And-White-Club/quiz-league/pkg/eventbus"
	"github.com/Black-And-White-Club/quiz-league/pkg/observability"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
)

// Module represents the score module.
type Module struct {
	ScoreService  scoreservice.Service
	ScoreRouter   *scorerouter.ScoreRouter
	cancelFunc    context.CancelFunc
	observability *observability.Observability
}

// NewScoreModule creates the score ledger and subscribes it to quiz results.
func NewScoreModule(
	ctx context.Context,
	cfg *config.Config,
	obs *observability.Observability,
	eventBus eventbus.EventBus,
	router *message.Router,
	db *bun.DB,
) (*Module, error) {
	logger := obs.Logger
	logger.InfoContext(ctx, "score.NewScoreModule initializing")

	location, err := cfg.Competition.Location()
	if err != nil {
		return nil, err
	}

	service := scoreservice.NewScoreService(
		userdb.NewRepository(db),
		competitiondb.NewRepository(db),
		location,
		logger,
		obs.Metrics,
		obs.Tracer,
		db,
	)
	handlers := scorehandlers.NewScoreHandlers(service, logger, obs.Tracer)

	scoreRouter := scorerouter.NewScoreRouter(logger, router, eventBus, eventBus, obs.Tracer, obs.Metrics)
	if err := scoreRouter.Configure(ctx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure score router: %w", err)
	}

	return &Module{
		ScoreService:  service,
		ScoreRouter:   scoreRouter,
		observability: obs,
	}, nil
}

// Run blocks until ctx is cancelled.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting score module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Score module goroutine stopped")
}

// Close shuts down the score module. The shared watermill router is closed by the app.
func (m *Module) Close() error {
	m.observability.Logger.Info("Stopping score module")
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	return nil
}
