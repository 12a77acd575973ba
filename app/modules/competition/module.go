package competition

import (
	"context"
	"fmt"
	"sync"

	competitionservice "github.com/Black-And-White-Club/quiz-league/app/modules/competition/application"
	competitiondomain "github.com/Black-And-White-Club/quiz-league/app/modules/competition/domain"
	competitionhandlers "github.com/Black-And-White-Club/quiz-league/app/modules/competition/infrastructure/handlers"
	competitionqueue "github.com/Black-And-White-Club/quiz-league/app/modules/competition/infrastructure/queue"
	competitiondb "github.com/Black-And-White-Club/quiz-league/app/modules/competition/infrastructure/repositories"
	economyservice "github.com/Black-And-White-Club/quiz-league/app/modules/economy/application"
	economydb "github.com/Black-And-White-Club/quiz-league/app/modules/economy/infrastructure/repositories"
	userdb "github.com/Black-And-White-Club/quiz-league/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/quiz-league/config"
	"github.com/Black-And-White-Club/quiz-league/pkg/eventbus"
	"github.com/Black-And-White-Club/quiz-league/pkg/jwt"
	"github.com/Black-And-White-Club/quiz-league/pkg/observability"
	"github.com/Black-And-White-Club/quiz-league/pkg/observability/attr"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
	"golang.org/x/time/rate"
)

// Module represents the competition module.
type Module struct {
	Service       *competitionservice.CompetitionService
	Queue         *competitionqueue.Service
	Handlers      *competitionhandlers.CompetitionHandlers
	cancelFunc    context.CancelFunc
	observability *observability.Observability
}

// NewCompetitionModule wires the cycle service, its River queue and its HTTP
// routes. The queue is skipped when no DSN is configured and the routes when
// httpRouter is nil.
func NewCompetitionModule(
	ctx context.Context,
	cfg *config.Config,
	obs *observability.Observability,
	eventBus eventbus.EventBus,
	db *bun.DB,
	economy economyservice.Service,
	httpRouter chi.Router,
) (*Module, error) {
	logger := obs.Logger
	logger.InfoContext(ctx, "competition.NewCompetitionModule initializing")

	calendar, err := competitiondomain.CalendarByName(cfg.Competition.Calendar)
	if err != nil {
		return nil, err
	}
	location, err := cfg.Competition.Location()
	if err != nil {
		return nil, err
	}

	service := competitionservice.NewCompetitionService(
		competitiondb.NewRepository(db),
		userdb.NewRepository(db),
		economydb.NewRepository(db),
		eventBus,
		calendar,
		logger,
		obs.Metrics,
		obs.Tracer,
		db,
	)

	module := &Module{
		Service:       service,
		observability: obs,
	}

	var scheduler competitionhandlers.CycleScheduler
	if cfg.Postgres.DSN != "" {
		hour, minute, err := cfg.Competition.ParseRunAt()
		if err != nil {
			return nil, err
		}
		queue, err := competitionqueue.NewService(ctx, db, logger, cfg.Postgres.DSN, obs.Metrics, service, competitionqueue.Options{
			Schedule:   competitionqueue.DailySchedule{Hour: hour, Minute: minute, Location: location},
			MaxWorkers: cfg.Competition.QueueMaxWorker,
			Periodic:   cfg.Competition.SchedulerOn,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create competition queue: %w", err)
		}
		module.Queue = queue
		scheduler = queue
	}

	module.Handlers = competitionhandlers.NewCompetitionHandlers(service, economy, scheduler, logger, location)

	if httpRouter != nil {
		tokens := jwt.NewService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.DefaultTTL)
		limiter := competitionhandlers.NewIPRateLimiter(rate.Limit(cfg.HTTP.RateLimit), cfg.HTTP.RateBurst)
		httpRouter.Route("/api/competition", func(r chi.Router) {
			r.Use(competitionhandlers.CORSMiddleware(cfg.HTTP.AllowedOrigins))
			r.Use(competitionhandlers.RateLimitMiddleware(limiter))
			module.Handlers.Register(r, tokens)
		})
	}

	return module, nil
}

// Run starts the job queue, if any, and blocks until ctx is cancelled.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting competition module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if m.Queue != nil {
		if err := m.Queue.Start(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to start competition queue", attr.Error(err))
		}
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Competition module goroutine stopped")
}

// Close stops the job queue and cancels Run.
func (m *Module) Close() error {
	logger := m.observability.Logger
	logger.Info("Stopping competition module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if m.Queue != nil {
		if err := m.Queue.Stop(context.Background()); err != nil {
			logger.Error("Error stopping competition queue", attr.Error(err))
			return fmt.Errorf("error stopping competition queue: %w", err)
		}
	}

	logger.Info("Competition module stopped")
	return nil
}
