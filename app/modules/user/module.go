package user

import (
	"context"
	"fmt"
	"sync"

	competitiondb "github.com/Black-And-White-Club/quiz-league/app/modules/competition/infrastructure/repositories"
	userservice "github.com/Black-And-White-Club/quiz-league/app/modules/user/application"
	userhandlers "github.com/Black-And-White-Club/quiz-league/app/modules/user/infrastructure/handlers"
	userdb "github.com/Black-And-White-Club/quiz-league/app/modules/user/infrastructure/repositories"
	userrouter "github.com/Black-And-White-Club/quiz-league/app/modules/user/infrastructure/router"
	"github.com/Black-And-White-Club/quiz-league/pkg/eventbus"
	"github.com/Black-And-White-Club/quiz-league/pkg/observability"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
)

// Module represents the user module.
type Module struct {
	UserService   userservice.Service
	Repository    userdb.Repository
	UserRouter    *userrouter.UserRouter
	cancelFunc    context.CancelFunc
	observability *observability.Observability
}

// NewUserModule creates and initializes a new user module.
func NewUserModule(
	ctx context.Context,
	obs *observability.Observability,
	eventBus eventbus.EventBus,
	router *message.Router,
	db *bun.DB,
) (*Module, error) {
	logger := obs.Logger
	logger.InfoContext(ctx, "user.NewUserModule initializing")

	repo := userdb.NewRepository(db)
	leagues := competitiondb.NewRepository(db)

	service := userservice.NewUserService(repo, leagues, logger, obs.Metrics, obs.Tracer, db)
	handlers := userhandlers.NewUserHandlers(service, logger, obs.Tracer)

	userRouter := userrouter.NewUserRouter(logger, router, eventBus, eventBus, obs.Tracer, obs.Metrics)
	if err := userRouter.Configure(ctx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure user router: %w", err)
	}

	return &Module{
		UserService:   service,
		Repository:    repo,
		UserRouter:    userRouter,
		observability: obs,
	}, nil
}

// Run blocks until ctx is cancelled.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting user module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "User module goroutine stopped")
}

// Close shuts down the user module. The shared watermill router is closed by the app.
func (m *Module) Close() error {
	m.observability.Logger.Info("Stopping user module")
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	return nil
}
