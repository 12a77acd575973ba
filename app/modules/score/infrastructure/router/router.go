package scorerouter

import (
	"context"
	"log/slog"

	scorehandlers "github.com/Black-And-White-Club/quiz-league/app/modules/score/infrastructure/handlers"
	"github.com/Black-And-White-Club/quiz-league/pkg/eventbus"
	quizevents "github.com/Black-And-White-Club/quiz-league/pkg/events/quiz"
	"github.com/Black-And-White-Club/quiz-league/pkg/handlerwrapper"
	"github.com/Black-And-White-Club/quiz-league/pkg/observability/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"
)

// ScoreRouter subscribes the score ledger to quiz results.
type ScoreRouter struct {
	logger     *slog.Logger
	Router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	tracer     trace.Tracer
	metrics    metrics.OperationMetrics
}

// NewScoreRouter creates a new ScoreRouter.
func NewScoreRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber eventbus.EventBus,
	publisher eventbus.EventBus,
	tracer trace.Tracer,
	metrics metrics.OperationMetrics,
) *ScoreRouter {
	return &ScoreRouter{
		logger:     logger,
		Router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		tracer:     tracer,
		metrics:    metrics,
	}
}

// Configure registers the score handlers on the router.
func (r *ScoreRouter) Configure(_ context.Context, handlers scorehandlers.Handlers) error {
	deps := handlerDeps{
		router:     r.Router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
		metrics:    r.metrics,
	}

	registerHandler(deps, quizevents.ParticipationCompletedV1, handlers.HandleParticipationCompleted)
	return nil
}

type handlerDeps struct {
	router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	logger     *slog.Logger
	tracer     trace.Tracer
	metrics    metrics.OperationMetrics
}

// registerHandler registers a transformation-pattern handler with a typed payload.
func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "score." + topic

	deps.router.AddHandler(
		handlerName,
		topic,
		deps.subscriber,
		"", // topic comes from message metadata
		deps.publisher,
		handlerwrapper.WrapTransformingTyped(
			handlerName,
			deps.logger,
			deps.tracer,
			deps.metrics,
			handler,
		),
	)
}

// Close stops the router.
func (r *ScoreRouter) Close() error {
	return r.Router.Close()
}
