package competitionservice

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	competitiondomain "github.com/Black-And-White-Club/quiz-league/app/modules/competition/domain"
	competitiondb "github.com/Black-And-White-Club/quiz-league/app/modules/competition/infrastructure/repositories"
	economydb "github.com/Black-And-White-Club/quiz-league/app/modules/economy/infrastructure/repositories"
	userdb "github.com/Black-And-White-Club/quiz-league/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/quiz-league/pkg/observability/attr"
	"github.com/Black-And-White-Club/quiz-league/pkg/observability/metrics"
	"github.com/Black-And-White-Club/quiz-league/pkg/results"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// CompetitionService implements the Service interface. It writes to the user
// and economy tables through their repositories so a whole cycle shares one
// transaction.
type CompetitionService struct {
	repo      competitiondb.Repository
	users     userdb.Repository
	ledger    economydb.Repository
	publisher message.Publisher
	calendar  competitiondomain.Calendar
	logger    *slog.Logger
	metrics   metrics.CompetitionMetrics
	tracer    trace.Tracer
	db        *bun.DB
}

// NewCompetitionService creates a new CompetitionService. A nil publisher
// disables cycle events and a nil calendar numbers weeks by the Jalali year.
func NewCompetitionService(
	repo competitiondb.Repository,
	users userdb.Repository,
	ledger economydb.Repository,
	publisher message.Publisher,
	calendar competitiondomain.Calendar,
	logger *slog.Logger,
	metrics metrics.CompetitionMetrics,
	tracer trace.Tracer,
	db *bun.DB,
) *CompetitionService {
	if logger == nil {
		logger = slog.Default()
	}
	if calendar == nil {
		calendar = competitiondomain.JalaliCalendar{}
	}
	return &CompetitionService{
		repo:      repo,
		users:     users,
		ledger:    ledger,
		publisher: publisher,
		calendar:  calendar,
		logger:    logger,
		metrics:   metrics,
		tracer:    tracer,
		db:        db,
	}
}

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *CompetitionService,
	ctx context.Context,
	operationName string,
	identifier string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	if s.metrics != nil {
		s.metrics.RecordOperationAttempt(ctx, operationName, "CompetitionService")
	}

	startTime := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordOperationDuration(ctx, operationName, "CompetitionService", time.Since(startTime))
		}
	}()

	s.logger.InfoContext(ctx, "Operation triggered", attr.ExtractCorrelationID(ctx), attr.String("operation", operationName))

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("identifier", identifier),
				attr.Error(err),
			)
			if s.metrics != nil {
				s.metrics.RecordOperationFailure(ctx, operationName, "CompetitionService")
			}
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Error(wrappedErr),
		)
		if s.metrics != nil {
			s.metrics.RecordOperationFailure(ctx, operationName, "CompetitionService")
		}
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Any("failure_payload", *result.Failure),
		)
	}

	if result.IsSuccess() {
		s.logger.InfoContext(ctx, "Operation completed successfully",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
		)
		if s.metrics != nil {
			s.metrics.RecordOperationSuccess(ctx, operationName, "CompetitionService")
		}
	}
	return result, nil
}

// runInTx ensures the operation runs within a transaction.
func runInTx[S any, F any](
	s *CompetitionService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error),
) (results.OperationResult[S, F], error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, F]
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})
	return result, err
}

// loadLadder reads every league into a ladder.
func (s *CompetitionService) loadLadder(ctx context.Context, db bun.IDB) (competitiondomain.Ladder, error) {
	rows, err := s.repo.ListLeagues(ctx, db)
	if err != nil {
		return competitiondomain.Ladder{}, fmt.Errorf("failed to list leagues: %w", err)
	}
	leagues := make([]competitiondomain.League, len(rows))
	for i, row := range rows {
		leagues[i] = toDomainLeague(row)
	}
	return competitiondomain.NewLadder(leagues)
}

func toDomainLeague(l competitiondb.League) competitiondomain.League {
	return competitiondomain.League{
		ID:                    l.ID,
		Name:                  l.Name,
		Order:                 l.Order,
		PromoteRate:           l.PromoteRate,
		DemoteRate:            l.DemoteRate,
		PromotionMinimumScore: l.PromotionMinimumScore,
		DemotionPenalty:       l.DemotionPenalty,
		TargetDivisionSize:    l.TargetDivisionSize,
		MinDivisionSize:       l.MinDivisionSize,
		MaxDivisionSize:       l.MaxDivisionSize,
	}
}

func toDomainWeek(w competitiondb.Week) competitiondomain.Week {
	return competitiondomain.Week{
		ID:         w.ID,
		Year:       w.Year,
		WeekNumber: w.WeekNumber,
		StartDate:  w.StartDate,
		EndDate:    w.EndDate,
		Status:     competitiondomain.WeekStatus(w.Status),
	}
}
