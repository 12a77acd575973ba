package economyservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	economydomain "github.com/Black-And-White-Club/quiz-league/app/modules/economy/domain"
	economydb "github.com/Black-And-White-Club/quiz-league/app/modules/economy/infrastructure/repositories"
	userdb "github.com/Black-And-White-Club/quiz-league/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/quiz-league/pkg/observability/attr"
	"github.com/Black-And-White-Club/quiz-league/pkg/observability/metrics"
	"github.com/Black-And-White-Club/quiz-league/pkg/pagination"
	"github.com/Black-And-White-Club/quiz-league/pkg/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// EconomyService implements the Service interface.
type EconomyService struct {
	repo    economydb.Repository
	users   userdb.Repository
	logger  *slog.Logger
	metrics metrics.OperationMetrics
	tracer  trace.Tracer
	db      *bun.DB
}

// NewEconomyService creates a new EconomyService.
func NewEconomyService(
	repo economydb.Repository,
	users userdb.Repository,
	logger *slog.Logger,
	metrics metrics.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
) *EconomyService {
	if logger == nil {
		logger = slog.Default()
	}
	return &EconomyService{
		repo:    repo,
		users:   users,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
		db:      db,
	}
}

// RecordTransactionRequest describes one balance change.
type RecordTransactionRequest struct {
	UserID       uuid.UUID
	Amount       int
	Type         economydomain.TransactionType
	Reason       economydomain.Reason
	Description  string
	AllowPartial bool
}

// RecordTransaction locks the profile, applies the change and appends the ledger row.
func (s *EconomyService) RecordTransaction(ctx context.Context, req RecordTransactionRequest) (*economydb.DiamondTransaction, error) {
	recordTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*economydb.DiamondTransaction, error], error) {
		return s.recordTransactionLogic(ctx, db, req)
	}

	result, err := withTelemetry(s, ctx, "RecordTransaction", req.UserID.String(), func(ctx context.Context) (results.OperationResult[*economydb.DiamondTransaction, error], error) {
		return runInTx(s, ctx, recordTx)
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

func (s *EconomyService) recordTransactionLogic(ctx context.Context, db bun.IDB, req RecordTransactionRequest) (results.OperationResult[*economydb.DiamondTransaction, error], error) {
	profile, err := s.users.LockProfile(ctx, db, req.UserID)
	if err != nil {
		if errors.Is(err, userdb.ErrNotFound) {
			return results.FailureResult[*economydb.DiamondTransaction, error](ErrProfileNotFound), nil
		}
		return results.OperationResult[*economydb.DiamondTransaction, error]{}, fmt.Errorf("failed to lock profile: %w", err)
	}

	entry, err := economydomain.BuildTransaction(profile.Diamonds, req.Amount, req.Type, req.Reason, req.Description, req.AllowPartial)
	if err != nil {
		return results.FailureResult[*economydb.DiamondTransaction, error](err), nil
	}

	if err := s.users.UpdateDiamonds(ctx, db, req.UserID, entry.BalanceAfter); err != nil {
		return results.OperationResult[*economydb.DiamondTransaction, error]{}, fmt.Errorf("failed to update balance: %w", err)
	}

	rows := []economydb.DiamondTransaction{ToModel(req.UserID, entry)}
	if err := s.repo.InsertTransactions(ctx, db, rows); err != nil {
		return results.OperationResult[*economydb.DiamondTransaction, error]{}, fmt.Errorf("failed to insert transaction: %w", err)
	}
	return results.SuccessResult[*economydb.DiamondTransaction, error](&rows[0]), nil
}

// ListTransactions pages a user's ledger newest first.
func (s *EconomyService) ListTransactions(ctx context.Context, userID uuid.UUID, page pagination.Page) (pagination.Result[economydb.DiamondTransaction], error) {
	result, err := withTelemetry(s, ctx, "ListTransactions", userID.String(), func(ctx context.Context) (results.OperationResult[pagination.Result[economydb.DiamondTransaction], error], error) {
		txs, count, err := s.repo.ListByUser(ctx, nil, userID, page.Limit(), page.Offset())
		if err != nil {
			return results.OperationResult[pagination.Result[economydb.DiamondTransaction], error]{}, err
		}
		return results.SuccessResult[pagination.Result[economydb.DiamondTransaction], error](pagination.NewResult(page, count, txs)), nil
	})
	if err != nil {
		return pagination.Result[economydb.DiamondTransaction]{}, err
	}
	return *result.Success, nil
}

// ToModel converts a built ledger entry to its row.
func ToModel(userID uuid.UUID, entry economydomain.Transaction) economydb.DiamondTransaction {
	row := economydb.DiamondTransaction{
		UserID:          userID,
		TransactionType: string(entry.Type),
		Reason:          string(entry.Reason),
		Amount:          entry.Amount,
		BalanceAfter:    entry.BalanceAfter,
	}
	if entry.Description != "" {
		desc := entry.Description
		row.Description = &desc
	}
	return row
}

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *EconomyService,
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
		s.metrics.RecordOperationAttempt(ctx, operationName, "EconomyService")
	}

	startTime := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordOperationDuration(ctx, operationName, "EconomyService", time.Since(startTime))
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
				s.metrics.RecordOperationFailure(ctx, operationName, "EconomyService")
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
			s.metrics.RecordOperationFailure(ctx, operationName, "EconomyService")
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
			s.metrics.RecordOperationSuccess(ctx, operationName, "EconomyService")
		}
	}
	return result, nil
}

// runInTx ensures the operation runs within a transaction.
func runInTx[S any, F any](
	s *EconomyService,
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
