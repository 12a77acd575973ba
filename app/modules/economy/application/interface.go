package economyservice

import (
	"context"

	economydb "github.com/Black-And-White-Club/quiz-league/app/modules/economy/infrastructure/repositories"
	"github.com/Black-And-White-Club/quiz-league/pkg/pagination"
	"github.com/google/uuid"
)

// Service is the diamond ledger.
type Service interface {
	RecordTransaction(ctx context.Context, req RecordTransactionRequest) (*economydb.DiamondTransaction, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, page pagination.Page) (pagination.Result[economydb.DiamondTransaction], error)
}
