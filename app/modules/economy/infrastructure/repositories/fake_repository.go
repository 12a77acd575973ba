package economydb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// FakeRepository is a programmable Repository for tests.
type FakeRepository struct {
	trace []string

	InsertTransactionsFn func(ctx context.Context, db bun.IDB, txs []DiamondTransaction) error
	ListByUserFn         func(ctx context.Context, db bun.IDB, userID uuid.UUID, limit, offset int) ([]DiamondTransaction, int, error)
}

func NewFakeRepository() *FakeRepository {
	return &FakeRepository{trace: []string{}}
}

func (f *FakeRepository) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeRepository) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeRepository) InsertTransactions(ctx context.Context, db bun.IDB, txs []DiamondTransaction) error {
	f.record("InsertTransactions")
	if f.InsertTransactionsFn != nil {
		return f.InsertTransactionsFn(ctx, db, txs)
	}
	return nil
}

func (f *FakeRepository) ListByUser(ctx context.Context, db bun.IDB, userID uuid.UUID, limit, offset int) ([]DiamondTransaction, int, error) {
	f.record("ListByUser")
	if f.ListByUserFn != nil {
		return f.ListByUserFn(ctx, db, userID, limit, offset)
	}
	return nil, 0, nil
}

var _ Repository = (*FakeRepository)(nil)
