package userservice

import (
	"context"

	competitiondb "github.com/Black-And-White-Club/quiz-league/app/modules/competition/infrastructure/repositories"
	"github.com/uptrace/bun"
)

type fakeLeagueLister struct {
	leagues []competitiondb.League
	err     error
}

func (f *fakeLeagueLister) ListLeagues(ctx context.Context, db bun.IDB) ([]competitiondb.League, error) {
	return f.leagues, f.err
}

var _ LeagueLister = (*fakeLeagueLister)(nil)

func ptrInt64(v int64) *int64 { return &v }
