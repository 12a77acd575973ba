package competitionservice

import (
	"context"
	"log/slog"
	"testing"

	competitiondomain "github.com/Black-And-White-Club/quiz-league/app/modules/competition/domain"
	competitiondb "github.com/Black-And-White-Club/quiz-league/app/modules/competition/infrastructure/repositories"
	economydb "github.com/Black-And-White-Club/quiz-league/app/modules/economy/infrastructure/repositories"
	userdb "github.com/Black-And-White-Club/quiz-league/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/quiz-league/pkg/observability/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTelemetryCountsOutcomeOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	svc := NewCompetitionService(
		competitiondb.NewFakeRepository(), userdb.NewFakeRepository(), economydb.NewFakeRepository(), nil,
		competitiondomain.GregorianCalendar{},
		slog.New(slog.DiscardHandler),
		metrics.NewPrometheus("svc", reg),
		nil,
		nil,
	)

	_, err := svc.ListWeeks(context.Background(), "someday")
	require.Error(t, err)

	count, err := testutil.GatherAndCount(reg, "svc_operation_success_total")
	require.NoError(t, err)
	assert.Zero(t, count, "failure result must not count as success")

	_, err = svc.ListWeeks(context.Background(), "active")
	require.NoError(t, err)

	count, err = testutil.GatherAndCount(reg, "svc_operation_success_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
