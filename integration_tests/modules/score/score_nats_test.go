package score_test

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"testing"
	"time"

	"github.com/Black-And-White-Club/quiz-league/app/modules/score"
	userdb "github.com/Black-And-White-Club/quiz-league/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/quiz-league/integration_tests/testutils"
	"github.com/Black-And-White-Club/quiz-league/pkg/eventbus"
	competitionevents "github.com/Black-And-White-Club/quiz-league/pkg/events/competition"
	quizevents "github.com/Black-And-White-Club/quiz-league/pkg/events/quiz"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEnv *testutils.TestEnvironment

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		log.Println("Skipping score integration tests in short mode")
		os.Exit(0)
	}

	var err error
	testEnv, err = testutils.NewTestEnvironment(testutils.Options{NATS: true})
	if err != nil {
		log.Fatalf("Failed to set up test environment: %v", err)
	}

	code := m.Run()
	testEnv.Cleanup()
	os.Exit(code)
}

func TestParticipationOverNATS(t *testing.T) {
	require.NoError(t, testEnv.Reset())

	ctx, cancel := context.WithTimeout(testEnv.Ctx, 30*time.Second)
	defer cancel()

	profile := testutils.NewTestDataGenerator(7).GenerateProfiles(1, 1)[0]
	profile.CurrentLeagueID = nil
	profile.TotalScore = 40
	require.NoError(t, testutils.InsertProfiles(ctx, testEnv.DB, []userdb.Profile{profile}))

	router, err := message.NewRouter(message.RouterConfig{}, watermill.NewSlogLogger(testEnv.Observability.Logger))
	require.NoError(t, err)
	module, err := score.NewScoreModule(ctx, testEnv.Config, testEnv.Observability, testEnv.EventBus, router, testEnv.DB)
	require.NoError(t, err)
	defer module.Close()

	applied, err := testEnv.EventBus.Subscribe(ctx, competitionevents.ScoreAppliedV1)
	require.NoError(t, err)

	go func() { _ = router.Run(ctx) }()
	defer router.Close()
	<-router.Running()

	msg, err := eventbus.NewJSONMessage(ctx, quizevents.ParticipationCompletedPayloadV1{
		ParticipationID: "quiz-1",
		UserID:          profile.UserID,
		PreviousBest:    10,
		NewScore:        35,
		CompletedAt:     time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NoError(t, testEnv.EventBus.Publish(quizevents.ParticipationCompletedV1, msg))

	select {
	case out := <-applied:
		var payload competitionevents.ScoreAppliedPayloadV1
		require.NoError(t, json.Unmarshal(out.Payload, &payload))
		out.Ack()
		assert.Equal(t, profile.UserID, payload.UserID)
		assert.Equal(t, 25, payload.Delta)
		assert.Equal(t, 65, payload.TotalScore)
		assert.False(t, payload.WeeklyApplied)
	case <-ctx.Done():
		t.Fatal("no score applied event over NATS")
	}

	stored, err := userdb.NewRepository(testEnv.DB).GetProfile(ctx, testEnv.DB, profile.UserID)
	require.NoError(t, err)
	assert.Equal(t, 65, stored.TotalScore)
}
