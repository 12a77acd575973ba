package scorehandlers

import (
	"context"

	quizevents "github.com/Black-And-White-Club/quiz-league/pkg/events/quiz"
	"github.com/Black-And-White-Club/quiz-league/pkg/handlerwrapper"
)

// Handlers is the contract for score module event handlers.
type Handlers interface {
	HandleParticipationCompleted(ctx context.Context, payload *quizevents.ParticipationCompletedPayloadV1) ([]handlerwrapper.Result, error)
}
