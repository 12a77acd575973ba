package scorehandlers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	scoreservice "github.com/Black-And-White-Club/quiz-league/app/modules/score/application"
	competitionevents "github.com/Black-And-White-Club/quiz-league/pkg/events/competition"
	quizevents "github.com/Black-And-White-Club/quiz-league/pkg/events/quiz"
	"github.com/Black-And-White-Club/quiz-league/pkg/handlerwrapper"
	"github.com/Black-And-White-Club/quiz-league/pkg/observability/attr"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// ScoreHandlers turns quiz results into score deltas.
type ScoreHandlers struct {
	service scoreservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
	now     func() time.Time
}

// NewScoreHandlers creates a new ScoreHandlers.
func NewScoreHandlers(service scoreservice.Service, logger *slog.Logger, tracer trace.Tracer) Handlers {
	return &ScoreHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
		now:     time.Now,
	}
}

// HandleParticipationCompleted forwards the improvement over the user's
// previous best. Attempts that do not beat it score nothing.
func (h *ScoreHandlers) HandleParticipationCompleted(
	ctx context.Context,
	payload *quizevents.ParticipationCompletedPayloadV1,
) ([]handlerwrapper.Result, error) {
	if payload.UserID == uuid.Nil {
		h.logger.WarnContext(ctx, "Ignoring participation without user id",
			attr.String("participation_id", payload.ParticipationID),
		)
		return nil, nil
	}

	delta := payload.NewScore - payload.PreviousBest
	if delta <= 0 {
		h.logger.DebugContext(ctx, "Participation did not improve best score",
			attr.UserID("user_id", payload.UserID),
			attr.Int("previous_best", payload.PreviousBest),
			attr.Int("new_score", payload.NewScore),
		)
		return nil, nil
	}

	at := payload.CompletedAt
	if at.IsZero() {
		at = h.now()
	}

	res, err := h.service.ApplyScoreDelta(ctx, payload.UserID, delta, at)
	if err != nil {
		if errors.Is(err, scoreservice.ErrProfileNotFound) {
			h.logger.WarnContext(ctx, "Dropping score for user without profile",
				attr.UserID("user_id", payload.UserID),
				attr.String("participation_id", payload.ParticipationID),
			)
			return nil, nil
		}
		return nil, err
	}

	return []handlerwrapper.Result{{
		Topic: competitionevents.ScoreAppliedV1,
		Payload: &competitionevents.ScoreAppliedPayloadV1{
			UserID:        res.UserID,
			Delta:         res.Delta,
			TotalScore:    res.TotalScore,
			WeeklyApplied: res.WeeklyApplied,
			LevelID:       res.LevelID,
		},
	}}, nil
}
