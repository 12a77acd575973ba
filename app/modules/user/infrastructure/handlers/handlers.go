package userhandlers

import (
	"context"
	"log/slog"

	userservice "github.com/Black-And-White-Club/quiz-league/app/modules/user/application"
	userevents "github.com/Black-And-White-Club/quiz-league/pkg/events/user"
	"github.com/Black-And-White-Club/quiz-league/pkg/handlerwrapper"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// UserHandlers handles user lifecycle events.
type UserHandlers struct {
	service userservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewUserHandlers creates a new UserHandlers.
func NewUserHandlers(service userservice.Service, logger *slog.Logger, tracer trace.Tracer) Handlers {
	return &UserHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

// HandleUserRegistered gives a newly registered account a competition profile.
func (h *UserHandlers) HandleUserRegistered(
	ctx context.Context,
	payload *userevents.UserRegisteredPayloadV1,
) ([]handlerwrapper.Result, error) {
	if payload.UserID == uuid.Nil {
		h.logger.WarnContext(ctx, "Ignoring registration without user id")
		return nil, nil
	}

	res, err := h.service.EnsureProfile(ctx, payload.UserID, payload.DisplayName)
	if err != nil {
		return nil, err
	}
	if !res.Created {
		h.logger.DebugContext(ctx, "Profile already exists", "user_id", payload.UserID)
		return nil, nil
	}

	return []handlerwrapper.Result{{
		Topic: userevents.ProfileCreatedV1,
		Payload: &userevents.ProfileCreatedPayloadV1{
			UserID:          res.Profile.UserID,
			CurrentLeagueID: res.Profile.CurrentLeagueID,
		},
	}}, nil
}
