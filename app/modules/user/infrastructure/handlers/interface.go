package userhandlers

import (
	"context"

	userevents "github.com/Black-And-White-Club/quiz-league/pkg/events/user"
	"github.com/Black-And-White-Club/quiz-league/pkg/handlerwrapper"
)

// Handlers is the contract for user module event handlers.
type Handlers interface {
	HandleUserRegistered(ctx context.Context, payload *userevents.UserRegisteredPayloadV1) ([]handlerwrapper.Result, error)
}
