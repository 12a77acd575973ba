package userhandlers

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	userservice "github.com/Black-And-White-Club/quiz-league/app/modules/user/application"
	userdb "github.com/Black-And-White-Club/quiz-league/app/modules/user/infrastructure/repositories"
	userevents "github.com/Black-And-White-Club/quiz-league/pkg/events/user"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestHandleUserRegistered(t *testing.T) {
	userID := uuid.New()
	league := int64(3)
	tracer := noop.NewTracerProvider().Tracer("test")

	tests := []struct {
		name       string
		payload    *userevents.UserRegisteredPayloadV1
		setupFake  func(*FakeUserService)
		wantTopics []string
		wantErr    bool
	}{
		{
			name:    "new profile announces creation",
			payload: &userevents.UserRegisteredPayloadV1{UserID: userID, DisplayName: "Ali"},
			setupFake: func(f *FakeUserService) {
				f.EnsureProfileFunc = func(ctx context.Context, id uuid.UUID, name string) (*userservice.EnsureProfileResult, error) {
					return &userservice.EnsureProfileResult{
						Profile: &userdb.Profile{UserID: id, CurrentLeagueID: &league},
						Created: true,
					}, nil
				}
			},
			wantTopics: []string{userevents.ProfileCreatedV1},
		},
		{
			name:      "existing profile is quiet",
			payload:   &userevents.UserRegisteredPayloadV1{UserID: userID},
			setupFake: func(f *FakeUserService) {},
		},
		{
			name:    "missing user id is ignored",
			payload: &userevents.UserRegisteredPayloadV1{},
			setupFake: func(f *FakeUserService) {
				f.EnsureProfileFunc = func(ctx context.Context, id uuid.UUID, name string) (*userservice.EnsureProfileResult, error) {
					t.Fatal("service must not be called")
					return nil, nil
				}
			},
		},
		{
			name:    "service error is returned",
			payload: &userevents.UserRegisteredPayloadV1{UserID: userID},
			setupFake: func(f *FakeUserService) {
				f.EnsureProfileFunc = func(ctx context.Context, id uuid.UUID, name string) (*userservice.EnsureProfileResult, error) {
					return nil, errors.New("db down")
				}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &FakeUserService{}
			tt.setupFake(fake)

			h := NewUserHandlers(fake, slog.Default(), tracer)
			res, err := h.HandleUserRegistered(context.Background(), tt.payload)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			var topics []string
			for _, r := range res {
				topics = append(topics, r.Topic)
			}
			assert.Equal(t, tt.wantTopics, topics)
		})
	}
}
