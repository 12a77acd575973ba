package handlerwrapper

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/Black-And-White-Club/quiz-league/pkg/eventbus"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

type ping struct {
	Value int `json:"value"`
}

func TestWrapTransformingTyped(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tracer := noop.NewTracerProvider().Tracer("test")

	t.Run("decodes and encodes", func(t *testing.T) {
		var got *ping
		fn := WrapTransformingTyped("test.ping", logger, tracer, nil, func(ctx context.Context, p *ping) ([]Result, error) {
			got = p
			return []Result{{Topic: "test.pong", Payload: ping{Value: p.Value + 1}}}, nil
		})

		in := message.NewMessage(watermill.NewUUID(), []byte(`{"value":41}`))
		in.Metadata.Set(eventbus.CorrelationIDKey, "corr-1")

		out, err := fn(in)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 41, got.Value)
		require.Len(t, out, 1)
		assert.JSONEq(t, `{"value":42}`, string(out[0].Payload))
		assert.Equal(t, "test.pong", out[0].Metadata.Get(eventbus.TopicMetadataKey))
		assert.Equal(t, "corr-1", out[0].Metadata.Get(eventbus.CorrelationIDKey))
		assert.Equal(t, in.UUID, out[0].Metadata.Get("caused_by"))
	})

	t.Run("bad payload is dropped", func(t *testing.T) {
		called := false
		fn := WrapTransformingTyped("test.ping", logger, nil, nil, func(ctx context.Context, p *ping) ([]Result, error) {
			called = true
			return nil, nil
		})

		out, err := fn(message.NewMessage(watermill.NewUUID(), []byte(`not json`)))
		assert.NoError(t, err)
		assert.Nil(t, out)
		assert.False(t, called)
	})

	t.Run("handler error is returned for redelivery", func(t *testing.T) {
		boom := errors.New("boom")
		fn := WrapTransformingTyped("test.ping", logger, tracer, nil, func(ctx context.Context, p *ping) ([]Result, error) {
			return nil, boom
		})

		_, err := fn(message.NewMessage(watermill.NewUUID(), []byte(`{"value":1}`)))
		assert.ErrorIs(t, err, boom)
	})
}
