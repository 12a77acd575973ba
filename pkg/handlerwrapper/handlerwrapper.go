// Package handlerwrapper adapts typed event handlers to watermill handler
// functions: payload decoding, tracing, metrics and outgoing message encoding.
package handlerwrapper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/quiz-league/pkg/eventbus"
	"github.com/Black-And-White-Club/quiz-league/pkg/observability/attr"
	"github.com/Black-And-White-Club/quiz-league/pkg/observability/metrics"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Result is one outgoing message produced by a handler.
type Result struct {
	Topic    string
	Payload  any
	Metadata map[string]string
}

// WrapTransformingTyped decodes the incoming payload into T, runs handler and
// encodes its results. Decoding failures are acked and dropped since a retry
// can never succeed.
func WrapTransformingTyped[T any](
	handlerName string,
	logger *slog.Logger,
	tracer trace.Tracer,
	m metrics.OperationMetrics,
	handler func(context.Context, *T) ([]Result, error),
) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		ctx := attr.WithCorrelationID(msg.Context(), msg.Metadata.Get(eventbus.CorrelationIDKey))

		if tracer != nil {
			var span trace.Span
			ctx, span = tracer.Start(ctx, handlerName, trace.WithAttributes(
				attribute.String("message.uuid", msg.UUID),
			))
			defer span.End()
		}

		if m != nil {
			m.RecordOperationAttempt(ctx, handlerName, "handler")
			start := time.Now()
			defer func() { m.RecordOperationDuration(ctx, handlerName, "handler", time.Since(start)) }()
		}

		payload := new(T)
		if err := json.Unmarshal(msg.Payload, payload); err != nil {
			logger.ErrorContext(ctx, "Failed to unmarshal payload",
				attr.ExtractCorrelationID(ctx),
				attr.String("handler", handlerName),
				attr.String("message_id", msg.UUID),
				attr.Error(err),
			)
			if m != nil {
				m.RecordOperationFailure(ctx, handlerName, "handler")
			}
			return nil, nil
		}

		results, err := handler(ctx, payload)
		if err != nil {
			trace.SpanFromContext(ctx).SetStatus(codes.Error, err.Error())
			logger.ErrorContext(ctx, "Handler failed",
				attr.ExtractCorrelationID(ctx),
				attr.String("handler", handlerName),
				attr.String("message_id", msg.UUID),
				attr.Error(err),
			)
			if m != nil {
				m.RecordOperationFailure(ctx, handlerName, "handler")
			}
			return nil, fmt.Errorf("%s: %w", handlerName, err)
		}

		out := make([]*message.Message, 0, len(results))
		for _, r := range results {
			outMsg, err := encodeResult(ctx, msg, r)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", handlerName, err)
			}
			out = append(out, outMsg)
		}

		if m != nil {
			m.RecordOperationSuccess(ctx, handlerName, "handler")
		}
		return out, nil
	}
}

func encodeResult(ctx context.Context, in *message.Message, r Result) (*message.Message, error) {
	body, err := json.Marshal(r.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result for %s: %w", r.Topic, err)
	}
	out := message.NewMessage(watermill.NewUUID(), body)
	out.SetContext(ctx)
	out.Metadata.Set(eventbus.CorrelationIDKey, attr.CorrelationID(ctx))
	out.Metadata.Set(eventbus.TopicMetadataKey, r.Topic)
	for k, v := range r.Metadata {
		out.Metadata.Set(k, v)
	}
	if in != nil {
		out.Metadata.Set("caused_by", in.UUID)
	}
	return out, nil
}
