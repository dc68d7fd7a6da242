package handlerwrapper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TopicMetadataKey carries the destination topic on produced messages.
// Handlers are registered with an empty publish topic; the eventbus
// resolves the real topic from this metadata entry per message.
const TopicMetadataKey = "topic"

// Result is one event produced by a transformation handler.
type Result struct {
	Topic   string
	Payload any
}

// WrapTransformingTyped adapts a typed transformation handler to a
// watermill HandlerFunc: JSON payload in, zero or more JSON events out.
// A payload that does not unmarshal is dropped with an error log rather
// than nacked, so a poison message cannot wedge the subscription.
func WrapTransformingTyped[T any](
	handlerName string,
	logger *slog.Logger,
	tracer trace.Tracer,
	handler func(ctx context.Context, payload *T) ([]Result, error),
) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		ctx, span := tracer.Start(msg.Context(), handlerName, trace.WithAttributes(
			attribute.String("handler", handlerName),
			attribute.String("message_uuid", msg.UUID),
		))
		defer span.End()

		var payload T
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			logger.ErrorContext(ctx, "dropping undecodable message",
				slog.String("handler", handlerName),
				slog.String("message_uuid", msg.UUID),
				slog.Any("error", err),
			)
			return nil, nil
		}

		outcomes, err := handler(ctx, &payload)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("%s: %w", handlerName, err)
		}

		out := make([]*message.Message, 0, len(outcomes))
		for _, outcome := range outcomes {
			body, err := json.Marshal(outcome.Payload)
			if err != nil {
				span.RecordError(err)
				return nil, fmt.Errorf("%s: marshal result for %s: %w", handlerName, outcome.Topic, err)
			}
			produced := message.NewMessage(watermill.NewUUID(), body)
			produced.Metadata.Set(TopicMetadataKey, outcome.Topic)
			produced.SetContext(ctx)
			out = append(out, produced)
		}
		return out, nil
	}
}
