package eventbus

import (
	"context"
	"fmt"
	"log/slog"

	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// InitializeStreams creates the census streams in JetStream during
// application startup. The watermill layer auto-provisions per-subject
// streams as a fallback; creating them up front gives every subject a
// home before the first publish.
func InitializeStreams(ctx context.Context, conn *nc.Conn, logger *slog.Logger) error {
	js, err := jetstream.New(conn)
	if err != nil {
		return fmt.Errorf("failed to open JetStream context: %w", err)
	}

	streamConfigs := []jetstream.StreamConfig{
		{
			Name:     "census",
			Subjects: []string{"census.>"},
		},
	}

	for _, streamConfig := range streamConfigs {
		_, err := js.Stream(ctx, streamConfig.Name)
		if err == jetstream.ErrStreamNotFound {
			_, err := js.CreateStream(ctx, streamConfig)
			if err != nil {
				logger.Error("Failed to create JetStream stream", slog.String("stream", streamConfig.Name), slog.Any("error", err))
				return err
			}
			logger.Info("Created JetStream stream", slog.String("stream", streamConfig.Name))
		} else if err != nil {
			return fmt.Errorf("failed to check stream %s: %w", streamConfig.Name, err)
		}
	}
	return nil
}
