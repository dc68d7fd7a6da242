package eventbus

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/clubkit/census-bot/internal/handlerwrapper"
)

func TestInProcessBus_RoutesOnMetadataTopic(t *testing.T) {
	bus := NewInProcessBus(slog.New(slog.DiscardHandler))
	defer bus.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := bus.Subscribe(ctx, "outcome.topic")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), []byte(`{"guild_id":"g1"}`))
	msg.Metadata.Set(handlerwrapper.TopicMetadataKey, "outcome.topic")

	// Empty topic: the bus must route on the metadata entry.
	if err := bus.Publish("", msg); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case received := <-messages:
		received.Ack()
		if string(received.Payload) != `{"guild_id":"g1"}` {
			t.Errorf("payload = %s", received.Payload)
		}
	case <-ctx.Done():
		t.Fatal("message was not routed to the metadata topic")
	}
}

func TestInProcessBus_ExplicitTopicWins(t *testing.T) {
	bus := NewInProcessBus(slog.New(slog.DiscardHandler))
	defer bus.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := bus.Subscribe(ctx, "explicit.topic")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), []byte("payload"))
	if err := bus.Publish("explicit.topic", msg); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case received := <-messages:
		received.Ack()
	case <-ctx.Done():
		t.Fatal("message was not delivered on the explicit topic")
	}
}

func TestInProcessBus_MissingTopicMetadataFails(t *testing.T) {
	bus := NewInProcessBus(slog.New(slog.DiscardHandler))
	defer bus.Close()

	msg := message.NewMessage(watermill.NewUUID(), []byte("payload"))
	if err := bus.Publish("", msg); err == nil {
		t.Fatal("expected error for a message without topic metadata")
	}
}
