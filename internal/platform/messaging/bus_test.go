package messaging

import (
	"context"
	"testing"
	"time"

	"giftledger/internal/shared/events"
)

func TestBusDeliversToMatchingSubscriber(t *testing.T) {
	bus := NewBus(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan events.Envelope, 1)
	if err := bus.Subscribe(ctx, events.TypePacketClaimed, func(_ context.Context, envelope events.Envelope) error {
		received <- envelope
		return nil
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	claimed := events.Envelope{EventID: "evt-1", EventType: events.TypePacketClaimed, PartitionKey: "0x01"}
	if err := bus.Publish(ctx, claimed); err != nil {
		t.Fatalf("publish claimed: %v", err)
	}
	// A different type never reaches the subscriber.
	if err := bus.Publish(ctx, events.Envelope{EventID: "evt-2", EventType: events.TypePacketCreated}); err != nil {
		t.Fatalf("publish created: %v", err)
	}

	select {
	case envelope := <-received:
		if envelope.EventID != "evt-1" {
			t.Fatalf("expected evt-1, got %q", envelope.EventID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber never received the claimed event")
	}

	select {
	case envelope := <-received:
		t.Fatalf("unexpected delivery of %q", envelope.EventID)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBusPublishWithoutSubscribersSucceeds(t *testing.T) {
	bus := NewBus(nil)
	if err := bus.Publish(context.Background(), events.Envelope{EventType: events.TypePacketRefunded}); err != nil {
		t.Fatalf("publish: %v", err)
	}
}
