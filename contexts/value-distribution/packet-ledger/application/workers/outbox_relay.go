package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"giftledger/contexts/value-distribution/packet-ledger/application"
	"giftledger/contexts/value-distribution/packet-ledger/ports"
)

// OutboxRelay drains pending outbox rows to the event bus. It exists only for
// durable deployments: the ledger itself treats event delivery as
// fire-and-forget, so relay failures delay indexing, never ledger state.
type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventSink
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

func (r OutboxRelay) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("outbox list pending failed",
			"event", "packet_ledger_outbox_list_failed",
			"module", "value-distribution/packet-ledger",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	for _, message := range pending {
		envelope := ports.EventEnvelope{
			EventID:       message.OutboxID,
			EventType:     message.EventType,
			OccurredAt:    message.CreatedAt,
			SourceService: "packet-ledger",
			SchemaVersion: 1,
			PartitionKey:  message.PartitionKey,
			Data:          json.RawMessage(message.Payload),
		}

		if err := r.Publisher.Publish(ctx, envelope); err != nil {
			logger.Error("outbox publish failed",
				"event", "packet_ledger_outbox_publish_failed",
				"module", "value-distribution/packet-ledger",
				"layer", "worker",
				"outbox_id", message.OutboxID,
				"event_type", message.EventType,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Outbox.MarkOutboxSent(ctx, message.OutboxID, now); err != nil {
			logger.Error("outbox mark sent failed",
				"event", "packet_ledger_outbox_mark_sent_failed",
				"module", "value-distribution/packet-ledger",
				"layer", "worker",
				"outbox_id", message.OutboxID,
				"error", err.Error(),
			)
			return err
		}
	}

	if len(pending) > 0 {
		logger.Info("outbox relay cycle completed",
			"event", "packet_ledger_outbox_relay_completed",
			"module", "value-distribution/packet-ledger",
			"layer", "worker",
			"sent_count", len(pending),
		)
	}
	return nil
}

// Run loops RunOnce on the given interval until the context is cancelled.
func (r OutboxRelay) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			// RunOnce logs its own failures; the loop keeps ticking.
			_ = r.RunOnce(ctx)
		}
	}
}
