package events

import (
	"encoding/json"
	"time"
)

// Envelope is the canonical event shape emitted by the packet ledger.
// Delivery is fire-and-forget: sinks receive envelopes for external indexing
// and can never gate the success of a ledger operation.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	OccurredAt    time.Time       `json:"occurred_at"`
	SourceService string          `json:"source_service"`
	SchemaVersion int             `json:"schema_version"`
	PartitionKey  string          `json:"partition_key"`
	Data          json.RawMessage `json:"data"`
}

const (
	TypePacketCreated  = "packet.created"
	TypePacketClaimed  = "packet.claimed"
	TypePacketRefunded = "packet.refunded"
)
