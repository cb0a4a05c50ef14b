package ports

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"giftledger/contexts/value-distribution/packet-ledger/domain/entities"
	"giftledger/internal/shared/events"
)

type EventEnvelope = events.Envelope

// PacketRepository owns all packet and claim-record state. Mutating methods
// commit their row set atomically; nothing outside the repository may alias
// or mutate stored records.
type PacketRepository interface {
	// GetPacket returns the latest committed record for id, or
	// domainerrors.ErrPacketNotFound.
	GetPacket(ctx context.Context, id common.Hash) (entities.Packet, error)
	// CreatePacket stores a fresh packet. A refunded predecessor under the
	// same id is replaced; its claim history is retained for audit.
	CreatePacket(ctx context.Context, packet entities.Packet) error
	// ApplyClaim commits the updated packet, the history row, and the
	// per-claimant marker as one unit.
	ApplyClaim(ctx context.Context, packet entities.Packet, claim entities.Claim) error
	// ApplyRefund commits the drained, deactivated packet.
	ApplyRefund(ctx context.Context, packet entities.Packet) error
	ListClaims(ctx context.Context, id common.Hash) ([]entities.Claim, error)
	HasClaimed(ctx context.Context, id common.Hash, claimant common.Address) (bool, error)
}

// FundsCustodian is the external settlement collaborator. It holds deposited
// value per packet and reports transfer success synchronously; a failure
// aborts the whole ledger operation.
type FundsCustodian interface {
	Deposit(ctx context.Context, packetID common.Hash, from common.Address, amount *uint256.Int) error
	Transfer(ctx context.Context, packetID common.Hash, to common.Address, amount *uint256.Int) error
}

// SignerRecoverer recovers the signing identity from a recoverable signature
// over a 32-byte digest.
type SignerRecoverer interface {
	RecoverSigner(digest common.Hash, signature []byte) (common.Address, error)
}

// EntropySource supplies the block-level beacon feeding the weighted-random
// split. The ledger never generates entropy itself.
type EntropySource interface {
	Beacon(ctx context.Context) ([]byte, error)
}

// EventSink receives created/claimed/refunded envelopes. Errors are logged by
// the caller and never fail the operation.
type EventSink interface {
	Publish(ctx context.Context, envelope EventEnvelope) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// OutboxMessage is one durably staged envelope awaiting relay to the bus.
type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxSent(ctx context.Context, outboxID string, sentAt time.Time) error
}
