package application

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"giftledger/contexts/value-distribution/packet-ledger/domain/entities"
	domainerrors "giftledger/contexts/value-distribution/packet-ledger/domain/errors"
	"giftledger/contexts/value-distribution/packet-ledger/domain/services"
	"giftledger/contexts/value-distribution/packet-ledger/ports"
	"giftledger/internal/shared/events"
)

const sourceService = "packet-ledger"

// Service is the ledger. Every mutating operation runs under one mutex, so
// create/claim/refund never observe an interleaved intermediate state, and
// every operation is all-or-nothing: state is staged on copies, the custodian
// is asked to move funds, and only after it reports success is the staged
// state committed. A custodian failure leaves the ledger untouched.
//
// The mutex is not reentrant. A custodian that calls back into a mutating
// operation deadlocks instead of corrupting state, which is the intended
// re-entrancy guard.
type Service struct {
	mu sync.Mutex

	Repo      ports.PacketRepository
	Custodian ports.FundsCustodian
	Signer    ports.SignerRecoverer
	Entropy   ports.EntropySource
	Events    ports.EventSink
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

type CreatePacketInput struct {
	PacketID      common.Hash
	Creator       common.Address
	Authority     common.Address
	Count         uint32
	Duration      time.Duration
	IsRandom      bool
	DepositAmount *uint256.Int
}

// CreatePacket checks the creation preconditions in contract order, takes the
// deposit into custody, and stores the packet. The first failing precondition
// wins and nothing changes.
func (s *Service) CreatePacket(ctx context.Context, input CreatePacketInput) (entities.Packet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := ResolveLogger(s.Logger)
	now := s.now()

	if err := services.ValidateCreateBounds(input.DepositAmount, input.Count, input.Duration); err != nil {
		return entities.Packet{}, err
	}

	existing, err := s.Repo.GetPacket(ctx, input.PacketID)
	switch {
	case err == nil:
		if existing.IsActive {
			return entities.Packet{}, domainerrors.ErrPacketExists
		}
		// Refunded packets free their id; history rows stay behind for audit.
	case !errors.Is(err, domainerrors.ErrPacketNotFound):
		return entities.Packet{}, err
	}

	if err := services.ValidateShareFloor(input.DepositAmount, input.Count); err != nil {
		return entities.Packet{}, err
	}

	packet := entities.NewPacket(
		input.PacketID,
		input.Creator,
		input.Authority,
		input.Count,
		input.Duration,
		input.IsRandom,
		input.DepositAmount,
		now,
	)

	if err := s.Custodian.Deposit(ctx, packet.ID, packet.Creator, packet.TotalAmount); err != nil {
		logger.Error("packet deposit failed",
			"event", "packet_create_deposit_failed",
			"module", "value-distribution/packet-ledger",
			"layer", "application",
			"packet_id", packet.ID.Hex(),
			"error", err.Error(),
		)
		return entities.Packet{}, domainerrors.ErrTransferFailed
	}

	if err := s.Repo.CreatePacket(ctx, packet); err != nil {
		return entities.Packet{}, err
	}

	logger.Info("packet created",
		"event", "packet_created",
		"module", "value-distribution/packet-ledger",
		"layer", "application",
		"packet_id", packet.ID.Hex(),
		"creator", packet.Creator.Hex(),
		"amount", packet.TotalAmount.Dec(),
		"count", packet.TotalCount,
		"expire_at", packet.ExpireAt,
	)

	s.publish(ctx, events.TypePacketCreated, packet.ID, now, map[string]any{
		"packet_id": packet.ID.Hex(),
		"creator":   packet.Creator.Hex(),
		"amount":    packet.TotalAmount.Dec(),
		"count":     packet.TotalCount,
		"expire_at": packet.ExpireAt.UTC().Format(time.RFC3339),
	})

	return packet.Clone(), nil
}

type ClaimPacketInput struct {
	PacketID  common.Hash
	Claimant  common.Address
	Signature []byte
}

// ClaimPacket verifies eligibility and the authorization token, computes the
// payout from the pre-update counts, pays the claimant, and commits the claim.
// Returns the committed history row including the amount paid.
func (s *Service) ClaimPacket(ctx context.Context, input ClaimPacketInput) (entities.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := ResolveLogger(s.Logger)
	now := s.now()

	packet, err := s.Repo.GetPacket(ctx, input.PacketID)
	if err != nil {
		return entities.Claim{}, err
	}
	if packet.Expired(now) {
		return entities.Claim{}, domainerrors.ErrPacketExpired
	}
	if packet.Drained() {
		return entities.Claim{}, domainerrors.ErrPacketEmpty
	}

	claimed, err := s.Repo.HasClaimed(ctx, input.PacketID, input.Claimant)
	if err != nil {
		return entities.Claim{}, err
	}
	if claimed {
		return entities.Claim{}, domainerrors.ErrAlreadyClaimed
	}

	digest := services.ClaimDigest(input.PacketID, input.Claimant)
	signer, err := s.Signer.RecoverSigner(digest, input.Signature)
	if err != nil || signer != packet.Authority {
		logger.Warn("claim authorization rejected",
			"event", "packet_claim_unauthorized",
			"module", "value-distribution/packet-ledger",
			"layer", "application",
			"packet_id", input.PacketID.Hex(),
			"claimant", input.Claimant.Hex(),
		)
		return entities.Claim{}, domainerrors.ErrInvalidSignature
	}

	beacon, err := s.Entropy.Beacon(ctx)
	if err != nil {
		return entities.Claim{}, err
	}
	draw := services.EntropyDraw(now, beacon, input.Claimant, packet.ClaimedCount)

	// Payout depends on the pre-update counts; the counts move only after it
	// is fixed.
	amount, err := services.SplitAmount(
		packet.RemainingAmount,
		packet.TotalCount,
		packet.ClaimedCount,
		packet.IsRandom,
		draw,
	)
	if err != nil {
		return entities.Claim{}, err
	}

	staged := packet.Clone()
	if err := staged.ApplyClaim(amount, now); err != nil {
		return entities.Claim{}, err
	}
	claim := entities.NewClaim(input.PacketID, input.Claimant, amount, staged.ClaimedCount, now)

	if err := s.Custodian.Transfer(ctx, input.PacketID, input.Claimant, amount); err != nil {
		logger.Error("claim payout failed",
			"event", "packet_claim_transfer_failed",
			"module", "value-distribution/packet-ledger",
			"layer", "application",
			"packet_id", input.PacketID.Hex(),
			"claimant", input.Claimant.Hex(),
			"amount", amount.Dec(),
			"error", err.Error(),
		)
		return entities.Claim{}, domainerrors.ErrTransferFailed
	}

	if err := s.Repo.ApplyClaim(ctx, staged, claim); err != nil {
		return entities.Claim{}, err
	}

	logger.Info("packet claimed",
		"event", "packet_claimed",
		"module", "value-distribution/packet-ledger",
		"layer", "application",
		"packet_id", input.PacketID.Hex(),
		"claimant", input.Claimant.Hex(),
		"amount", amount.Dec(),
		"claimed_count", staged.ClaimedCount,
	)

	s.publish(ctx, events.TypePacketClaimed, input.PacketID, now, map[string]any{
		"packet_id": input.PacketID.Hex(),
		"claimant":  input.Claimant.Hex(),
		"amount":    amount.Dec(),
	})

	return claim.Clone(), nil
}

type RefundPacketInput struct {
	PacketID common.Hash
	Caller   common.Address
}

// RefundPacket recovers the unclaimed remainder for the creator once the
// packet has expired. The drain and deactivation are staged before the
// transfer; a transfer failure discards the whole thing.
func (s *Service) RefundPacket(ctx context.Context, input RefundPacketInput) (*uint256.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := ResolveLogger(s.Logger)
	now := s.now()

	packet, err := s.Repo.GetPacket(ctx, input.PacketID)
	if err != nil {
		return nil, err
	}
	if packet.Creator != input.Caller {
		return nil, domainerrors.ErrNotCreator
	}
	if !packet.Expired(now) {
		return nil, domainerrors.ErrPacketNotExpired
	}
	if packet.Drained() {
		return nil, domainerrors.ErrPacketEmpty
	}

	staged := packet.Clone()
	refunded := staged.ApplyRefund(now)

	if err := s.Custodian.Transfer(ctx, input.PacketID, packet.Creator, refunded); err != nil {
		logger.Error("refund payout failed",
			"event", "packet_refund_transfer_failed",
			"module", "value-distribution/packet-ledger",
			"layer", "application",
			"packet_id", input.PacketID.Hex(),
			"creator", packet.Creator.Hex(),
			"amount", refunded.Dec(),
			"error", err.Error(),
		)
		return nil, domainerrors.ErrTransferFailed
	}

	if err := s.Repo.ApplyRefund(ctx, staged); err != nil {
		return nil, err
	}

	logger.Info("packet refunded",
		"event", "packet_refunded",
		"module", "value-distribution/packet-ledger",
		"layer", "application",
		"packet_id", input.PacketID.Hex(),
		"creator", packet.Creator.Hex(),
		"amount", refunded.Dec(),
	)

	s.publish(ctx, events.TypePacketRefunded, input.PacketID, now, map[string]any{
		"packet_id": input.PacketID.Hex(),
		"creator":   packet.Creator.Hex(),
		"amount":    refunded.Dec(),
	})

	return refunded, nil
}

// GetPacket returns the latest committed packet record.
func (s *Service) GetPacket(ctx context.Context, id common.Hash) (entities.Packet, error) {
	return s.Repo.GetPacket(ctx, id)
}

// ListClaims returns the ordered claim history for a packet.
func (s *Service) ListClaims(ctx context.Context, id common.Hash) ([]entities.Claim, error) {
	if _, err := s.Repo.GetPacket(ctx, id); err != nil {
		return nil, err
	}
	return s.Repo.ListClaims(ctx, id)
}

// HasClaimed reports whether claimant already drew a share from the packet.
func (s *Service) HasClaimed(ctx context.Context, id common.Hash, claimant common.Address) (bool, error) {
	if _, err := s.Repo.GetPacket(ctx, id); err != nil {
		return false, err
	}
	return s.Repo.HasClaimed(ctx, id, claimant)
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

// publish hands the envelope to the sink and logs failures. Event delivery
// never gates the operation that produced it.
func (s *Service) publish(ctx context.Context, eventType string, packetID common.Hash, occurredAt time.Time, data map[string]any) {
	if s.Events == nil {
		return
	}
	logger := ResolveLogger(s.Logger)

	payload, err := json.Marshal(data)
	if err != nil {
		logger.Warn("event payload marshal failed",
			"event", "packet_event_marshal_failed",
			"module", "value-distribution/packet-ledger",
			"layer", "application",
			"event_type", eventType,
			"error", err.Error(),
		)
		return
	}

	eventID := ""
	if s.IDGen != nil {
		if id, err := s.IDGen.NewID(ctx); err == nil {
			eventID = id
		}
	}

	envelope := ports.EventEnvelope{
		EventID:       eventID,
		EventType:     eventType,
		OccurredAt:    occurredAt.UTC(),
		SourceService: sourceService,
		SchemaVersion: 1,
		PartitionKey:  packetID.Hex(),
		Data:          payload,
	}
	if err := s.Events.Publish(ctx, envelope); err != nil {
		logger.Warn("event publish failed",
			"event", "packet_event_publish_failed",
			"module", "value-distribution/packet-ledger",
			"layer", "application",
			"event_type", eventType,
			"packet_id", packetID.Hex(),
			"error", err.Error(),
		)
	}
}
