package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"giftledger/contexts/value-distribution/packet-ledger/domain/entities"
	domainerrors "giftledger/contexts/value-distribution/packet-ledger/domain/errors"
)

func storedPacket(id common.Hash, now time.Time) entities.Packet {
	return entities.NewPacket(
		id,
		common.HexToAddress("0xaaa1"),
		common.HexToAddress("0xbbb2"),
		2,
		time.Hour,
		false,
		uint256.NewInt(2000),
		now,
	)
}

func TestStoreGetPacketUnknownID(t *testing.T) {
	store := NewStore()
	_, err := store.GetPacket(context.Background(), common.HexToHash("0x01"))
	if !errors.Is(err, domainerrors.ErrPacketNotFound) {
		t.Fatalf("expected ErrPacketNotFound, got %v", err)
	}
}

func TestStoreCreateRejectsActiveDuplicate(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	now := time.Date(2026, time.May, 1, 8, 0, 0, 0, time.UTC)
	id := common.HexToHash("0x02")

	if err := store.CreatePacket(ctx, storedPacket(id, now)); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if err := store.CreatePacket(ctx, storedPacket(id, now)); !errors.Is(err, domainerrors.ErrPacketExists) {
		t.Fatalf("duplicate create: expected ErrPacketExists, got %v", err)
	}
}

func TestStoreCreateReplacesRefundedPacket(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	now := time.Date(2026, time.May, 1, 8, 0, 0, 0, time.UTC)
	id := common.HexToHash("0x03")

	first := storedPacket(id, now)
	if err := store.CreatePacket(ctx, first); err != nil {
		t.Fatalf("create: %v", err)
	}
	first.ApplyRefund(now.Add(2 * time.Hour))
	if err := store.ApplyRefund(ctx, first); err != nil {
		t.Fatalf("apply refund: %v", err)
	}

	replacement := storedPacket(id, now.Add(3*time.Hour))
	if err := store.CreatePacket(ctx, replacement); err != nil {
		t.Fatalf("create over refunded id: %v", err)
	}

	got, err := store.GetPacket(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.IsActive {
		t.Fatal("replacement packet should be active")
	}
}

func TestStoreApplyClaimMarksAndAppends(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	now := time.Date(2026, time.May, 1, 8, 0, 0, 0, time.UTC)
	id := common.HexToHash("0x04")
	claimant := common.HexToAddress("0xccc3")

	packet := storedPacket(id, now)
	if err := store.CreatePacket(ctx, packet); err != nil {
		t.Fatalf("create: %v", err)
	}

	updated := packet.Clone()
	if err := updated.ApplyClaim(uint256.NewInt(1000), now); err != nil {
		t.Fatalf("stage claim: %v", err)
	}
	claim := entities.NewClaim(id, claimant, uint256.NewInt(1000), 1, now)

	if err := store.ApplyClaim(ctx, updated, claim); err != nil {
		t.Fatalf("apply claim: %v", err)
	}

	marked, err := store.HasClaimed(ctx, id, claimant)
	if err != nil {
		t.Fatalf("has claimed: %v", err)
	}
	if !marked {
		t.Fatal("claim marker not set")
	}

	if err := store.ApplyClaim(ctx, updated, claim); !errors.Is(err, domainerrors.ErrAlreadyClaimed) {
		t.Fatalf("re-apply: expected ErrAlreadyClaimed, got %v", err)
	}

	history, err := store.ListClaims(ctx, id)
	if err != nil {
		t.Fatalf("list claims: %v", err)
	}
	if len(history) != 1 || history[0].Ordinal != 1 {
		t.Fatalf("unexpected history %+v", history)
	}
}

func TestStoreMarkerSurvivesIDReuse(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	now := time.Date(2026, time.May, 1, 8, 0, 0, 0, time.UTC)
	id := common.HexToHash("0x05")
	claimant := common.HexToAddress("0xddd4")

	packet := storedPacket(id, now)
	if err := store.CreatePacket(ctx, packet); err != nil {
		t.Fatalf("create: %v", err)
	}
	updated := packet.Clone()
	if err := updated.ApplyClaim(uint256.NewInt(1000), now); err != nil {
		t.Fatalf("stage claim: %v", err)
	}
	if err := store.ApplyClaim(ctx, updated, entities.NewClaim(id, claimant, uint256.NewInt(1000), 1, now)); err != nil {
		t.Fatalf("apply claim: %v", err)
	}
	updated.ApplyRefund(now.Add(2 * time.Hour))
	if err := store.ApplyRefund(ctx, updated); err != nil {
		t.Fatalf("apply refund: %v", err)
	}

	if err := store.CreatePacket(ctx, storedPacket(id, now.Add(3*time.Hour))); err != nil {
		t.Fatalf("create over refunded id: %v", err)
	}

	marked, err := store.HasClaimed(ctx, id, claimant)
	if err != nil {
		t.Fatalf("has claimed: %v", err)
	}
	if !marked {
		t.Fatal("marker must persist across id reuse")
	}
	history, err := store.ListClaims(ctx, id)
	if err != nil {
		t.Fatalf("list claims: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history must survive reuse, got %d rows", len(history))
	}
}

func TestStoreReturnsDetachedCopies(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	now := time.Date(2026, time.May, 1, 8, 0, 0, 0, time.UTC)
	id := common.HexToHash("0x06")

	if err := store.CreatePacket(ctx, storedPacket(id, now)); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := store.GetPacket(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got.RemainingAmount.SetUint64(1)

	again, err := store.GetPacket(ctx, id)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if again.RemainingAmount.Cmp(uint256.NewInt(2000)) != 0 {
		t.Fatalf("caller mutation leaked into the store: %s", again.RemainingAmount.Dec())
	}
}
