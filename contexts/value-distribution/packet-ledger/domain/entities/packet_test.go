package entities

import (
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	domainerrors "giftledger/contexts/value-distribution/packet-ledger/domain/errors"
)

func newTestPacket(now time.Time) Packet {
	return NewPacket(
		common.HexToHash("0x01"),
		common.HexToAddress("0xaaa1"),
		common.HexToAddress("0xbbb2"),
		3,
		24*time.Hour,
		false,
		uint256.NewInt(3000),
		now,
	)
}

func TestExpiredBoundaryIsInclusive(t *testing.T) {
	now := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	packet := newTestPacket(now)

	if packet.Expired(packet.ExpireAt.Add(-time.Millisecond)) {
		t.Fatal("packet should still be live just before the deadline")
	}
	if !packet.Expired(packet.ExpireAt) {
		t.Fatal("packet should be expired exactly at the deadline")
	}
	if !packet.Expired(packet.ExpireAt.Add(time.Second)) {
		t.Fatal("packet should be expired after the deadline")
	}
}

func TestApplyClaimUpdatesRemainderAndCount(t *testing.T) {
	now := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	packet := newTestPacket(now)

	if err := packet.ApplyClaim(uint256.NewInt(1000), now.Add(time.Minute)); err != nil {
		t.Fatalf("apply claim failed: %v", err)
	}
	if packet.RemainingAmount.Cmp(uint256.NewInt(2000)) != 0 {
		t.Fatalf("expected remaining 2000, got %s", packet.RemainingAmount.Dec())
	}
	if packet.ClaimedCount != 1 {
		t.Fatalf("expected claimed count 1, got %d", packet.ClaimedCount)
	}
	if packet.TotalAmount.Cmp(uint256.NewInt(3000)) != 0 {
		t.Fatalf("total amount changed to %s", packet.TotalAmount.Dec())
	}
}

func TestApplyClaimRejectsOverdraw(t *testing.T) {
	now := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	packet := newTestPacket(now)

	err := packet.ApplyClaim(uint256.NewInt(3001), now)
	if !errors.Is(err, domainerrors.ErrAmountOverflow) {
		t.Fatalf("expected ErrAmountOverflow, got %v", err)
	}
	if packet.ClaimedCount != 0 {
		t.Fatalf("failed claim must not advance count, got %d", packet.ClaimedCount)
	}
}

func TestApplyClaimRejectsExhaustedCount(t *testing.T) {
	now := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	packet := newTestPacket(now)
	packet.ClaimedCount = packet.TotalCount

	if err := packet.ApplyClaim(uint256.NewInt(1), now); !errors.Is(err, domainerrors.ErrPacketEmpty) {
		t.Fatalf("expected ErrPacketEmpty, got %v", err)
	}
}

func TestApplyRefundDrainsAndDeactivates(t *testing.T) {
	now := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	packet := newTestPacket(now)
	if err := packet.ApplyClaim(uint256.NewInt(1000), now); err != nil {
		t.Fatalf("apply claim failed: %v", err)
	}

	refunded := packet.ApplyRefund(now.Add(25 * time.Hour))
	if refunded.Cmp(uint256.NewInt(2000)) != 0 {
		t.Fatalf("expected refund 2000, got %s", refunded.Dec())
	}
	if !packet.RemainingAmount.IsZero() {
		t.Fatalf("expected drained packet, remaining %s", packet.RemainingAmount.Dec())
	}
	if packet.IsActive {
		t.Fatal("refunded packet must be inactive")
	}
	if !packet.Drained() {
		t.Fatal("refunded packet must report drained")
	}
}

func TestCloneDoesNotAliasAmounts(t *testing.T) {
	now := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	packet := newTestPacket(now)

	clone := packet.Clone()
	if err := clone.ApplyClaim(uint256.NewInt(500), now); err != nil {
		t.Fatalf("apply claim on clone failed: %v", err)
	}

	if packet.RemainingAmount.Cmp(uint256.NewInt(3000)) != 0 {
		t.Fatalf("mutating the clone changed the original: %s", packet.RemainingAmount.Dec())
	}
	if packet.ClaimedCount != 0 {
		t.Fatalf("mutating the clone changed the original count: %d", packet.ClaimedCount)
	}
}
