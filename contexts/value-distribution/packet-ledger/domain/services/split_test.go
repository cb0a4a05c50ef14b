package services

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"giftledger/contexts/value-distribution/packet-ledger/domain/entities"
	domainerrors "giftledger/contexts/value-distribution/packet-ledger/domain/errors"
)

func TestSplitAmountLastClaimantTakesRemainder(t *testing.T) {
	remaining := uint256.NewInt(12345)

	amount, err := SplitAmount(remaining, 5, 4, true, uint256.NewInt(999))
	if err != nil {
		t.Fatalf("expected last share, got error %v", err)
	}
	if amount.Cmp(remaining) != 0 {
		t.Fatalf("expected full remainder %s, got %s", remaining.Dec(), amount.Dec())
	}
	if remaining.Cmp(uint256.NewInt(12345)) != 0 {
		t.Fatalf("input remaining was mutated to %s", remaining.Dec())
	}
}

func TestSplitAmountEvenTruncatesTowardZero(t *testing.T) {
	// 1000 over 3 remaining shares truncates to 333; the dust rides along
	// until the final claimant drains it.
	amount, err := SplitAmount(uint256.NewInt(1000), 3, 0, false, nil)
	if err != nil {
		t.Fatalf("expected even share, got error %v", err)
	}
	if amount.Cmp(uint256.NewInt(333)) != 0 {
		t.Fatalf("expected 333, got %s", amount.Dec())
	}
}

func TestSplitAmountRandomStaysInBounds(t *testing.T) {
	remaining := uint256.NewInt(100000)
	var totalCount uint32 = 10
	// maxShare = 2*100000/10 = 20000.
	maxShare := uint256.NewInt(20000)

	for i := uint64(0); i < 200; i++ {
		draw := uint256.NewInt(i * 7919)
		amount, err := SplitAmount(remaining, totalCount, 0, true, draw)
		if err != nil {
			t.Fatalf("draw %d: unexpected error %v", i, err)
		}
		if amount.Cmp(entities.MinAmount) < 0 {
			t.Fatalf("draw %d: share %s below floor %s", i, amount.Dec(), entities.MinAmount.Dec())
		}
		if amount.Cmp(maxShare) >= 0 {
			t.Fatalf("draw %d: share %s at or above cap %s", i, amount.Dec(), maxShare.Dec())
		}
	}
}

func TestSplitAmountRandomDegenerateRangeFallsBackToEven(t *testing.T) {
	// remaining=200, 4 shares left: maxShare = 400/4 = 100 = MinAmount, so
	// the random range is empty and the even split applies.
	amount, err := SplitAmount(uint256.NewInt(200), 4, 0, true, uint256.NewInt(42))
	if err != nil {
		t.Fatalf("expected fallback share, got error %v", err)
	}
	if amount.Cmp(uint256.NewInt(50)) != 0 {
		t.Fatalf("expected even fallback 50, got %s", amount.Dec())
	}
}

func TestSplitAmountDrainedPacket(t *testing.T) {
	if _, err := SplitAmount(uint256.NewInt(0), 3, 1, false, nil); !errors.Is(err, domainerrors.ErrPacketEmpty) {
		t.Fatalf("zero remaining: expected ErrPacketEmpty, got %v", err)
	}
	if _, err := SplitAmount(nil, 3, 1, false, nil); !errors.Is(err, domainerrors.ErrPacketEmpty) {
		t.Fatalf("nil remaining: expected ErrPacketEmpty, got %v", err)
	}
	if _, err := SplitAmount(uint256.NewInt(500), 3, 3, false, nil); !errors.Is(err, domainerrors.ErrPacketEmpty) {
		t.Fatalf("exhausted count: expected ErrPacketEmpty, got %v", err)
	}
}

func TestSplitAmountRandomDoublingOverflow(t *testing.T) {
	huge := new(uint256.Int).Sub(new(uint256.Int).Not(uint256.NewInt(0)), uint256.NewInt(1))

	_, err := SplitAmount(huge, 4, 0, true, uint256.NewInt(1))
	if !errors.Is(err, domainerrors.ErrAmountOverflow) {
		t.Fatalf("expected ErrAmountOverflow, got %v", err)
	}
}
