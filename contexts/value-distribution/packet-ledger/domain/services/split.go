package services

import (
	"github.com/holiman/uint256"

	"giftledger/contexts/value-distribution/packet-ledger/domain/entities"
	domainerrors "giftledger/contexts/value-distribution/packet-ledger/domain/errors"
)

// SplitAmount is the pure payout calculator. It must be called with the
// pre-update remaining amount and counts of the packet being claimed.
//
// The last claimant always takes the full remainder, so the packet drains
// exactly and any even-split truncation dust or random-draw drift lands on
// the final share. Non-final random shares lie in [MinAmount, maxShare) with
// maxShare = 2*remaining/remainingCount, falling back to the even split when
// that range degenerates. Division truncates toward zero.
func SplitAmount(
	remaining *uint256.Int,
	totalCount uint32,
	claimedCount uint32,
	isRandom bool,
	draw *uint256.Int,
) (*uint256.Int, error) {
	if remaining == nil || remaining.IsZero() || claimedCount >= totalCount {
		return nil, domainerrors.ErrPacketEmpty
	}

	remainingCount := uint64(totalCount - claimedCount)
	if remainingCount == 1 {
		return new(uint256.Int).Set(remaining), nil
	}

	even := new(uint256.Int).Div(remaining, uint256.NewInt(remainingCount))
	if !isRandom {
		return even, nil
	}

	doubled := new(uint256.Int)
	if _, overflow := doubled.AddOverflow(remaining, remaining); overflow {
		return nil, domainerrors.ErrAmountOverflow
	}
	maxShare := new(uint256.Int).Div(doubled, uint256.NewInt(remainingCount))
	if maxShare.Cmp(entities.MinAmount) <= 0 {
		return even, nil
	}

	span := new(uint256.Int).Sub(maxShare, entities.MinAmount)
	share := new(uint256.Int).Mod(draw, span)
	if _, overflow := share.AddOverflow(share, entities.MinAmount); overflow {
		return nil, domainerrors.ErrAmountOverflow
	}
	return share, nil
}
