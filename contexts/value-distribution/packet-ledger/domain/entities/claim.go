package entities

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Claim is one append-only history row: which claimant drew which amount from
// which packet, and in what order. Rows are retained for audit and never
// deleted, including after a refund.
type Claim struct {
	PacketID  common.Hash
	Claimant  common.Address
	Amount    *uint256.Int
	Ordinal   uint32
	ClaimedAt time.Time
}

func NewClaim(
	packetID common.Hash,
	claimant common.Address,
	amount *uint256.Int,
	ordinal uint32,
	claimedAt time.Time,
) Claim {
	return Claim{
		PacketID:  packetID,
		Claimant:  claimant,
		Amount:    new(uint256.Int).Set(amount),
		Ordinal:   ordinal,
		ClaimedAt: claimedAt.UTC(),
	}
}

func (c Claim) Clone() Claim {
	out := c
	if c.Amount != nil {
		out.Amount = new(uint256.Int).Set(c.Amount)
	}
	return out
}
