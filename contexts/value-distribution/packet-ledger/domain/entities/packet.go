package entities

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	domainerrors "giftledger/contexts/value-distribution/packet-ledger/domain/errors"
)

// Packet is a funded, bounded-count value-distribution pool keyed by an
// opaque 256-bit id. Amount fields are never aliased outside the ledger:
// accessors and mutators copy on the way in and out.
type Packet struct {
	ID              common.Hash
	Creator         common.Address
	Authority       common.Address
	TotalAmount     *uint256.Int
	RemainingAmount *uint256.Int
	TotalCount      uint32
	ClaimedCount    uint32
	ExpireAt        time.Time
	IsRandom        bool
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func NewPacket(
	id common.Hash,
	creator common.Address,
	authority common.Address,
	count uint32,
	duration time.Duration,
	isRandom bool,
	depositAmount *uint256.Int,
	now time.Time,
) Packet {
	total := new(uint256.Int).Set(depositAmount)
	return Packet{
		ID:              id,
		Creator:         creator,
		Authority:       authority,
		TotalAmount:     total,
		RemainingAmount: new(uint256.Int).Set(total),
		TotalCount:      count,
		ClaimedCount:    0,
		ExpireAt:        now.UTC().Add(duration),
		IsRandom:        isRandom,
		IsActive:        true,
		CreatedAt:       now.UTC(),
		UpdatedAt:       now.UTC(),
	}
}

// Expired reports whether now is at or past the packet deadline. The boundary
// is inclusive: a claim at exactly ExpireAt is rejected, a refund at exactly
// ExpireAt is allowed.
func (p Packet) Expired(now time.Time) bool {
	return !now.UTC().Before(p.ExpireAt)
}

// Drained reports whether the packet has nothing left to pay out, either
// because every share was claimed or because the creator recovered the rest.
func (p Packet) Drained() bool {
	return !p.IsActive || p.RemainingAmount == nil || p.RemainingAmount.IsZero()
}

// ApplyClaim decrements the remaining amount and increments the claimed count
// in one step. Callers must compute amount from the pre-update counts first.
func (p *Packet) ApplyClaim(amount *uint256.Int, now time.Time) error {
	if p.ClaimedCount >= p.TotalCount {
		return domainerrors.ErrPacketEmpty
	}
	next := new(uint256.Int)
	if _, underflow := next.SubOverflow(p.RemainingAmount, amount); underflow {
		return domainerrors.ErrAmountOverflow
	}
	p.RemainingAmount = next
	p.ClaimedCount++
	p.UpdatedAt = now.UTC()
	return nil
}

// ApplyRefund zeroes the remainder and deactivates the packet in one step,
// returning the recovered amount. The packet can never be reactivated.
func (p *Packet) ApplyRefund(now time.Time) *uint256.Int {
	refunded := p.RemainingAmount
	p.RemainingAmount = uint256.NewInt(0)
	p.IsActive = false
	p.UpdatedAt = now.UTC()
	return new(uint256.Int).Set(refunded)
}

// Clone returns a deep copy, so stored packets never share amount pointers
// with staged or returned ones.
func (p Packet) Clone() Packet {
	out := p
	if p.TotalAmount != nil {
		out.TotalAmount = new(uint256.Int).Set(p.TotalAmount)
	}
	if p.RemainingAmount != nil {
		out.RemainingAmount = new(uint256.Int).Set(p.RemainingAmount)
	}
	return out
}
