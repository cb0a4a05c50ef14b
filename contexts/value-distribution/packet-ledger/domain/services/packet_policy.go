package services

import (
	"time"

	"github.com/holiman/uint256"

	"giftledger/contexts/value-distribution/packet-ledger/domain/entities"
	domainerrors "giftledger/contexts/value-distribution/packet-ledger/domain/errors"
)

// ValidateCreateBounds enforces the first three creation preconditions in
// order: deposit floor, count range, duration range.
func ValidateCreateBounds(depositAmount *uint256.Int, count uint32, duration time.Duration) error {
	if depositAmount == nil || depositAmount.Cmp(entities.MinAmount) < 0 {
		return domainerrors.ErrInvalidAmount
	}
	if count < 1 || count > entities.MaxCount {
		return domainerrors.ErrInvalidCount
	}
	if duration <= 0 || duration > entities.MaxDuration {
		return domainerrors.ErrInvalidDuration
	}
	return nil
}

// ValidateShareFloor enforces the last creation precondition: even in the
// worst case every share must clear the dust floor.
func ValidateShareFloor(depositAmount *uint256.Int, count uint32) error {
	perShare := new(uint256.Int).Div(depositAmount, uint256.NewInt(uint64(count)))
	if perShare.Cmp(entities.MinAmount) < 0 {
		return domainerrors.ErrInvalidAmount
	}
	return nil
}
