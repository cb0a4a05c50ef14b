package errors

import "errors"

var (
	ErrInvalidAmount    = errors.New("deposit amount is below the minimum or breaks the per-share floor")
	ErrInvalidCount     = errors.New("claimant count is out of range")
	ErrInvalidDuration  = errors.New("packet duration is out of range")
	ErrPacketExists     = errors.New("an active packet already uses this id")
	ErrPacketNotFound   = errors.New("packet not found")
	ErrPacketExpired    = errors.New("packet has expired")
	ErrPacketNotExpired = errors.New("packet has not expired yet")
	ErrPacketEmpty      = errors.New("packet has no remaining funds")
	ErrAlreadyClaimed   = errors.New("claimant already claimed this packet")
	ErrInvalidSignature = errors.New("authorization signature does not match the packet authority")
	ErrNotCreator       = errors.New("caller is not the packet creator")
	ErrTransferFailed   = errors.New("funds transfer failed")
	ErrAmountOverflow   = errors.New("amount arithmetic overflowed")
)
