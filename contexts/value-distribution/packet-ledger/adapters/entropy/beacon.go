package entropy

import (
	"context"
	"encoding/binary"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
)

// ClockBeacon derives the beacon from wall-clock time and a process-local
// counter. Like the block-level beacon it stands in for, it is observable and
// semi-predictable on purpose; hosts with a real chain beacon plug their own
// source in behind the port.
type ClockBeacon struct {
	counter atomic.Uint64
}

func NewClockBeacon() *ClockBeacon {
	return &ClockBeacon{}
}

func (b *ClockBeacon) Beacon(_ context.Context) ([]byte, error) {
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], uint64(time.Now().UTC().UnixNano()))
	binary.BigEndian.PutUint64(buf[8:], b.counter.Add(1))
	return crypto.Keccak256(buf[:]), nil
}

// StaticBeacon always returns the same bytes. Useful for hosts that inject a
// per-block beacon value and for deterministic tests.
type StaticBeacon []byte

func (b StaticBeacon) Beacon(_ context.Context) ([]byte, error) {
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}
