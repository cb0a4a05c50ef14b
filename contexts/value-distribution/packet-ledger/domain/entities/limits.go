package entities

import (
	"time"

	"github.com/holiman/uint256"
)

// Contract constants. Callers may read them through the query surface but
// never alter them.
const (
	MaxCount    uint32 = 1000
	MaxDuration        = 30 * 24 * time.Hour
)

// MinAmount is the dust floor: no deposit and no per-claimant share may fall
// below it.
var MinAmount = uint256.NewInt(100)
