package services

import (
	"encoding/binary"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// EntropyDraw hashes current time, the host-supplied beacon, the claimant
// identity, and the running claimed count into the random-split draw.
//
// Every input is observable or semi-predictable. The split is meant to be
// fair-ish, not unguessable; substituting a cryptographically secure source
// would change payout sequences hosts depend on.
func EntropyDraw(now time.Time, beacon []byte, claimant common.Address, claimedCount uint32) *uint256.Int {
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(now.UTC().UnixMilli()))
	var count [4]byte
	binary.BigEndian.PutUint32(count[:], claimedCount)

	digest := crypto.Keccak256(ts[:], beacon, claimant.Bytes(), count[:])
	return new(uint256.Int).SetBytes(digest)
}
