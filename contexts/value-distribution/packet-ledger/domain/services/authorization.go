package services

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// signedMessagePrefix is the standard recoverable-signature domain separator.
// Off-ledger signers produce the token with eth_sign semantics over
// keccak256(packetID || claimant), so both sides agree on the digest
// bit-for-bit.
const signedMessagePrefix = "\x19Ethereum Signed Message:\n32"

// ClaimDigest binds the claimant identity inside the signed payload. A
// signature observed in a public queue cannot be replayed for a different
// claimant: changing the claimant changes the digest and recovery fails.
func ClaimDigest(packetID common.Hash, claimant common.Address) common.Hash {
	inner := crypto.Keccak256(packetID.Bytes(), claimant.Bytes())
	return common.BytesToHash(crypto.Keccak256([]byte(signedMessagePrefix), inner))
}
