package secp256k1

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	domainerrors "giftledger/contexts/value-distribution/packet-ledger/domain/errors"
)

const signatureLength = 65

// Recoverer recovers signer addresses from 65-byte [R || S || V] recoverable
// secp256k1 signatures. Both the 0/1 and the legacy 27/28 recovery id
// encodings are accepted, matching what wallet signers emit.
type Recoverer struct{}

func (Recoverer) RecoverSigner(digest common.Hash, signature []byte) (common.Address, error) {
	if len(signature) != signatureLength {
		return common.Address{}, domainerrors.ErrInvalidSignature
	}

	normalized := make([]byte, signatureLength)
	copy(normalized, signature)
	if normalized[64] >= 27 {
		normalized[64] -= 27
	}

	pubKey, err := crypto.SigToPub(digest.Bytes(), normalized)
	if err != nil {
		return common.Address{}, domainerrors.ErrInvalidSignature
	}
	return crypto.PubkeyToAddress(*pubKey), nil
}
