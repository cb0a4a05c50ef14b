package secp256k1

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	domainerrors "giftledger/contexts/value-distribution/packet-ledger/domain/errors"
	"giftledger/contexts/value-distribution/packet-ledger/domain/services"
)

func TestRecoverSignerRoundTrip(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	want := crypto.PubkeyToAddress(key.PublicKey)

	digest := services.ClaimDigest(common.HexToHash("0x01"), common.HexToAddress("0xabc1"))
	signature, err := crypto.Sign(digest.Bytes(), key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	got, err := Recoverer{}.RecoverSigner(digest, signature)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if got != want {
		t.Fatalf("recovered %s, want %s", got.Hex(), want.Hex())
	}
}

func TestRecoverSignerAcceptsLegacyRecoveryID(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	want := crypto.PubkeyToAddress(key.PublicKey)

	digest := services.ClaimDigest(common.HexToHash("0x02"), common.HexToAddress("0xabc2"))
	signature, err := crypto.Sign(digest.Bytes(), key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	legacy := make([]byte, len(signature))
	copy(legacy, signature)
	legacy[64] += 27

	got, err := Recoverer{}.RecoverSigner(digest, legacy)
	if err != nil {
		t.Fatalf("recover with 27/28 recovery id: %v", err)
	}
	if got != want {
		t.Fatalf("recovered %s, want %s", got.Hex(), want.Hex())
	}
}

func TestRecoverSignerRejectsBadLength(t *testing.T) {
	_, err := Recoverer{}.RecoverSigner(common.HexToHash("0x03"), make([]byte, 64))
	if !errors.Is(err, domainerrors.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestClaimDigestBindsClaimant(t *testing.T) {
	id := common.HexToHash("0x04")
	a := services.ClaimDigest(id, common.HexToAddress("0xaaa1"))
	b := services.ClaimDigest(id, common.HexToAddress("0xbbb2"))
	if a == b {
		t.Fatal("digest must change with the claimant")
	}
}
