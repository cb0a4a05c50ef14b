package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"giftledger/contexts/value-distribution/packet-ledger/domain/entities"
	domainerrors "giftledger/contexts/value-distribution/packet-ledger/domain/errors"
)

// Store is the in-memory packet repository. Records are deep-copied on every
// read and write so callers can never alias ledger-owned state. Reads take
// the shared lock and are safe concurrently with mutations.
type Store struct {
	mu sync.RWMutex

	packets   map[common.Hash]entities.Packet
	claims    map[common.Hash][]entities.Claim
	claimedBy map[claimKey]bool
}

type claimKey struct {
	packetID common.Hash
	claimant common.Address
}

func NewStore() *Store {
	return &Store{
		packets:   make(map[common.Hash]entities.Packet),
		claims:    make(map[common.Hash][]entities.Claim),
		claimedBy: make(map[claimKey]bool),
	}
}

func (s *Store) GetPacket(_ context.Context, id common.Hash) (entities.Packet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	packet, ok := s.packets[id]
	if !ok {
		return entities.Packet{}, domainerrors.ErrPacketNotFound
	}
	return packet.Clone(), nil
}

func (s *Store) CreatePacket(_ context.Context, packet entities.Packet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.packets[packet.ID]; ok && existing.IsActive {
		return domainerrors.ErrPacketExists
	}
	s.packets[packet.ID] = packet.Clone()
	return nil
}

func (s *Store) ApplyClaim(_ context.Context, packet entities.Packet, claim entities.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.packets[packet.ID]; !ok {
		return domainerrors.ErrPacketNotFound
	}
	key := claimKey{packetID: claim.PacketID, claimant: claim.Claimant}
	if s.claimedBy[key] {
		return domainerrors.ErrAlreadyClaimed
	}

	s.packets[packet.ID] = packet.Clone()
	s.claims[claim.PacketID] = append(s.claims[claim.PacketID], claim.Clone())
	s.claimedBy[key] = true
	return nil
}

func (s *Store) ApplyRefund(_ context.Context, packet entities.Packet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.packets[packet.ID]; !ok {
		return domainerrors.ErrPacketNotFound
	}
	s.packets[packet.ID] = packet.Clone()
	return nil
}

func (s *Store) ListClaims(_ context.Context, id common.Hash) ([]entities.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.claims[id]
	items := make([]entities.Claim, 0, len(history))
	for _, claim := range history {
		items = append(items, claim.Clone())
	}
	return items, nil
}

func (s *Store) HasClaimed(_ context.Context, id common.Hash, claimant common.Address) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.claimedBy[claimKey{packetID: id, claimant: claimant}], nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
