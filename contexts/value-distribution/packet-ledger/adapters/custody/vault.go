package custody

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	domainerrors "giftledger/contexts/value-distribution/packet-ledger/domain/errors"
)

// Vault is an in-process funds custodian. It tracks the value held for each
// packet and the balance credited to each identity, so deployments without an
// external settlement layer still get exact conservation accounting, and
// tests can assert on where every unit went.
type Vault struct {
	mu       sync.Mutex
	held     map[common.Hash]*uint256.Int
	balances map[common.Address]*uint256.Int
}

func NewVault() *Vault {
	return &Vault{
		held:     make(map[common.Hash]*uint256.Int),
		balances: make(map[common.Address]*uint256.Int),
	}
}

func (v *Vault) Deposit(_ context.Context, packetID common.Hash, _ common.Address, amount *uint256.Int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	held, ok := v.held[packetID]
	if !ok {
		held = uint256.NewInt(0)
	}
	next := new(uint256.Int)
	if _, overflow := next.AddOverflow(held, amount); overflow {
		return domainerrors.ErrAmountOverflow
	}
	v.held[packetID] = next
	return nil
}

func (v *Vault) Transfer(_ context.Context, packetID common.Hash, to common.Address, amount *uint256.Int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	held, ok := v.held[packetID]
	if !ok || held.Cmp(amount) < 0 {
		return domainerrors.ErrTransferFailed
	}
	v.held[packetID] = new(uint256.Int).Sub(held, amount)

	balance, ok := v.balances[to]
	if !ok {
		balance = uint256.NewInt(0)
	}
	next := new(uint256.Int)
	if _, overflow := next.AddOverflow(balance, amount); overflow {
		return domainerrors.ErrAmountOverflow
	}
	v.balances[to] = next
	return nil
}

// Held returns the value still custodied for a packet.
func (v *Vault) Held(packetID common.Hash) *uint256.Int {
	v.mu.Lock()
	defer v.mu.Unlock()

	held, ok := v.held[packetID]
	if !ok {
		return uint256.NewInt(0)
	}
	return new(uint256.Int).Set(held)
}

// BalanceOf returns the value transferred to an identity so far.
func (v *Vault) BalanceOf(addr common.Address) *uint256.Int {
	v.mu.Lock()
	defer v.mu.Unlock()

	balance, ok := v.balances[addr]
	if !ok {
		return uint256.NewInt(0)
	}
	return new(uint256.Int).Set(balance)
}
