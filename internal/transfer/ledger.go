// ledger.go - Fund movement boundary and the in-memory implementation.
package transfer

import (
	"errors"
	"fmt"
	"sync"
)

// ErrInsufficientBalance is returned by a Ledger when the source account
// cannot cover a transfer.
var ErrInsufficientBalance = errors.New("transfer: insufficient balance")

// Ledger is the account balance system the engine moves funds through.
// Implementations must apply a Transfer atomically or not at all.
type Ledger interface {
	Credit(account [32]byte, amount uint64)
	Transfer(from, to [32]byte, amount uint64) error
	Balance(account [32]byte) uint64
}

// MemLedger is a thread-safe in-memory Ledger.
type MemLedger struct {
	mu       sync.RWMutex
	balances map[[32]byte]uint64
}

func NewMemLedger() *MemLedger {
	return &MemLedger{balances: make(map[[32]byte]uint64)}
}

// Credit mints amount into the account.
func (l *MemLedger) Credit(account [32]byte, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[account] += amount
}

// Transfer moves amount between accounts; a zero amount is a no-op.
func (l *MemLedger) Transfer(from, to [32]byte, amount uint64) error {
	if amount == 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	have := l.balances[from]
	if have < amount {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientBalance, have, amount)
	}
	l.balances[from] = have - amount
	l.balances[to] += amount
	return nil
}

// Balance returns the account's current balance.
func (l *MemLedger) Balance(account [32]byte) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[account]
}
