// Package sim is an in-memory execution backend: journaled native balances, a
// manual block height and scripted venue code.
package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrBalanceOverflow     = errors.New("balance overflow")
)

// VenueCall describes one invocation of venue code.
type VenueCall struct {
	From    common.Address
	To      common.Address
	Value   *uint256.Int
	Payload []byte
}

// Handler is venue code. ctx must be passed on to any call back into the router.
type Handler func(ctx context.Context, call VenueCall) ([]byte, error)

type journalEntry struct {
	account common.Address
	prev    *uint256.Int
	existed bool
}

// Backend implements router.Backend.
type Backend struct {
	mu       sync.Mutex
	block    uint64
	balances map[common.Address]*uint256.Int
	journal  []journalEntry
	handlers map[common.Address]Handler
	fallback Handler
}

func NewBackend(startBlock uint64) *Backend {
	return &Backend{
		block:    startBlock,
		balances: make(map[common.Address]*uint256.Int),
		handlers: make(map[common.Address]Handler),
	}
}

// BlockNumber returns the current block height.
func (b *Backend) BlockNumber() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.block
}

// Advance moves the block height forward by n.
func (b *Backend) Advance(n uint64) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.block += n
	return b.block
}

// SetHandler installs venue code at addr. A nil handler removes it.
func (b *Backend) SetHandler(addr common.Address, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if h == nil {
		delete(b.handlers, addr)
		return
	}
	b.handlers[addr] = h
}

// SetFallback installs code run for targets without a handler.
func (b *Backend) SetFallback(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fallback = h
}

// Balance returns the balance of addr.
func (b *Backend) Balance(addr common.Address) *uint256.Int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if bal, ok := b.balances[addr]; ok {
		return bal.Clone()
	}
	return new(uint256.Int)
}

// Fund credits addr with amount.
func (b *Backend) Fund(addr common.Address, amount *uint256.Int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	next, overflow := new(uint256.Int).AddOverflow(b.balanceLocked(addr), amount)
	if overflow {
		return ErrBalanceOverflow
	}
	b.setLocked(addr, next)
	return nil
}

// Snapshot returns an id for the current balance state.
func (b *Backend) Snapshot() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.journal)
}

// RevertToSnapshot undoes every balance change made after id was taken.
func (b *Backend) RevertToSnapshot(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if id < 0 || id > len(b.journal) {
		return
	}
	for i := len(b.journal) - 1; i >= id; i-- {
		entry := b.journal[i]
		if entry.existed {
			b.balances[entry.account] = entry.prev
		} else {
			delete(b.balances, entry.account)
		}
	}
	b.journal = b.journal[:id]
}

// Transfer moves amount from one account to another.
func (b *Backend) Transfer(ctx context.Context, from, to common.Address, amount *uint256.Int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.transferLocked(from, to, amount)
}

// Call transfers value to the target and runs its code. Effects of a failed
// call are reverted before the error is returned.
func (b *Backend) Call(ctx context.Context, from, to common.Address, value *uint256.Int, payload []byte) ([]byte, error) {
	b.mu.Lock()
	snapshot := len(b.journal)
	if err := b.transferLocked(from, to, value); err != nil {
		b.mu.Unlock()
		return nil, err
	}
	handler, ok := b.handlers[to]
	if !ok {
		handler = b.fallback
	}
	b.mu.Unlock()

	if handler == nil {
		return nil, nil
	}

	data := make([]byte, len(payload))
	copy(data, payload)
	ret, err := handler(ctx, VenueCall{From: from, To: to, Value: valueOrZero(value).Clone(), Payload: data})
	if err != nil {
		b.RevertToSnapshot(snapshot)
		return nil, fmt.Errorf("call %s: %w", to.Hex(), err)
	}
	return ret, nil
}

func (b *Backend) transferLocked(from, to common.Address, amount *uint256.Int) error {
	amount = valueOrZero(amount)
	if amount.IsZero() {
		return nil
	}
	fromBal := b.balanceLocked(from)
	if fromBal.Lt(amount) {
		return fmt.Errorf("%w: %s has %s, needs %s", ErrInsufficientBalance, from.Hex(), fromBal.Dec(), amount.Dec())
	}
	if from == to {
		return nil
	}
	toNext, overflow := new(uint256.Int).AddOverflow(b.balanceLocked(to), amount)
	if overflow {
		return ErrBalanceOverflow
	}
	b.setLocked(from, new(uint256.Int).Sub(fromBal, amount))
	b.setLocked(to, toNext)
	return nil
}

func (b *Backend) balanceLocked(addr common.Address) *uint256.Int {
	if bal, ok := b.balances[addr]; ok {
		return bal
	}
	return new(uint256.Int)
}

func (b *Backend) setLocked(addr common.Address, value *uint256.Int) {
	prev, existed := b.balances[addr]
	b.journal = append(b.journal, journalEntry{account: addr, prev: prev, existed: existed})
	b.balances[addr] = value
}

func valueOrZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return v
}
