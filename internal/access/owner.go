// Package access implements the single-owner permission gate.
package access

import (
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrNotOwner     = errors.New("caller is not the owner")
	ErrInvalidOwner = errors.New("invalid owner address")
)

// Owner holds the administrator address.
type Owner struct {
	mu    sync.RWMutex
	owner common.Address
}

func NewOwner(owner common.Address) (*Owner, error) {
	if owner == (common.Address{}) {
		return nil, ErrInvalidOwner
	}
	return &Owner{owner: owner}, nil
}

// Address returns the current owner.
func (o *Owner) Address() common.Address {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.owner
}

// Check fails with ErrNotOwner unless caller is the owner.
func (o *Owner) Check(caller common.Address) error {
	if caller != o.Address() {
		return ErrNotOwner
	}
	return nil
}

// Transfer hands ownership to next and returns the previous owner.
func (o *Owner) Transfer(caller, next common.Address) (common.Address, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if caller != o.owner {
		return common.Address{}, ErrNotOwner
	}
	if next == (common.Address{}) {
		return common.Address{}, ErrInvalidOwner
	}
	prev := o.owner
	o.owner = next
	return prev, nil
}
