package router

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"venueRouter/internal/model"
)

// Backend is the execution environment the router runs on. Snapshot and
// RevertToSnapshot must cover every balance change made through Transfer and
// Call, including changes made by venue code.
//
// Call runs venue code. Venue code that calls back into the router must pass
// the ctx it was given so that re-entry is detected.
type Backend interface {
	BlockNumber() uint64
	Snapshot() int
	RevertToSnapshot(id int)
	Transfer(ctx context.Context, from, to common.Address, amount *uint256.Int) error
	Call(ctx context.Context, from, to common.Address, value *uint256.Int, payload []byte) ([]byte, error)
}

// Sink receives the notifications of a committed call, in emission order.
type Sink interface {
	Publish(ctx context.Context, events []model.Event) error
}
