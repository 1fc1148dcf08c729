package model

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Notification names, matching the router ABI event names.
const (
	EventVenueRegistered       = "VenueRegistered"
	EventVenuesBatchRegistered = "VenuesBatchRegistered"
	EventVenueToggled          = "VenueToggled"
	EventVenueLabelUpdated     = "VenueLabelUpdated"
	EventTradeRouted           = "TradeRouted"
	EventRouteRecorded         = "RouteRecorded"
	EventFeesSwept             = "FeesSwept"
	EventPauseToggled          = "PauseToggled"
	EventFeeBpsUpdated         = "FeeBpsUpdated"
	EventOwnershipTransferred  = "OwnershipTransferred"
)

// Event is an observable notification emitted by a mutating router call.
type Event interface {
	EventName() string
	EventBlock() uint64
}

// VenueRegistered is emitted once per newly registered venue.
type VenueRegistered struct {
	VenueID uint64         `json:"venue_id"`
	Target  common.Address `json:"target"`
	Label   common.Hash    `json:"label"`
	Block   uint64         `json:"block"`
}

// VenuesBatchRegistered closes a batch registration.
type VenuesBatchRegistered struct {
	FirstID uint64 `json:"first_id"`
	Count   uint64 `json:"count"`
	Block   uint64 `json:"block"`
}

// VenueToggled is emitted on every activation update, even when unchanged.
type VenueToggled struct {
	VenueID uint64 `json:"venue_id"`
	Active  bool   `json:"active"`
	Block   uint64 `json:"block"`
}

// VenueLabelUpdated carries the previous and new label.
type VenueLabelUpdated struct {
	VenueID  uint64      `json:"venue_id"`
	OldLabel common.Hash `json:"old_label"`
	NewLabel common.Hash `json:"new_label"`
	Block    uint64      `json:"block"`
}

// TradeRouted describes a committed trade.
type TradeRouted struct {
	RouteID   common.Hash    `json:"route_id"`
	User      common.Address `json:"user"`
	VenueID   uint64         `json:"venue_id"`
	AmountIn  *uint256.Int   `json:"amount_in_wei"`
	AmountOut *uint256.Int   `json:"amount_out_wei"`
	Fee       *uint256.Int   `json:"fee_wei"`
	Block     uint64         `json:"block"`
}

// RouteRecorded links a route id to its sequence number.
type RouteRecorded struct {
	RouteID  common.Hash `json:"route_id"`
	Sequence uint64      `json:"sequence"`
	Block    uint64      `json:"block"`
}

// FeesSwept is emitted when an accumulator is withdrawn.
type FeesSwept struct {
	Recipient common.Address `json:"recipient"`
	Amount    *uint256.Int   `json:"amount_wei"`
	Block     uint64         `json:"block"`
}

// PauseToggled is emitted by pause and unpause.
type PauseToggled struct {
	Paused bool           `json:"paused"`
	By     common.Address `json:"by"`
	Block  uint64         `json:"block"`
}

// FeeBpsUpdated carries the previous and new fee rate.
type FeeBpsUpdated struct {
	OldBps uint16 `json:"old_bps"`
	NewBps uint16 `json:"new_bps"`
	Block  uint64 `json:"block"`
}

// OwnershipTransferred is emitted when the administrator changes.
type OwnershipTransferred struct {
	PreviousOwner common.Address `json:"previous_owner"`
	NewOwner      common.Address `json:"new_owner"`
	Block         uint64         `json:"block"`
}

func (e VenueRegistered) EventName() string       { return EventVenueRegistered }
func (e VenuesBatchRegistered) EventName() string { return EventVenuesBatchRegistered }
func (e VenueToggled) EventName() string          { return EventVenueToggled }
func (e VenueLabelUpdated) EventName() string     { return EventVenueLabelUpdated }
func (e TradeRouted) EventName() string           { return EventTradeRouted }
func (e RouteRecorded) EventName() string         { return EventRouteRecorded }
func (e FeesSwept) EventName() string             { return EventFeesSwept }
func (e PauseToggled) EventName() string          { return EventPauseToggled }
func (e FeeBpsUpdated) EventName() string         { return EventFeeBpsUpdated }
func (e OwnershipTransferred) EventName() string  { return EventOwnershipTransferred }

func (e VenueRegistered) EventBlock() uint64       { return e.Block }
func (e VenuesBatchRegistered) EventBlock() uint64 { return e.Block }
func (e VenueToggled) EventBlock() uint64          { return e.Block }
func (e VenueLabelUpdated) EventBlock() uint64     { return e.Block }
func (e TradeRouted) EventBlock() uint64           { return e.Block }
func (e RouteRecorded) EventBlock() uint64         { return e.Block }
func (e FeesSwept) EventBlock() uint64             { return e.Block }
func (e PauseToggled) EventBlock() uint64          { return e.Block }
func (e FeeBpsUpdated) EventBlock() uint64         { return e.Block }
func (e OwnershipTransferred) EventBlock() uint64  { return e.Block }
