package model

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// RouteSnapshot is the immutable record of one executed trade.
type RouteSnapshot struct {
	RouteID   common.Hash    `json:"route_id"`
	Sequence  uint64         `json:"sequence"`
	User      common.Address `json:"user"`
	VenueID   uint64         `json:"venue_id"`
	AmountIn  *uint256.Int   `json:"amount_in_wei"`
	AmountOut *uint256.Int   `json:"amount_out_wei"`
	Fee       *uint256.Int   `json:"fee_wei"`
	AtBlock   uint64         `json:"at_block"`
}

// VenueStats aggregates routed trades per venue.
type VenueStats struct {
	VenueID    uint64       `json:"venue_id"`
	TradeCount uint64       `json:"trade_count"`
	Volume     *uint256.Int `json:"volume_wei"`
}
