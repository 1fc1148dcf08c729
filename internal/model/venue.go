package model

import "github.com/ethereum/go-ethereum/common"

// VenueRecord is a registered execution target.
type VenueRecord struct {
	ID                uint64         `json:"id"`
	Target            common.Address `json:"target"`
	Label             common.Hash    `json:"label"`
	RegisteredAtBlock uint64         `json:"registered_at_block"`
	Active            bool           `json:"active"`
}

// Present reports whether the record was populated from the registry.
func (v VenueRecord) Present() bool {
	return v.Target != (common.Address{})
}
