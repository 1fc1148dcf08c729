// Package registry stores venues in insertion order. Records are never removed;
// deactivation is the only form of removal.
//
// A Registry is not safe for concurrent use. The router serializes access.
package registry

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"

	"venueRouter/internal/model"
)

const (
	// MaxVenues bounds the number of venues ever registered.
	MaxVenues = 64
	// MaxBatch bounds a single batch registration.
	MaxBatch = 16
)

var (
	ErrZeroAddress      = errors.New("zero address")
	ErrCapacityExceeded = errors.New("venue capacity exceeded")
	ErrLengthMismatch   = errors.New("length mismatch")
	ErrBatchTooLarge    = errors.New("batch too large")
	ErrNotFound         = errors.New("venue not found")
)

// Registry holds venue records keyed by sequential id.
type Registry struct {
	venues  map[uint64]model.VenueRecord
	ordered []uint64
	counter uint64
}

func New() *Registry {
	return &Registry{venues: make(map[uint64]model.VenueRecord)}
}

// Register stores an active venue and returns its id.
func (r *Registry) Register(target common.Address, label common.Hash, block uint64) (uint64, error) {
	if target == (common.Address{}) {
		return 0, ErrZeroAddress
	}
	if r.counter >= MaxVenues {
		return 0, ErrCapacityExceeded
	}
	return r.insert(target, label, block), nil
}

// RegisterBatch registers every pair in order or none of them.
func (r *Registry) RegisterBatch(targets []common.Address, labels []common.Hash, block uint64) ([]uint64, error) {
	if len(targets) != len(labels) {
		return nil, ErrLengthMismatch
	}
	if len(targets) > MaxBatch {
		return nil, ErrBatchTooLarge
	}
	for i, target := range targets {
		if target == (common.Address{}) {
			return nil, ErrZeroAddress
		}
		if r.counter+uint64(i) >= MaxVenues {
			return nil, ErrCapacityExceeded
		}
	}

	ids := make([]uint64, 0, len(targets))
	for i, target := range targets {
		ids = append(ids, r.insert(target, labels[i], block))
	}
	return ids, nil
}

func (r *Registry) insert(target common.Address, label common.Hash, block uint64) uint64 {
	r.counter++
	id := r.counter
	r.venues[id] = model.VenueRecord{
		ID:                id,
		Target:            target,
		Label:             label,
		RegisteredAtBlock: block,
		Active:            true,
	}
	r.ordered = append(r.ordered, id)
	return id
}

// SetActive updates the activation flag.
func (r *Registry) SetActive(id uint64, active bool) error {
	rec, ok := r.venues[id]
	if !ok {
		return ErrNotFound
	}
	rec.Active = active
	r.venues[id] = rec
	return nil
}

// UpdateLabel overwrites the label and returns the previous one.
func (r *Registry) UpdateLabel(id uint64, label common.Hash) (common.Hash, error) {
	rec, ok := r.venues[id]
	if !ok {
		return common.Hash{}, ErrNotFound
	}
	prev := rec.Label
	rec.Label = label
	r.venues[id] = rec
	return prev, nil
}

// Exists reports whether id was ever registered.
func (r *Registry) Exists(id uint64) bool {
	_, ok := r.venues[id]
	return ok
}

// IsActive reports whether id is registered and active.
func (r *Registry) IsActive(id uint64) bool {
	rec, ok := r.venues[id]
	return ok && rec.Active
}

// Venue returns the record for id.
func (r *Registry) Venue(id uint64) (model.VenueRecord, bool) {
	rec, ok := r.venues[id]
	return rec, ok
}

// Count returns the number of venues ever registered.
func (r *Registry) Count() uint64 {
	return r.counter
}

// IDs returns every venue id in insertion order.
func (r *Registry) IDs() []uint64 {
	out := make([]uint64, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// ActiveIDs returns active venue ids in insertion order.
func (r *Registry) ActiveIDs() []uint64 {
	out := make([]uint64, 0, len(r.ordered))
	for _, id := range r.ordered {
		if r.venues[id].Active {
			out = append(out, id)
		}
	}
	return out
}

// Page returns up to limit ids starting at offset.
func (r *Registry) Page(offset, limit uint64) []uint64 {
	start, end, ok := PageWindow(offset, limit, uint64(len(r.ordered)))
	if !ok {
		return []uint64{}
	}
	out := make([]uint64, end-start)
	copy(out, r.ordered[start:end])
	return out
}

// Range returns the ids at indexes start..end inclusive.
func (r *Registry) Range(start, end uint64) []uint64 {
	from, to, ok := InclusiveWindow(start, end, uint64(len(r.ordered)))
	if !ok {
		return []uint64{}
	}
	out := make([]uint64, to-from)
	copy(out, r.ordered[from:to])
	return out
}

// Lookup returns one record per id; unknown ids yield zero-valued records.
func (r *Registry) Lookup(ids []uint64) []model.VenueRecord {
	out := make([]model.VenueRecord, len(ids))
	for i, id := range ids {
		out[i] = r.venues[id]
	}
	return out
}
