// Package ledger records one snapshot per routed trade and keeps per-venue
// trade counts and volume.
package ledger

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"venueRouter/internal/model"
	"venueRouter/internal/registry"
)

var (
	ErrDuplicateRoute = errors.New("duplicate route id")
	ErrOverflow       = errors.New("volume overflow")
)

type venueAccumulator struct {
	count  uint64
	volume *uint256.Int
}

// Ledger is not safe for concurrent use. The router serializes access.
type Ledger struct {
	routes  map[common.Hash]model.RouteSnapshot
	ordered []common.Hash
	venues  map[uint64]*venueAccumulator
}

func New() *Ledger {
	return &Ledger{
		routes: make(map[common.Hash]model.RouteSnapshot),
		venues: make(map[uint64]*venueAccumulator),
	}
}

// CanRecord reports whether snap would be accepted by Record.
func (l *Ledger) CanRecord(snap model.RouteSnapshot) error {
	if _, ok := l.routes[snap.RouteID]; ok {
		return ErrDuplicateRoute
	}
	if acc := l.venues[snap.VenueID]; acc != nil {
		if _, overflow := new(uint256.Int).AddOverflow(acc.volume, amountOrZero(snap.AmountIn)); overflow {
			return ErrOverflow
		}
	}
	return nil
}

// Record stores snap and updates its venue aggregates.
func (l *Ledger) Record(snap model.RouteSnapshot) error {
	if err := l.CanRecord(snap); err != nil {
		return err
	}
	l.Append(snap)
	return nil
}

// Append stores snap without validation. Callers must have checked snap with
// CanRecord.
func (l *Ledger) Append(snap model.RouteSnapshot) {
	l.routes[snap.RouteID] = cloneSnapshot(snap)
	l.ordered = append(l.ordered, snap.RouteID)

	acc := l.venues[snap.VenueID]
	if acc == nil {
		acc = &venueAccumulator{volume: new(uint256.Int)}
		l.venues[snap.VenueID] = acc
	}
	acc.count++
	acc.volume.Add(acc.volume, amountOrZero(snap.AmountIn))
}

// Route returns the snapshot recorded under id.
func (l *Ledger) Route(id common.Hash) (model.RouteSnapshot, bool) {
	snap, ok := l.routes[id]
	if !ok {
		return model.RouteSnapshot{}, false
	}
	return cloneSnapshot(snap), true
}

// Exists reports whether id was recorded.
func (l *Ledger) Exists(id common.Hash) bool {
	_, ok := l.routes[id]
	return ok
}

// Count returns the number of recorded routes.
func (l *Ledger) Count() uint64 {
	return uint64(len(l.ordered))
}

// IDs returns route ids in recording order.
func (l *Ledger) IDs() []common.Hash {
	out := make([]common.Hash, len(l.ordered))
	copy(out, l.ordered)
	return out
}

// Page returns up to limit route ids starting at offset.
func (l *Ledger) Page(offset, limit uint64) []common.Hash {
	start, end, ok := registry.PageWindow(offset, limit, uint64(len(l.ordered)))
	if !ok {
		return []common.Hash{}
	}
	out := make([]common.Hash, end-start)
	copy(out, l.ordered[start:end])
	return out
}

// Stats returns the aggregates for venueID; unknown venues report zero.
func (l *Ledger) Stats(venueID uint64) model.VenueStats {
	stats := model.VenueStats{VenueID: venueID, Volume: new(uint256.Int)}
	if acc := l.venues[venueID]; acc != nil {
		stats.TradeCount = acc.count
		stats.Volume.Set(acc.volume)
	}
	return stats
}

func amountOrZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return v
}

func cloneSnapshot(snap model.RouteSnapshot) model.RouteSnapshot {
	snap.AmountIn = amountOrZero(snap.AmountIn).Clone()
	snap.AmountOut = amountOrZero(snap.AmountOut).Clone()
	snap.Fee = amountOrZero(snap.Fee).Clone()
	return snap
}
