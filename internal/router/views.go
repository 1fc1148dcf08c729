package router

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"venueRouter/internal/fees"
	"venueRouter/internal/model"
)

// Settings is the fixed deployment configuration plus the current owner.
type Settings struct {
	Address   common.Address `json:"address"`
	Owner     common.Address `json:"owner"`
	Treasury  common.Address `json:"treasury"`
	Collector common.Address `json:"collector"`
	Keeper    common.Address `json:"keeper"`
	DomainTag common.Hash    `json:"domain_tag"`
}

func (r *Router) Settings() Settings {
	return Settings{
		Address:   r.cfg.Address,
		Owner:     r.owner.Address(),
		Treasury:  r.cfg.Treasury,
		Collector: r.cfg.Collector,
		Keeper:    r.cfg.Keeper,
		DomainTag: r.cfg.DomainTag,
	}
}

func (r *Router) Paused() bool {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()
	return r.paused
}

func (r *Router) FeeBps() uint16 {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()
	return r.fees.FeeBps()
}

// Quote previews the fee split RouteTrade would apply to gross.
func (r *Router) Quote(gross *uint256.Int) (fees.Quote, error) {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()
	return r.fees.Quote(gross)
}

// Accumulators returns the pending and lifetime fee totals.
func (r *Router) Accumulators() fees.Balances {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()
	return r.fees.Balances()
}

// RouteSequence returns the number of trades ever routed.
func (r *Router) RouteSequence() uint64 {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()
	return r.sequence
}

func (r *Router) VenueCount() uint64 {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()
	return r.venues.Count()
}

func (r *Router) VenueExists(id uint64) bool {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()
	return r.venues.Exists(id)
}

func (r *Router) VenueActive(id uint64) bool {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()
	return r.venues.IsActive(id)
}

func (r *Router) Venue(id uint64) (model.VenueRecord, bool) {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()
	return r.venues.Venue(id)
}

// Venues returns one record per id; unknown ids yield zero-valued records.
func (r *Router) Venues(ids []uint64) []model.VenueRecord {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()
	return r.venues.Lookup(ids)
}

func (r *Router) VenueIDs() []uint64 {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()
	return r.venues.IDs()
}

func (r *Router) ActiveVenueIDs() []uint64 {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()
	return r.venues.ActiveIDs()
}

func (r *Router) VenuePage(offset, limit uint64) []uint64 {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()
	return r.venues.Page(offset, limit)
}

// VenueRange returns the venue ids at insertion indexes start..end inclusive.
func (r *Router) VenueRange(start, end uint64) []uint64 {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()
	return r.venues.Range(start, end)
}

func (r *Router) VenueStats(id uint64) model.VenueStats {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()
	return r.routes.Stats(id)
}

func (r *Router) Route(id common.Hash) (model.RouteSnapshot, bool) {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()
	return r.routes.Route(id)
}

func (r *Router) RouteExists(id common.Hash) bool {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()
	return r.routes.Exists(id)
}

func (r *Router) RouteCount() uint64 {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()
	return r.routes.Count()
}

func (r *Router) RoutePage(offset, limit uint64) []common.Hash {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()
	return r.routes.Page(offset, limit)
}
