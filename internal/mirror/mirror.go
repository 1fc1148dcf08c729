// Package mirror copies router state into an external store in batches.
package mirror

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"venueRouter/internal/fees"
	"venueRouter/internal/model"
	"venueRouter/internal/router"
	"venueRouter/internal/storage/postgres"
)

// Source is the read surface of a router.
type Source interface {
	Settings() router.Settings
	Paused() bool
	FeeBps() uint16
	Accumulators() fees.Balances
	VenueIDs() []uint64
	Venues(ids []uint64) []model.VenueRecord
	VenueStats(id uint64) model.VenueStats
	RouteCount() uint64
	RoutePage(offset, limit uint64) []common.Hash
	Route(id common.Hash) (model.RouteSnapshot, bool)
}

// Writer persists mirrored rows.
type Writer interface {
	UpsertVenues(ctx context.Context, domain common.Hash, rows []postgres.VenueRow) error
	UpsertRoutes(ctx context.Context, domain common.Hash, routes []model.RouteSnapshot) error
	LoadState(ctx context.Context, domain common.Hash) (postgres.RouterState, bool, error)
	SaveState(ctx context.Context, domain common.Hash, state postgres.RouterState) error
}

// Summary reports what a sync wrote.
type Summary struct {
	Venues     int
	Routes     int
	FromRoute  uint64
	RouteCount uint64
}

// Mirror syncs a router into a Writer.
type Mirror struct {
	writer    Writer
	batchSize int
	logger    *zap.Logger
}

func New(writer Writer, batchSize int, logger *zap.Logger) *Mirror {
	if logger == nil {
		logger = zap.NewNop()
	}
	if batchSize <= 0 {
		batchSize = 500
	}
	return &Mirror{writer: writer, batchSize: batchSize, logger: logger}
}

// Sync writes every venue, the routes recorded since the last sync, and the
// summary state row. Routes are copied up to the count read at the start, and
// that count is what the state row stores. The state row is written last so an
// interrupted sync is retried from the previous position.
func (m *Mirror) Sync(ctx context.Context, src Source) (Summary, error) {
	domain := src.Settings().DomainTag

	prev, found, err := m.writer.LoadState(ctx, domain)
	if err != nil {
		return Summary{}, fmt.Errorf("load mirror state: %w", err)
	}

	routeCount := src.RouteCount()
	from := uint64(0)
	if found {
		if prev.RouteSequence > routeCount {
			m.logger.Warn("mirror ahead of router, resyncing routes",
				zap.Uint64("mirrored", prev.RouteSequence),
				zap.Uint64("router", routeCount),
			)
		} else {
			from = prev.RouteSequence
		}
	}

	summary := Summary{FromRoute: from, RouteCount: routeCount}

	ids := src.VenueIDs()
	for start := 0; start < len(ids); start += m.batchSize {
		end := start + m.batchSize
		if end > len(ids) {
			end = len(ids)
		}
		records := src.Venues(ids[start:end])
		rows := make([]postgres.VenueRow, 0, len(records))
		for _, record := range records {
			rows = append(rows, postgres.VenueRow{Venue: record, Stats: src.VenueStats(record.ID)})
		}
		if err := m.writer.UpsertVenues(ctx, domain, rows); err != nil {
			return summary, fmt.Errorf("upsert venues: %w", err)
		}
		summary.Venues += len(rows)
	}

	for offset := from; offset < routeCount; offset += uint64(m.batchSize) {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		limit := uint64(m.batchSize)
		if remaining := routeCount - offset; remaining < limit {
			limit = remaining
		}
		page := src.RoutePage(offset, limit)
		routes := make([]model.RouteSnapshot, 0, len(page))
		for _, id := range page {
			snap, ok := src.Route(id)
			if !ok {
				return summary, fmt.Errorf("route %s listed but missing", id.Hex())
			}
			routes = append(routes, snap)
		}
		if err := m.writer.UpsertRoutes(ctx, domain, routes); err != nil {
			return summary, fmt.Errorf("upsert routes: %w", err)
		}
		summary.Routes += len(routes)
		m.logger.Debug("routes mirrored", zap.Uint64("offset", offset), zap.Int("count", len(routes)))
	}

	acc := src.Accumulators()
	state := postgres.RouterState{
		RouteSequence:       routeCount,
		FeeBps:              src.FeeBps(),
		Paused:              src.Paused(),
		Owner:               src.Settings().Owner,
		TreasuryPendingWei:  acc.Treasury.Dec(),
		CollectorPendingWei: acc.Collector.Dec(),
	}
	if err := m.writer.SaveState(ctx, domain, state); err != nil {
		return summary, fmt.Errorf("save mirror state: %w", err)
	}

	m.logger.Info("mirror synced",
		zap.String("domain", domain.Hex()),
		zap.Int("venues", summary.Venues),
		zap.Int("routes", summary.Routes),
		zap.Uint64("from_route", from),
	)
	return summary, nil
}
