package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"venueRouter/internal/model"
)

// Schema creates the mirror tables. Amounts are stored as NUMERIC(78,0) so
// every 256-bit value fits.
const Schema = `
CREATE TABLE IF NOT EXISTS venues (
	domain_tag          TEXT        NOT NULL,
	venue_id            BIGINT      NOT NULL,
	target              TEXT        NOT NULL,
	label               TEXT        NOT NULL,
	registered_at_block BIGINT      NOT NULL,
	active              BOOLEAN     NOT NULL,
	trade_count         BIGINT      NOT NULL DEFAULT 0,
	volume_wei          NUMERIC(78,0) NOT NULL DEFAULT 0,
	created_at          TIMESTAMPTZ NOT NULL,
	updated_at          TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (domain_tag, venue_id)
);

CREATE TABLE IF NOT EXISTS routes (
	domain_tag     TEXT          NOT NULL,
	route_id       TEXT          NOT NULL,
	sequence       BIGINT        NOT NULL,
	user_address   TEXT          NOT NULL,
	venue_id       BIGINT        NOT NULL,
	amount_in_wei  NUMERIC(78,0) NOT NULL,
	amount_out_wei NUMERIC(78,0) NOT NULL,
	fee_wei        NUMERIC(78,0) NOT NULL,
	at_block       BIGINT        NOT NULL,
	created_at     TIMESTAMPTZ   NOT NULL,
	PRIMARY KEY (domain_tag, route_id)
);

CREATE TABLE IF NOT EXISTS router_state (
	domain_tag            TEXT          PRIMARY KEY,
	route_sequence        BIGINT        NOT NULL,
	fee_bps               INTEGER       NOT NULL,
	paused                BOOLEAN       NOT NULL,
	owner                 TEXT          NOT NULL,
	treasury_pending_wei  NUMERIC(78,0) NOT NULL,
	collector_pending_wei NUMERIC(78,0) NOT NULL,
	updated_at            TIMESTAMPTZ   NOT NULL
);
`

// VenueRow is a venue record together with its trade aggregates.
type VenueRow struct {
	Venue model.VenueRecord
	Stats model.VenueStats
}

// RouterState is the per-deployment summary row.
type RouterState struct {
	RouteSequence       uint64
	FeeBps              uint16
	Paused              bool
	Owner               common.Address
	TreasuryPendingWei  string
	CollectorPendingWei string
}

// Store mirrors router state into Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates missing tables.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// UpsertVenues inserts or updates venue rows.
func (s *Store) UpsertVenues(ctx context.Context, domain common.Hash, rows []VenueRow) error {
	if len(rows) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, row := range rows {
		volume := "0"
		if row.Stats.Volume != nil {
			volume = row.Stats.Volume.Dec()
		}
		batch.Queue(`
			INSERT INTO venues (
				domain_tag, venue_id, target, label, registered_at_block, active,
				trade_count, volume_wei, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
			ON CONFLICT (domain_tag, venue_id)
			DO UPDATE SET
				label = EXCLUDED.label,
				active = EXCLUDED.active,
				trade_count = GREATEST(venues.trade_count, EXCLUDED.trade_count),
				volume_wei = GREATEST(venues.volume_wei, EXCLUDED.volume_wei),
				updated_at = now()
		`,
			domain.Hex(),
			int64(row.Venue.ID),
			row.Venue.Target.Hex(),
			row.Venue.Label.Hex(),
			int64(row.Venue.RegisteredAtBlock),
			row.Venue.Active,
			int64(row.Stats.TradeCount),
			volume,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range rows {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// UpsertRoutes inserts route snapshots. Snapshots are immutable, so existing
// rows are left untouched.
func (s *Store) UpsertRoutes(ctx context.Context, domain common.Hash, routes []model.RouteSnapshot) error {
	if len(routes) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, route := range routes {
		batch.Queue(`
			INSERT INTO routes (
				domain_tag, route_id, sequence, user_address, venue_id,
				amount_in_wei, amount_out_wei, fee_wei, at_block, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
			ON CONFLICT (domain_tag, route_id) DO NOTHING
		`,
			domain.Hex(),
			route.RouteID.Hex(),
			int64(route.Sequence),
			route.User.Hex(),
			int64(route.VenueID),
			route.AmountIn.Dec(),
			route.AmountOut.Dec(),
			route.Fee.Dec(),
			int64(route.AtBlock),
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range routes {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadState returns the mirrored state for a deployment.
func (s *Store) LoadState(ctx context.Context, domain common.Hash) (RouterState, bool, error) {
	var (
		state    RouterState
		sequence int64
		feeBps   int32
		owner    string
	)
	row := s.pool.QueryRow(ctx, `
		SELECT route_sequence, fee_bps, paused, owner,
			treasury_pending_wei::text, collector_pending_wei::text
		FROM router_state WHERE domain_tag=$1
	`, domain.Hex())
	if err := row.Scan(&sequence, &feeBps, &state.Paused, &owner, &state.TreasuryPendingWei, &state.CollectorPendingWei); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RouterState{}, false, nil
		}
		return RouterState{}, false, err
	}
	state.RouteSequence = uint64(sequence)
	state.FeeBps = uint16(feeBps)
	state.Owner = common.HexToAddress(owner)
	return state, true, nil
}

// SaveState upserts the mirrored state for a deployment.
func (s *Store) SaveState(ctx context.Context, domain common.Hash, state RouterState) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO router_state (
			domain_tag, route_sequence, fee_bps, paused, owner,
			treasury_pending_wei, collector_pending_wei, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (domain_tag) DO UPDATE SET
			route_sequence = EXCLUDED.route_sequence,
			fee_bps = EXCLUDED.fee_bps,
			paused = EXCLUDED.paused,
			owner = EXCLUDED.owner,
			treasury_pending_wei = EXCLUDED.treasury_pending_wei,
			collector_pending_wei = EXCLUDED.collector_pending_wei,
			updated_at = now()
	`,
		domain.Hex(),
		int64(state.RouteSequence),
		int32(state.FeeBps),
		state.Paused,
		state.Owner.Hex(),
		orZero(state.TreasuryPendingWei),
		orZero(state.CollectorPendingWei),
	)
	return err
}

func orZero(value string) string {
	if value == "" {
		return "0"
	}
	return value
}
