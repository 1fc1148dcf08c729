// Package router is the trade-routing state machine: it validates the venue,
// skims the protocol fee, forwards the remainder with the caller's payload and
// records the outcome.
package router

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"venueRouter/internal/access"
	"venueRouter/internal/fees"
	"venueRouter/internal/ident"
	"venueRouter/internal/ledger"
	"venueRouter/internal/model"
	"venueRouter/internal/registry"
)

// Config holds the deployment-time settings. Addresses are fixed for the
// router's lifetime, except the owner which can be transferred.
type Config struct {
	Address   common.Address
	Owner     common.Address
	Treasury  common.Address
	Collector common.Address
	Keeper    common.Address
	FeeBps    uint16
	DomainTag common.Hash
}

// Call carries the caller identity and the attached value.
type Call struct {
	From  common.Address
	Value *uint256.Int
}

// Router owns the registry, fee accounting and route ledger.
type Router struct {
	cfg     Config
	backend Backend
	sink    Sink
	logger  *zap.Logger

	callMu   sync.Mutex
	stateMu  sync.RWMutex
	external atomic.Bool

	owner    *access.Owner
	venues   *registry.Registry
	fees     *fees.Accounting
	routes   *ledger.Ledger
	paused   bool
	sequence uint64
}

// New builds a Router. sink may be nil.
func New(cfg Config, backend Backend, sink Sink, logger *zap.Logger) (*Router, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Address == (common.Address{}) || cfg.Treasury == (common.Address{}) || cfg.Collector == (common.Address{}) {
		return nil, fmt.Errorf("router config: %w", ErrZeroAddress)
	}

	owner, err := access.NewOwner(cfg.Owner)
	if err != nil {
		return nil, fmt.Errorf("router config: %w", err)
	}
	accounting, err := fees.NewAccounting(cfg.FeeBps, cfg.Treasury, cfg.Collector)
	if err != nil {
		return nil, fmt.Errorf("router config: %w", err)
	}

	return &Router{
		cfg:     cfg,
		backend: backend,
		sink:    sink,
		logger:  logger,
		owner:   owner,
		venues:  registry.New(),
		fees:    accounting,
		routes:  ledger.New(),
	}, nil
}

// RouteTrade forwards call.Value minus the protocol fee to the venue's target
// together with payload and records the trade. It returns the route id and the
// amount reported by the venue.
func (r *Router) RouteTrade(ctx context.Context, call Call, venueID uint64, minOut *uint256.Int, payload []byte) (common.Hash, *uint256.Int, error) {
	var (
		routeID   common.Hash
		amountOut *uint256.Int
	)

	err := r.execute(ctx, "routeTrade", func(ctx context.Context, f *frame) error {
		gross := call.Value
		if gross == nil {
			gross = new(uint256.Int)
		}

		r.stateMu.RLock()
		paused := r.paused
		venue, found := r.venues.Venue(venueID)
		r.stateMu.RUnlock()

		switch {
		case paused:
			return ErrSystemPaused
		case !found:
			return ErrVenueNotFound
		case !venue.Active:
			return ErrVenueInactive
		case gross.IsZero():
			return ErrZeroAmount
		}

		r.stateMu.RLock()
		quote, err := r.fees.Quote(gross)
		r.stateMu.RUnlock()
		if err != nil {
			return fmt.Errorf("compute fee: %w", err)
		}

		if err := r.backend.Transfer(ctx, call.From, r.cfg.Address, gross); err != nil {
			return fmt.Errorf("attach value: %w", err)
		}

		var ret []byte
		err = r.callOut(func() error {
			var callErr error
			ret, callErr = r.backend.Call(ctx, r.cfg.Address, venue.Target, quote.Net, payload)
			return callErr
		})
		if err != nil {
			return fmt.Errorf("%w: venue %d: %v", ErrForwardingFailed, venueID, err)
		}

		out := DecodeAmountOut(ret)
		if minOut != nil && !minOut.IsZero() && out.Lt(minOut) {
			return fmt.Errorf("%w: got %s, want %s", ErrInsufficientOutput, out.Dec(), minOut.Dec())
		}

		r.stateMu.Lock()
		defer r.stateMu.Unlock()

		seq := r.sequence + 1
		id, err := ident.RouteID(r.cfg.DomainTag, call.From, venueID, gross, seq, f.block)
		if err != nil {
			return fmt.Errorf("derive route id: %w", err)
		}
		snap := model.RouteSnapshot{
			RouteID:   id,
			Sequence:  seq,
			User:      call.From,
			VenueID:   venueID,
			AmountIn:  gross.Clone(),
			AmountOut: out,
			Fee:       quote.Fee,
			AtBlock:   f.block,
		}
		if err := r.fees.CanCredit(quote); err != nil {
			return fmt.Errorf("credit fees: %w", err)
		}
		if err := r.routes.CanRecord(snap); err != nil {
			return fmt.Errorf("record route: %w", err)
		}

		r.fees.Apply(quote)
		r.routes.Append(snap)
		r.sequence = seq

		f.emit(
			model.TradeRouted{
				RouteID:   id,
				User:      call.From,
				VenueID:   venueID,
				AmountIn:  gross.Clone(),
				AmountOut: out.Clone(),
				Fee:       quote.Fee.Clone(),
				Block:     f.block,
			},
			model.RouteRecorded{RouteID: id, Sequence: seq, Block: f.block},
		)

		routeID = id
		amountOut = out
		return nil
	})
	if err != nil {
		return common.Hash{}, nil, err
	}

	r.logger.Info("trade routed",
		zap.String("route_id", routeID.Hex()),
		zap.String("user", call.From.Hex()),
		zap.Uint64("venue_id", venueID),
		zap.String("amount_in", call.Value.Dec()),
		zap.String("amount_out", amountOut.Dec()),
	)
	return routeID, amountOut, nil
}

// WithdrawTreasury pays the treasury accumulator out to the treasury address.
func (r *Router) WithdrawTreasury(ctx context.Context, caller common.Address) (*uint256.Int, error) {
	return r.withdraw(ctx, caller, fees.Treasury)
}

// WithdrawCollector pays the collector accumulator out to the collector address.
func (r *Router) WithdrawCollector(ctx context.Context, caller common.Address) (*uint256.Int, error) {
	return r.withdraw(ctx, caller, fees.Collector)
}

func (r *Router) withdraw(ctx context.Context, caller common.Address, side fees.Side) (*uint256.Int, error) {
	var swept *uint256.Int
	err := r.execute(ctx, "withdraw:"+side.String(), func(ctx context.Context, f *frame) error {
		r.stateMu.Lock()
		amount, err := r.fees.Withdraw(side, caller)
		r.stateMu.Unlock()
		if err != nil {
			return err
		}

		err = r.callOut(func() error {
			return r.backend.Transfer(ctx, r.cfg.Address, caller, amount)
		})
		if err != nil {
			r.stateMu.Lock()
			r.fees.Restore(side, amount)
			r.stateMu.Unlock()
			return fmt.Errorf("%w: %s payout: %v", ErrTransferFailed, side, err)
		}

		f.emit(model.FeesSwept{Recipient: caller, Amount: amount.Clone(), Block: f.block})
		swept = amount
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("fees swept", zap.String("side", side.String()), zap.String("recipient", caller.Hex()), zap.String("amount", swept.Dec()))
	return swept, nil
}
