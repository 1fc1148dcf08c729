package router

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"venueRouter/internal/model"
)

// Pause blocks RouteTrade. Reads, registry updates and withdrawals stay available.
func (r *Router) Pause(ctx context.Context, caller common.Address) error {
	return r.setPaused(ctx, caller, true)
}

// Unpause re-enables RouteTrade.
func (r *Router) Unpause(ctx context.Context, caller common.Address) error {
	return r.setPaused(ctx, caller, false)
}

func (r *Router) setPaused(ctx context.Context, caller common.Address, paused bool) error {
	return r.execute(ctx, "setPaused", func(ctx context.Context, f *frame) error {
		if err := r.owner.Check(caller); err != nil {
			return err
		}
		r.stateMu.Lock()
		r.paused = paused
		r.stateMu.Unlock()

		f.emit(model.PauseToggled{Paused: paused, By: caller, Block: f.block})
		r.logger.Info("pause toggled", zap.Bool("paused", paused))
		return nil
	})
}

// SetFeeBps updates the fee rate.
func (r *Router) SetFeeBps(ctx context.Context, caller common.Address, bps uint16) error {
	return r.execute(ctx, "setFeeBps", func(ctx context.Context, f *frame) error {
		if err := r.owner.Check(caller); err != nil {
			return err
		}
		r.stateMu.Lock()
		prev, err := r.fees.SetFeeBps(bps)
		r.stateMu.Unlock()
		if err != nil {
			return err
		}

		f.emit(model.FeeBpsUpdated{OldBps: prev, NewBps: bps, Block: f.block})
		r.logger.Info("fee bps updated", zap.Uint16("old", prev), zap.Uint16("new", bps))
		return nil
	})
}

// RegisterVenue adds an active venue and returns its id.
func (r *Router) RegisterVenue(ctx context.Context, caller, target common.Address, label common.Hash) (uint64, error) {
	var id uint64
	err := r.execute(ctx, "registerVenue", func(ctx context.Context, f *frame) error {
		if err := r.owner.Check(caller); err != nil {
			return err
		}
		r.stateMu.Lock()
		venueID, err := r.venues.Register(target, label, f.block)
		r.stateMu.Unlock()
		if err != nil {
			return err
		}

		f.emit(model.VenueRegistered{VenueID: venueID, Target: target, Label: label, Block: f.block})
		id = venueID
		return nil
	})
	if err != nil {
		return 0, err
	}
	r.logger.Info("venue registered", zap.Uint64("venue_id", id), zap.String("target", target.Hex()))
	return id, nil
}

// RegisterVenues registers every target/label pair or none of them.
func (r *Router) RegisterVenues(ctx context.Context, caller common.Address, targets []common.Address, labels []common.Hash) ([]uint64, error) {
	var ids []uint64
	err := r.execute(ctx, "registerVenues", func(ctx context.Context, f *frame) error {
		if err := r.owner.Check(caller); err != nil {
			return err
		}
		r.stateMu.Lock()
		venueIDs, err := r.venues.RegisterBatch(targets, labels, f.block)
		r.stateMu.Unlock()
		if err != nil {
			return err
		}

		for i, venueID := range venueIDs {
			f.emit(model.VenueRegistered{VenueID: venueID, Target: targets[i], Label: labels[i], Block: f.block})
		}
		var first uint64
		if len(venueIDs) > 0 {
			first = venueIDs[0]
		}
		f.emit(model.VenuesBatchRegistered{FirstID: first, Count: uint64(len(venueIDs)), Block: f.block})
		ids = venueIDs
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.logger.Info("venues registered", zap.Int("count", len(ids)))
	return ids, nil
}

// SetVenueActive updates a venue's activation flag. A notification is emitted
// even when the flag does not change.
func (r *Router) SetVenueActive(ctx context.Context, caller common.Address, venueID uint64, active bool) error {
	return r.execute(ctx, "setVenueActive", func(ctx context.Context, f *frame) error {
		if err := r.owner.Check(caller); err != nil {
			return err
		}
		r.stateMu.Lock()
		err := r.venues.SetActive(venueID, active)
		r.stateMu.Unlock()
		if err != nil {
			return err
		}

		f.emit(model.VenueToggled{VenueID: venueID, Active: active, Block: f.block})
		r.logger.Info("venue toggled", zap.Uint64("venue_id", venueID), zap.Bool("active", active))
		return nil
	})
}

// UpdateVenueLabel overwrites a venue's label.
func (r *Router) UpdateVenueLabel(ctx context.Context, caller common.Address, venueID uint64, label common.Hash) error {
	return r.execute(ctx, "updateVenueLabel", func(ctx context.Context, f *frame) error {
		if err := r.owner.Check(caller); err != nil {
			return err
		}
		r.stateMu.Lock()
		prev, err := r.venues.UpdateLabel(venueID, label)
		r.stateMu.Unlock()
		if err != nil {
			return err
		}

		f.emit(model.VenueLabelUpdated{VenueID: venueID, OldLabel: prev, NewLabel: label, Block: f.block})
		return nil
	})
}

// TransferOwnership hands the administrator role to next.
func (r *Router) TransferOwnership(ctx context.Context, caller, next common.Address) error {
	return r.execute(ctx, "transferOwnership", func(ctx context.Context, f *frame) error {
		prev, err := r.owner.Transfer(caller, next)
		if err != nil {
			return err
		}
		f.emit(model.OwnershipTransferred{PreviousOwner: prev, NewOwner: next, Block: f.block})
		r.logger.Info("ownership transferred", zap.String("previous", prev.Hex()), zap.String("next", next.Hex()))
		return nil
	})
}
