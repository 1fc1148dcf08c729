package router

import (
	"context"

	"go.uber.org/zap"

	"venueRouter/internal/model"
)

type callKey struct{}

// frame collects the effects of one mutating call until it commits.
type frame struct {
	block  uint64
	events []model.Event
}

func (f *frame) emit(events ...model.Event) {
	f.events = append(f.events, events...)
}

// enter serializes mutating callers and rejects calls made from inside a call
// already executing on this router. Re-entry is detected through the context
// marker, or through the external flag when venue code dropped the context.
func (r *Router) enter(ctx context.Context) (context.Context, func(), error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if active, _ := ctx.Value(callKey{}).(*Router); active == r {
		return nil, nil, ErrReentrantCall
	}
	if !r.callMu.TryLock() {
		if r.external.Load() {
			return nil, nil, ErrReentrantCall
		}
		r.callMu.Lock()
	}
	return context.WithValue(ctx, callKey{}, r), r.callMu.Unlock, nil
}

// callOut runs fn while code outside the router may execute. Mutating calls
// arriving meanwhile fail with ErrReentrantCall instead of waiting on callMu.
func (r *Router) callOut(fn func() error) error {
	r.external.Store(true)
	defer r.external.Store(false)
	return fn()
}

// execute runs fn as one all-or-nothing call. Backend effects are reverted and
// buffered notifications dropped when fn fails.
func (r *Router) execute(ctx context.Context, name string, fn func(context.Context, *frame) error) error {
	ctx, release, err := r.enter(ctx)
	if err != nil {
		return err
	}
	defer release()

	f := &frame{block: r.backend.BlockNumber()}
	snapshot := r.backend.Snapshot()
	if err := fn(ctx, f); err != nil {
		r.backend.RevertToSnapshot(snapshot)
		r.logger.Debug("call reverted", zap.String("call", name), zap.Uint64("block", f.block), zap.Error(err))
		return err
	}

	if r.sink != nil && len(f.events) > 0 {
		if err := r.sink.Publish(ctx, f.events); err != nil {
			r.logger.Error("publish notifications", zap.String("call", name), zap.Int("events", len(f.events)), zap.Error(err))
		}
	}
	return nil
}
