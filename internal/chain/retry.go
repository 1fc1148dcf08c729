package chain

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

const (
	defaultBackoff = 100 * time.Millisecond
	maxBackoff     = 30 * time.Second
)

// Retry re-runs RPC operations with exponential backoff.
type Retry struct {
	MaxRetries int
	Backoff    time.Duration
	Logger     *zap.Logger
}

// Do runs fn until it succeeds, the retries are spent or ctx ends. Every failed
// attempt is logged under op. Errors caused by ctx are returned at once.
func (p Retry) Do(ctx context.Context, op string, fn func(context.Context) error) error {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	retries := p.MaxRetries
	if retries < 0 {
		retries = 0
	}
	delay := p.Backoff
	if delay <= 0 {
		delay = defaultBackoff
	}

	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if attempt > retries {
			logger.Warn("rpc failed, giving up", zap.String("op", op), zap.Int("attempts", attempt), zap.Error(err))
			return err
		}
		logger.Warn("rpc failed, retrying",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		if delay *= 2; delay > maxBackoff {
			delay = maxBackoff
		}
	}
}
