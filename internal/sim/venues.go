package sim

import (
	"context"
	"errors"

	"github.com/holiman/uint256"
)

// ErrVenueReverted is returned by Revert handlers.
var ErrVenueReverted = errors.New("venue reverted")

// Word encodes v as a 32-byte big-endian ABI word.
func Word(v *uint256.Int) []byte {
	w := valueOrZero(v).Bytes32()
	return w[:]
}

// Echo reports the received value as the amount out.
func Echo() Handler {
	return func(_ context.Context, call VenueCall) ([]byte, error) {
		return Word(call.Value), nil
	}
}

// Fixed reports amount as the amount out.
func Fixed(amount *uint256.Int) Handler {
	out := valueOrZero(amount).Clone()
	return func(context.Context, VenueCall) ([]byte, error) {
		return Word(out), nil
	}
}

// Quote returns the payload verbatim, so the caller controls the reported amount.
func Quote() Handler {
	return func(_ context.Context, call VenueCall) ([]byte, error) {
		return call.Payload, nil
	}
}

// Raw returns data verbatim.
func Raw(data []byte) Handler {
	out := append([]byte(nil), data...)
	return func(context.Context, VenueCall) ([]byte, error) {
		return out, nil
	}
}

// Silent accepts the value and returns nothing.
func Silent() Handler {
	return func(context.Context, VenueCall) ([]byte, error) {
		return nil, nil
	}
}

// Revert always fails.
func Revert() Handler {
	return func(context.Context, VenueCall) ([]byte, error) {
		return nil, ErrVenueReverted
	}
}
