package router

import (
	"errors"
	"fmt"

	"venueRouter/internal/access"
	"venueRouter/internal/fees"
	"venueRouter/internal/registry"
)

var (
	ErrSystemPaused       = errors.New("system paused")
	ErrVenueNotFound      = fmt.Errorf("route: %w", registry.ErrNotFound)
	ErrVenueInactive      = errors.New("venue inactive")
	ErrForwardingFailed   = errors.New("forwarding failed")
	ErrInsufficientOutput = errors.New("insufficient output")
	ErrTransferFailed     = errors.New("transfer failed")
	ErrReentrantCall      = errors.New("reentrant call")
	ErrZeroAddress        = registry.ErrZeroAddress

	ErrZeroAmount       = fees.ErrZeroAmount
	ErrNotAuthorized    = fees.ErrNotAuthorized
	ErrInvalidFeeBps    = fees.ErrInvalidFeeBps
	ErrNotOwner         = access.ErrNotOwner
	ErrNotFound         = registry.ErrNotFound
	ErrCapacityExceeded = registry.ErrCapacityExceeded
	ErrLengthMismatch   = registry.ErrLengthMismatch
	ErrBatchTooLarge    = registry.ErrBatchTooLarge
)
