package script

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"

	"venueRouter/internal/router"
	"venueRouter/internal/sim"
)

// Venue behaviors installable with mock-venue.
const (
	VenueEcho    = "echo"
	VenueFixed   = "fixed"
	VenueQuote   = "quote"
	VenueRevert  = "revert"
	VenueShort   = "short"
	VenueSilent  = "silent"
	VenueReenter = "reenter"
)

// venueHandler builds the simulated code for a mock venue. A reenter venue
// calls back into rt while its trade is in flight and fails if that call fails.
func venueHandler(kind string, amount *uint256.Int, venueID uint64, rt *router.Router) (sim.Handler, error) {
	switch kind {
	case VenueEcho, "":
		return sim.Echo(), nil
	case VenueFixed:
		return sim.Fixed(amount), nil
	case VenueQuote:
		return sim.Quote(), nil
	case VenueRevert:
		return sim.Revert(), nil
	case VenueShort:
		return sim.Raw(make([]byte, 16)), nil
	case VenueSilent:
		return sim.Silent(), nil
	case VenueReenter:
		return func(ctx context.Context, call sim.VenueCall) ([]byte, error) {
			inner := router.Call{From: call.To, Value: uint256.NewInt(1)}
			if _, _, err := rt.RouteTrade(ctx, inner, venueID, nil, nil); err != nil {
				return nil, err
			}
			return sim.Word(call.Value), nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown venue kind %q", kind)
	}
}
