package ledger

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"venueRouter/internal/model"
)

func snapshot(id byte, venue uint64, amountIn uint64) model.RouteSnapshot {
	return model.RouteSnapshot{
		RouteID:   common.Hash{id},
		Sequence:  uint64(id),
		User:      common.HexToAddress("0x2222222222222222222222222222222222222222"),
		VenueID:   venue,
		AmountIn:  uint256.NewInt(amountIn),
		AmountOut: uint256.NewInt(amountIn / 2),
		Fee:       uint256.NewInt(amountIn / 1000),
		AtBlock:   100,
	}
}

func TestRecordUpdatesAggregates(t *testing.T) {
	l := New()
	if err := l.Record(snapshot(1, 1, 1_000)); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := l.Record(snapshot(2, 1, 2_500)); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := l.Record(snapshot(3, 2, 700)); err != nil {
		t.Fatalf("record: %v", err)
	}

	stats := l.Stats(1)
	if stats.TradeCount != 2 || stats.Volume.Uint64() != 3_500 {
		t.Fatalf("venue 1 stats mismatch: %+v", stats)
	}
	stats = l.Stats(2)
	if stats.TradeCount != 1 || stats.Volume.Uint64() != 700 {
		t.Fatalf("venue 2 stats mismatch: %+v", stats)
	}
	if stats := l.Stats(9); stats.TradeCount != 0 || !stats.Volume.IsZero() {
		t.Fatalf("unknown venue should be zero: %+v", stats)
	}
	if l.Count() != 3 {
		t.Fatalf("count mismatch: %d", l.Count())
	}
	if ids := l.Page(1, 5); len(ids) != 2 || ids[0] != (common.Hash{2}) {
		t.Fatalf("page mismatch: %v", ids)
	}
}

func TestRouteLookup(t *testing.T) {
	l := New()
	snap := snapshot(7, 3, 42_000)
	if err := l.Record(snap); err != nil {
		t.Fatalf("record: %v", err)
	}

	got, ok := l.Route(snap.RouteID)
	if !ok {
		t.Fatalf("route missing")
	}
	if got.VenueID != 3 || got.AmountIn.Uint64() != 42_000 || got.AtBlock != 100 {
		t.Fatalf("snapshot mismatch: %+v", got)
	}

	got.AmountIn.SetUint64(1)
	again, _ := l.Route(snap.RouteID)
	if again.AmountIn.Uint64() != 42_000 {
		t.Fatalf("stored snapshot must be immutable")
	}

	if _, ok := l.Route(common.Hash{0xff}); ok {
		t.Fatalf("unknown route should not be found")
	}
	if l.Exists(common.Hash{0xff}) || !l.Exists(snap.RouteID) {
		t.Fatalf("existence probe mismatch")
	}
}

func TestRecordRejectsDuplicate(t *testing.T) {
	l := New()
	if err := l.Record(snapshot(1, 1, 10)); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := l.Record(snapshot(1, 1, 10)); !errors.Is(err, ErrDuplicateRoute) {
		t.Fatalf("expected ErrDuplicateRoute, got %v", err)
	}
	if stats := l.Stats(1); stats.TradeCount != 1 {
		t.Fatalf("duplicate must not touch aggregates")
	}
}

func TestRecordVolumeOverflow(t *testing.T) {
	l := New()
	first := snapshot(1, 1, 0)
	first.AmountIn = new(uint256.Int).SetAllOne()
	if err := l.Record(first); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := l.Record(snapshot(2, 1, 1)); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
	if l.Count() != 1 {
		t.Fatalf("overflowing record must not be stored")
	}
}

func TestAppendAfterCanRecord(t *testing.T) {
	l := New()
	snap := snapshot(7, 2, 4_000)
	if err := l.CanRecord(snap); err != nil {
		t.Fatalf("can record: %v", err)
	}
	l.Append(snap)

	if err := l.CanRecord(snap); !errors.Is(err, ErrDuplicateRoute) {
		t.Fatalf("expected ErrDuplicateRoute once appended, got %v", err)
	}
	stats := l.Stats(2)
	if stats.TradeCount != 1 || stats.Volume.Uint64() != 4_000 {
		t.Fatalf("aggregates mismatch: %+v", stats)
	}
	if ids := l.IDs(); len(ids) != 1 || ids[0] != snap.RouteID {
		t.Fatalf("ids mismatch: %v", ids)
	}
}
