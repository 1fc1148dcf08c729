package registry

import (
	"errors"
	"math/big"
	"reflect"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func addr(n uint64) common.Address {
	return common.BigToAddress(new(big.Int).SetUint64(n + 0x1000))
}

func TestRegisterAssignsSequentialIDs(t *testing.T) {
	r := New()
	for want := uint64(1); want <= 3; want++ {
		id, err := r.Register(addr(want), common.Hash{byte(want)}, 10+want)
		if err != nil {
			t.Fatalf("register %d: %v", want, err)
		}
		if id != want {
			t.Fatalf("id mismatch: %d != %d", id, want)
		}
	}

	rec, ok := r.Venue(2)
	if !ok {
		t.Fatalf("venue 2 missing")
	}
	if rec.Target != addr(2) || rec.RegisteredAtBlock != 12 || !rec.Active {
		t.Fatalf("record mismatch: %+v", rec)
	}
	if !reflect.DeepEqual(r.IDs(), []uint64{1, 2, 3}) {
		t.Fatalf("ids mismatch: %v", r.IDs())
	}
}

func TestRegisterZeroAddress(t *testing.T) {
	r := New()
	if _, err := r.Register(common.Address{}, common.Hash{}, 1); !errors.Is(err, ErrZeroAddress) {
		t.Fatalf("expected ErrZeroAddress, got %v", err)
	}
	if r.Count() != 0 {
		t.Fatalf("count should stay zero")
	}
}

func TestRegisterCapacity(t *testing.T) {
	r := New()
	for i := uint64(1); i <= MaxVenues; i++ {
		if _, err := r.Register(addr(i), common.Hash{}, 1); err != nil {
			t.Fatalf("register %d: %v", i, err)
		}
	}
	if _, err := r.Register(addr(100), common.Hash{}, 1); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
	if _, err := r.RegisterBatch([]common.Address{addr(101)}, []common.Hash{{}}, 1); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected batch ErrCapacityExceeded, got %v", err)
	}
	if r.Count() != MaxVenues {
		t.Fatalf("count changed: %d", r.Count())
	}
}

func TestRegisterBatchAllOrNothing(t *testing.T) {
	r := New()
	targets := []common.Address{addr(1), {}, addr(3)}
	labels := []common.Hash{{1}, {2}, {3}}
	if _, err := r.RegisterBatch(targets, labels, 5); !errors.Is(err, ErrZeroAddress) {
		t.Fatalf("expected ErrZeroAddress, got %v", err)
	}
	if r.Count() != 0 || len(r.IDs()) != 0 {
		t.Fatalf("batch should not register anything")
	}

	if _, err := r.RegisterBatch(targets[:2], labels, 5); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}

	oversized := make([]common.Address, MaxBatch+1)
	bigLabels := make([]common.Hash, MaxBatch+1)
	for i := range oversized {
		oversized[i] = addr(uint64(i + 1))
	}
	if _, err := r.RegisterBatch(oversized, bigLabels, 5); !errors.Is(err, ErrBatchTooLarge) {
		t.Fatalf("expected ErrBatchTooLarge, got %v", err)
	}
}

func TestRegisterBatchCapacityStraddle(t *testing.T) {
	r := New()
	for i := uint64(1); i <= MaxVenues-1; i++ {
		if _, err := r.Register(addr(i), common.Hash{}, 1); err != nil {
			t.Fatalf("register %d: %v", i, err)
		}
	}
	_, err := r.RegisterBatch([]common.Address{addr(200), addr(201)}, []common.Hash{{}, {}}, 1)
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
	if r.Count() != MaxVenues-1 {
		t.Fatalf("straddling batch must not register its first element")
	}
}

func TestActiveIDsAfterDeactivation(t *testing.T) {
	r := New()
	ids, err := r.RegisterBatch([]common.Address{addr(1), addr(2), addr(3)}, []common.Hash{{}, {}, {}}, 1)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if !reflect.DeepEqual(ids, []uint64{1, 2, 3}) {
		t.Fatalf("batch ids mismatch: %v", ids)
	}
	if err := r.SetActive(2, false); err != nil {
		t.Fatalf("set active: %v", err)
	}
	if !reflect.DeepEqual(r.ActiveIDs(), []uint64{1, 3}) {
		t.Fatalf("active ids mismatch: %v", r.ActiveIDs())
	}
	if r.IsActive(2) || !r.Exists(2) {
		t.Fatalf("venue 2 should exist but be inactive")
	}
	if r.IsActive(9) {
		t.Fatalf("unregistered venue must never be active")
	}
	if err := r.SetActive(9, true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateLabel(t *testing.T) {
	r := New()
	id, _ := r.Register(addr(1), common.Hash{0xaa}, 1)
	prev, err := r.UpdateLabel(id, common.Hash{0xbb})
	if err != nil {
		t.Fatalf("update label: %v", err)
	}
	if prev != (common.Hash{0xaa}) {
		t.Fatalf("previous label mismatch: %s", prev.Hex())
	}
	rec, _ := r.Venue(id)
	if rec.Label != (common.Hash{0xbb}) {
		t.Fatalf("label not updated")
	}
	if _, err := r.UpdateLabel(5, common.Hash{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPageAndRange(t *testing.T) {
	r := New()
	for i := uint64(1); i <= 5; i++ {
		r.Register(addr(i), common.Hash{}, 1)
	}

	if got := r.Page(1, 2); !reflect.DeepEqual(got, []uint64{2, 3}) {
		t.Fatalf("page mismatch: %v", got)
	}
	if got := r.Page(3, 10); !reflect.DeepEqual(got, []uint64{4, 5}) {
		t.Fatalf("clamped page mismatch: %v", got)
	}
	if got := r.Page(5, 1); len(got) != 0 {
		t.Fatalf("out of range page should be empty: %v", got)
	}
	if got := r.Range(1, 3); !reflect.DeepEqual(got, []uint64{2, 3, 4}) {
		t.Fatalf("range mismatch: %v", got)
	}
	if got := r.Range(3, 99); !reflect.DeepEqual(got, []uint64{4, 5}) {
		t.Fatalf("clamped range mismatch: %v", got)
	}
	if got := r.Range(3, 1); len(got) != 0 {
		t.Fatalf("malformed range should be empty: %v", got)
	}
}

func TestLookupZeroFillsUnknown(t *testing.T) {
	r := New()
	r.Register(addr(1), common.Hash{}, 1)
	got := r.Lookup([]uint64{1, 42})
	if len(got) != 2 {
		t.Fatalf("lookup length: %d", len(got))
	}
	if !got[0].Present() || got[1].Present() {
		t.Fatalf("lookup presence mismatch: %+v", got)
	}
}
