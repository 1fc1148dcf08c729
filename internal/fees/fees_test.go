package fees

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var (
	treasuryAddr  = common.HexToAddress("0x7777777777777777777777777777777777777777")
	collectorAddr = common.HexToAddress("0x8888888888888888888888888888888888888888")
	strangerAddr  = common.HexToAddress("0x9999999999999999999999999999999999999999")
)

func TestQuoteScenarios(t *testing.T) {
	q, err := QuoteAt(uint256.NewInt(1_000_000), 10)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if q.Fee.Uint64() != 1000 || q.TreasuryShare.Uint64() != 500 || q.CollectorShare.Uint64() != 500 {
		t.Fatalf("split mismatch: fee=%s treasury=%s collector=%s", q.Fee, q.TreasuryShare, q.CollectorShare)
	}
	if q.Net.Uint64() != 999_000 {
		t.Fatalf("net mismatch: %s", q.Net)
	}

	q, err = QuoteAt(uint256.NewInt(1_000_001), 10)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if q.Fee.Uint64() != 1000 || q.TreasuryShare.Uint64() != 500 || q.CollectorShare.Uint64() != 500 {
		t.Fatalf("floor split mismatch: fee=%s", q.Fee)
	}
	if q.Net.Uint64() != 999_001 {
		t.Fatalf("remainder wei should stay in net: %s", q.Net)
	}
}

func TestQuoteOddFeeFavorsCollector(t *testing.T) {
	q, err := QuoteAt(uint256.NewInt(30_000), 1)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if q.Fee.Uint64() != 3 || q.TreasuryShare.Uint64() != 1 || q.CollectorShare.Uint64() != 2 {
		t.Fatalf("odd split mismatch: %s/%s/%s", q.Fee, q.TreasuryShare, q.CollectorShare)
	}
}

func TestQuoteMatchesFloorFormula(t *testing.T) {
	grosses := []uint64{0, 1, 9_999, 10_000, 33_333, 1_000_000, 123_456_789_012, 1 << 62}
	for bps := uint16(0); bps <= MaxFeeBps; bps++ {
		for _, g := range grosses {
			q, err := QuoteAt(uint256.NewInt(g), bps)
			if err != nil {
				t.Fatalf("quote %d@%d: %v", g, bps, err)
			}
			want := new(big.Int).SetUint64(g)
			want.Mul(want, big.NewInt(int64(bps)))
			want.Div(want, big.NewInt(BpsDenominator))
			if q.Fee.ToBig().Cmp(want) != 0 {
				t.Fatalf("fee %d@%d: %s != %s", g, bps, q.Fee, want)
			}
			sum := new(uint256.Int).Add(q.TreasuryShare, q.CollectorShare)
			if !sum.Eq(q.Fee) {
				t.Fatalf("shares do not sum to fee for %d@%d", g, bps)
			}
			half := new(uint256.Int).Div(q.Fee, uint256.NewInt(2))
			if !half.Eq(q.TreasuryShare) {
				t.Fatalf("treasury share must be floor(fee/2) for %d@%d", g, bps)
			}
			total := new(uint256.Int).Add(q.Net, q.Fee)
			if total.Uint64() != g {
				t.Fatalf("net+fee must equal gross for %d@%d", g, bps)
			}
		}
	}
}

func TestQuoteOverflow(t *testing.T) {
	max := new(uint256.Int).SetAllOne()
	if _, err := QuoteAt(max, 10); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
	q, err := QuoteAt(max, 0)
	if err != nil {
		t.Fatalf("zero rate should not overflow: %v", err)
	}
	if !q.Fee.IsZero() || !q.Net.Eq(max) {
		t.Fatalf("zero rate should forward everything")
	}
}

func TestSetFeeBps(t *testing.T) {
	a, err := NewAccounting(DefaultFeeBps, treasuryAddr, collectorAddr)
	if err != nil {
		t.Fatalf("new accounting: %v", err)
	}
	if _, err := a.SetFeeBps(MaxFeeBps + 1); !errors.Is(err, ErrInvalidFeeBps) {
		t.Fatalf("expected ErrInvalidFeeBps, got %v", err)
	}
	if a.FeeBps() != DefaultFeeBps {
		t.Fatalf("rejected update must not change the rate")
	}
	prev, err := a.SetFeeBps(0)
	if err != nil {
		t.Fatalf("zero fee should be allowed: %v", err)
	}
	if prev != DefaultFeeBps || a.FeeBps() != 0 {
		t.Fatalf("fee update mismatch")
	}
	if _, err := NewAccounting(MaxFeeBps+1, treasuryAddr, collectorAddr); !errors.Is(err, ErrInvalidFeeBps) {
		t.Fatalf("constructor should reject rate above ceiling")
	}
}

func TestWithdraw(t *testing.T) {
	a, _ := NewAccounting(DefaultFeeBps, treasuryAddr, collectorAddr)

	if _, err := a.Withdraw(Treasury, treasuryAddr); !errors.Is(err, ErrZeroAmount) {
		t.Fatalf("expected ErrZeroAmount, got %v", err)
	}

	q, _ := a.Quote(uint256.NewInt(1_030_000))
	if err := a.Credit(q); err != nil {
		t.Fatalf("credit: %v", err)
	}

	if _, err := a.Withdraw(Treasury, strangerAddr); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
	if _, err := a.Withdraw(Collector, treasuryAddr); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("treasury must not drain the collector side, got %v", err)
	}

	amount, err := a.Withdraw(Collector, collectorAddr)
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if amount.Uint64() != 515 {
		t.Fatalf("collector amount mismatch: %s", amount)
	}
	if !a.Pending(Collector).IsZero() {
		t.Fatalf("collector accumulator should be zero")
	}
	if a.Pending(Treasury).Uint64() != 515 {
		t.Fatalf("treasury accumulator should be untouched")
	}

	a.Restore(Collector, amount)
	if a.Pending(Collector).Uint64() != 515 {
		t.Fatalf("restore mismatch")
	}
	bal := a.Balances()
	if !bal.CollectorWithdrawn.IsZero() || bal.CollectorCollected.Uint64() != 515 {
		t.Fatalf("lifetime totals mismatch: %+v", bal)
	}
}

func TestCreditOverflowLeavesAccumulators(t *testing.T) {
	a, _ := NewAccounting(DefaultFeeBps, treasuryAddr, collectorAddr)
	huge := Quote{TreasuryShare: new(uint256.Int).SetAllOne(), CollectorShare: uint256.NewInt(1)}
	if err := a.CanCredit(huge); err != nil {
		t.Fatalf("first credit should fit: %v", err)
	}
	a.Apply(huge)

	next := Quote{TreasuryShare: uint256.NewInt(1), CollectorShare: uint256.NewInt(1)}
	if err := a.CanCredit(next); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected ErrOverflow from CanCredit, got %v", err)
	}
	if err := a.Credit(next); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected ErrOverflow from Credit, got %v", err)
	}
	b := a.Balances()
	if !b.Treasury.Eq(huge.TreasuryShare) || b.Collector.Uint64() != 1 {
		t.Fatalf("rejected credit must not change accumulators: %+v", b)
	}
}
