// Package fees computes protocol fees and tracks the treasury and collector
// accumulators.
package fees

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

const (
	// MaxFeeBps is the fee ceiling (3%).
	MaxFeeBps uint16 = 300
	// BpsDenominator is the basis-point base.
	BpsDenominator = 10_000
	// DefaultFeeBps is the fee rate at deployment.
	DefaultFeeBps uint16 = 10
)

var (
	ErrInvalidFeeBps = errors.New("invalid fee bps")
	ErrNotAuthorized = errors.New("not authorized")
	ErrZeroAmount    = errors.New("zero amount")
	ErrOverflow      = errors.New("arithmetic overflow")
)

// Side selects an accumulator.
type Side int

const (
	Treasury Side = iota
	Collector
)

func (s Side) String() string {
	switch s {
	case Treasury:
		return "treasury"
	case Collector:
		return "collector"
	default:
		return "unknown"
	}
}

// Quote is the fee breakdown for a gross amount.
type Quote struct {
	Gross          *uint256.Int
	Fee            *uint256.Int
	TreasuryShare  *uint256.Int
	CollectorShare *uint256.Int
	Net            *uint256.Int
}

// Balances is a copy of the accumulator state.
type Balances struct {
	Treasury           *uint256.Int `json:"treasury_wei"`
	Collector          *uint256.Int `json:"collector_wei"`
	TreasuryCollected  *uint256.Int `json:"treasury_collected_wei"`
	CollectorCollected *uint256.Int `json:"collector_collected_wei"`
	TreasuryWithdrawn  *uint256.Int `json:"treasury_withdrawn_wei"`
	CollectorWithdrawn *uint256.Int `json:"collector_withdrawn_wei"`
}

// Accounting holds the fee rate and both accumulators. It is not safe for
// concurrent use.
type Accounting struct {
	feeBps        uint16
	treasuryAddr  common.Address
	collectorAddr common.Address

	pending   [2]*uint256.Int
	collected [2]*uint256.Int
	withdrawn [2]*uint256.Int
}

func NewAccounting(feeBps uint16, treasury, collector common.Address) (*Accounting, error) {
	if feeBps > MaxFeeBps {
		return nil, ErrInvalidFeeBps
	}
	a := &Accounting{
		feeBps:        feeBps,
		treasuryAddr:  treasury,
		collectorAddr: collector,
	}
	for i := range a.pending {
		a.pending[i] = new(uint256.Int)
		a.collected[i] = new(uint256.Int)
		a.withdrawn[i] = new(uint256.Int)
	}
	return a, nil
}

// FeeBps returns the current fee rate.
func (a *Accounting) FeeBps() uint16 {
	return a.feeBps
}

// SetFeeBps updates the fee rate and returns the previous one.
func (a *Accounting) SetFeeBps(bps uint16) (uint16, error) {
	if bps > MaxFeeBps {
		return a.feeBps, ErrInvalidFeeBps
	}
	prev := a.feeBps
	a.feeBps = bps
	return prev, nil
}

// Quote computes floor(gross*bps/10000) and splits it. The collector receives
// the odd wei.
func (a *Accounting) Quote(gross *uint256.Int) (Quote, error) {
	return QuoteAt(gross, a.feeBps)
}

// QuoteAt computes a quote for an explicit fee rate.
func QuoteAt(gross *uint256.Int, bps uint16) (Quote, error) {
	if gross == nil {
		gross = new(uint256.Int)
	}
	fee, overflow := new(uint256.Int).MulOverflow(gross, uint256.NewInt(uint64(bps)))
	if overflow {
		return Quote{}, ErrOverflow
	}
	fee.Div(fee, uint256.NewInt(BpsDenominator))

	treasury := new(uint256.Int).Rsh(fee, 1)
	collector := new(uint256.Int).Sub(fee, treasury)
	net := new(uint256.Int).Sub(gross, fee)

	return Quote{
		Gross:          gross.Clone(),
		Fee:            fee,
		TreasuryShare:  treasury,
		CollectorShare: collector,
		Net:            net,
	}, nil
}

// CanCredit reports whether crediting q would overflow either accumulator.
func (a *Accounting) CanCredit(q Quote) error {
	shares := [2]*uint256.Int{q.TreasuryShare, q.CollectorShare}
	for i, share := range shares {
		if _, overflow := new(uint256.Int).AddOverflow(a.pending[i], share); overflow {
			return ErrOverflow
		}
		if _, overflow := new(uint256.Int).AddOverflow(a.collected[i], share); overflow {
			return ErrOverflow
		}
	}
	return nil
}

// Credit adds the quote's shares to the accumulators.
func (a *Accounting) Credit(q Quote) error {
	if err := a.CanCredit(q); err != nil {
		return err
	}
	a.Apply(q)
	return nil
}

// Apply adds the quote's shares without checking for overflow. Callers must
// have checked q with CanCredit.
func (a *Accounting) Apply(q Quote) {
	shares := [2]*uint256.Int{q.TreasuryShare, q.CollectorShare}
	for i, share := range shares {
		a.pending[i].Add(a.pending[i], share)
		a.collected[i].Add(a.collected[i], share)
	}
}

// Recipient returns the address bound to side.
func (a *Accounting) Recipient(side Side) common.Address {
	if side == Collector {
		return a.collectorAddr
	}
	return a.treasuryAddr
}

// Pending returns the current balance of side.
func (a *Accounting) Pending(side Side) *uint256.Int {
	return a.pending[index(side)].Clone()
}

// Withdraw zeroes the accumulator for side and returns the drained amount.
func (a *Accounting) Withdraw(side Side, caller common.Address) (*uint256.Int, error) {
	if caller != a.Recipient(side) {
		return nil, ErrNotAuthorized
	}
	i := index(side)
	if a.pending[i].IsZero() {
		return nil, ErrZeroAmount
	}
	amount := a.pending[i].Clone()
	a.pending[i].Clear()
	a.withdrawn[i].Add(a.withdrawn[i], amount)
	return amount, nil
}

// Restore reverses a Withdraw whose payout did not complete.
func (a *Accounting) Restore(side Side, amount *uint256.Int) {
	i := index(side)
	a.pending[i].Add(a.pending[i], amount)
	a.withdrawn[i].Sub(a.withdrawn[i], amount)
}

// Balances returns a copy of all accumulator totals.
func (a *Accounting) Balances() Balances {
	return Balances{
		Treasury:           a.pending[0].Clone(),
		Collector:          a.pending[1].Clone(),
		TreasuryCollected:  a.collected[0].Clone(),
		CollectorCollected: a.collected[1].Clone(),
		TreasuryWithdrawn:  a.withdrawn[0].Clone(),
		CollectorWithdrawn: a.withdrawn[1].Clone(),
	}
}

func index(side Side) int {
	if side == Collector {
		return 1
	}
	return 0
}
