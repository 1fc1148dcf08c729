package script

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"venueRouter/internal/config"
	"venueRouter/internal/fees"
	"venueRouter/internal/model"
	"venueRouter/internal/router"
	"venueRouter/internal/sim"
)

// Operation outcomes.
const (
	StatusApplied  = "applied"
	StatusReverted = "reverted"
	StatusInvalid  = "invalid"
)

// Result is the outcome of one script operation.
type Result struct {
	Line      int          `json:"line"`
	Op        string       `json:"op"`
	Status    string       `json:"status"`
	Error     string       `json:"error,omitempty"`
	Block     uint64       `json:"block"`
	RouteID   string       `json:"route_id,omitempty"`
	AmountOut *uint256.Int `json:"amount_out_wei,omitempty"`
	Amount    *uint256.Int `json:"amount_wei,omitempty"`
	VenueIDs  []uint64     `json:"venue_ids,omitempty"`
	Mismatch  bool         `json:"mismatch,omitempty"`
}

// VenueSummary combines a venue record with its trade aggregates.
type VenueSummary struct {
	model.VenueRecord
	LabelText  string       `json:"label_text,omitempty"`
	TradeCount uint64       `json:"trade_count"`
	Volume     *uint256.Int `json:"volume_wei"`
}

// State is the router state at the end of a run.
type State struct {
	Settings      router.Settings         `json:"settings"`
	Paused        bool                    `json:"paused"`
	FeeBps        uint16                  `json:"fee_bps"`
	Accumulators  fees.Balances           `json:"accumulators"`
	RouteSequence uint64                  `json:"route_sequence"`
	RouteCount    uint64                  `json:"route_count"`
	Block         uint64                  `json:"block"`
	Venues        []VenueSummary          `json:"venues"`
	Balances      map[string]*uint256.Int `json:"balances_wei"`
}

// Report summarizes a script run.
type Report struct {
	Script     string   `json:"script,omitempty"`
	StartedAt  string   `json:"started_at"`
	FinishedAt string   `json:"finished_at"`
	Total      int      `json:"total"`
	Applied    int      `json:"applied"`
	Reverted   int      `json:"reverted"`
	Invalid    int      `json:"invalid"`
	Mismatches int      `json:"mismatches"`
	Results    []Result `json:"results"`
	Final      State    `json:"final"`
}

func (r *Report) add(result Result) {
	r.Total++
	switch result.Status {
	case StatusApplied:
		r.Applied++
	case StatusReverted:
		r.Reverted++
	case StatusInvalid:
		r.Invalid++
	}
	if result.Mismatch {
		r.Mismatches++
	}
	r.Results = append(r.Results, result)
}

// Snapshot captures the router's observable state along with the simulated
// balances of the router and both fee recipients.
func Snapshot(rt *router.Router, backend *sim.Backend) State {
	settings := rt.Settings()
	ids := rt.VenueIDs()
	venues := make([]VenueSummary, 0, len(ids))
	for _, record := range rt.Venues(ids) {
		stats := rt.VenueStats(record.ID)
		venues = append(venues, VenueSummary{
			VenueRecord: record,
			LabelText:   config.LabelString(record.Label),
			TradeCount:  stats.TradeCount,
			Volume:      stats.Volume,
		})
	}

	balances := make(map[string]*uint256.Int, 3)
	for _, addr := range []common.Address{settings.Address, settings.Treasury, settings.Collector} {
		balances[addr.Hex()] = backend.Balance(addr)
	}

	return State{
		Settings:      settings,
		Paused:        rt.Paused(),
		FeeBps:        rt.FeeBps(),
		Accumulators:  rt.Accumulators(),
		RouteSequence: rt.RouteSequence(),
		RouteCount:    rt.RouteCount(),
		Block:         backend.BlockNumber(),
		Venues:        venues,
		Balances:      balances,
	}
}

// WriteReport persists the report as indented JSON via a temp file and rename.
func WriteReport(path string, report Report) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write report tmp: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename report: %w", err)
	}
	return nil
}
