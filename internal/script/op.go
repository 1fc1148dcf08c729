// Package script replays JSONL operation scripts against a router running on
// the simulated backend.
package script

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Operation kinds.
const (
	OpFund              = "fund"
	OpMockVenue         = "mock-venue"
	OpAdvance           = "advance"
	OpRegister          = "register"
	OpRegisterBatch     = "register-batch"
	OpSetActive         = "set-active"
	OpUpdateLabel       = "update-label"
	OpSetFee            = "set-fee"
	OpPause             = "pause"
	OpUnpause           = "unpause"
	OpRoute             = "route"
	OpWithdrawTreasury  = "withdraw-treasury"
	OpWithdrawCollector = "withdraw-collector"
	OpTransferOwnership = "transfer-ownership"
)

// Op is one line of an operation script. Fields not used by an operation
// kind are ignored.
type Op struct {
	Op      string   `json:"op"`
	From    string   `json:"from,omitempty"`
	To      string   `json:"to,omitempty"`
	Target  string   `json:"target,omitempty"`
	Targets []string `json:"targets,omitempty"`
	Label   string   `json:"label,omitempty"`
	Labels  []string `json:"labels,omitempty"`
	Venue   uint64   `json:"venue,omitempty"`
	Active  *bool    `json:"active,omitempty"`
	FeeBps  *uint16  `json:"fee_bps,omitempty"`
	Amount  string   `json:"amount,omitempty"`
	MinOut  string   `json:"min_out,omitempty"`
	Payload string   `json:"payload,omitempty"`
	Blocks  uint64   `json:"blocks,omitempty"`
	Kind    string   `json:"kind,omitempty"`

	// ExpectError marks an operation that must revert with an error whose
	// message contains this text.
	ExpectError string `json:"expect_error,omitempty"`
}

// ParseOp decodes one script line. Unknown fields are rejected.
func ParseOp(line []byte) (Op, error) {
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.DisallowUnknownFields()

	var op Op
	if err := dec.Decode(&op); err != nil {
		return Op{}, fmt.Errorf("parse op: %w", err)
	}
	if op.Op == "" {
		return Op{}, fmt.Errorf("parse op: missing op")
	}
	return op, nil
}
