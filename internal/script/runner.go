package script

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"venueRouter/internal/config"
	"venueRouter/internal/router"
	"venueRouter/internal/sim"
)

// invalidOpError marks operations that could not be issued at all, as opposed
// to operations the router rejected.
type invalidOpError struct {
	err error
}

func (e invalidOpError) Error() string { return e.err.Error() }
func (e invalidOpError) Unwrap() error { return e.err }

func invalid(format string, args ...interface{}) error {
	return invalidOpError{err: fmt.Errorf(format, args...)}
}

// Runner applies script operations to a router backed by a simulated chain.
type Runner struct {
	router  *router.Router
	backend *sim.Backend
	logger  *zap.Logger
}

// NewRunner builds a Runner with its dependencies.
func NewRunner(rt *router.Router, backend *sim.Backend, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{router: rt, backend: backend, logger: logger}
}

// RunFile replays the script at path.
func (r *Runner) RunFile(ctx context.Context, path string) (Report, error) {
	file, err := os.Open(path)
	if err != nil {
		return Report{}, fmt.Errorf("open script: %w", err)
	}
	defer file.Close()

	report, err := r.Run(ctx, file)
	report.Script = path
	return report, err
}

// Run replays every operation read from in. Reverted and invalid operations
// are recorded in the report and do not stop the run.
func (r *Runner) Run(ctx context.Context, in io.Reader) (Report, error) {
	if r.router == nil || r.backend == nil {
		return Report{}, fmt.Errorf("runner is missing router or backend")
	}
	report := Report{StartedAt: time.Now().UTC().Format(time.RFC3339Nano)}

	scanner := bufio.NewScanner(in)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		select {
		case <-ctx.Done():
			return report, ctx.Err()
		default:
		}

		op, err := ParseOp(line)
		if err != nil {
			result := Result{Line: lineNo, Status: StatusInvalid, Error: err.Error(), Block: r.backend.BlockNumber()}
			r.logger.Warn("invalid operation", zap.Int("line", lineNo), zap.Error(err))
			report.add(result)
			continue
		}

		result := r.Apply(ctx, op)
		result.Line = lineNo
		report.add(result)
	}
	if err := scanner.Err(); err != nil {
		return report, fmt.Errorf("scan script: %w", err)
	}

	report.FinishedAt = time.Now().UTC().Format(time.RFC3339Nano)
	report.Final = Snapshot(r.router, r.backend)

	r.logger.Info("script complete",
		zap.Int("total", report.Total),
		zap.Int("applied", report.Applied),
		zap.Int("reverted", report.Reverted),
		zap.Int("invalid", report.Invalid),
		zap.Int("mismatches", report.Mismatches),
	)
	return report, nil
}

// Apply executes a single operation.
func (r *Runner) Apply(ctx context.Context, op Op) Result {
	result := Result{Op: op.Op, Block: r.backend.BlockNumber()}

	err := r.dispatch(ctx, op, &result)
	var invalidErr invalidOpError
	switch {
	case err == nil:
		result.Status = StatusApplied
	case errors.As(err, &invalidErr):
		result.Status = StatusInvalid
		result.Error = err.Error()
	default:
		result.Status = StatusReverted
		result.Error = err.Error()
	}

	if op.ExpectError != "" {
		result.Mismatch = result.Status != StatusReverted || !strings.Contains(result.Error, op.ExpectError)
	}

	fields := []zap.Field{zap.String("op", op.Op), zap.Uint64("block", result.Block)}
	switch {
	case result.Mismatch:
		r.logger.Warn("operation did not match expectation", append(fields, zap.String("expected_error", op.ExpectError), zap.String("error", result.Error))...)
	case result.Status == StatusInvalid:
		r.logger.Warn("invalid operation", append(fields, zap.Error(err))...)
	case result.Status == StatusReverted:
		r.logger.Info("operation reverted", append(fields, zap.Error(err))...)
	default:
		r.logger.Debug("operation applied", fields...)
	}
	return result
}

func (r *Runner) dispatch(ctx context.Context, op Op, result *Result) error {
	switch op.Op {
	case OpFund:
		to, err := parseAddress("to", op.To)
		if err != nil {
			return err
		}
		amount, err := parseAmount("amount", op.Amount)
		if err != nil {
			return err
		}
		result.Amount = amount
		return r.backend.Fund(to, amount)

	case OpMockVenue:
		target, err := parseAddress("target", op.Target)
		if err != nil {
			return err
		}
		amount, err := parseAmount("amount", op.Amount)
		if err != nil {
			return err
		}
		handler, err := venueHandler(op.Kind, amount, op.Venue, r.router)
		if err != nil {
			return invalidOpError{err: err}
		}
		r.backend.SetHandler(target, handler)
		return nil

	case OpAdvance:
		blocks := op.Blocks
		if blocks == 0 {
			blocks = 1
		}
		result.Block = r.backend.Advance(blocks)
		return nil

	case OpRegister:
		from, target, err := parsePair("from", op.From, "target", op.Target)
		if err != nil {
			return err
		}
		label, err := config.ParseLabel(op.Label)
		if err != nil {
			return invalidOpError{err: err}
		}
		id, err := r.router.RegisterVenue(ctx, from, target, label)
		if err != nil {
			return err
		}
		result.VenueIDs = []uint64{id}
		return nil

	case OpRegisterBatch:
		from, err := parseAddress("from", op.From)
		if err != nil {
			return err
		}
		targets := make([]common.Address, 0, len(op.Targets))
		for _, input := range op.Targets {
			target, err := parseAddress("targets", input)
			if err != nil {
				return err
			}
			targets = append(targets, target)
		}
		labelInputs := op.Labels
		if labelInputs == nil {
			labelInputs = make([]string, len(op.Targets))
		}
		labels := make([]common.Hash, 0, len(labelInputs))
		for _, input := range labelInputs {
			label, err := config.ParseLabel(input)
			if err != nil {
				return invalidOpError{err: err}
			}
			labels = append(labels, label)
		}
		ids, err := r.router.RegisterVenues(ctx, from, targets, labels)
		if err != nil {
			return err
		}
		result.VenueIDs = ids
		return nil

	case OpSetActive:
		from, err := parseAddress("from", op.From)
		if err != nil {
			return err
		}
		if op.Active == nil {
			return invalid("active is required")
		}
		result.VenueIDs = []uint64{op.Venue}
		return r.router.SetVenueActive(ctx, from, op.Venue, *op.Active)

	case OpUpdateLabel:
		from, err := parseAddress("from", op.From)
		if err != nil {
			return err
		}
		label, err := config.ParseLabel(op.Label)
		if err != nil {
			return invalidOpError{err: err}
		}
		result.VenueIDs = []uint64{op.Venue}
		return r.router.UpdateVenueLabel(ctx, from, op.Venue, label)

	case OpSetFee:
		from, err := parseAddress("from", op.From)
		if err != nil {
			return err
		}
		if op.FeeBps == nil {
			return invalid("fee_bps is required")
		}
		return r.router.SetFeeBps(ctx, from, *op.FeeBps)

	case OpPause, OpUnpause:
		from, err := parseAddress("from", op.From)
		if err != nil {
			return err
		}
		if op.Op == OpPause {
			return r.router.Pause(ctx, from)
		}
		return r.router.Unpause(ctx, from)

	case OpRoute:
		from, err := parseAddress("from", op.From)
		if err != nil {
			return err
		}
		amount, err := parseAmount("amount", op.Amount)
		if err != nil {
			return err
		}
		minOut, err := parseAmount("min_out", op.MinOut)
		if err != nil {
			return err
		}
		var payload []byte
		if op.Payload != "" {
			if payload, err = hexutil.Decode(op.Payload); err != nil {
				return invalid("payload: %v", err)
			}
		}
		result.Amount = amount
		result.VenueIDs = []uint64{op.Venue}
		routeID, out, err := r.router.RouteTrade(ctx, router.Call{From: from, Value: amount}, op.Venue, minOut, payload)
		if err != nil {
			return err
		}
		result.RouteID = routeID.Hex()
		result.AmountOut = out
		return nil

	case OpWithdrawTreasury, OpWithdrawCollector:
		from, err := parseAddress("from", op.From)
		if err != nil {
			return err
		}
		var amount *uint256.Int
		if op.Op == OpWithdrawTreasury {
			amount, err = r.router.WithdrawTreasury(ctx, from)
		} else {
			amount, err = r.router.WithdrawCollector(ctx, from)
		}
		if err != nil {
			return err
		}
		result.Amount = amount
		return nil

	case OpTransferOwnership:
		from, to, err := parsePair("from", op.From, "to", op.To)
		if err != nil {
			return err
		}
		return r.router.TransferOwnership(ctx, from, to)

	default:
		return invalid("unknown op %q", op.Op)
	}
}

func parseAddress(field, input string) (common.Address, error) {
	addr, err := config.ParseAddress(input)
	if err != nil {
		return common.Address{}, invalid("%s: %v", field, err)
	}
	return addr, nil
}

func parsePair(fieldA, inputA, fieldB, inputB string) (common.Address, common.Address, error) {
	a, err := parseAddress(fieldA, inputA)
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	b, err := parseAddress(fieldB, inputB)
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	return a, b, nil
}

func parseAmount(field, input string) (*uint256.Int, error) {
	amount, err := config.ParseAmount(input)
	if err != nil {
		return nil, invalid("%s: %v", field, err)
	}
	return amount, nil
}
