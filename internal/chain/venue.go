package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"go.uber.org/zap"

	"venueRouter/internal/sim"
)

// ContractCaller performs read-only contract calls.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// VenueHandler returns venue code that answers forwarded calls with an eth_call
// against the live contract at the same address. blockNumber pins the state;
// nil uses the latest block. Value moves only inside the simulation.
func VenueHandler(caller ContractCaller, blockNumber *big.Int, logger *zap.Logger) sim.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, call sim.VenueCall) ([]byte, error) {
		to := call.To
		msg := ethereum.CallMsg{
			From: call.From,
			To:   &to,
			Data: call.Payload,
		}
		if call.Value != nil && !call.Value.IsZero() {
			msg.Value = call.Value.ToBig()
		}

		ret, err := caller.CallContract(ctx, msg, blockNumber)
		if err != nil {
			logger.Debug("venue eth_call failed", zap.String("venue", to.Hex()), zap.Error(err))
			return nil, fmt.Errorf("eth_call %s: %w", to.Hex(), err)
		}
		return ret, nil
	}
}
