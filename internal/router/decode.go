package router

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/holiman/uint256"
)

var (
	amountOutArgs    abi.Arguments
	amountOutArgsErr error
	amountOutOnce    sync.Once
)

func amountOutArguments() (abi.Arguments, error) {
	amountOutOnce.Do(func() {
		typ, err := abi.NewType("uint256", "", nil)
		if err != nil {
			amountOutArgsErr = err
			return
		}
		amountOutArgs = abi.Arguments{{Name: "amountOut", Type: typ}}
	})
	return amountOutArgs, amountOutArgsErr
}

// DecodeAmountOut reads the leading ABI word of a venue's return data as a
// uint256. Short or undecodable data yields zero.
func DecodeAmountOut(ret []byte) *uint256.Int {
	if len(ret) < 32 {
		return new(uint256.Int)
	}
	args, err := amountOutArguments()
	if err != nil {
		return new(uint256.Int)
	}
	values, err := args.Unpack(ret[:32])
	if err != nil || len(values) != 1 {
		return new(uint256.Int)
	}
	raw, ok := values[0].(*big.Int)
	if !ok {
		return new(uint256.Int)
	}
	out, overflow := uint256.FromBig(raw)
	if overflow {
		return new(uint256.Int)
	}
	return out
}
