package model

import (
	"math/big"

	"github.com/holiman/uint256"
)

// EtherDecimals is the number of decimals of the native currency.
const EtherDecimals = 18

// FormatWei renders a wei amount as a decimal string with the given precision.
func FormatWei(value *uint256.Int, decimals uint8) string {
	if value == nil {
		return "0"
	}
	if decimals == 0 {
		return value.Dec()
	}
	denom := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	rat := new(big.Rat).SetFrac(value.ToBig(), denom)
	return rat.FloatString(int(decimals))
}

// FormatEther renders a wei amount in ether.
func FormatEther(value *uint256.Int) string {
	return FormatWei(value, EtherDecimals)
}
