// Package ident derives the router's domain tag and per-trade route ids.
package ident

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// SystemName is mixed into the domain tag.
const SystemName = "VenueRouter"

// DomainSalt is the fixed salt mixed into the domain tag.
var DomainSalt = crypto.Keccak256Hash([]byte("venue-router.domain-salt.v1"))

var (
	domainArgs abi.Arguments
	routeArgs  abi.Arguments
	argsOnce   sync.Once
	argsErr    error
)

func arguments() (abi.Arguments, abi.Arguments, error) {
	argsOnce.Do(func() {
		types := make(map[string]abi.Type, 4)
		for _, name := range []string{"string", "uint256", "bytes32", "address"} {
			typ, err := abi.NewType(name, "", nil)
			if err != nil {
				argsErr = fmt.Errorf("abi type %s: %w", name, err)
				return
			}
			types[name] = typ
		}
		domainArgs = abi.Arguments{
			{Name: "name", Type: types["string"]},
			{Name: "chainId", Type: types["uint256"]},
			{Name: "prevRandao", Type: types["uint256"]},
			{Name: "salt", Type: types["bytes32"]},
		}
		routeArgs = abi.Arguments{
			{Name: "domain", Type: types["bytes32"]},
			{Name: "user", Type: types["address"]},
			{Name: "venueId", Type: types["uint256"]},
			{Name: "amount", Type: types["uint256"]},
			{Name: "sequence", Type: types["uint256"]},
			{Name: "block", Type: types["uint256"]},
		}
	})
	return domainArgs, routeArgs, argsErr
}

// DomainTag computes keccak256(abi.encode(name, chainID, prevRandao, salt)).
func DomainTag(name string, chainID, prevRandao *uint256.Int, salt common.Hash) (common.Hash, error) {
	args, _, err := arguments()
	if err != nil {
		return common.Hash{}, err
	}
	encoded, err := args.Pack(name, toBig(chainID), toBig(prevRandao), [32]byte(salt))
	if err != nil {
		return common.Hash{}, fmt.Errorf("pack domain: %w", err)
	}
	return crypto.Keccak256Hash(encoded), nil
}

// RouteID computes keccak256(abi.encode(domain, user, venueID, amount, sequence, block)).
func RouteID(domain common.Hash, user common.Address, venueID uint64, amount *uint256.Int, sequence, block uint64) (common.Hash, error) {
	_, args, err := arguments()
	if err != nil {
		return common.Hash{}, err
	}
	encoded, err := args.Pack(
		[32]byte(domain),
		user,
		new(big.Int).SetUint64(venueID),
		toBig(amount),
		new(big.Int).SetUint64(sequence),
		new(big.Int).SetUint64(block),
	)
	if err != nil {
		return common.Hash{}, fmt.Errorf("pack route: %w", err)
	}
	return crypto.Keccak256Hash(encoded), nil
}

func toBig(value *uint256.Int) *big.Int {
	if value == nil {
		return new(big.Int)
	}
	return value.ToBig()
}
