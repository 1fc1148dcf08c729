package config

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

// ParseAddress converts a hex string into an address. Empty input is an error.
func ParseAddress(input string) (common.Address, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return common.Address{}, fmt.Errorf("address is required")
	}
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("invalid address: %s", input)
	}
	return common.HexToAddress(input), nil
}

// ParseOptionalAddress is ParseAddress that maps empty input to the zero address.
func ParseOptionalAddress(input string) (common.Address, error) {
	if strings.TrimSpace(input) == "" {
		return common.Address{}, nil
	}
	return ParseAddress(input)
}

// ParseLabel accepts a 0x-prefixed 32-byte hex value or a short text label of
// at most 32 bytes, which is left-aligned and zero-padded like a bytes32 literal.
func ParseLabel(input string) (common.Hash, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return common.Hash{}, nil
	}
	if strings.HasPrefix(input, "0x") || strings.HasPrefix(input, "0X") {
		data, err := hexutil.Decode(input)
		if err != nil {
			return common.Hash{}, fmt.Errorf("invalid label: %s", input)
		}
		if len(data) != 32 {
			return common.Hash{}, fmt.Errorf("invalid label length: %s", input)
		}
		return common.BytesToHash(data), nil
	}
	if len(input) > 32 {
		return common.Hash{}, fmt.Errorf("label longer than 32 bytes: %s", input)
	}
	var label common.Hash
	copy(label[:], input)
	return label, nil
}

// LabelString renders a label as text when it is a padded printable string and
// as hex otherwise.
func LabelString(label common.Hash) string {
	end := len(label)
	for end > 0 && label[end-1] == 0 {
		end--
	}
	if end == 0 {
		return ""
	}
	for _, b := range label[:end] {
		if b < 0x20 || b > 0x7e {
			return label.Hex()
		}
	}
	return string(label[:end])
}

// ParseAmount accepts a decimal or 0x-prefixed hex wei amount.
func ParseAmount(input string) (*uint256.Int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return new(uint256.Int), nil
	}
	if strings.HasPrefix(input, "0x") || strings.HasPrefix(input, "0X") {
		value, err := uint256.FromHex(input)
		if err != nil {
			return nil, fmt.Errorf("invalid amount %s: %w", input, err)
		}
		return value, nil
	}
	value, err := uint256.FromDecimal(input)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %s: %w", input, err)
	}
	return value, nil
}

// VenueSpec is a venue declared in configuration as "address" or "address:label".
type VenueSpec struct {
	Target common.Address
	Label  common.Hash
}

// ParseVenues converts configured venue entries into VenueSpecs.
func ParseVenues(inputs []string) ([]VenueSpec, error) {
	venues := make([]VenueSpec, 0, len(inputs))
	for _, input := range inputs {
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		target, labelText, _ := strings.Cut(input, ":")
		addr, err := ParseAddress(target)
		if err != nil {
			return nil, err
		}
		label, err := ParseLabel(labelText)
		if err != nil {
			return nil, err
		}
		venues = append(venues, VenueSpec{Target: addr, Label: label})
	}
	return venues, nil
}
