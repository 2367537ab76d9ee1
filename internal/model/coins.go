package model

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// NanoDecimals is the number of decimals between a coin and its nano unit.
const NanoDecimals = 9

// ParseCoins converts a decimal coin amount such as "4.3" into nano units.
func ParseCoins(input string) (uint256.Int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return uint256.Int{}, nil
	}
	d, err := decimal.NewFromString(input)
	if err != nil {
		return uint256.Int{}, fmt.Errorf("invalid amount %q: %w", input, err)
	}
	if d.IsNegative() {
		return uint256.Int{}, fmt.Errorf("negative amount %q", input)
	}
	nano := d.Shift(NanoDecimals)
	if !nano.Equal(nano.Truncate(0)) {
		return uint256.Int{}, fmt.Errorf("amount %q has more than %d decimals", input, NanoDecimals)
	}
	return fromBig(nano.BigInt(), input)
}

// FormatCoins renders nano units as a decimal coin amount.
func FormatCoins(v uint256.Int) string {
	return decimal.NewFromBigInt(v.ToBig(), -NanoDecimals).String()
}

// ParseNano parses a decimal nano-unit string. Empty input is zero.
func ParseNano(input string) (uint256.Int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return uint256.Int{}, nil
	}
	b, ok := new(big.Int).SetString(input, 10)
	if !ok {
		return uint256.Int{}, fmt.Errorf("invalid int: %s", input)
	}
	if b.Sign() < 0 {
		return uint256.Int{}, fmt.Errorf("negative amount: %s", input)
	}
	return fromBig(b, input)
}

func fromBig(b *big.Int, input string) (uint256.Int, error) {
	v, overflow := uint256.FromBig(b)
	if overflow {
		return uint256.Int{}, fmt.Errorf("amount out of range: %s", input)
	}
	return *v, nil
}
