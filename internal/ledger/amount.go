package ledger

import "github.com/holiman/uint256"

// maxCoins is the largest amount a single bucket may hold (2^128 - 1).
var maxCoins = func() uint256.Int {
	var v uint256.Int
	v.Lsh(uint256.NewInt(1), 128)
	v.Sub(&v, uint256.NewInt(1))
	return v
}()

// Coins returns an amount from a nano-unit count.
func Coins(nano uint64) uint256.Int {
	return *uint256.NewInt(nano)
}

// addCoins returns a+b, reporting false when the sum leaves the u128 range.
func addCoins(a, b uint256.Int) (uint256.Int, bool) {
	var sum uint256.Int
	if _, overflow := sum.AddOverflow(&a, &b); overflow {
		return uint256.Int{}, false
	}
	if sum.Gt(&maxCoins) {
		return uint256.Int{}, false
	}
	return sum, true
}

// subCoins returns a-b, clamped to zero.
func subCoins(a, b uint256.Int) uint256.Int {
	if a.Lt(&b) {
		return uint256.Int{}
	}
	var diff uint256.Int
	diff.Sub(&a, &b)
	return diff
}

func minCoins(a, b uint256.Int) uint256.Int {
	if a.Lt(&b) {
		return a
	}
	return b
}

// adjust moves total by the difference between before and after.
func adjust(total *uint256.Int, before, after uint256.Int) {
	if after.Gt(&before) {
		var diff uint256.Int
		diff.Sub(&after, &before)
		total.Add(total, &diff)
		return
	}
	var diff uint256.Int
	diff.Sub(&before, &after)
	*total = subCoins(*total, diff)
}

// FormatNano renders an amount as a decimal nano-unit string.
func FormatNano(v uint256.Int) string {
	return v.ToBig().String()
}
