package ledger

import "github.com/holiman/uint256"

// DepositOverhead is the part of a deposit consumed by fees and the receipt.
func (c PoolConfig) DepositOverhead() uint256.Int {
	var v uint256.Int
	v.Add(&c.DepositFee, &c.ReceiptPrice)
	return v
}

// WithdrawOverhead is the value a withdraw request must carry to pay for its
// own processing and response. It never touches member buckets.
func (c PoolConfig) WithdrawOverhead() uint256.Int {
	return c.Params().WithdrawOverhead()
}

// WithdrawOverhead is the withdraw fee plus the receipt price.
func (p Params) WithdrawOverhead() uint256.Int {
	var v uint256.Int
	v.Add(&p.WithdrawFee, &p.ReceiptPrice)
	return v
}

// NetDeposit returns sent minus the deposit overhead. ok is false when the
// result would be zero or negative.
func (c PoolConfig) NetDeposit(sent uint256.Int) (net uint256.Int, ok bool) {
	overhead := c.DepositOverhead()
	if !sent.Gt(&overhead) {
		return uint256.Int{}, false
	}
	net.Sub(&sent, &overhead)
	return net, true
}

// CoversWithdraw reports whether attached pays for a withdraw request.
func (c PoolConfig) CoversWithdraw(attached uint256.Int) bool {
	overhead := c.WithdrawOverhead()
	return !attached.Lt(&overhead)
}

// SatisfiesFloor reports whether stake is zero or at least the minimum stake.
func (c PoolConfig) SatisfiesFloor(stake uint256.Int) bool {
	return stake.IsZero() || !stake.Lt(&c.MinStake)
}
