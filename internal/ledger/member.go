package ledger

import "github.com/holiman/uint256"

// MemberAccount is the per-address ledger entry.
//
// Balance counts committed stake, including any part already requested for
// withdrawal: that part keeps earning until the controller accepts it, at
// which point it leaves Balance and lands in WithdrawReady.
type MemberAccount struct {
	Balance         uint256.Int
	PendingDeposit  uint256.Int
	PendingWithdraw uint256.Int
	WithdrawReady   uint256.Int
}

// IsZero reports whether all four buckets are empty.
func (m MemberAccount) IsZero() bool {
	return m.Balance.IsZero() && m.PendingDeposit.IsZero() &&
		m.PendingWithdraw.IsZero() && m.WithdrawReady.IsZero()
}

// Committed is the part of Balance not yet earmarked for withdrawal.
func (m MemberAccount) Committed() uint256.Int {
	return subCoins(m.Balance, m.PendingWithdraw)
}

// Stake is the amount subject to the minimum-stake floor: committed balance
// plus pending deposit.
func (m MemberAccount) Stake() uint256.Int {
	committed := m.Committed()
	var stake uint256.Int
	stake.Add(&committed, &m.PendingDeposit)
	return stake
}

// Total sums every bucket the member can eventually claim.
func (m MemberAccount) Total() uint256.Int {
	var total uint256.Int
	total.Add(&m.Balance, &m.PendingDeposit)
	total.Add(&total, &m.WithdrawReady)
	return total
}

// deposit credits net to the pending deposit, enforcing the floor.
func (m MemberAccount) deposit(cfg PoolConfig, net uint256.Int) (MemberAccount, ErrorKind) {
	pending, ok := addCoins(m.PendingDeposit, net)
	if !ok {
		return m, InvalidAmount
	}
	next := m
	next.PendingDeposit = pending
	if !cfg.SatisfiesFloor(next.Stake()) {
		return m, BelowMinimumStake
	}
	return next, 0
}

// withdrawPlan records how a withdraw request is split across buckets.
type withdrawPlan struct {
	fromReady   uint256.Int
	fromPending uint256.Int
	fromBalance uint256.Int
}

func (p withdrawPlan) payout() uint256.Int {
	var v uint256.Int
	v.Add(&p.fromReady, &p.fromPending)
	return v
}

func (p withdrawPlan) delayed() bool {
	return !p.fromBalance.IsZero()
}

// planWithdraw resolves amount against withdrawReady, then pendingDeposit,
// then committed balance. A zero amount drains everything reachable.
func (m MemberAccount) planWithdraw(amount uint256.Int) (withdrawPlan, bool) {
	committed := m.Committed()
	if amount.IsZero() {
		return withdrawPlan{
			fromReady:   m.WithdrawReady,
			fromPending: m.PendingDeposit,
			fromBalance: committed,
		}, true
	}

	var plan withdrawPlan
	remaining := amount
	plan.fromReady = minCoins(remaining, m.WithdrawReady)
	remaining = subCoins(remaining, plan.fromReady)
	plan.fromPending = minCoins(remaining, m.PendingDeposit)
	remaining = subCoins(remaining, plan.fromPending)
	if remaining.Gt(&committed) {
		return withdrawPlan{}, false
	}
	plan.fromBalance = remaining
	return plan, true
}

// apply returns the account after plan. Balance is left in place; the
// delayed part is only marked in PendingWithdraw.
func (m MemberAccount) apply(plan withdrawPlan) MemberAccount {
	next := m
	next.WithdrawReady = subCoins(m.WithdrawReady, plan.fromReady)
	next.PendingDeposit = subCoins(m.PendingDeposit, plan.fromPending)
	next.PendingWithdraw.Add(&m.PendingWithdraw, &plan.fromBalance)
	return next
}

// acceptDeposit moves the whole pending deposit into balance.
func (m MemberAccount) acceptDeposit() (MemberAccount, bool) {
	balance, ok := addCoins(m.Balance, m.PendingDeposit)
	if !ok {
		return m, false
	}
	next := m
	next.Balance = balance
	next.PendingDeposit = uint256.Int{}
	return next, true
}

// acceptWithdraw releases the pending withdrawal from balance into withdrawReady.
func (m MemberAccount) acceptWithdraw() (MemberAccount, bool) {
	ready, ok := addCoins(m.WithdrawReady, m.PendingWithdraw)
	if !ok {
		return m, false
	}
	next := m
	next.Balance = subCoins(m.Balance, m.PendingWithdraw)
	next.WithdrawReady = ready
	next.PendingWithdraw = uint256.Int{}
	return next, true
}
