package ledger

import (
	"github.com/holiman/uint256"
	"go.uber.org/zap"
)

// Dispatcher applies requests to a PoolState one at a time.
type Dispatcher struct {
	state  *PoolState
	logger *zap.Logger
}

// NewDispatcher builds a Dispatcher over state.
func NewDispatcher(state *PoolState, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{state: state, logger: logger}
}

// State returns the pool the dispatcher mutates.
func (d *Dispatcher) State() *PoolState {
	return d.state
}

// Handle applies req and returns its outcome. The pool either commits the
// whole request or is left untouched.
func (d *Dispatcher) Handle(req Request) Result {
	s := d.state
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		resp *Response
		fail *Failure
	)
	switch r := req.(type) {
	case Deposit:
		resp, fail = d.deposit(r)
	case Withdraw:
		resp, fail = d.withdraw(r)
	case AcceptDeposit:
		resp, fail = d.acceptDeposit(r)
	case AcceptWithdraw:
		resp, fail = d.acceptWithdraw(r)
	case UpdateParams:
		resp, fail = d.updateParams(r)
	case RecordSent:
		resp, fail = d.recordSent(r)
	case RecordReturned:
		resp, fail = d.recordReturned(r)
	default:
		fail = refunded(InvalidAmount, ExitInvalidAmount, req.Attached())
	}
	s.seq++

	result := Result{Op: req.Op(), From: req.Sender(), Response: resp, Failure: fail}
	if fail != nil {
		d.logger.Debug("request rejected",
			zap.Stringer("op", req.Op()),
			zap.Stringer("from", req.Sender()),
			zap.Stringer("kind", fail.Kind),
			zap.Int("exit_code", fail.ExitCode),
			zap.Bool("refund", !fail.Silent()),
		)
	} else {
		d.logger.Debug("request applied",
			zap.Stringer("op", req.Op()),
			zap.Stringer("from", req.Sender()),
			zap.String("status", result.Status()),
		)
	}
	return result
}

func (d *Dispatcher) deposit(r Deposit) (*Response, *Failure) {
	cfg := d.state.config
	net, ok := cfg.NetDeposit(r.Value)
	if !ok {
		return nil, silent(Unaffordable, ExitUnaffordable)
	}
	if !cfg.Enabled {
		return nil, refunded(Disabled, ExitPoolDisabled, r.Value)
	}

	next, kind := d.state.members[r.From].deposit(cfg, net)
	switch kind {
	case 0:
	case BelowMinimumStake:
		return nil, refunded(BelowMinimumStake, ExitDepositBelowMin, r.Value)
	default:
		return nil, refunded(kind, ExitInvalidAmount, r.Value)
	}

	d.state.commit(r.From, next)
	return &Response{Kind: DepositAccepted, Credited: net}, nil
}

func (d *Dispatcher) withdraw(r Withdraw) (*Response, *Failure) {
	cfg := d.state.config
	if !cfg.CoversWithdraw(r.Value) {
		return nil, silent(Unaffordable, ExitUnaffordable)
	}

	acct := d.state.members[r.From]
	if acct.IsZero() {
		if r.Amount.IsZero() {
			return &Response{Kind: WithdrawImmediate}, nil
		}
		return nil, refunded(NoBalance, ExitNoBalance, r.Value)
	}

	plan, ok := acct.planWithdraw(r.Amount)
	if !ok {
		return nil, refunded(NoBalance, ExitNoBalance, r.Value)
	}
	next := acct.apply(plan)
	if !cfg.SatisfiesFloor(next.Stake()) {
		return nil, refunded(BelowMinimumStake, ExitBelowMinimumStake, r.Value)
	}

	d.state.commit(r.From, next)
	kind := WithdrawImmediate
	if plan.delayed() {
		kind = WithdrawDelayed
	}
	return &Response{Kind: kind, Payout: plan.payout(), Delayed: plan.fromBalance}, nil
}

func (d *Dispatcher) acceptDeposit(r AcceptDeposit) (*Response, *Failure) {
	return d.acceptEach(r.From, r.Value, r.Members, MemberAccount.acceptDeposit)
}

func (d *Dispatcher) acceptWithdraw(r AcceptWithdraw) (*Response, *Failure) {
	return d.acceptEach(r.From, r.Value, r.Members, MemberAccount.acceptWithdraw)
}

// acceptEach applies step to every listed member, all or nothing.
func (d *Dispatcher) acceptEach(from Address, value uint256.Int, members []Address, step func(MemberAccount) (MemberAccount, bool)) (*Response, *Failure) {
	if from != d.state.config.Controller {
		return nil, refunded(Unauthorized, ExitUnauthorized, value)
	}

	updates := make(map[Address]MemberAccount, len(members))
	for _, addr := range members {
		acct, seen := updates[addr]
		if !seen {
			acct = d.state.members[addr]
		}
		next, ok := step(acct)
		if !ok {
			return nil, refunded(InvalidAmount, ExitInvalidAmount, value)
		}
		updates[addr] = next
	}

	touched := 0
	for addr, next := range updates {
		if next != d.state.members[addr] {
			touched++
		}
		d.state.commit(addr, next)
	}
	return &Response{Kind: Accepted, Members: touched}, nil
}

func (d *Dispatcher) updateParams(r UpdateParams) (*Response, *Failure) {
	cfg := d.state.config
	if r.From != cfg.Owner {
		return nil, refunded(Unauthorized, ExitUnauthorized, r.Value)
	}
	if !cfg.UpdatesEnabled {
		return nil, refunded(UpdatesDisabled, ExitUpdatesDisabled, r.Value)
	}
	if err := r.Params.Validate(); err != nil {
		return nil, refunded(InvalidAmount, ExitInvalidAmount, r.Value)
	}
	d.state.config = cfg.WithParams(r.Params)
	d.logger.Info("pool params updated",
		zap.Bool("enabled", r.Params.Enabled),
		zap.Bool("updates_enabled", r.Params.UpdatesEnabled),
		zap.String("min_stake", FormatNano(r.Params.MinStake)),
		zap.Uint64("pool_fee_bps", r.Params.PoolFeeBps),
	)
	return &Response{Kind: Accepted}, nil
}

func (d *Dispatcher) recordSent(r RecordSent) (*Response, *Failure) {
	if r.From != d.state.config.Controller {
		return nil, silent(Unauthorized, ExitUnauthorized)
	}
	sent, ok := addCoins(d.state.totals.BalanceSent, r.Amount)
	if !ok {
		return nil, silent(InvalidAmount, ExitInvalidAmount)
	}
	d.state.totals.BalanceSent = sent
	return &Response{Kind: Accepted}, nil
}

func (d *Dispatcher) recordReturned(r RecordReturned) (*Response, *Failure) {
	if r.From != d.state.config.Controller {
		return nil, silent(Unauthorized, ExitUnauthorized)
	}
	if r.Amount.Gt(&d.state.totals.BalanceSent) {
		return nil, silent(NoBalance, ExitNoBalance)
	}
	d.state.totals.BalanceSent = subCoins(d.state.totals.BalanceSent, r.Amount)
	return &Response{Kind: Accepted}, nil
}
