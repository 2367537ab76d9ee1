package rpcapi

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"stakePool/internal/actor"
	"stakePool/internal/ledger"
	"stakePool/internal/metrics"
	"stakePool/internal/model"
	"stakePool/internal/ratelimit"
)

// Submitter applies requests to the pool.
type Submitter interface {
	Submit(ctx context.Context, req ledger.Request) (ledger.Result, model.Receipt, error)
	State() *ledger.PoolState
}

// PoolAPI is served under the "pool" namespace.
type PoolAPI struct {
	pool    Submitter
	limiter *ratelimit.SenderLimiter
	logger  *zap.Logger
	now     func() time.Time
}

func NewPoolAPI(pool Submitter, limiter *ratelimit.SenderLimiter, logger *zap.Logger) *PoolAPI {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PoolAPI{pool: pool, limiter: limiter, logger: logger, now: time.Now}
}

func (api *PoolAPI) Deposit(ctx context.Context, req model.Request) (*model.Receipt, error) {
	return api.submit(ctx, "pool_deposit", ledger.OpDeposit, req)
}

func (api *PoolAPI) Withdraw(ctx context.Context, req model.Request) (*model.Receipt, error) {
	return api.submit(ctx, "pool_withdraw", ledger.OpWithdraw, req)
}

func (api *PoolAPI) AcceptDeposit(ctx context.Context, req model.Request) (*model.Receipt, error) {
	return api.submit(ctx, "pool_acceptDeposit", ledger.OpAcceptDeposit, req)
}

func (api *PoolAPI) AcceptWithdraw(ctx context.Context, req model.Request) (*model.Receipt, error) {
	return api.submit(ctx, "pool_acceptWithdraw", ledger.OpAcceptWithdraw, req)
}

func (api *PoolAPI) UpdateParams(ctx context.Context, req model.Request) (*model.Receipt, error) {
	return api.submit(ctx, "pool_updateParams", ledger.OpUpdateParams, req)
}

func (api *PoolAPI) RecordSent(ctx context.Context, req model.Request) (*model.Receipt, error) {
	return api.submit(ctx, "pool_recordSent", ledger.OpRecordSent, req)
}

func (api *PoolAPI) RecordReturned(ctx context.Context, req model.Request) (*model.Receipt, error) {
	return api.submit(ctx, "pool_recordReturned", ledger.OpRecordReturned, req)
}

// GetMember returns the account of address. Unknown addresses read as zero.
func (api *PoolAPI) GetMember(address string) (model.MemberView, error) {
	addr, err := ledger.ParseAddress(address)
	if err != nil {
		return model.MemberView{}, invalidParams("address: %v", err)
	}
	return model.NewMemberView(addr, api.pool.State().Member(addr)), nil
}

func (api *PoolAPI) GetParams() model.ParamsView {
	return model.NewParamsView(api.pool.State().Config().Params())
}

// GetMembers returns every member with a non-zero account, sorted by address.
func (api *PoolAPI) GetMembers() []model.MemberView {
	members := api.pool.State().Members()
	out := make([]model.MemberView, 0, len(members))
	for _, m := range members {
		out = append(out, model.NewMemberView(m.Address, m.Account))
	}
	return out
}

func (api *PoolAPI) GetStatus() model.StatusView {
	state := api.pool.State()
	return model.NewStatusView(state.Config(), state.Totals(), state.Seq())
}

func (api *PoolAPI) submit(ctx context.Context, method string, op ledger.Op, rec model.Request) (*model.Receipt, error) {
	rec.Op = op.String()
	req, err := rec.ToLedger()
	if err != nil {
		return nil, invalidParams("%v", err)
	}
	if !api.limiter.Allow(req.Sender().String(), api.now()) {
		metrics.RateLimited.WithLabelValues(method).Inc()
		return nil, &rpcError{code: CodeRateLimited, msg: "rate limit exceeded for " + req.Sender().String()}
	}

	_, receipt, err := api.pool.Submit(ctx, req)
	if err != nil {
		if errors.Is(err, actor.ErrClosed) {
			return nil, &rpcError{code: CodeUnavailable, msg: "pool is shutting down"}
		}
		return nil, err
	}
	api.logger.Debug("rpc request applied",
		zap.String("method", method),
		zap.String("from", receipt.From),
		zap.String("status", receipt.Status),
	)
	return &receipt, nil
}
