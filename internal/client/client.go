package client

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/rpc"

	"stakePool/internal/model"
)

// Client wraps a go-ethereum RPC client for the pool_* API.
type Client struct {
	rpcClient *rpc.Client

	mu     sync.RWMutex
	params *model.ParamsView
}

// Dial connects to a pool server at rawURL (http, ws or ipc).
func Dial(ctx context.Context, rawURL string) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return NewClient(rpcClient), nil
}

func NewClient(rpcClient *rpc.Client) *Client {
	return &Client{rpcClient: rpcClient}
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

func (c *Client) Deposit(ctx context.Context, req model.Request) (*model.Receipt, error) {
	return c.submit(ctx, "pool_deposit", req)
}

func (c *Client) Withdraw(ctx context.Context, req model.Request) (*model.Receipt, error) {
	return c.submit(ctx, "pool_withdraw", req)
}

func (c *Client) AcceptDeposit(ctx context.Context, req model.Request) (*model.Receipt, error) {
	return c.submit(ctx, "pool_acceptDeposit", req)
}

func (c *Client) AcceptWithdraw(ctx context.Context, req model.Request) (*model.Receipt, error) {
	return c.submit(ctx, "pool_acceptWithdraw", req)
}

func (c *Client) RecordSent(ctx context.Context, req model.Request) (*model.Receipt, error) {
	return c.submit(ctx, "pool_recordSent", req)
}

func (c *Client) RecordReturned(ctx context.Context, req model.Request) (*model.Receipt, error) {
	return c.submit(ctx, "pool_recordReturned", req)
}

// UpdateParams submits new parameters and drops the cached copy.
func (c *Client) UpdateParams(ctx context.Context, req model.Request) (*model.Receipt, error) {
	c.mu.Lock()
	c.params = nil
	c.mu.Unlock()
	return c.submit(ctx, "pool_updateParams", req)
}

func (c *Client) GetMember(ctx context.Context, address string) (model.MemberView, error) {
	var out model.MemberView
	err := c.rpcClient.CallContext(ctx, &out, "pool_getMember", address)
	return out, err
}

func (c *Client) GetMembers(ctx context.Context) ([]model.MemberView, error) {
	var out []model.MemberView
	err := c.rpcClient.CallContext(ctx, &out, "pool_getMembers")
	return out, err
}

func (c *Client) GetStatus(ctx context.Context) (model.StatusView, error) {
	var out model.StatusView
	err := c.rpcClient.CallContext(ctx, &out, "pool_getStatus")
	return out, err
}

// GetParams returns the pool parameters, cached until UpdateParams is called
// through this client.
func (c *Client) GetParams(ctx context.Context) (model.ParamsView, error) {
	c.mu.RLock()
	cached := c.params
	c.mu.RUnlock()
	if cached != nil {
		return *cached, nil
	}

	var out model.ParamsView
	if err := c.rpcClient.CallContext(ctx, &out, "pool_getParams"); err != nil {
		return model.ParamsView{}, err
	}
	c.mu.Lock()
	c.params = &out
	c.mu.Unlock()
	return out, nil
}

func (c *Client) submit(ctx context.Context, method string, req model.Request) (*model.Receipt, error) {
	var out model.Receipt
	if err := c.rpcClient.CallContext(ctx, &out, method, req); err != nil {
		return nil, err
	}
	return &out, nil
}
