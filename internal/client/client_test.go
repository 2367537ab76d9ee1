package client

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"stakePool/internal/actor"
	"stakePool/internal/ledger"
	"stakePool/internal/model"
	"stakePool/internal/rpcapi"
)

var (
	owner      = "0:" + strings.Repeat("0e", 32)
	controller = "-1:" + strings.Repeat("c0", 32)
	alice      = "0:" + strings.Repeat("a1", 32)
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	cfg := ledger.DefaultConfig(ledger.MustParseAddress(owner), ledger.MustParseAddress(controller))
	state, err := ledger.NewPoolState(cfg)
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	a := actor.New(ledger.NewDispatcher(state, nil), nil, nil, actor.Config{})
	ctx, cancel := context.WithCancel(context.Background())
	go a.Run(ctx)

	srv, err := rpcapi.NewServer(rpcapi.NewPoolAPI(a, nil, nil))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	httpSrv := httptest.NewServer(rpcapi.Handler(srv))
	c, err := Dial(ctx, httpSrv.URL)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() {
		c.Close()
		httpSrv.Close()
		srv.Stop()
		cancel()
	})
	return c
}

func TestClientEdgeFlow(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	steps := []struct {
		call   func(context.Context, model.Request) (*model.Receipt, error)
		req    model.Request
		status string
	}{
		{c.Deposit, model.Request{From: alice, Value: "4300000000"}, "deposit_accepted"},
		{c.AcceptDeposit, model.Request{From: controller, Members: []string{alice}}, "ok"},
		{c.Deposit, model.Request{From: alice, Value: "2000000000"}, "deposit_accepted"},
		{c.Withdraw, model.Request{From: alice, Amount: "1300000000", Value: "200000000"}, "immediate"},
		{c.Withdraw, model.Request{From: alice, Amount: "1300000000", Value: "200000000"}, "delayed"},
		{c.RecordSent, model.Request{From: controller, Amount: "4100000000"}, "ok"},
	}
	for i, step := range steps {
		receipt, err := step.call(ctx, step.req)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if receipt.Status != step.status {
			t.Fatalf("step %d: status %s, want %s (%+v)", i, receipt.Status, step.status, receipt)
		}
	}

	member, err := c.GetMember(ctx, alice)
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	want := model.MemberView{
		Address:         alice,
		Balance:         "4100000000",
		PendingDeposit:  "0",
		PendingWithdraw: "800000000",
		WithdrawReady:   "0",
	}
	if member != want {
		t.Fatalf("unexpected member: %+v", member)
	}

	if _, err := c.AcceptWithdraw(ctx, model.Request{From: controller, Members: []string{alice}}); err != nil {
		t.Fatalf("accept withdraw: %v", err)
	}
	members, err := c.GetMembers(ctx)
	if err != nil {
		t.Fatalf("get members: %v", err)
	}
	if len(members) != 1 || members[0].Balance != "3300000000" || members[0].WithdrawReady != "800000000" {
		t.Fatalf("unexpected members: %+v", members)
	}

	status, err := c.GetStatus(ctx)
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	if status.BalanceSent != "4100000000" || status.Seq != 7 {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestClientParamsCache(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	params, err := c.GetParams(ctx)
	if err != nil {
		t.Fatalf("get params: %v", err)
	}
	params.PoolFeeBps = 1500
	receipt, err := c.UpdateParams(ctx, model.Request{From: owner, Params: &params})
	if err != nil {
		t.Fatalf("update params: %v", err)
	}
	if !receipt.OK() {
		t.Fatalf("update rejected: %+v", receipt)
	}

	got, err := c.GetParams(ctx)
	if err != nil {
		t.Fatalf("get params: %v", err)
	}
	if got.PoolFeeBps != 1500 {
		t.Fatalf("expected refreshed params, got %+v", got)
	}

	receipt, err = c.UpdateParams(ctx, model.Request{From: alice, Params: &params})
	if err != nil {
		t.Fatalf("update params: %v", err)
	}
	if receipt.ExitCode != ledger.ExitUnauthorized {
		t.Fatalf("expected unauthorized receipt, got %+v", receipt)
	}
}
