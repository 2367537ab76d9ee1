package rpcapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/rpc"

	"stakePool/internal/actor"
	"stakePool/internal/ledger"
	"stakePool/internal/model"
	"stakePool/internal/ratelimit"
)

var (
	testController = "-1:" + strings.Repeat("c0", 32)
	testAlice      = "0:" + strings.Repeat("a1", 32)
)

func newTestServer(t *testing.T, limiter *ratelimit.SenderLimiter) (*httptest.Server, *rpc.Client) {
	t.Helper()
	controller := ledger.MustParseAddress(testController)
	state, err := ledger.NewPoolState(ledger.DefaultConfig(controller, controller))
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	a := actor.New(ledger.NewDispatcher(state, nil), nil, nil, actor.Config{})
	ctx, cancel := context.WithCancel(context.Background())
	go a.Run(ctx)

	srv, err := NewServer(NewPoolAPI(a, limiter, nil))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	httpSrv := httptest.NewServer(Handler(srv))
	client, err := rpc.DialHTTP(httpSrv.URL)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() {
		client.Close()
		httpSrv.Close()
		srv.Stop()
		cancel()
	})
	return httpSrv, client
}

func TestDepositAndQuery(t *testing.T) {
	_, client := newTestServer(t, nil)
	ctx := context.Background()

	var receipt model.Receipt
	err := client.CallContext(ctx, &receipt, "pool_deposit", model.Request{From: testAlice, Value: "4300000000"})
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if receipt.Status != "deposit_accepted" || receipt.Credited != "4100000000" {
		t.Fatalf("unexpected receipt: %+v", receipt)
	}

	var member model.MemberView
	if err := client.CallContext(ctx, &member, "pool_getMember", testAlice); err != nil {
		t.Fatalf("get member: %v", err)
	}
	if member.PendingDeposit != "4100000000" || member.Balance != "0" {
		t.Fatalf("unexpected member: %+v", member)
	}

	var status model.StatusView
	if err := client.CallContext(ctx, &status, "pool_getStatus"); err != nil {
		t.Fatalf("get status: %v", err)
	}
	if status.Members != 1 || status.Seq != 1 || status.Controller != testController {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestBusinessFailureIsAReceipt(t *testing.T) {
	_, client := newTestServer(t, nil)

	var receipt model.Receipt
	err := client.CallContext(context.Background(), &receipt, "pool_withdraw",
		model.Request{From: testAlice, Amount: "1000000000", Value: "200000000"})
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if receipt.ExitCode != ledger.ExitNoBalance || receipt.Refund != "200000000" {
		t.Fatalf("unexpected receipt: %+v", receipt)
	}
}

func TestInvalidParams(t *testing.T) {
	_, client := newTestServer(t, nil)

	var receipt model.Receipt
	err := client.CallContext(context.Background(), &receipt, "pool_deposit", model.Request{From: "alice", Value: "1"})
	var rerr rpc.Error
	if !errors.As(err, &rerr) || rerr.ErrorCode() != CodeInvalidParams {
		t.Fatalf("expected invalid params error, got %v", err)
	}

	var member model.MemberView
	err = client.CallContext(context.Background(), &member, "pool_getMember", "0:zz")
	if !errors.As(err, &rerr) || rerr.ErrorCode() != CodeInvalidParams {
		t.Fatalf("expected invalid params error, got %v", err)
	}
}

func TestRateLimitedMutations(t *testing.T) {
	_, client := newTestServer(t, ratelimit.New(0.001, 1, time.Minute))
	ctx := context.Background()
	req := model.Request{From: testAlice, Value: "4300000000"}

	var receipt model.Receipt
	if err := client.CallContext(ctx, &receipt, "pool_deposit", req); err != nil {
		t.Fatalf("first deposit: %v", err)
	}
	err := client.CallContext(ctx, &receipt, "pool_deposit", req)
	var rerr rpc.Error
	if !errors.As(err, &rerr) || rerr.ErrorCode() != CodeRateLimited {
		t.Fatalf("expected rate limit error, got %v", err)
	}

	// Queries are not limited.
	var params model.ParamsView
	if err := client.CallContext(ctx, &params, "pool_getParams"); err != nil {
		t.Fatalf("get params: %v", err)
	}
	if params.MinStake != "1000000000" || params.PoolFeeBps != 2000 {
		t.Fatalf("unexpected params: %+v", params)
	}
}

func TestRateLimitSharedAcrossAddressSpellings(t *testing.T) {
	_, client := newTestServer(t, ratelimit.New(0.001, 1, time.Minute))
	ctx := context.Background()
	hex := strings.Repeat("a1", 32)
	spellings := []string{
		"0:" + hex,
		"0:0x" + hex,
		"00:" + hex,
		"+0:" + hex,
		"-0:" + strings.ToUpper(hex),
	}

	allowed := 0
	for _, from := range spellings {
		var receipt model.Receipt
		err := client.CallContext(ctx, &receipt, "pool_deposit", model.Request{From: from, Value: "4300000000"})
		if err == nil {
			allowed++
			continue
		}
		var rerr rpc.Error
		if !errors.As(err, &rerr) || rerr.ErrorCode() != CodeRateLimited {
			t.Fatalf("deposit from %s: %v", from, err)
		}
	}
	if allowed != 1 {
		t.Fatalf("allowed %d of %d spellings, want 1", allowed, len(spellings))
	}
}

func TestHandlerServesMetricsAndHealth(t *testing.T) {
	httpSrv, _ := newTestServer(t, nil)

	for path, want := range map[string]string{"/healthz": "ok", "/metrics": "pool_queue_depth"} {
		resp, err := http.Get(httpSrv.URL + path)
		if err != nil {
			t.Fatalf("get %s: %v", path, err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), want) {
			t.Fatalf("unexpected %s response: %d %s", path, resp.StatusCode, body)
		}
	}
}
