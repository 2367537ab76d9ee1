package ledger

import (
	"strconv"
	"strings"
	"testing"

	"github.com/holiman/uint256"
	"go.uber.org/zap"
)

var (
	owner      = MustParseAddress("0:" + strings.Repeat("0a", 32))
	controller = MustParseAddress("0:" + strings.Repeat("0c", 32))
	alice      = MustParseAddress("0:" + strings.Repeat("a1", 32))
	bob        = MustParseAddress("0:" + strings.Repeat("b2", 32))
)

// ton converts a decimal TON string such as "4.3" into nano units.
func ton(t *testing.T, value string) uint256.Int {
	t.Helper()
	whole, frac, _ := strings.Cut(value, ".")
	if len(frac) > 9 {
		t.Fatalf("too many decimals: %s", value)
	}
	frac += strings.Repeat("0", 9-len(frac))
	w, err := strconv.ParseUint(whole, 10, 64)
	if err != nil {
		t.Fatalf("parse whole: %v", err)
	}
	f, err := strconv.ParseUint(frac, 10, 64)
	if err != nil {
		t.Fatalf("parse frac: %v", err)
	}
	return Coins(w*1_000_000_000 + f)
}

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	state, err := NewPoolState(DefaultConfig(owner, controller))
	if err != nil {
		t.Fatalf("new state: %v", err)
	}
	return NewDispatcher(state, zap.NewNop())
}

// withdrawOverhead is the value a withdraw must attach under DefaultConfig.
func withdrawOverhead(t *testing.T) uint256.Int {
	t.Helper()
	return ton(t, "0.2")
}

func assertMember(t *testing.T, d *Dispatcher, addr Address, balance, pendingDeposit, pendingWithdraw, withdrawReady string) {
	t.Helper()
	got := d.State().Member(addr)
	want := MemberAccount{
		Balance:         ton(t, balance),
		PendingDeposit:  ton(t, pendingDeposit),
		PendingWithdraw: ton(t, pendingWithdraw),
		WithdrawReady:   ton(t, withdrawReady),
	}
	if got != want {
		t.Fatalf("member mismatch: got balance=%s pd=%s pw=%s ready=%s, want balance=%s pd=%s pw=%s ready=%s",
			FormatNano(got.Balance), FormatNano(got.PendingDeposit), FormatNano(got.PendingWithdraw), FormatNano(got.WithdrawReady),
			FormatNano(want.Balance), FormatNano(want.PendingDeposit), FormatNano(want.PendingWithdraw), FormatNano(want.WithdrawReady))
	}
}

func expectResponse(t *testing.T, res Result, kind ResponseKind) {
	t.Helper()
	if res.Failure != nil {
		t.Fatalf("unexpected failure: %v", res.Failure)
	}
	if res.Response == nil || res.Response.Kind != kind {
		t.Fatalf("response mismatch: got %s want %s", res.Status(), kind)
	}
}

func expectFailure(t *testing.T, res Result, kind ErrorKind, exitCode int, refund *uint256.Int) {
	t.Helper()
	if res.Failure == nil {
		t.Fatalf("expected failure %s, got %s", kind, res.Status())
	}
	if res.Failure.Kind != kind || res.Failure.ExitCode != exitCode {
		t.Fatalf("failure mismatch: got %s/%d want %s/%d", res.Failure.Kind, res.Failure.ExitCode, kind, exitCode)
	}
	switch {
	case refund == nil && res.Failure.Refund != nil:
		t.Fatalf("expected silent failure, got refund %s", FormatNano(*res.Failure.Refund))
	case refund != nil && res.Failure.Refund == nil:
		t.Fatalf("expected refund %s, got none", FormatNano(*refund))
	case refund != nil && !res.Failure.Refund.Eq(refund):
		t.Fatalf("refund mismatch: got %s want %s", FormatNano(*res.Failure.Refund), FormatNano(*refund))
	}
}
