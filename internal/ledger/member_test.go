package ledger

import (
	"testing"

	"github.com/holiman/uint256"
)

func TestPlanWithdrawOrder(t *testing.T) {
	acct := MemberAccount{
		Balance:         ton(t, "5"),
		PendingDeposit:  ton(t, "2"),
		PendingWithdraw: ton(t, "1"),
		WithdrawReady:   ton(t, "1.5"),
	}

	plan, ok := acct.planWithdraw(ton(t, "4"))
	if !ok {
		t.Fatalf("plan should succeed")
	}
	wantReady, wantPending, wantBalance := ton(t, "1.5"), ton(t, "2"), ton(t, "0.5")
	if !plan.fromReady.Eq(&wantReady) || !plan.fromPending.Eq(&wantPending) || !plan.fromBalance.Eq(&wantBalance) {
		t.Fatalf("plan mismatch: ready=%s pending=%s balance=%s",
			FormatNano(plan.fromReady), FormatNano(plan.fromPending), FormatNano(plan.fromBalance))
	}
	if !plan.delayed() {
		t.Fatalf("plan drawing on balance should be delayed")
	}

	next := acct.apply(plan)
	want := MemberAccount{
		Balance:         ton(t, "5"),
		PendingWithdraw: ton(t, "1.5"),
	}
	if next != want {
		t.Fatalf("apply mismatch: %+v", next)
	}
}

func TestPlanWithdrawExcludesEarmarkedBalance(t *testing.T) {
	acct := MemberAccount{
		Balance:         ton(t, "5"),
		PendingWithdraw: ton(t, "4"),
	}
	if _, ok := acct.planWithdraw(ton(t, "1.5")); ok {
		t.Fatalf("earmarked balance must not be withdrawn twice")
	}

	plan, ok := acct.planWithdraw(uint256.Int{})
	if !ok {
		t.Fatalf("withdraw all should succeed")
	}
	want := ton(t, "1")
	if !plan.fromBalance.Eq(&want) {
		t.Fatalf("withdraw all mismatch: %s", FormatNano(plan.fromBalance))
	}
}

func TestAcceptWithdrawReleasesBalance(t *testing.T) {
	acct := MemberAccount{
		Balance:         ton(t, "4.1"),
		PendingWithdraw: ton(t, "2"),
	}
	next, ok := acct.acceptWithdraw()
	if !ok {
		t.Fatalf("accept should succeed")
	}
	want := MemberAccount{Balance: ton(t, "2.1"), WithdrawReady: ton(t, "2")}
	if next != want {
		t.Fatalf("accept mismatch: %+v", next)
	}
}

func TestDepositOverflowRejected(t *testing.T) {
	cfg := DefaultConfig(owner, controller)
	acct := MemberAccount{PendingDeposit: maxCoins}

	if _, kind := acct.deposit(cfg, ton(t, "1")); kind != InvalidAmount {
		t.Fatalf("expected overflow rejection, got %s", kind)
	}
}
