package ledger

import (
	"reflect"
	"testing"
)

func TestSnapshotRestore(t *testing.T) {
	d := newTestDispatcher(t)
	d.Handle(Deposit{From: alice, Value: ton(t, "4.3")})
	d.Handle(Deposit{From: bob, Value: ton(t, "3.2")})
	d.Handle(AcceptDeposit{From: controller, Members: []Address{alice}})
	d.Handle(Withdraw{From: alice, Amount: ton(t, "1"), Value: ton(t, "0.2")})
	d.Handle(RecordSent{From: controller, Amount: ton(t, "4.1")})

	snap := d.State().Snapshot()
	restored, err := RestorePoolState(snap)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}

	if !reflect.DeepEqual(restored.Snapshot(), snap) {
		t.Fatalf("snapshot mismatch after restore")
	}
	if !reflect.DeepEqual(restored.Totals(), d.State().Totals()) {
		t.Fatalf("totals mismatch: %+v != %+v", restored.Totals(), d.State().Totals())
	}
	if restored.Seq() != 5 {
		t.Fatalf("seq mismatch: %d", restored.Seq())
	}
}

func TestRestoreRejectsDuplicates(t *testing.T) {
	snap := Snapshot{
		Config: DefaultConfig(owner, controller),
		Members: []Member{
			{Address: alice, Account: MemberAccount{PendingDeposit: ton(t, "2")}},
			{Address: alice, Account: MemberAccount{PendingDeposit: ton(t, "3")}},
		},
	}
	if _, err := RestorePoolState(snap); err == nil {
		t.Fatalf("expected duplicate member error")
	}
}

func TestRestoreRejectsPendingWithdrawAboveBalance(t *testing.T) {
	snap := Snapshot{
		Config: DefaultConfig(owner, controller),
		Members: []Member{
			{Address: alice, Account: MemberAccount{Balance: ton(t, "1"), PendingWithdraw: ton(t, "1.5")}},
		},
	}
	if _, err := RestorePoolState(snap); err == nil {
		t.Fatalf("expected pending withdraw error")
	}

	snap.Members[0].Account.PendingWithdraw = ton(t, "1")
	if _, err := RestorePoolState(snap); err != nil {
		t.Fatalf("restore with fully pending balance: %v", err)
	}
}

func TestNewPoolStateRequiresController(t *testing.T) {
	cfg := DefaultConfig(owner, Address{})
	if _, err := NewPoolState(cfg); err == nil {
		t.Fatalf("expected missing controller error")
	}
}

func TestMembersSorted(t *testing.T) {
	d := newTestDispatcher(t)
	d.Handle(Deposit{From: bob, Value: ton(t, "2")})
	d.Handle(Deposit{From: alice, Value: ton(t, "2")})

	members := d.State().Members()
	if len(members) != 2 || members[0].Address != alice || members[1].Address != bob {
		t.Fatalf("members not sorted: %+v", members)
	}
}
