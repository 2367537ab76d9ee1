package model

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/holiman/uint256"

	"stakePool/internal/ledger"
)

func TestSnapshotRecordRestoresPool(t *testing.T) {
	controller := ledger.MustParseAddress(testController)
	alice := ledger.MustParseAddress(testAlice)
	state, err := ledger.NewPoolState(ledger.DefaultConfig(controller, controller))
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	d := ledger.NewDispatcher(state, nil)
	d.Handle(ledger.Deposit{From: alice, Value: *uint256.NewInt(4_300_000_000)})
	d.Handle(ledger.AcceptDeposit{From: controller, Members: []ledger.Address{alice}})
	d.Handle(ledger.RecordSent{From: controller, Amount: *uint256.NewInt(4_100_000_000)})

	b, err := json.Marshal(NewSnapshotRecord(state.Snapshot()))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var rec SnapshotRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	snap, err := rec.ToLedger()
	if err != nil {
		t.Fatalf("to ledger: %v", err)
	}
	restored, err := ledger.RestorePoolState(snap)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if !reflect.DeepEqual(restored.Totals(), state.Totals()) {
		t.Fatalf("totals mismatch: %+v != %+v", restored.Totals(), state.Totals())
	}
	if restored.Seq() != 3 {
		t.Fatalf("unexpected seq: %d", restored.Seq())
	}
	if acct := restored.Member(alice); acct.Balance.Uint64() != 4_100_000_000 {
		t.Fatalf("unexpected balance: %+v", acct)
	}
}

func TestSnapshotRecordRejectsBadMember(t *testing.T) {
	rec := SnapshotRecord{
		Owner:      testController,
		Controller: testController,
		Params:     ParamsView{MinStake: "1"},
		Members:    []MemberView{{Address: testAlice, Balance: "x"}},
	}
	if _, err := rec.ToLedger(); err == nil {
		t.Fatalf("expected error for bad member balance")
	}
}
