package badger

import (
	"context"
	"reflect"
	"testing"

	"stakePool/internal/model"
)

func sampleRecord(members ...model.MemberView) model.SnapshotRecord {
	return model.SnapshotRecord{
		Owner:       "0:" + "11",
		Controller:  "-1:" + "22",
		Params:      model.ParamsView{Enabled: true, MinStake: "1000000000", PoolFeeBps: 2000},
		BalanceSent: "0",
		Seq:         4,
		Members:     members,
	}
}

func TestStoreSaveReplacesMembers(t *testing.T) {
	s, err := Open(Options{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	if _, ok, err := s.LoadSnapshot(ctx); err != nil || ok {
		t.Fatalf("expected empty store, got ok=%v err=%v", ok, err)
	}

	alice := model.MemberView{Address: "0:aa", Balance: "5", PendingDeposit: "0", PendingWithdraw: "0", WithdrawReady: "0"}
	bob := model.MemberView{Address: "0:bb", Balance: "0", PendingDeposit: "7", PendingWithdraw: "0", WithdrawReady: "0"}
	if err := s.SaveSnapshot(ctx, sampleRecord(alice, bob)); err != nil {
		t.Fatalf("save: %v", err)
	}

	bob.PendingDeposit = "9"
	want := sampleRecord(bob)
	want.Seq = 5
	if err := s.SaveSnapshot(ctx, want); err != nil {
		t.Fatalf("save again: %v", err)
	}

	got, ok, err := s.LoadSnapshot(ctx)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("snapshot mismatch: %+v != %+v", got, want)
	}
}
