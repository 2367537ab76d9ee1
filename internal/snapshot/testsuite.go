package snapshot

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/holiman/uint256"

	"stakePool/internal/ledger"
)

// TestSuite runs a suite of tests against a StateStore implementation.
func TestSuite(t *testing.T, newStore func() StateStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("Empty", func(t *testing.T) {
		s := newStore()
		if _, ok, err := s.Load(ctx); err != nil || ok {
			t.Errorf("expected no snapshot, got ok=%v err=%v", ok, err)
		}
	})

	t.Run("SaveLoad", func(t *testing.T) {
		s := newStore()
		state, d := suitePool(t)
		alice := suiteAddress("a1")
		d.Handle(ledger.Withdraw{From: alice, Amount: *uint256.NewInt(1_000_000_000), Value: *uint256.NewInt(200_000_000)})

		want := state.Snapshot()
		if err := s.Save(ctx, want); err != nil {
			t.Fatalf("save: %v", err)
		}
		got, ok, err := s.Load(ctx)
		if err != nil || !ok {
			t.Fatalf("load: ok=%v err=%v", ok, err)
		}
		assertSameState(t, got, want)
	})

	t.Run("Overwrite", func(t *testing.T) {
		s := newStore()
		state, d := suitePool(t)
		if err := s.Save(ctx, state.Snapshot()); err != nil {
			t.Fatalf("save: %v", err)
		}

		bob := suiteAddress("b2")
		controller := suiteAddress("c0")
		d.Handle(ledger.Withdraw{From: bob, Value: *uint256.NewInt(200_000_000)})
		d.Handle(ledger.RecordSent{From: controller, Amount: *uint256.NewInt(42)})
		want := state.Snapshot()
		if len(want.Members) != 1 {
			t.Fatalf("expected bob to be removed, got %d members", len(want.Members))
		}
		if err := s.Save(ctx, want); err != nil {
			t.Fatalf("save again: %v", err)
		}

		got, ok, err := s.Load(ctx)
		if err != nil || !ok {
			t.Fatalf("load: ok=%v err=%v", ok, err)
		}
		assertSameState(t, got, want)
	})
}

func suiteAddress(b string) ledger.Address {
	return ledger.MustParseAddress("0:" + strings.Repeat(b, 32))
}

// suitePool returns a pool with alice staked and bob pending.
func suitePool(t *testing.T) (*ledger.PoolState, *ledger.Dispatcher) {
	t.Helper()
	controller := suiteAddress("c0")
	state, err := ledger.NewPoolState(ledger.DefaultConfig(controller, controller))
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	d := ledger.NewDispatcher(state, nil)
	alice, bob := suiteAddress("a1"), suiteAddress("b2")
	d.Handle(ledger.Deposit{From: alice, Value: *uint256.NewInt(4_300_000_000)})
	d.Handle(ledger.AcceptDeposit{From: controller, Members: []ledger.Address{alice}})
	d.Handle(ledger.Deposit{From: bob, Value: *uint256.NewInt(3_200_000_000)})
	return state, d
}

func assertSameState(t *testing.T, got, want ledger.Snapshot) {
	t.Helper()
	gotState, err := ledger.RestorePoolState(got)
	if err != nil {
		t.Fatalf("restore loaded snapshot: %v", err)
	}
	wantState, err := ledger.RestorePoolState(want)
	if err != nil {
		t.Fatalf("restore saved snapshot: %v", err)
	}
	if !reflect.DeepEqual(gotState.Config(), wantState.Config()) {
		t.Errorf("config mismatch: %+v != %+v", gotState.Config(), wantState.Config())
	}
	if !reflect.DeepEqual(gotState.Members(), wantState.Members()) {
		t.Errorf("members mismatch: %+v != %+v", gotState.Members(), wantState.Members())
	}
	if !reflect.DeepEqual(gotState.Totals(), wantState.Totals()) {
		t.Errorf("totals mismatch: %+v != %+v", gotState.Totals(), wantState.Totals())
	}
	if gotState.Seq() != wantState.Seq() {
		t.Errorf("seq mismatch: %d != %d", gotState.Seq(), wantState.Seq())
	}
}
