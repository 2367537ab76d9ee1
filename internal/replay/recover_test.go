package replay

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"stakePool/internal/ledger"
	"stakePool/internal/model"
	"stakePool/internal/storage"
)

type receiptList []model.Receipt

func (l receiptList) ReceiptsAfter(_ context.Context, after uint64) ([]model.Receipt, error) {
	var out []model.Receipt
	for _, r := range l {
		if r.Seq > after {
			out = append(out, r)
		}
	}
	return out, nil
}

func journalRequests(t *testing.T, d *ledger.Dispatcher, reqs []ledger.Request) []model.Receipt {
	t.Helper()
	out := make([]model.Receipt, 0, len(reqs))
	for _, req := range reqs {
		res := d.Handle(req)
		out = append(out, model.NewReceipt(d.State().Seq(), req, res, time.Unix(0, 0)))
	}
	return out
}

func edgeRequests() []ledger.Request {
	a := ledger.MustParseAddress(alice)
	c := ledger.MustParseAddress(controller)
	return []ledger.Request{
		ledger.Deposit{From: a, Value: ledger.Coins(4_300_000_000)},
		ledger.AcceptDeposit{From: c, Members: []ledger.Address{a}},
		ledger.Deposit{From: a, Value: ledger.Coins(2_000_000_000)},
		ledger.Withdraw{From: a, Amount: ledger.Coins(1_300_000_000), Value: ledger.Coins(200_000_000)},
		ledger.Withdraw{From: a, Amount: ledger.Coins(1_300_000_000), Value: ledger.Coins(200_000_000)},
	}
}

func TestRecoverJournalReappliesRequests(t *testing.T) {
	primary := newDispatcher(t, nil)
	reqs := edgeRequests()
	first := journalRequests(t, primary, reqs[:2])
	snap := primary.State().Snapshot()
	rest := journalRequests(t, primary, reqs[2:])

	journal := storage.NewJsonlStorage(filepath.Join(t.TempDir(), "receipts.jsonl"))
	if err := journal.PutReceipts(context.Background(), append(first, rest...)); err != nil {
		t.Fatalf("journal: %v", err)
	}

	state, err := ledger.RestorePoolState(snap)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	d := ledger.NewDispatcher(state, zap.NewNop())
	n, err := RecoverJournal(context.Background(), d, journal, zap.NewNop())
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if n != len(rest) {
		t.Fatalf("applied %d requests, want %d", n, len(rest))
	}
	a := ledger.MustParseAddress(alice)
	if d.State().Seq() != primary.State().Seq() || d.State().Member(a) != primary.State().Member(a) {
		t.Fatalf("recovered pool differs: seq %d member %+v", d.State().Seq(), d.State().Member(a))
	}

	// A second pass finds nothing new.
	if n, err := RecoverJournal(context.Background(), d, journal, nil); err != nil || n != 0 {
		t.Fatalf("expected no-op recovery, got %d %v", n, err)
	}
}

func TestRecoverJournalRejectsGap(t *testing.T) {
	receipts := journalRequests(t, newDispatcher(t, nil), edgeRequests())
	journal := receiptList{receipts[0], receipts[2]}

	d := newDispatcher(t, nil)
	n, err := RecoverJournal(context.Background(), d, journal, nil)
	if err == nil || !strings.Contains(err.Error(), "want seq 2") {
		t.Fatalf("expected gap error, got %v", err)
	}
	if n != 1 || d.State().Seq() != 1 {
		t.Fatalf("expected one request applied, got %d seq %d", n, d.State().Seq())
	}
}

func TestRecoverJournalRejectsDivergentStatus(t *testing.T) {
	receipts := journalRequests(t, newDispatcher(t, nil), edgeRequests()[:1])
	receipts[0].Status = "unaffordable"

	_, err := RecoverJournal(context.Background(), newDispatcher(t, nil), receiptList(receipts), nil)
	if err == nil || !strings.Contains(err.Error(), "journal has unaffordable") {
		t.Fatalf("expected status mismatch, got %v", err)
	}
}

func TestRecoverJournalRequiresRequest(t *testing.T) {
	journal := receiptList{{Seq: 1, Op: "deposit", Status: "deposit_accepted"}}
	if _, err := RecoverJournal(context.Background(), newDispatcher(t, nil), journal, nil); err == nil {
		t.Fatalf("expected error for receipt without request")
	}
}
