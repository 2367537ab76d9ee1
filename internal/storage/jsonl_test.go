package storage

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"stakePool/internal/model"
)

func TestJsonlStorageAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "receipts.jsonl")
	s := NewJsonlStorage(path)
	ctx := context.Background()

	first := []model.Receipt{
		{Seq: 1, Op: "deposit", OpCode: 2077040623, From: "0:aa", Status: "deposit_accepted", Credited: "4100000000", ProcessedAt: "2024-01-01T00:00:00Z"},
	}
	second := []model.Receipt{
		{Seq: 2, Op: "withdraw", OpCode: 3665837821, From: "0:aa", Status: "no_balance", ExitCode: 77, Refund: "200000000", ProcessedAt: "2024-01-01T00:00:01Z"},
	}
	if err := s.PutReceipts(ctx, first); err != nil {
		t.Fatalf("put first: %v", err)
	}
	if err := s.PutReceipts(ctx, second); err != nil {
		t.Fatalf("put second: %v", err)
	}
	if err := s.PutReceipts(ctx, nil); err != nil {
		t.Fatalf("put empty: %v", err)
	}

	got, err := ReadReceipts(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := append(first, second...)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("receipts mismatch: %+v != %+v", got, want)
	}
}

func TestReadReceiptsMissingFile(t *testing.T) {
	got, err := ReadReceipts(filepath.Join(t.TempDir(), "none.jsonl"))
	if err != nil || got != nil {
		t.Fatalf("expected empty result, got %v %v", got, err)
	}
}

type failingSink struct{ err error }

func (f failingSink) PutReceipts(context.Context, []model.Receipt) error { return f.err }

type countingSink struct{ n int }

func (c *countingSink) PutReceipts(_ context.Context, r []model.Receipt) error {
	c.n += len(r)
	return nil
}

func TestMultiJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	counter := &countingSink{}
	m := Multi{failingSink{err: boom}, nil, counter, Discard{}}

	err := m.PutReceipts(context.Background(), []model.Receipt{{Seq: 1}, {Seq: 2}})
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if counter.n != 2 {
		t.Fatalf("later sinks should still receive the batch, got %d", counter.n)
	}
}

func TestJsonlReceiptsAfter(t *testing.T) {
	s := NewJsonlStorage(filepath.Join(t.TempDir(), "receipts.jsonl"))
	ctx := context.Background()
	batch := []model.Receipt{
		{Seq: 1, Op: "deposit", Status: "deposit_accepted"},
		{Seq: 3, Op: "deposit", Status: "deposit_accepted"},
		{Seq: 2, Op: "withdraw", Status: "no_balance"},
	}
	if err := s.PutReceipts(ctx, batch); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := s.ReceiptsAfter(ctx, 1)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 2 || got[0].Seq != 2 || got[1].Seq != 3 {
		t.Fatalf("unexpected receipts: %+v", got)
	}

	m := Multi{Discard{}, s}
	if !m.Readable() {
		t.Fatalf("expected readable journal")
	}
	got, err = m.ReceiptsAfter(ctx, 3)
	if err != nil || len(got) != 0 {
		t.Fatalf("expected no receipts after 3, got %+v %v", got, err)
	}
	if (Multi{Discard{}}).Readable() {
		t.Fatalf("discard should not be readable")
	}
}
