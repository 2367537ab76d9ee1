package storage

import (
	"context"
	"errors"

	"stakePool/internal/model"
)

// Storage defines a sink for processed-request receipts.
type Storage interface {
	PutReceipts(ctx context.Context, receipts []model.Receipt) error
}

// Reader reads journaled receipts back.
type Reader interface {
	// ReceiptsAfter returns receipts with a seq above after, ordered by seq.
	ReceiptsAfter(ctx context.Context, after uint64) ([]model.Receipt, error)
}

// Multi fans a batch out to every sink in order and joins their errors.
type Multi []Storage

func (m Multi) PutReceipts(ctx context.Context, receipts []model.Receipt) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.PutReceipts(ctx, receipts); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ReceiptsAfter reads from the first sink that can be read back. A Multi
// without such a sink returns no receipts.
func (m Multi) ReceiptsAfter(ctx context.Context, after uint64) ([]model.Receipt, error) {
	for _, s := range m {
		if r, ok := s.(Reader); ok {
			return r.ReceiptsAfter(ctx, after)
		}
	}
	return nil, nil
}

// Readable reports whether any sink can be read back.
func (m Multi) Readable() bool {
	for _, s := range m {
		if _, ok := s.(Reader); ok {
			return true
		}
	}
	return false
}

// Discard drops every receipt.
type Discard struct{}

func (Discard) PutReceipts(context.Context, []model.Receipt) error { return nil }
