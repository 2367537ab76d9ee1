package replay

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"stakePool/internal/ledger"
	"stakePool/internal/storage"
)

// RecoverJournal re-applies journaled requests the pool has not seen yet,
// so that a restart from an older snapshot ends where the journal ends.
// Receipts must continue the pool's seq without gaps, and every replayed
// request must reproduce its journaled status. It returns the number of
// requests applied.
func RecoverJournal(ctx context.Context, d *ledger.Dispatcher, journal storage.Reader, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	state := d.State()
	receipts, err := journal.ReceiptsAfter(ctx, state.Seq())
	if err != nil {
		return 0, fmt.Errorf("read journal: %w", err)
	}

	for i, r := range receipts {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if want := state.Seq() + 1; r.Seq != want {
			return i, fmt.Errorf("journal out of order: want seq %d, found %d", want, r.Seq)
		}
		if r.Request == nil {
			return i, fmt.Errorf("receipt %d carries no request", r.Seq)
		}
		req, err := r.Request.ToLedger()
		if err != nil {
			return i, fmt.Errorf("receipt %d: %w", r.Seq, err)
		}
		res := d.Handle(req)
		if got := res.Status(); got != r.Status {
			return i + 1, fmt.Errorf("receipt %d: replay gave %s, journal has %s", r.Seq, got, r.Status)
		}
		logger.Debug("journal request reapplied",
			zap.Uint64("seq", r.Seq),
			zap.String("op", r.Op),
			zap.String("status", r.Status),
		)
	}
	return len(receipts), nil
}
