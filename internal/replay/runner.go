package replay

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"stakePool/internal/ledger"
	"stakePool/internal/model"
	"stakePool/internal/snapshot"
	"stakePool/internal/storage"
)

// RunConfig holds runtime settings for a replay.
type RunConfig struct {
	InputPath string
	// FirstRecord and LastRecord bound the replay by 1-based record position.
	// LastRecord zero means the end of the input.
	FirstRecord uint64
	LastRecord  uint64
	BatchSize   uint64
	SkipInvalid bool
	Retry       RetryPolicy
}

// Summary counts what a replay did.
type Summary struct {
	Records int
	Applied int
	Failed  int
	Skipped int
	Seq     uint64
}

// Runner feeds recorded requests through a dispatcher and journals the receipts.
type Runner struct {
	cfg        RunConfig
	dispatcher *ledger.Dispatcher
	sink       storage.Storage
	states     snapshot.StateStore
	checkpoint *CheckpointStore
	logger     *zap.Logger
	now        func() time.Time
}

// NewRunner builds a Runner. states and checkpoint may be nil.
func NewRunner(cfg RunConfig, d *ledger.Dispatcher, sink storage.Storage, states snapshot.StateStore, checkpoint *CheckpointStore, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sink == nil {
		sink = storage.Discard{}
	}
	return &Runner{
		cfg:        cfg,
		dispatcher: d,
		sink:       sink,
		states:     states,
		checkpoint: checkpoint,
		logger:     logger,
		now:        time.Now,
	}
}

// Run replays the configured records batch by batch. After each batch the
// receipts, the pool snapshot and the checkpoint are written in that order.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	var sum Summary
	if r.dispatcher == nil {
		return sum, fmt.Errorf("dispatcher is nil")
	}
	if r.cfg.BatchSize == 0 {
		return sum, fmt.Errorf("batch size must be greater than zero")
	}

	entries, err := ReadRequests(r.cfg.InputPath)
	if err != nil {
		return sum, err
	}
	sum.Seq = r.dispatcher.State().Seq()
	if len(entries) == 0 {
		r.logger.Info("no requests to replay", zap.String("input", r.cfg.InputPath))
		return sum, nil
	}

	first := r.cfg.FirstRecord
	if first == 0 {
		first = 1
	}
	last := r.cfg.LastRecord
	if last == 0 || last > uint64(len(entries)) {
		last = uint64(len(entries))
	}

	if cp, ok, err := r.checkpoint.Load(); err != nil {
		return sum, err
	} else if ok && cp.Input == r.cfg.InputPath && cp.LastRecord >= first {
		if seq := r.dispatcher.State().Seq(); seq != cp.Seq {
			return sum, fmt.Errorf("checkpoint at seq %d but pool state is at seq %d", cp.Seq, seq)
		}
		first = cp.LastRecord + 1
		r.logger.Info("resume from checkpoint", zap.Uint64("last_record", cp.LastRecord), zap.Uint64("from", first))
	}

	if first > last {
		r.logger.Info("nothing to replay", zap.Uint64("from", first), zap.Uint64("to", last))
		return sum, nil
	}

	spans, err := SplitSpan(first, last, r.cfg.BatchSize)
	if err != nil {
		return sum, err
	}

	for _, span := range spans {
		select {
		case <-ctx.Done():
			return sum, ctx.Err()
		default:
		}

		receipts, err := r.apply(entries[span.First-1:span.Last], &sum)
		if err != nil {
			return sum, err
		}

		if err := r.retry(ctx, "store receipts", func(ctx context.Context) error {
			return r.sink.PutReceipts(ctx, receipts)
		}); err != nil {
			return sum, fmt.Errorf("store receipts: %w", err)
		}

		state := r.dispatcher.State()
		if r.states != nil {
			snap := state.Snapshot()
			if err := r.retry(ctx, "save snapshot", func(ctx context.Context) error {
				return r.states.Save(ctx, snap)
			}); err != nil {
				return sum, fmt.Errorf("save snapshot: %w", err)
			}
		}

		sum.Seq = state.Seq()
		if err := r.checkpoint.Save(Checkpoint{Input: r.cfg.InputPath, LastRecord: span.Last, Seq: sum.Seq}); err != nil {
			return sum, err
		}

		r.logger.Info("batch complete",
			zap.Uint64("from", span.First),
			zap.Uint64("to", span.Last),
			zap.Int("receipts", len(receipts)),
			zap.Uint64("seq", sum.Seq),
		)
	}
	return sum, nil
}

func (r *Runner) apply(entries []Entry, sum *Summary) ([]model.Receipt, error) {
	receipts := make([]model.Receipt, 0, len(entries))
	for _, e := range entries {
		sum.Records++
		req, err := e.Request.ToLedger()
		if err != nil {
			if !r.cfg.SkipInvalid {
				return nil, fmt.Errorf("line %d: %w", e.Line, err)
			}
			sum.Skipped++
			r.logger.Warn("skip invalid request", zap.Int("line", e.Line), zap.Error(err))
			continue
		}

		res := r.dispatcher.Handle(req)
		if res.OK() {
			sum.Applied++
		} else {
			sum.Failed++
		}
		receipts = append(receipts, model.NewReceipt(r.dispatcher.State().Seq(), req, res, r.now()))
	}
	return receipts, nil
}

// retry runs fn under the configured retry policy, logging each failure.
func (r *Runner) retry(ctx context.Context, step string, fn func(context.Context) error) error {
	return r.cfg.Retry.do(ctx, func(ctx context.Context) error {
		err := fn(ctx)
		if err != nil {
			r.logger.Warn(step+" failed", zap.Error(err))
		}
		return err
	})
}
