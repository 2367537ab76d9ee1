package actor

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"stakePool/internal/ledger"
	"stakePool/internal/metrics"
	"stakePool/internal/model"
	"stakePool/internal/storage"
)

// ErrClosed is returned by Submit once the actor has stopped.
var ErrClosed = errors.New("pool actor closed")

const defaultQueueSize = 256

// Config tunes the actor.
type Config struct {
	QueueSize int
	// JournalTimeout bounds one receipt write. Zero means no bound.
	JournalTimeout time.Duration
}

// Actor owns the dispatcher and applies requests one at a time in arrival order.
type Actor struct {
	dispatcher *ledger.Dispatcher
	journal    storage.Storage
	logger     *zap.Logger
	cfg        Config
	now        func() time.Time

	queue         chan *envelope
	done          chan struct{}
	journalFailed chan struct{}
	stopOnce      sync.Once
}

type envelope struct {
	req      ledger.Request
	enqueued time.Time
	reply    chan model.Receipt
	result   ledger.Result
}

func New(d *ledger.Dispatcher, journal storage.Storage, logger *zap.Logger, cfg Config) *Actor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if journal == nil {
		journal = storage.Discard{}
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	return &Actor{
		dispatcher:    d,
		journal:       journal,
		logger:        logger,
		cfg:           cfg,
		now:           time.Now,
		queue:         make(chan *envelope, cfg.QueueSize),
		done:          make(chan struct{}),
		journalFailed: make(chan struct{}, 1),
	}
}

// State exposes the pool for read-only queries.
func (a *Actor) State() *ledger.PoolState {
	return a.dispatcher.State()
}

// JournalFailures signals after a receipt could not be journaled. Saving a
// snapshot then covers the missing receipt.
func (a *Actor) JournalFailures() <-chan struct{} {
	return a.journalFailed
}

// Run processes requests until ctx is cancelled.
func (a *Actor) Run(ctx context.Context) error {
	defer a.stop()
	metrics.ObserveTotals(a.State().Totals())
	for {
		select {
		case <-ctx.Done():
			return nil
		case env := <-a.queue:
			metrics.QueueDepth.Dec()
			a.process(ctx, env)
		}
	}
}

func (a *Actor) process(ctx context.Context, env *envelope) {
	res := a.dispatcher.Handle(env.req)
	state := a.State()
	receipt := model.NewReceipt(state.Seq(), env.req, res, a.now())

	jctx := ctx
	if a.cfg.JournalTimeout > 0 {
		var cancel context.CancelFunc
		jctx, cancel = context.WithTimeout(ctx, a.cfg.JournalTimeout)
		defer cancel()
	}
	if err := a.journal.PutReceipts(jctx, []model.Receipt{receipt}); err != nil {
		metrics.JournalErrors.Inc()
		a.logger.Error("journal receipt failed",
			zap.Uint64("seq", receipt.Seq),
			zap.String("op", receipt.Op),
			zap.Error(err),
		)
		select {
		case a.journalFailed <- struct{}{}:
		default:
		}
	}

	metrics.ObserveResult(res, a.now().Sub(env.enqueued))
	metrics.ObserveTotals(state.Totals())

	env.result = res
	env.reply <- receipt
}

// Submit enqueues req and waits for its result. Once enqueued the request is
// applied even if ctx ends before the result arrives.
func (a *Actor) Submit(ctx context.Context, req ledger.Request) (ledger.Result, model.Receipt, error) {
	env := &envelope{
		req:      req,
		enqueued: a.now(),
		reply:    make(chan model.Receipt, 1),
	}

	select {
	case <-a.done:
		return ledger.Result{}, model.Receipt{}, ErrClosed
	default:
	}

	select {
	case a.queue <- env:
		metrics.QueueDepth.Inc()
	case <-ctx.Done():
		return ledger.Result{}, model.Receipt{}, ctx.Err()
	case <-a.done:
		return ledger.Result{}, model.Receipt{}, ErrClosed
	}

	select {
	case receipt := <-env.reply:
		return env.result, receipt, nil
	case <-ctx.Done():
		return ledger.Result{}, model.Receipt{}, ctx.Err()
	case <-a.done:
		select {
		case receipt := <-env.reply:
			return env.result, receipt, nil
		default:
			return ledger.Result{}, model.Receipt{}, ErrClosed
		}
	}
}

func (a *Actor) stop() {
	a.stopOnce.Do(func() { close(a.done) })
}
