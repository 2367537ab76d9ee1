package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"stakePool/internal/actor"
	"stakePool/internal/config"
	"stakePool/internal/ledger"
	"stakePool/internal/metrics"
	"stakePool/internal/ratelimit"
	"stakePool/internal/rpcapi"
	"stakePool/internal/snapshot"
	"stakePool/internal/storage"
)

func runServe(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := openBackends(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	state, err := loadPool(ctx, b.states, cfg.Pool, logger)
	if err != nil {
		return err
	}

	journal, err := openJournal(ctx, b, cfg)
	if err != nil {
		return err
	}

	dispatcher := ledger.NewDispatcher(state, logger.Named("ledger"))
	if err := recoverPool(ctx, dispatcher, journal, b.states, logger); err != nil {
		return err
	}

	poolActor := actor.New(dispatcher, journal, logger.Named("actor"), actor.Config{
		QueueSize:      cfg.QueueSize,
		JournalTimeout: cfg.ShutdownTimeout,
	})
	limiter := ratelimit.New(cfg.RateLimit, cfg.RateBurst, 0)
	rpcServer, err := rpcapi.NewServer(rpcapi.NewPoolAPI(poolActor, limiter, logger.Named("rpc")))
	if err != nil {
		return err
	}
	httpServer := &http.Server{
		Addr:              cfg.Listen,
		Handler:           rpcapi.Handler(rpcServer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("serve start",
		zap.String("listen", cfg.Listen),
		zap.String("store", cfg.Store.Backend),
		zap.Strings("journal", cfg.Journal),
		zap.Duration("snapshot_interval", cfg.SnapshotInterval),
		zap.Float64("rate_limit", cfg.RateLimit),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return poolActor.Run(gctx)
	})
	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		rpcServer.Stop()
		return httpServer.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return snapshotLoop(gctx, b.states, state, cfg.SnapshotInterval, poolActor.JournalFailures(), logger)
	})

	runErr := g.Wait()

	finalCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if _, err := saveSnapshot(finalCtx, b.states, state, logger); err != nil {
		return errors.Join(runErr, err)
	}
	logger.Info("serve stopped", zap.Uint64("seq", state.Seq()))
	return runErr
}

func openJournal(ctx context.Context, b *backends, cfg config.Config) (storage.Multi, error) {
	var sinks storage.Multi
	for _, name := range cfg.Journal {
		switch name {
		case "jsonl":
			sinks = append(sinks, storage.NewJsonlStorage(cfg.JournalPath))
		case "postgres":
			pg, err := b.openPostgres(ctx, cfg.Store.PGDSN)
			if err != nil {
				return nil, err
			}
			sinks = append(sinks, pg.Journal(cfg.Store.StateName))
		}
	}
	return sinks, nil
}

// snapshotLoop saves the pool every interval and whenever a receipt could not
// be journaled. A zero interval disables the timer.
func snapshotLoop(ctx context.Context, states snapshot.StateStore, state *ledger.PoolState, interval time.Duration, journalFailed <-chan struct{}, logger *zap.Logger) error {
	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	lastSeq := state.Seq()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
		case <-journalFailed:
			logger.Warn("journal write failed, saving snapshot")
		}
		if state.Seq() == lastSeq {
			continue
		}
		seq, err := saveSnapshot(ctx, states, state, logger)
		if err != nil {
			continue
		}
		lastSeq = seq
	}
}

// saveSnapshot persists the current pool and returns the seq it captured.
func saveSnapshot(ctx context.Context, states snapshot.StateStore, state *ledger.PoolState, logger *zap.Logger) (uint64, error) {
	snap := state.Snapshot()
	if err := states.Save(ctx, snap); err != nil {
		metrics.SnapshotsTotal.WithLabelValues("error").Inc()
		logger.Error("snapshot failed", zap.Uint64("seq", snap.Seq), zap.Error(err))
		return 0, fmt.Errorf("save snapshot: %w", err)
	}
	metrics.SnapshotsTotal.WithLabelValues("ok").Inc()
	logger.Debug("snapshot saved", zap.Uint64("seq", snap.Seq), zap.Int("members", len(snap.Members)))
	return snap.Seq, nil
}
