package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stakePool/internal/config"
	"stakePool/internal/ledger"
	"stakePool/internal/replay"
	"stakePool/internal/storage"
)

func runReplay(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadReplay(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Input == "" {
		return fmt.Errorf("input path is required")
	}

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

	runner := replay.NewRunner(replay.RunConfig{
		InputPath:   cfg.Input,
		FirstRecord: cfg.FirstRecord,
		LastRecord:  cfg.LastRecord,
		BatchSize:   cfg.BatchSize,
		SkipInvalid: cfg.SkipInvalid,
		Retry: replay.RetryPolicy{
			MaxRetries: cfg.MaxRetries,
			Backoff:    cfg.RetryBackoff,
		},
	}, ledger.NewDispatcher(state, logger.Named("ledger")), storage.NewJsonlStorage(cfg.Out), b.states, replay.NewCheckpointStore(cfg.Checkpoint), logger)

	logger.Info("replay start",
		zap.String("in", cfg.Input),
		zap.String("out", cfg.Out),
		zap.String("store", cfg.Store.Backend),
		zap.Uint64("batch_size", cfg.BatchSize),
		zap.String("checkpoint", cfg.Checkpoint),
		zap.Uint64("seq", state.Seq()),
	)

	sum, err := runner.Run(ctx)
	logger.Info("replay done",
		zap.Int("records", sum.Records),
		zap.Int("applied", sum.Applied),
		zap.Int("failed", sum.Failed),
		zap.Int("skipped", sum.Skipped),
		zap.Uint64("seq", sum.Seq),
	)
	return err
}
