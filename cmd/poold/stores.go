package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"stakePool/internal/config"
	"stakePool/internal/ledger"
	"stakePool/internal/replay"
	"stakePool/internal/snapshot"
	"stakePool/internal/storage"
	"stakePool/internal/storage/badger"
	"stakePool/internal/storage/postgres"
)

// backends holds the opened persistence layers for a command.
type backends struct {
	states  snapshot.StateStore
	pg      *postgres.Store
	closers []func()
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// openPostgres opens the shared Postgres store on first use.
func (b *backends) openPostgres(ctx context.Context, dsn string) (*postgres.Store, error) {
	if b.pg != nil {
		return b.pg, nil
	}
	store, err := postgres.NewStore(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	b.closers = append(b.closers, store.Close)
	if err := store.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	b.pg = store
	return store, nil
}

func openBackends(ctx context.Context, s config.StoreSettings, logger *zap.Logger) (*backends, error) {
	b := &backends{}
	switch s.Backend {
	case "file":
		b.states = &snapshot.FileStateStore{Path: s.StateFile}
	case "memory":
		b.states = &snapshot.MemoryStateStore{}
	case "badger":
		db, err := badger.Open(badger.Options{Dir: s.BadgerDir, Logger: logger})
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() {
			if err := db.Close(); err != nil {
				logger.Warn("close badger", zap.Error(err))
			}
		})
		b.states = &snapshot.BadgerStateStore{Store: db}
	case "postgres":
		pg, err := b.openPostgres(ctx, s.PGDSN)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.states = &snapshot.DBStateStore{Store: pg, Name: s.StateName}
	default:
		return nil, fmt.Errorf("unknown store %q", s.Backend)
	}
	return b, nil
}

// loadPool restores the latest snapshot, or builds a fresh pool from settings.
func loadPool(ctx context.Context, states snapshot.StateStore, settings config.PoolSettings, logger *zap.Logger) (*ledger.PoolState, error) {
	snap, ok, err := states.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if ok {
		state, err := ledger.RestorePoolState(snap)
		if err != nil {
			return nil, fmt.Errorf("restore snapshot: %w", err)
		}
		totals := state.Totals()
		logger.Info("pool restored",
			zap.Uint64("seq", state.Seq()),
			zap.Int("members", totals.Members),
			zap.String("balance", ledger.FormatNano(totals.Balance)),
		)
		return state, nil
	}

	cfg, err := settings.ToLedger()
	if err != nil {
		return nil, fmt.Errorf("pool config: %w", err)
	}
	logger.Info("pool created",
		zap.Stringer("owner", cfg.Owner),
		zap.Stringer("controller", cfg.Controller),
		zap.String("min_stake", ledger.FormatNano(cfg.MinStake)),
		zap.Uint64("pool_fee_bps", cfg.PoolFeeBps),
	)
	return ledger.NewPoolState(cfg)
}

// recoverPool re-applies journaled requests newer than the restored pool and
// saves the result before the pool accepts new requests.
func recoverPool(ctx context.Context, d *ledger.Dispatcher, journal storage.Multi, states snapshot.StateStore, logger *zap.Logger) error {
	if !journal.Readable() {
		logger.Warn("no readable journal, requests after the last snapshot are lost on crash")
		return nil
	}
	from := d.State().Seq()
	n, err := replay.RecoverJournal(ctx, d, journal, logger.Named("recover"))
	if err != nil {
		return fmt.Errorf("recover journal: %w", err)
	}
	if n == 0 {
		return nil
	}
	logger.Info("journal recovered",
		zap.Uint64("from_seq", from),
		zap.Uint64("seq", d.State().Seq()),
		zap.Int("requests", n),
	)
	_, err = saveSnapshot(ctx, states, d.State(), logger)
	return err
}
