package snapshot

import (
	"context"

	"stakePool/internal/ledger"
	"stakePool/internal/model"
	"stakePool/internal/storage/badger"
	"stakePool/internal/storage/postgres"
)

// DBStateStore stores the snapshot in the pool_state and pool_members tables.
type DBStateStore struct {
	Store *postgres.Store
	Name  string
}

func (s *DBStateStore) Load(ctx context.Context) (ledger.Snapshot, bool, error) {
	if s == nil || s.Store == nil {
		return ledger.Snapshot{}, false, nil
	}
	return fromRecord(s.Store.LoadSnapshot(ctx, s.Name))
}

func (s *DBStateStore) Save(ctx context.Context, snap ledger.Snapshot) error {
	if s == nil || s.Store == nil {
		return nil
	}
	return s.Store.SaveSnapshot(ctx, s.Name, model.NewSnapshotRecord(snap))
}

// BadgerStateStore stores the snapshot in a badger database.
type BadgerStateStore struct {
	Store *badger.Store
}

func (s *BadgerStateStore) Load(ctx context.Context) (ledger.Snapshot, bool, error) {
	if s == nil || s.Store == nil {
		return ledger.Snapshot{}, false, nil
	}
	return fromRecord(s.Store.LoadSnapshot(ctx))
}

func (s *BadgerStateStore) Save(ctx context.Context, snap ledger.Snapshot) error {
	if s == nil || s.Store == nil {
		return nil
	}
	return s.Store.SaveSnapshot(ctx, model.NewSnapshotRecord(snap))
}
