package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"stakePool/internal/ledger"
	"stakePool/internal/model"
)

// StateStore persists the latest pool snapshot.
type StateStore interface {
	Load(ctx context.Context) (ledger.Snapshot, bool, error)
	Save(ctx context.Context, snap ledger.Snapshot) error
}

// FileStateStore stores the snapshot in a local JSON file.
type FileStateStore struct {
	Path string
}

func (s *FileStateStore) Load(ctx context.Context) (ledger.Snapshot, bool, error) {
	if s == nil || s.Path == "" {
		return ledger.Snapshot{}, false, nil
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return ledger.Snapshot{}, false, nil
		}
		return ledger.Snapshot{}, false, fmt.Errorf("read state: %w", err)
	}

	var rec model.SnapshotRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return ledger.Snapshot{}, false, fmt.Errorf("parse state: %w", err)
	}
	return fromRecord(rec, true, nil)
}

func (s *FileStateStore) Save(ctx context.Context, snap ledger.Snapshot) error {
	if s == nil || s.Path == "" {
		return nil
	}
	dir := filepath.Dir(s.Path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}

	rec := model.NewSnapshotRecord(snap)
	rec.UpdatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write state tmp: %w", err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		return fmt.Errorf("rename state: %w", err)
	}
	return nil
}

// MemoryStateStore keeps the snapshot in process. Used when persistence is off.
type MemoryStateStore struct {
	mu   sync.Mutex
	snap *ledger.Snapshot
}

func (s *MemoryStateStore) Load(ctx context.Context) (ledger.Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap == nil {
		return ledger.Snapshot{}, false, nil
	}
	return cloneSnapshot(*s.snap), true, nil
}

func (s *MemoryStateStore) Save(ctx context.Context, snap ledger.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := cloneSnapshot(snap)
	s.snap = &c
	return nil
}

func cloneSnapshot(snap ledger.Snapshot) ledger.Snapshot {
	members := make([]ledger.Member, len(snap.Members))
	copy(members, snap.Members)
	snap.Members = members
	return snap
}

func fromRecord(rec model.SnapshotRecord, ok bool, err error) (ledger.Snapshot, bool, error) {
	if err != nil || !ok {
		return ledger.Snapshot{}, false, err
	}
	snap, err := rec.ToLedger()
	if err != nil {
		return ledger.Snapshot{}, false, fmt.Errorf("decode state: %w", err)
	}
	return snap, true, nil
}
