package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v2"
	"go.uber.org/zap"

	"stakePool/internal/model"
)

var (
	metaKey      = []byte("pool:meta")
	memberPrefix = []byte("pool:member:")
)

// Options configures the badger store. An empty Dir opens an in-memory database.
type Options struct {
	Dir    string
	Logger *zap.Logger
}

// Store keeps the latest pool snapshot in badger: one key for the pool
// configuration and one key per member.
type Store struct {
	db *badgerdb.DB
}

// Open returns a badger-backed store. It should be Close()'d after use.
func Open(opts Options) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	dbOpts := badgerdb.DefaultOptions(opts.Dir).WithLogger(newZapLogger(logger))
	if opts.Dir == "" {
		dbOpts = dbOpts.WithInMemory(true)
	}
	db, err := badgerdb.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSnapshot replaces the stored snapshot in a single transaction.
func (s *Store) SaveSnapshot(ctx context.Context, rec model.SnapshotRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	members := rec.Members
	rec.Members = nil
	meta, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal pool meta: %w", err)
	}

	err = s.db.Update(func(txn *badgerdb.Txn) error {
		if err := deletePrefix(txn, memberPrefix); err != nil {
			return err
		}
		if err := txn.Set(metaKey, meta); err != nil {
			return err
		}
		for _, m := range members {
			val, err := json.Marshal(m)
			if err != nil {
				return fmt.Errorf("marshal member %s: %w", m.Address, err)
			}
			if err := txn.Set(memberKey(m.Address), val); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the stored snapshot, or false if none was saved.
func (s *Store) LoadSnapshot(ctx context.Context) (model.SnapshotRecord, bool, error) {
	if err := ctx.Err(); err != nil {
		return model.SnapshotRecord{}, false, err
	}
	var rec model.SnapshotRecord
	err := s.db.View(func(txn *badgerdb.Txn) error {
		if err := getJSON(txn, metaKey, &rec); err != nil {
			return err
		}
		rec.Members = []model.MemberView{}

		it := txn.NewIterator(badgerdb.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(memberPrefix); it.ValidForPrefix(memberPrefix); it.Next() {
			var m model.MemberView
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &m)
			})
			if err != nil {
				return fmt.Errorf("decode member %s: %w", it.Item().Key(), err)
			}
			rec.Members = append(rec.Members, m)
		}
		return nil
	})
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return model.SnapshotRecord{}, false, nil
	}
	if err != nil {
		return model.SnapshotRecord{}, false, fmt.Errorf("load snapshot: %w", err)
	}
	return rec, true, nil
}

func memberKey(addr string) []byte {
	key := make([]byte, 0, len(memberPrefix)+len(addr))
	key = append(key, memberPrefix...)
	return append(key, addr...)
}

func getJSON(txn *badgerdb.Txn, key []byte, into interface{}) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, into)
	})
}

func deletePrefix(txn *badgerdb.Txn, prefix []byte) error {
	opts := badgerdb.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	var keys [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	it.Close()
	for _, key := range keys {
		if err := txn.Delete(key); err != nil {
			return err
		}
	}
	return nil
}
