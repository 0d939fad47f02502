package drawing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// Key layout:
//
//	drawing/<id>                 -> Drawing JSON
//	snapshot/<id>/<version:010d> -> Snapshot JSON
const (
	drawingPrefix  = "drawing/"
	snapshotPrefix = "snapshot/"
)

func drawingKey(id string) []byte { return []byte(drawingPrefix + id) }

func snapshotsPrefix(drawingID string) []byte {
	return []byte(snapshotPrefix + drawingID + "/")
}

func snapshotKey(drawingID string, version int) []byte {
	return fmt.Appendf(snapshotsPrefix(drawingID), "%010d", version)
}

// BadgerStore keeps drawings in an embedded badger database. It is used when
// no PostgreSQL database is configured.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens or creates a store in dir.
func OpenBadgerStore(dir string) (*BadgerStore, error) {
	return openBadger(badger.DefaultOptions(dir).WithLogger(nil))
}

// NewMemoryStore returns a store that lives only in memory.
func NewMemoryStore() (*BadgerStore, error) {
	return openBadger(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
}

func openBadger(opts badger.Options) (*BadgerStore, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Close() error { return s.db.Close() }

func getJSON(txn *badger.Txn, key []byte, v any) error {
	item, err := txn.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func setJSON(txn *badger.Txn, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

func (s *BadgerStore) CreateDrawing(_ context.Context, d *Drawing, first *Snapshot) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(drawingKey(d.ID)); err == nil {
			return fmt.Errorf("drawing %q already exists", d.ID)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := setJSON(txn, drawingKey(d.ID), d); err != nil {
			return err
		}
		first.DrawingID = d.ID
		first.Version = 1
		return setJSON(txn, snapshotKey(d.ID, 1), first)
	})
}

func (s *BadgerStore) GetDrawing(_ context.Context, id string) (*Drawing, error) {
	var d Drawing
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, drawingKey(id), &d)
	})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *BadgerStore) ListDrawings(_ context.Context) ([]Drawing, error) {
	drawings := []Drawing{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(drawingPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var d Drawing
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &d)
			}); err != nil {
				return err
			}
			drawings = append(drawings, d)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(drawings, func(a, b Drawing) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return drawings, nil
}

func (s *BadgerStore) DeleteDrawing(_ context.Context, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(drawingKey(id)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		keys := [][]byte{drawingKey(id)}
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = snapshotsPrefix(id)
		it := txn.NewIterator(opts)
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		it.Close()
		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// latest returns the highest-versioned snapshot of a drawing, or nil.
func latest(txn *badger.Txn, drawingID string) (*Snapshot, error) {
	prefix := snapshotsPrefix(drawingID)
	opts := badger.DefaultIteratorOptions
	opts.Reverse = true
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	it.Seek(append(slices.Clone(prefix), 0xFF))
	if !it.ValidForPrefix(prefix) {
		return nil, nil
	}
	var snap Snapshot
	if err := it.Item().Value(func(val []byte) error {
		return json.Unmarshal(val, &snap)
	}); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *BadgerStore) LatestSnapshot(_ context.Context, drawingID string) (*Snapshot, error) {
	var snap *Snapshot
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		snap, err = latest(txn, drawingID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, ErrNotFound
	}
	return snap, nil
}

func (s *BadgerStore) SaveSnapshot(_ context.Context, snap *Snapshot) error {
	return s.db.Update(func(txn *badger.Txn) error {
		var d Drawing
		if err := getJSON(txn, drawingKey(snap.DrawingID), &d); err != nil {
			return err
		}
		prev, err := latest(txn, snap.DrawingID)
		if err != nil {
			return err
		}
		snap.Version = 1
		if prev != nil {
			snap.Version = prev.Version + 1
		}
		d.UpdatedAt = snap.CreatedAt
		if err := setJSON(txn, drawingKey(d.ID), &d); err != nil {
			return err
		}
		return setJSON(txn, snapshotKey(d.ID, snap.Version), snap)
	})
}
