package strategycache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStore keeps entries in an embedded Badger database with per-entry TTL
type BadgerStore struct {
	db  *badger.DB
	now func() time.Time
}

// OpenBadgerStore opens a store at path. An empty path opens an in-memory database.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	bdb, err := badger.Open(opts)
	if err != nil {
		return nil, &StoreError{Backend: BackendBadger, Message: "failed to open", Cause: err}
	}
	return &BadgerStore{db: bdb, now: time.Now}, nil
}

// Get returns the entry for key, or nil when missing or expired
func (s *BadgerStore) Get(_ context.Context, key string) (*Entry, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			data = append([]byte(nil), val...)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &StoreError{Backend: BackendBadger, Message: "get failed", Cause: err}
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, &StoreError{Backend: BackendBadger, Message: "corrupt entry", Cause: err}
	}
	// badger TTLs have second granularity
	if e.Expired(s.now()) {
		return nil, nil
	}
	return &e, nil
}

// Put writes the entry with a TTL matching its expiry
func (s *BadgerStore) Put(_ context.Context, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return &StoreError{Backend: BackendBadger, Message: "failed to encode entry", Cause: err}
	}

	be := badger.NewEntry([]byte(entry.Key), data)
	if !entry.ExpiresAt.IsZero() {
		ttl := entry.ExpiresAt.Sub(s.now())
		if ttl <= 0 {
			return nil
		}
		be = be.WithTTL(ttl)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(be)
	})
	if err != nil {
		return &StoreError{Backend: BackendBadger, Message: "put failed", Cause: err}
	}
	return nil
}

// Close closes the database
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
