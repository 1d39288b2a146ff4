package strategycache

import (
	"context"
	"time"

	"github.com/scintive/werkstudentjobs-sub002/internal/db"
)

// PostgresStore persists entries in the strategy_cache table
type PostgresStore struct {
	db  *db.DB
	now func() time.Time
}

// NewPostgresStore connects to databaseURL and creates the table if needed
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	if databaseURL == "" {
		return nil, &StoreError{Backend: BackendPostgres, Message: "database URL is required"}
	}
	conn, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return nil, &StoreError{Backend: BackendPostgres, Message: "failed to connect", Cause: err}
	}
	if err := conn.EnsureSchema(ctx); err != nil {
		conn.Close()
		return nil, &StoreError{Backend: BackendPostgres, Message: "failed to prepare schema", Cause: err}
	}
	return NewPostgresStoreFromDB(conn), nil
}

// NewPostgresStoreFromDB wraps an existing connection
func NewPostgresStoreFromDB(conn *db.DB) *PostgresStore {
	return &PostgresStore{db: conn, now: time.Now}
}

// Get returns the unexpired entry for key
func (s *PostgresStore) Get(ctx context.Context, key string) (*Entry, error) {
	row, err := s.db.GetStrategyCache(ctx, key, s.now().UTC())
	if err != nil {
		return nil, &StoreError{Backend: BackendPostgres, Message: "get failed", Cause: err}
	}
	if row == nil {
		return nil, nil
	}
	return &Entry{
		Key:         row.CacheKey,
		JobID:       row.JobID,
		Fingerprint: row.Fingerprint,
		Version:     row.Version,
		Value:       row.Payload,
		CreatedAt:   row.CreatedAt,
		ExpiresAt:   row.ExpiresAt,
	}, nil
}

// Put upserts the entry on its key
func (s *PostgresStore) Put(ctx context.Context, entry Entry) error {
	row := &db.StrategyCacheRow{
		CacheKey:    entry.Key,
		JobID:       entry.JobID,
		Fingerprint: entry.Fingerprint,
		Version:     entry.Version,
		Payload:     entry.Value,
		CreatedAt:   entry.CreatedAt,
		ExpiresAt:   entry.ExpiresAt,
	}
	if err := s.db.UpsertStrategyCache(ctx, row); err != nil {
		return &StoreError{Backend: BackendPostgres, Message: "put failed", Cause: err}
	}
	return nil
}

// Purge deletes expired rows
func (s *PostgresStore) Purge(ctx context.Context) (int, error) {
	n, err := s.db.PurgeExpiredStrategyCache(ctx, s.now().UTC())
	if err != nil {
		return 0, &StoreError{Backend: BackendPostgres, Message: "purge failed", Cause: err}
	}
	return int(n), nil
}

// Close closes the connection pool
func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}
