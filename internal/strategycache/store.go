// Package strategycache stores finished strategies keyed by job, profile
// fingerprint and analysis version. A short-lived in-process session tier sits
// in front of a persisted tier that can be memory, PostgreSQL, Redis or Badger.
package strategycache

import (
	"context"
	"fmt"
	"time"
)

// Backend names accepted by Open
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendBadger   = "badger"
)

// Entry is one cached strategy. Value holds the JSON-encoded strategy.
type Entry struct {
	Key         string    `json:"key"`
	JobID       string    `json:"job_id"`
	Fingerprint string    `json:"fingerprint"`
	Version     string    `json:"version"`
	Value       []byte    `json:"value"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Expired reports whether the entry is past its expiry at now.
// A zero ExpiresAt never expires.
func (e *Entry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

// Store is a cache backend. Get returns nil, nil on a miss.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Put(ctx context.Context, entry Entry) error
	Close() error
}

// Purger is implemented by stores that keep expired entries until asked to drop them
type Purger interface {
	Purge(ctx context.Context) (int, error)
}

// BackendConfig selects and configures a persisted backend
type BackendConfig struct {
	Backend     string
	DatabaseURL string
	RedisURL    string
	BadgerPath  string
}

// Open connects the configured backend
func Open(ctx context.Context, cfg BackendConfig) (Store, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendPostgres:
		return NewPostgresStore(ctx, cfg.DatabaseURL)
	case BackendRedis:
		return NewRedisStore(ctx, cfg.RedisURL)
	case BackendBadger:
		return OpenBadgerStore(cfg.BadgerPath)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
