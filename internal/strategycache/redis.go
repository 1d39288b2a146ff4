package strategycache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps entries in Redis and lets Redis expire them
type RedisStore struct {
	rdb *redis.Client
	now func() time.Time
}

// NewRedisStore parses redisURL, connects and pings
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	if redisURL == "" {
		return nil, &StoreError{Backend: BackendRedis, Message: "redis URL is required"}
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, &StoreError{Backend: BackendRedis, Message: "invalid redis URL", Cause: err}
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, &StoreError{Backend: BackendRedis, Message: "redis unreachable", Cause: err}
	}
	return NewRedisStoreFromClient(rdb), nil
}

// NewRedisStoreFromClient wraps an existing client
func NewRedisStoreFromClient(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, now: time.Now}
}

// Get returns the entry for key, or nil when Redis has none
func (s *RedisStore) Get(ctx context.Context, key string) (*Entry, error) {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, &StoreError{Backend: BackendRedis, Message: "get failed", Cause: err}
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, &StoreError{Backend: BackendRedis, Message: "corrupt entry", Cause: err}
	}
	if e.Expired(s.now()) {
		return nil, nil
	}
	return &e, nil
}

// Put writes the entry with a TTL matching its expiry
func (s *RedisStore) Put(ctx context.Context, entry Entry) error {
	var ttl time.Duration
	if !entry.ExpiresAt.IsZero() {
		ttl = entry.ExpiresAt.Sub(s.now())
		if ttl <= 0 {
			return nil
		}
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return &StoreError{Backend: BackendRedis, Message: "failed to encode entry", Cause: err}
	}
	if err := s.rdb.Set(ctx, entry.Key, data, ttl).Err(); err != nil {
		return &StoreError{Backend: BackendRedis, Message: "put failed", Cause: err}
	}
	return nil
}

// Close closes the client
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
