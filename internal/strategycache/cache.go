package strategycache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/scintive/werkstudentjobs-sub002/internal/types"
)

// Default lifetimes of the two tiers
const (
	DefaultSessionTTL = 15 * time.Minute
	DefaultTTL        = 7 * 24 * time.Hour
)

// Options configures a Cache. Zero values fall back to the defaults.
type Options struct {
	SessionTTL time.Duration
	TTL        time.Duration
	Version    string
	Now        func() time.Time
}

// Cache is the two-tier strategy cache
type Cache struct {
	session    *MemoryStore
	store      Store
	sessionTTL time.Duration
	ttl        time.Duration
	version    string
	now        func() time.Time
}

// New creates a cache in front of store. A nil store leaves only the session tier.
func New(store Store, opts *Options) *Cache {
	if opts == nil {
		opts = &Options{}
	}
	c := &Cache{
		session:    NewMemoryStore(),
		store:      store,
		sessionTTL: opts.SessionTTL,
		ttl:        opts.TTL,
		version:    opts.Version,
		now:        opts.Now,
	}
	if c.sessionTTL <= 0 {
		c.sessionTTL = DefaultSessionTTL
	}
	if c.ttl <= 0 {
		c.ttl = DefaultTTL
	}
	if c.version == "" {
		c.version = AnalysisVersion
	}
	if c.now == nil {
		c.now = time.Now
	}
	c.session.now = c.now
	return c
}

// Key returns the cache key used for jobID and fingerprint
func (c *Cache) Key(jobID, fingerprint string) string {
	return Key(jobID, fingerprint, c.version)
}

// Get looks in the session tier, then the persisted tier, promoting persisted
// hits into the session. A miss returns nil, nil. A backend failure returns
// nil and a *StoreError, which callers treat as a miss.
func (c *Cache) Get(ctx context.Context, jobID, fingerprint string) (*types.Strategy, error) {
	key := c.Key(jobID, fingerprint)

	if e, _ := c.session.Get(ctx, key); e != nil {
		if s, err := decode(e); err == nil {
			return s, nil
		}
	}

	if c.store == nil {
		return nil, nil
	}
	e, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, nil
	}
	s, err := decode(e)
	if err != nil {
		return nil, &StoreError{Backend: "persisted", Message: "corrupt strategy", Cause: err}
	}

	promoted := *e
	promoted.ExpiresAt = earliest(c.now().Add(c.sessionTTL), e.ExpiresAt)
	_ = c.session.Put(ctx, promoted)
	return s, nil
}

// Put writes the strategy to both tiers. ttl <= 0 uses the configured default.
// A persisted-tier failure is returned as a *StoreError after the session
// tier has been written.
func (c *Cache) Put(ctx context.Context, jobID, fingerprint string, value *types.Strategy, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.ttl
	}
	stored := *value
	stored.Cached = false
	data, err := json.Marshal(&stored)
	if err != nil {
		return &StoreError{Backend: "session", Message: "failed to encode strategy", Cause: err}
	}

	now := c.now()
	e := Entry{
		Key:         c.Key(jobID, fingerprint),
		JobID:       jobID,
		Fingerprint: fingerprint,
		Version:     c.version,
		Value:       data,
		CreatedAt:   now.UTC(),
		ExpiresAt:   now.Add(ttl).UTC(),
	}

	session := e
	session.ExpiresAt = earliest(now.Add(c.sessionTTL), e.ExpiresAt)
	_ = c.session.Put(ctx, session)

	if c.store == nil {
		return nil
	}
	return c.store.Put(ctx, e)
}

// Purge drops expired entries from the session tier and from a persisted tier
// that supports it. It returns the number of persisted entries removed.
func (c *Cache) Purge(ctx context.Context) (int, error) {
	_, _ = c.session.Purge(ctx)
	if p, ok := c.store.(Purger); ok {
		return p.Purge(ctx)
	}
	return 0, nil
}

// Close closes the persisted tier
func (c *Cache) Close() error {
	if c.store == nil {
		return nil
	}
	return c.store.Close()
}

func decode(e *Entry) (*types.Strategy, error) {
	var s types.Strategy
	if err := json.Unmarshal(e.Value, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func earliest(a, b time.Time) time.Time {
	if b.IsZero() || a.Before(b) {
		return a
	}
	return b
}
