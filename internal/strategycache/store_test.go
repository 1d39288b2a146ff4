package strategycache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestMemoryStore_ExpiryIsLazy(t *testing.T) {
	ctx := context.Background()
	clk := &clock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	s := NewMemoryStore()
	s.now = clk.now

	require.NoError(t, s.Put(ctx, Entry{Key: "a", Value: []byte(`{}`), ExpiresAt: clk.t.Add(time.Minute)}))
	require.NoError(t, s.Put(ctx, Entry{Key: "forever", Value: []byte(`{}`)}))

	e, err := s.Get(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, e)

	clk.t = clk.t.Add(2 * time.Minute)
	e, err = s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, e)
	assert.Equal(t, 2, s.Len(), "expired entry is not deleted on read")

	n, err := s.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, s.Len())

	e, err = s.Get(ctx, "forever")
	require.NoError(t, err)
	assert.NotNil(t, e)
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	value := []byte(`{"a":1}`)
	require.NoError(t, s.Put(ctx, Entry{Key: "k", Value: value}))

	value[0] = 'X'
	e, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(e.Value))

	e.Value[0] = 'Y'
	again, _ := s.Get(ctx, "k")
	assert.Equal(t, `{"a":1}`, string(again.Value))
}

func TestMemoryStore_Miss(t *testing.T) {
	e, err := NewMemoryStore().Get(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, e)
}

func TestBadgerStore_InMemory(t *testing.T) {
	ctx := context.Background()
	s, err := OpenBadgerStore("")
	require.NoError(t, err)
	defer s.Close()

	clk := &clock{t: time.Now()}
	s.now = clk.now

	entry := Entry{
		Key:         "strategy:abc",
		JobID:       "job-1",
		Fingerprint: "fp",
		Version:     AnalysisVersion,
		Value:       []byte(`{"job_id":"job-1"}`),
		ExpiresAt:   clk.t.Add(time.Hour),
	}
	require.NoError(t, s.Put(ctx, entry))

	got, err := s.Get(ctx, "strategy:abc")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "job-1", got.JobID)
	assert.JSONEq(t, `{"job_id":"job-1"}`, string(got.Value))

	missing, err := s.Get(ctx, "strategy:none")
	require.NoError(t, err)
	assert.Nil(t, missing)

	clk.t = clk.t.Add(2 * time.Hour)
	expired, err := s.Get(ctx, "strategy:abc")
	require.NoError(t, err)
	assert.Nil(t, expired)
}

func TestBadgerStore_SkipsAlreadyExpired(t *testing.T) {
	ctx := context.Background()
	s, err := OpenBadgerStore("")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put(ctx, Entry{Key: "old", Value: []byte(`{}`), ExpiresAt: time.Now().Add(-time.Minute)}))
	got, err := s.Get(ctx, "old")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, BackendConfig{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(ctx, BackendConfig{Backend: BackendBadger})
	require.NoError(t, err)
	assert.IsType(t, &BadgerStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, BackendConfig{Backend: "etcd"})
	assert.ErrorContains(t, err, `unknown cache backend "etcd"`)

	_, err = Open(ctx, BackendConfig{Backend: BackendPostgres})
	var storeErr *StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, BackendPostgres, storeErr.Backend)

	_, err = Open(ctx, BackendConfig{Backend: BackendRedis, RedisURL: "not a url"})
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, BackendRedis, storeErr.Backend)
}

func TestStoreError(t *testing.T) {
	cause := errors.New("connection refused")
	err := &StoreError{Backend: BackendRedis, Message: "get failed", Cause: cause}

	assert.Equal(t, "redis cache: get failed: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "postgres cache: database URL is required",
		(&StoreError{Backend: BackendPostgres, Message: "database URL is required"}).Error())
}
