package db

import (
	"time"

	"github.com/google/uuid"
)

// StrategyCacheSchema is the DDL for the persisted strategy cache
const StrategyCacheSchema = `
CREATE TABLE IF NOT EXISTS strategy_cache (
	id          UUID PRIMARY KEY,
	cache_key   TEXT NOT NULL UNIQUE,
	job_id      TEXT NOT NULL,
	fingerprint TEXT NOT NULL,
	version     TEXT NOT NULL,
	payload     JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	expires_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS strategy_cache_expires_at_idx ON strategy_cache (expires_at);
`

// StrategyCacheRow is one persisted strategy
type StrategyCacheRow struct {
	ID          uuid.UUID `json:"id"`
	CacheKey    string    `json:"cache_key"`
	JobID       string    `json:"job_id"`
	Fingerprint string    `json:"fingerprint"`
	Version     string    `json:"version"`
	Payload     []byte    `json:"payload"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}
