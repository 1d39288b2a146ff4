package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// GetStrategyCache returns the row for key if it has not expired at now.
// A missing or expired row returns nil, nil. Expired rows are left in place.
func (db *DB) GetStrategyCache(ctx context.Context, key string, now time.Time) (*StrategyCacheRow, error) {
	var row StrategyCacheRow
	err := db.pool.QueryRow(ctx,
		`SELECT id, cache_key, job_id, fingerprint, version, payload, created_at, expires_at
		 FROM strategy_cache
		 WHERE cache_key = $1 AND expires_at > $2`,
		key, now,
	).Scan(&row.ID, &row.CacheKey, &row.JobID, &row.Fingerprint, &row.Version,
		&row.Payload, &row.CreatedAt, &row.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get strategy cache %s: %w", key, err)
	}
	return &row, nil
}

// UpsertStrategyCache stores a row, replacing any previous row with the same key
func (db *DB) UpsertStrategyCache(ctx context.Context, row *StrategyCacheRow) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO strategy_cache (id, cache_key, job_id, fingerprint, version, payload, created_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (cache_key) DO UPDATE SET
		   payload = EXCLUDED.payload,
		   version = EXCLUDED.version,
		   created_at = EXCLUDED.created_at,
		   expires_at = EXCLUDED.expires_at`,
		row.ID, row.CacheKey, row.JobID, row.Fingerprint, row.Version, row.Payload, row.CreatedAt, row.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save strategy cache %s: %w", row.CacheKey, err)
	}
	return nil
}

// PurgeExpiredStrategyCache deletes rows that expired before now and returns how many
func (db *DB) PurgeExpiredStrategyCache(ctx context.Context, now time.Time) (int64, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM strategy_cache WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to purge strategy cache: %w", err)
	}
	return tag.RowsAffected(), nil
}
