package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/quangvu/fetchd/internal/core/domain"
)

// DeliveryRepo implements the cache.Store contract on PostgreSQL. It is the
// durable primary store for cached deliveries.
type DeliveryRepo struct {
	db *DB
}

// NewDeliveryRepo creates a new PostgreSQL delivery repository.
func NewDeliveryRepo(db *DB) *DeliveryRepo {
	return &DeliveryRepo{db: db}
}

// Get retrieves a non-expired delivery by URL hash and touches its
// last-accessed timestamp. Expiry is filtered at read time; expired rows are
// reaped out-of-band. Returns (nil, nil) on miss.
func (r *DeliveryRepo) Get(ctx context.Context, urlHash string) (*domain.Delivery, error) {
	var d domain.Delivery
	err := r.db.GetContext(ctx, &d, `
		SELECT url_hash, original_url, handle, secondary_handle, media_type,
		       provider, duration_seconds, size_bytes, stored_at,
		       last_accessed_at, expires_at
		FROM deliveries
		WHERE url_hash = $1 AND expires_at > $2`,
		urlHash, time.Now().UTC())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get delivery: %w", err)
	}

	// Reads update last_accessed_at only, never expires_at.
	_, err = r.db.ExecContext(ctx,
		`UPDATE deliveries SET last_accessed_at = $1 WHERE url_hash = $2`,
		time.Now().UTC(), urlHash)
	if err != nil {
		return nil, fmt.Errorf("failed to touch delivery: %w", err)
	}
	return &d, nil
}

// Set upserts a delivery. Last write wins on url_hash.
func (r *DeliveryRepo) Set(ctx context.Context, d *domain.Delivery) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO deliveries (
			url_hash, original_url, handle, secondary_handle, media_type,
			provider, duration_seconds, size_bytes, stored_at,
			last_accessed_at, expires_at
		) VALUES (
			:url_hash, :original_url, :handle, :secondary_handle, :media_type,
			:provider, :duration_seconds, :size_bytes, :stored_at,
			:last_accessed_at, :expires_at
		)
		ON CONFLICT (url_hash) DO UPDATE SET
			original_url     = EXCLUDED.original_url,
			handle           = EXCLUDED.handle,
			secondary_handle = EXCLUDED.secondary_handle,
			media_type       = EXCLUDED.media_type,
			provider         = EXCLUDED.provider,
			duration_seconds = EXCLUDED.duration_seconds,
			size_bytes       = EXCLUDED.size_bytes,
			stored_at        = EXCLUDED.stored_at,
			last_accessed_at = EXCLUDED.last_accessed_at,
			expires_at       = EXCLUDED.expires_at`, d)
	if err != nil {
		return fmt.Errorf("failed to save delivery: %w", err)
	}
	return nil
}

// Delete removes a delivery, typically after its handle turned out stale.
func (r *DeliveryRepo) Delete(ctx context.Context, urlHash string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM deliveries WHERE url_hash = $1`, urlHash)
	if err != nil {
		return fmt.Errorf("failed to delete delivery: %w", err)
	}
	return nil
}
