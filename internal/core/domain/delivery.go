package domain

import "time"

// DeliveryTTL is how long a cached delivery stays servable. Set once at
// write time, never extended by reads.
const DeliveryTTL = 30 * 24 * time.Hour

// Delivery represents previously delivered media, keyed by the hash of the
// normalized source URL. Handle is the provider-issued opaque reference
// usable for re-delivery without re-fetching the source.
type Delivery struct {
	URLHash         string     `db:"url_hash"`
	OriginalURL     string     `db:"original_url"`
	Handle          string     `db:"handle"`
	SecondaryHandle string     `db:"secondary_handle"`
	MediaType       MediaType  `db:"media_type"`
	Provider        Provider   `db:"provider"`
	DurationSeconds *int64     `db:"duration_seconds"`
	SizeBytes       *int64     `db:"size_bytes"`
	StoredAt        time.Time  `db:"stored_at"`
	LastAccessedAt  time.Time  `db:"last_accessed_at"`
	ExpiresAt       time.Time  `db:"expires_at"`
}

// Expired reports whether the delivery is past its TTL at the given instant.
func (d *Delivery) Expired(now time.Time) bool {
	return !d.ExpiresAt.After(now)
}
