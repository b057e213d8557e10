package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"

	"github.com/quangvu/fetchd/internal/core/domain"
	"github.com/quangvu/fetchd/internal/fetch/metrics"
)

// Store is one backing store for cached deliveries. Get returns (nil, nil)
// on miss; expired entries are treated as misses.
type Store interface {
	Get(ctx context.Context, urlHash string) (*domain.Delivery, error)
	Set(ctx context.Context, d *domain.Delivery) error
	Delete(ctx context.Context, urlHash string) error
}

// DeliveryCache is the content-addressable cache of previously delivered
// media. The durable primary store is consulted first; the fast secondary
// store covers primary misses and outages. Store failures degrade to "no
// cache" and never surface to the caller's delivery path.
type DeliveryCache struct {
	primary   Store
	secondary Store
	log       *slog.Logger
}

// New creates a DeliveryCache over a primary and secondary store. Either may
// be nil when unavailable at startup.
func New(primary, secondary Store, log *slog.Logger) *DeliveryCache {
	if log == nil {
		log = slog.Default()
	}
	return &DeliveryCache{primary: primary, secondary: secondary, log: log}
}

// Key normalizes a source URL and hashes it into the cache key.
// Normalization is whitespace trimming only: query-parameter variants may
// serve different content and must not collide.
func Key(url string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(url)))
	return hex.EncodeToString(sum[:])
}

// Lookup returns the cached delivery for a URL, or nil. A secondary hit is
// not written back to the primary; write-back is the caller's call via Store.
func (c *DeliveryCache) Lookup(ctx context.Context, url string) *domain.Delivery {
	key := Key(url)

	if c.primary != nil {
		d, err := c.primary.Get(ctx, key)
		if err != nil {
			c.log.Warn("Primary cache lookup failed", "error", err)
		} else if d != nil {
			metrics.CacheRequests.WithLabelValues("primary", "hit").Inc()
			return d
		}
		metrics.CacheRequests.WithLabelValues("primary", "miss").Inc()
	}

	if c.secondary != nil {
		d, err := c.secondary.Get(ctx, key)
		if err != nil {
			c.log.Warn("Secondary cache lookup failed", "error", err)
		} else if d != nil {
			metrics.CacheRequests.WithLabelValues("secondary", "hit").Inc()
			return d
		}
		metrics.CacheRequests.WithLabelValues("secondary", "miss").Inc()
	}

	return nil
}

// Store writes a delivery to both stores. A failure in one store does not
// block the other; total failure is logged and absorbed — the user already
// has their file, only future cache hits are at risk.
func (c *DeliveryCache) Store(ctx context.Context, url string, d *domain.Delivery) {
	d.URLHash = Key(url)
	d.OriginalURL = strings.TrimSpace(url)

	stored := false
	if c.primary != nil {
		if err := c.primary.Set(ctx, d); err != nil {
			c.log.Warn("Primary cache store failed", "error", err, "url_hash", d.URLHash)
		} else {
			stored = true
		}
	}
	if c.secondary != nil {
		if err := c.secondary.Set(ctx, d); err != nil {
			c.log.Warn("Secondary cache store failed", "error", err, "url_hash", d.URLHash)
		} else {
			stored = true
		}
	}
	if !stored {
		c.log.Error("Delivery not cached in any store", "url_hash", d.URLHash)
	}
}

// Invalidate removes a poisoned entry from both stores, called when a cached
// handle fails at re-delivery time.
func (c *DeliveryCache) Invalidate(ctx context.Context, url string) {
	key := Key(url)
	if c.primary != nil {
		if err := c.primary.Delete(ctx, key); err != nil {
			c.log.Warn("Primary cache invalidate failed", "error", err, "url_hash", key)
		}
	}
	if c.secondary != nil {
		if err := c.secondary.Delete(ctx, key); err != nil {
			c.log.Warn("Secondary cache invalidate failed", "error", err, "url_hash", key)
		}
	}
	metrics.CacheInvalidations.Inc()
}
