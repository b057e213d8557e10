package memory

import (
	"context"
	"sync"
	"time"

	"github.com/quangvu/fetchd/internal/core/domain"
)

// Store is the in-process fallback for the secondary delivery store, used
// when no external key-value store is reachable at startup. Entries are lost
// on restart; the durable primary store still provides correctness.
type Store struct {
	deliveries map[string]*domain.Delivery
	mu         sync.RWMutex
}

// NewStore creates an empty in-memory delivery store.
func NewStore() *Store {
	return &Store{deliveries: make(map[string]*domain.Delivery)}
}

// Get returns a non-expired delivery by URL hash, or (nil, nil) on miss.
// The expiry check, access touch and copy all happen under one lock: the
// stored entry is shared across concurrent lookups for the same key.
func (s *Store) Get(ctx context.Context, urlHash string) (*domain.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.deliveries[urlHash]
	if !ok || d.Expired(time.Now().UTC()) {
		return nil, nil
	}

	d.LastAccessedAt = time.Now().UTC()
	cp := *d
	return &cp, nil
}

// Set stores a delivery. Last write wins.
func (s *Store) Set(ctx context.Context, d *domain.Delivery) error {
	cp := *d
	s.mu.Lock()
	s.deliveries[d.URLHash] = &cp
	s.mu.Unlock()
	return nil
}

// Delete removes a delivery.
func (s *Store) Delete(ctx context.Context, urlHash string) error {
	s.mu.Lock()
	delete(s.deliveries, urlHash)
	s.mu.Unlock()
	return nil
}
