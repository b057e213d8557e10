package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/quangvu/fetchd/internal/core/domain"
)

func delivery(hash string, expiresAt time.Time) *domain.Delivery {
	now := time.Now().UTC()
	return &domain.Delivery{
		URLHash:        hash,
		Handle:         "h-" + hash,
		MediaType:      domain.MediaTypeVideo,
		Provider:       domain.ProviderTikTok,
		StoredAt:       now,
		LastAccessedAt: now,
		ExpiresAt:      expiresAt,
	}
}

func TestSetGetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	d := delivery("abc", time.Now().UTC().Add(time.Hour))

	if err := s.Set(ctx, d); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(ctx, "abc")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Handle != d.Handle {
		t.Fatalf("Get = %+v, want handle %q", got, d.Handle)
	}

	if err := s.Delete(ctx, "abc"); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.Get(ctx, "abc"); got != nil {
		t.Fatal("Get returned a deleted entry")
	}
}

func TestGetMiss(t *testing.T) {
	got, err := NewStore().Get(context.Background(), "missing")
	if err != nil || got != nil {
		t.Fatalf("Get(miss) = (%v, %v), want (nil, nil)", got, err)
	}
}

func TestGetExpired(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	if err := s.Set(ctx, delivery("old", time.Now().UTC().Add(-time.Minute))); err != nil {
		t.Fatal(err)
	}

	if got, _ := s.Get(ctx, "old"); got != nil {
		t.Fatal("expired entry served")
	}
}

func TestGetTouchesLastAccessed(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	d := delivery("abc", time.Now().UTC().Add(time.Hour))
	d.LastAccessedAt = time.Now().UTC().Add(-time.Hour)
	if err := s.Set(ctx, d); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(ctx, "abc")
	if err != nil {
		t.Fatal(err)
	}
	if !got.LastAccessedAt.After(d.StoredAt.Add(-time.Minute)) {
		t.Error("Get did not update last_accessed_at")
	}
	// Reads never extend expiry.
	if !got.ExpiresAt.Equal(d.ExpiresAt) {
		t.Error("Get modified expires_at")
	}
}

// Lookups for the same URL arrive concurrently from different users; each
// Get touches the shared entry's last-accessed timestamp. Run with -race.
func TestConcurrentGetsSameKey(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	if err := s.Set(ctx, delivery("abc", time.Now().UTC().Add(time.Hour))); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				got, err := s.Get(ctx, "abc")
				if err != nil {
					t.Error(err)
					return
				}
				if got == nil || got.Handle != "h-abc" {
					t.Error("concurrent Get lost the entry")
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	if err := s.Set(ctx, delivery("abc", time.Now().UTC().Add(time.Hour))); err != nil {
		t.Fatal(err)
	}

	got, _ := s.Get(ctx, "abc")
	got.Handle = "mutated"

	again, _ := s.Get(ctx, "abc")
	if again.Handle == "mutated" {
		t.Fatal("caller mutation leaked into the store")
	}
}
