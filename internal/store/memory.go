package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store for tests and for serving without a
// database path.
type MemoryStore struct {
	mu      sync.Mutex
	results []CachedResult
}

// NewMemory creates an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) GetCachedResult(_ context.Context, profileHash string) (*CachedResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	for i := len(s.results) - 1; i >= 0; i-- {
		r := s.results[i]
		if r.ProfileHash == profileHash && r.ExpiresAt.After(now) {
			out := r
			return &out, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) SetCachedResult(_ context.Context, profileHash string, payload []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	s.results = append(s.results, CachedResult{
		ID:          uuid.New().String(),
		ProfileHash: profileHash,
		Payload:     append([]byte(nil), payload...),
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	})
	return nil
}

func (s *MemoryStore) DeleteExpired(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	kept := s.results[:0]
	removed := 0
	for _, r := range s.results {
		if r.ExpiresAt.After(now) {
			kept = append(kept, r)
		} else {
			removed++
		}
	}
	s.results = kept
	return removed, nil
}

func (s *MemoryStore) Migrate(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
