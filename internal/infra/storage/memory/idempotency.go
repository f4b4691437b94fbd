package memory

import (
	"context"
	"sync"
	"time"

	"homestay/internal/app/middleware"
)

// IdempotencyStore keeps command outcomes keyed by idempotency key. Entries
// older than the TTL are dropped lazily on read.
type IdempotencyStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	records map[string]middleware.IdempotencyRecord
}

func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{ttl: ttl, records: make(map[string]middleware.IdempotencyRecord)}
}

func (s *IdempotencyStore) Get(_ context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key]
	if !ok {
		return middleware.IdempotencyRecord{}, false, nil
	}
	if s.ttl > 0 && time.Since(rec.OccurredAt) > s.ttl {
		delete(s.records, key)
		return middleware.IdempotencyRecord{}, false, nil
	}
	return rec, true, nil
}

func (s *IdempotencyStore) Save(_ context.Context, rec middleware.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.OccurredAt.IsZero() {
		rec.OccurredAt = time.Now().UTC()
	}
	s.records[rec.Key] = rec
	return nil
}
