package memory

import (
	"context"
	"sync"
	"time"

	"dwelling/internal/app/middleware"
)

// IdempotencyStore keeps command results in process. A record expires TTL
// after it occurred; a zero TTL keeps records forever. Expired records are
// swept on Save.
type IdempotencyStore struct {
	TTL time.Duration
	Now func() time.Time

	mu      sync.Mutex
	records map[string]middleware.IdempotencyRecord
}

func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{TTL: ttl, records: map[string]middleware.IdempotencyRecord{}}
}

func (s *IdempotencyStore) Get(_ context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key]
	if !ok || s.expired(rec, s.clock()) {
		return middleware.IdempotencyRecord{}, false, nil
	}
	return rec, true, nil
}

func (s *IdempotencyStore) Save(_ context.Context, rec middleware.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()
	for key, existing := range s.records {
		if s.expired(existing, now) {
			delete(s.records, key)
		}
	}
	if _, taken := s.records[rec.Key]; !taken {
		s.records[rec.Key] = rec
	}
	return nil
}

// Len counts records still held, expired or not.
func (s *IdempotencyStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *IdempotencyStore) expired(rec middleware.IdempotencyRecord, now time.Time) bool {
	return s.TTL > 0 && now.Sub(rec.OccurredAt) > s.TTL
}

func (s *IdempotencyStore) clock() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

var _ middleware.IdempotencyStore = (*IdempotencyStore)(nil)
