package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"dwelling/internal/app/middleware"
)

const (
	keyPrefix  = "idempotency:"
	DefaultTTL = 24 * time.Hour
)

// IdempotencyStore keeps command results in Redis. SET NX makes the first
// writer under a key win; later Save calls are no-ops until the TTL expires.
type IdempotencyStore struct {
	client goredis.Cmdable
	ttl    time.Duration
}

func NewIdempotencyStore(client goredis.Cmdable, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// NewClient connects and pings the server.
func NewClient(ctx context.Context, addr string) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	data, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return middleware.IdempotencyRecord{}, false, nil
	}
	if err != nil {
		return middleware.IdempotencyRecord{}, false, fmt.Errorf("redis get: %w", err)
	}
	rec, err := decodeRecord(key, data)
	if err != nil {
		return middleware.IdempotencyRecord{}, false, err
	}
	return rec, true, nil
}

func (s *IdempotencyStore) Save(ctx context.Context, rec middleware.IdempotencyRecord) error {
	raw, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	err = s.client.SetArgs(ctx, keyPrefix+rec.Key, raw, goredis.SetArgs{Mode: "NX", TTL: s.ttl}).Err()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

type storedRecord struct {
	Fingerprint string    `json:"fingerprint,omitempty"`
	Payload     []byte    `json:"payload,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func encodeRecord(rec middleware.IdempotencyRecord) ([]byte, error) {
	return json.Marshal(storedRecord{Fingerprint: rec.Fingerprint, Payload: rec.Payload, OccurredAt: rec.OccurredAt.UTC()})
}

func decodeRecord(key string, data []byte) (middleware.IdempotencyRecord, error) {
	var doc storedRecord
	if err := json.Unmarshal(data, &doc); err != nil {
		return middleware.IdempotencyRecord{}, fmt.Errorf("redis unmarshal: %w", err)
	}
	return middleware.IdempotencyRecord{Key: key, Fingerprint: doc.Fingerprint, Payload: doc.Payload, OccurredAt: doc.OccurredAt}, nil
}

var _ middleware.IdempotencyStore = (*IdempotencyStore)(nil)
