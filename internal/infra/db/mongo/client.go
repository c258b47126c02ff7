package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Options configures a Client. Zero durations take package defaults.
type Options struct {
	URI            string
	Database       string
	AppName        string
	ConnectTimeout time.Duration
	IdempotencyTTL time.Duration
}

// Client owns one driver connection and the database every store in this
// package reads from.
type Client struct {
	DB *mongo.Database

	idempotencyTTL time.Duration
}

func New(ctx context.Context, opts Options) (*Client, error) {
	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	clientOpts := options.Client().ApplyURI(opts.URI).SetRetryWrites(true)
	if opts.AppName != "" {
		clientOpts.SetAppName(opts.AppName)
	}
	m, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, err
	}
	if err := m.Ping(ctx, readpref.Primary()); err != nil {
		_ = m.Disconnect(context.Background())
		return nil, fmt.Errorf("ping %s: %w", opts.Database, err)
	}
	ttl := opts.IdempotencyTTL
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &Client{DB: m.Database(opts.Database), idempotencyTTL: ttl}, nil
}

// Ping is the readiness check for the primary.
func (c *Client) Ping(ctx context.Context) error {
	return c.DB.Client().Ping(ctx, readpref.Primary())
}

func (c *Client) Close(ctx context.Context) error {
	return c.DB.Client().Disconnect(ctx)
}

// EnsureIndexes creates the indexes the stores rely on, including the
// unique listing/date guard and the TTL indexes.
func (c *Client) EnsureIndexes(ctx context.Context) error {
	steps := []struct {
		name   string
		ensure func(context.Context, *mongo.Database) error
	}{
		{"reservations", ensureReservationIndexes},
		{"idempotency", func(ctx context.Context, db *mongo.Database) error {
			return ensureIdempotencyIndexes(ctx, db, c.idempotencyTTL)
		}},
		{"outbox", ensureOutboxIndexes},
		{"sessions", ensureSessionIndexes},
	}
	for _, step := range steps {
		if err := step.ensure(ctx, c.DB); err != nil {
			return fmt.Errorf("%s indexes: %w", step.name, err)
		}
	}
	return nil
}
