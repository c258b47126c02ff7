package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dwelling/internal/app/middleware"
	appoutbox "dwelling/internal/app/outbox"
	"dwelling/internal/app/policies"
	"dwelling/internal/app/uow"
	domainauth "dwelling/internal/domain/auth"
	domainlistings "dwelling/internal/domain/listings"
	domainuser "dwelling/internal/domain/user"
	rediscache "dwelling/internal/infra/cache/redis"
	"dwelling/internal/infra/config"
	mongostore "dwelling/internal/infra/db/mongo"
	"dwelling/internal/infra/db/postgres"
	"dwelling/internal/infra/obs"
	infraoutbox "dwelling/internal/infra/outbox"
	"dwelling/internal/infra/storage/memory"
)

type outboxStore interface {
	appoutbox.Outbox
	infraoutbox.Source
}

// storage is everything the application needs from the selected backend.
type storage struct {
	factory  uow.UoWFactory
	listings domainlistings.Repository
	users    domainuser.Repository
	sessions domainauth.SessionStore
	outbox   outboxStore
	cards    policies.CardSink

	checks  map[string]obs.Check
	closers []func(context.Context) error

	mongo *mongostore.Client
}

func (s *storage) Close(ctx context.Context) {
	for i := len(s.closers) - 1; i >= 0; i-- {
		_ = s.closers[i](ctx)
	}
}

func openStorage(ctx context.Context, cfg config.Config, logger *slog.Logger) (*storage, error) {
	st := &storage{checks: map[string]obs.Check{}}
	switch cfg.StorageDriver {
	case config.DriverMongo:
		client, err := st.mongoClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := client.EnsureIndexes(ctx); err != nil {
			st.Close(ctx)
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		listings := mongostore.NewListingRepository(client.DB)
		users := mongostore.NewUserRepository(client.DB)
		st.factory = mongostore.Factory{
			DB:               client.DB,
			ListingsRepo:     listings,
			ReservationsRepo: mongostore.NewReservationRepository(client.DB),
			UsersRepo:        users,
		}
		st.listings, st.users = listings, users
		st.sessions = mongostore.NewSessionStore(client.DB)
		st.outbox = mongostore.NewOutboxStore(client.DB)
	case config.DriverPostgres:
		db, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("postgres connect: %w", err)
		}
		st.closers = append(st.closers, func(context.Context) error { return db.Close() })
		st.checks["postgres"] = db.PingContext
		if err := postgres.Apply(ctx, db); err != nil {
			st.Close(ctx)
			return nil, err
		}
		listings := postgres.NewListingRepository(db)
		users := postgres.NewUserRepository(db)
		st.factory = postgres.Factory{
			DB:               db,
			ListingsRepo:     listings,
			ReservationsRepo: postgres.NewReservationRepository(db),
			UsersRepo:        users,
		}
		st.listings, st.users = listings, users
		st.sessions = postgres.NewSessionStore(db)
		st.outbox = postgres.NewOutboxStore(db)
	default:
		listings := memory.NewListingRepository()
		users := memory.NewUserRepository()
		st.factory = memory.Factory{
			ListingsRepo:     listings,
			ReservationsRepo: memory.NewReservationRepository(),
			UsersRepo:        users,
		}
		st.listings, st.users = listings, users
		st.sessions = memory.NewSessionStore()
		st.outbox = memory.NewOutbox()
	}

	// Cards are schemaless documents; they go to Mongo whenever it is reachable.
	st.cards = memory.NewCardSink()
	if cfg.MongoURI != "" {
		client, err := st.mongoClient(ctx, cfg)
		if err != nil {
			logger.Warn("card sink falls back to memory", "error", err)
		} else {
			st.cards = mongostore.NewCardSink(client.DB)
		}
	}
	logger.Info("storage ready", "driver", cfg.StorageDriver)
	return st, nil
}

// mongoClient connects once and shares the client between adapters.
func (s *storage) mongoClient(ctx context.Context, cfg config.Config) (*mongostore.Client, error) {
	if s.mongo != nil {
		return s.mongo, nil
	}
	client, err := mongostore.New(ctx, mongostore.Options{
		URI:            cfg.MongoURI,
		Database:       cfg.MongoDB,
		AppName:        serviceName,
		IdempotencyTTL: cfg.IdempotencyTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	s.mongo = client
	s.closers = append(s.closers, client.Close)
	s.checks["mongo"] = client.Ping
	return client, nil
}

func openIdempotency(ctx context.Context, cfg config.Config, st *storage) (middleware.IdempotencyStore, error) {
	switch cfg.IdempotencyDriver {
	case config.DriverRedis:
		client, err := rediscache.NewClient(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, func(context.Context) error { return client.Close() })
		st.checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		return rediscache.NewIdempotencyStore(client, cfg.IdempotencyTTL), nil
	case config.DriverMongo:
		client, err := st.mongoClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := client.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		return mongostore.NewIdempotencyStore(client.DB), nil
	default:
		return memory.NewIdempotencyStore(cfg.IdempotencyTTL), nil
	}
}

func shutdownTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}
