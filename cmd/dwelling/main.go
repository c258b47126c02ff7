package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"dwelling/internal/app/commands"
	availabilityapp "dwelling/internal/app/handlers/availability"
	cardsapp "dwelling/internal/app/handlers/cards"
	listingsapp "dwelling/internal/app/handlers/listings"
	reservationsapp "dwelling/internal/app/handlers/reservations"
	"dwelling/internal/app/middleware"
	"dwelling/internal/app/outbox"
	"dwelling/internal/app/policies"
	"dwelling/internal/app/queries"
	authsvc "dwelling/internal/app/services/auth"
	domainpricing "dwelling/internal/domain/pricing"
	domainreservation "dwelling/internal/domain/reservation"
	"dwelling/internal/infra/broker/kafka"
	"dwelling/internal/infra/config"
	ginserver "dwelling/internal/infra/http/gin"
	"dwelling/internal/infra/obs"
	infraoutbox "dwelling/internal/infra/outbox"
	"dwelling/internal/infra/security"
	"dwelling/internal/infra/storage/s3"
)

const serviceName = "dwelling"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		obs.NewLogger(obs.LogOptions{Service: serviceName}).Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(obs.LogOptions{Development: cfg.Development(), Level: cfg.LogLevel, Service: serviceName})
	slog.SetDefault(logger)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("service stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("service stopped")
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	shutdownTracing, err := obs.InitTracing(ctx, cfg.OTLPEndpoint, serviceName)
	if err != nil {
		logger.Warn("tracing disabled", "error", err)
	}
	defer func() {
		sctx, cancel := shutdownTimeout()
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	st, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := shutdownTimeout()
		defer cancel()
		st.Close(sctx)
	}()

	idem, err := openIdempotency(ctx, cfg, st)
	if err != nil {
		return err
	}

	producer, closeProducer, err := openProducer(cfg, logger)
	if err != nil {
		return err
	}
	defer closeProducer()

	images := openImageStore(cfg, logger)
	metrics := obs.NewMetrics()
	auth := &authsvc.Service{
		Users:      st.users,
		Sessions:   st.sessions,
		Tokens:     security.SessionTokens{Prefix: "dws_"},
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}

	if cfg.FixturesPath != "" {
		to := fixtureTargets{Users: st.users, Listings: st.listings, Auth: auth}
		if err := loadFixtures(ctx, cfg.FixturesPath, to, cfg.Currency, logger); err != nil {
			logger.Warn("fixtures load failed", "error", err, "path", cfg.FixturesPath)
		}
	}

	wake := infraoutbox.NewWakeup()
	app := buildApplication(st, idem, images, auth, metrics, wake, logger)
	server := ginserver.NewServer(cfg, ginserver.Observability{
		Middleware: obs.Middleware{Logger: logger},
		Health:     obs.HealthHandlers{Checks: st.checks},
		Metrics:    metrics,
		Tracing:    cfg.OTLPEndpoint != "",
	}, app)

	worker := &infraoutbox.Worker{
		Store:       st.outbox,
		Producer:    producer,
		Logger:      logger,
		Interval:    cfg.OutboxPollInterval,
		TopicPrefix: cfg.KafkaTopicPrefix,
		Source:      "app://" + serviceName,
		Backoff:     cfg.RetryBackoff,
		OnPublish:   metrics.ObservePublish,
		Wakeup:      wake,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server starting", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := shutdownTimeout()
		defer cancel()
		return server.Shutdown(sctx)
	})
	g.Go(func() error {
		return worker.Run(gctx)
	})
	return g.Wait()
}

// buildApplication registers every handler on the buses and wraps commands
// in the pipeline. The outbox flush sits outside the transaction so the
// worker is woken only after commit.
func buildApplication(st *storage, idem middleware.IdempotencyStore, images policies.ImageStore, auth *authsvc.Service, metrics *obs.Metrics, wake *infraoutbox.Wakeup, logger *slog.Logger) ginserver.Handlers {
	pricing := domainpricing.NewCalculator()
	encoder := outbox.JSONEventEncoder{Source: serviceName, Propagate: obs.InjectHeaders}

	commandBus := commands.NewInMemoryBus()
	commands.Register(commandBus, &reservationsapp.CreateReservationHandler{
		UoWFactory: st.factory,
		Pricing:    pricing,
		Outbox:     st.outbox,
		Encoder:    encoder,
		Logger:     logger,
	})
	commands.Register(commandBus, &listingsapp.UploadListingImageHandler{
		Images:  images,
		Outbox:  st.outbox,
		Encoder: encoder,
		Logger:  logger,
	})
	commands.Register(commandBus, &cardsapp.CreateCardHandler{Sink: st.cards})

	queryBus := queries.NewInMemoryBus()
	queries.Register(queryBus, &listingsapp.GetListingHandler{UoWFactory: st.factory})
	queries.Register(queryBus, &listingsapp.QuoteStayHandler{UoWFactory: st.factory, Pricing: pricing})
	queries.Register(queryBus, &availabilityapp.GetDisabledDatesHandler{UoWFactory: st.factory})
	queries.Register(queryBus, &reservationsapp.ListReservationsHandler{UoWFactory: st.factory})

	validator := middleware.NewStructValidator()
	commandPipeline := middleware.ChainCommands(
		commandBus,
		middleware.Observe(metrics.CommandObserver(ginserver.ErrorCode)),
		middleware.Authorization(middleware.RequireRequester(domainreservation.ErrUnauthenticated)),
		middleware.Validation(validator),
		middleware.Idempotency(idem, nil, logger),
		middleware.OutboxFlush(infraoutbox.Notifying{Outbox: st.outbox, Wakeup: wake}),
		middleware.Transaction(st.factory, nil),
	)
	queryPipeline := middleware.ChainQueries(queryBus, middleware.QueryValidation(validator))
	logger.Info("buses ready", "commands", commandBus.Keys(), "queries", queryBus.Keys())

	return ginserver.Handlers{
		Reservations:   ginserver.ReservationHandler{Commands: commandPipeline},
		Listings:       ginserver.ListingHandler{Queries: queryPipeline, Commands: commandPipeline},
		Cards:          ginserver.CardHandler{Commands: commandPipeline},
		Sessions:       ginserver.SessionHandler{Sessions: auth},
		AuthMiddleware: ginserver.AuthMiddleware{Resolver: auth, Logger: logger}.Handle,
	}
}

func openProducer(cfg config.Config, logger *slog.Logger) (infraoutbox.Producer, func(), error) {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Warn("KAFKA_BROKERS not set, events are logged instead of published")
		return kafka.LogProducer{Logger: logger}, func() {}, nil
	}
	producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
	if err != nil {
		return nil, nil, err
	}
	return producer, func() {
		if err := producer.Close(); err != nil {
			logger.Warn("kafka producer close failed", "error", err)
		}
	}, nil
}

func openImageStore(cfg config.Config, logger *slog.Logger) policies.ImageStore {
	if cfg.S3Endpoint == "" {
		return s3.Unavailable{}
	}
	store, err := s3.NewImageStore(s3.Config{
		Endpoint:      cfg.S3Endpoint,
		UseSSL:        cfg.S3UseSSL,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		Bucket:        cfg.S3Bucket,
		PublicBaseURL: cfg.S3PublicEndpoint,
	}, logger)
	if err != nil {
		logger.Warn("image uploads disabled", "error", err)
		return s3.Unavailable{}
	}
	return store
}
