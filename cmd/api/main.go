package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"etsy-receipts/internal/application"
	"etsy-receipts/internal/config"
	apiinfra "etsy-receipts/internal/infrastructure/api"
	etsyinfra "etsy-receipts/internal/infrastructure/etsy"
	"etsy-receipts/internal/infrastructure/metrics"
	"etsy-receipts/internal/infrastructure/repository"
	"etsy-receipts/internal/ports"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	// Initialize logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	settings, err := config.Load(logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}
	logger = logger.Level(settings.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize the record store
	store, closeStore, err := openRecordStore(ctx, settings, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", settings.RecordBackend).Msg("Failed to open config record store")
	}
	defer closeStore()

	records, err := application.NewRecordService(ctx, store, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("path", settings.ConfigPath).Msg("Failed to load config record")
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Etsy adapter
	etsyClient := etsyinfra.NewClient(etsyinfra.Options{
		AuthURL:    settings.EtsyAuthURL,
		TokenURL:   settings.EtsyTokenURL,
		APIBaseURL: settings.EtsyAPIBaseURL,
		HTTPClient: &http.Client{Timeout: settings.UpstreamTimeout},
		Metrics:    m,
		Logger:     logger,
	})

	// Initialize application services
	oauthService := application.NewOAuthService(records, etsyClient, m, logger)
	receiptService := application.NewReceiptService(records, etsyClient, logger)

	router := apiinfra.NewRouter(apiinfra.RouterOptions{
		Handler:        apiinfra.NewHandler(oauthService, receiptService, logger),
		Gatherer:       reg,
		AllowedOrigins: settings.CORSAllowedOrigins,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:              ":" + settings.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Server shutdown failed")
		}
	}()

	logger.Info().
		Str("port", settings.Port).
		Str("backend", settings.RecordBackend).
		Str("flow", oauthService.State().String()).
		Msg("Starting API server")
	logger.Info().Msg("Open http://localhost:" + settings.Port + "/ to connect your Etsy shop")
	logger.Info().Msg("Swagger documentation available at http://localhost:" + settings.Port + "/swagger/index.html")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
	logger.Info().Msg("Server stopped")
}

// openRecordStore returns the configured backend. Redis and Mongo are seeded from the
// config file the first time they are used.
func openRecordStore(ctx context.Context, settings *config.Settings, logger zerolog.Logger) (ports.RecordStore, func(), error) {
	fileStore := repository.NewFileRecordRepository(settings.ConfigPath)

	var (
		store   ports.RecordStore
		closeFn func()
	)

	switch settings.RecordBackend {
	case config.BackendFile:
		return fileStore, func() {}, nil

	case config.BackendRedis:
		opts, err := redis.ParseURL(settings.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		store = repository.NewRedisRecordRepository(client, settings.RedisKey)
		closeFn = func() { _ = client.Close() }

	case config.BackendMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(settings.MongoURI))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		store = repository.NewMongoRecordRepository(client.Database(settings.MongoDatabase))
		closeFn = func() { _ = client.Disconnect(context.Background()) }

	default:
		return nil, nil, fmt.Errorf("unknown record backend %q", settings.RecordBackend)
	}

	seeded, err := repository.SeedRecordStore(ctx, store, fileStore)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	if seeded {
		logger.Info().
			Str("backend", settings.RecordBackend).
			Str("path", settings.ConfigPath).
			Msg("Seeded config record from file")
	}
	return store, closeFn, nil
}
