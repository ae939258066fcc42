package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/hatbazar/storefront/internal/cart"
	"github.com/hatbazar/storefront/internal/catalog"
	"github.com/hatbazar/storefront/internal/config"
	"github.com/hatbazar/storefront/internal/event"
	handler "github.com/hatbazar/storefront/internal/handler/http"
	"github.com/hatbazar/storefront/internal/storage"
	memorystore "github.com/hatbazar/storefront/internal/storage/memory"
	pgstore "github.com/hatbazar/storefront/internal/storage/postgres"
	redisstore "github.com/hatbazar/storefront/internal/storage/redis"
	"github.com/hatbazar/storefront/pkg/health"
	"github.com/hatbazar/storefront/pkg/httpclient"
	pkgkafka "github.com/hatbazar/storefront/pkg/kafka"
	"github.com/hatbazar/storefront/pkg/tracing"
)

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg             *config.Config
	logger          *slog.Logger
	rdb             *redis.Client
	pool            *pgxpool.Pool
	producer        *pkgkafka.Producer
	httpServer      *http.Server
	tracingShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}

	// Tracing.
	tracingShutdown, err := tracing.Init(ctx, tracing.Config{
		ServiceName:  "storefront",
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SampleRate:   cfg.TraceSampleRate,
		Enabled:      cfg.TracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	a.tracingShutdown = tracingShutdown

	// Durable cart storage.
	store, err := a.initStorage(ctx)
	if err != nil {
		return nil, err
	}

	// Catalog client with retries and a circuit breaker.
	httpClient := httpclient.New(httpclient.DefaultConfig())
	cbClient := httpclient.NewCircuitBreakerClient(
		httpClient, httpclient.DefaultCircuitBreakerConfig("catalog"), logger)
	catalogClient := catalog.NewClient(cfg.CatalogBaseURL, cbClient, logger)

	// Cart manager with Kafka cart events when enabled.
	carts := cart.NewManager(store, logger)
	if cfg.KafkaEnabled {
		kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
		a.producer = pkgkafka.NewProducer(kafkaCfg, logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

		eventProducer := event.NewProducer(a.producer, logger)
		carts.Subscribe(eventProducer.CartSubscriber())
	}

	// Health checks.
	healthHandler := health.NewHandler()
	a.registerHealthChecks(healthHandler)

	// HTTP router.
	router := handler.NewRouter(carts, catalogClient, cfg.PublicBaseURL, healthHandler, logger)

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return a, nil
}

// initStorage connects the configured storage backend.
func (a *App) initStorage(ctx context.Context) (storage.Storage, error) {
	switch a.cfg.StorageBackend {
	case config.BackendRedis:
		a.rdb = redis.NewClient(&redis.Options{
			Addr:     a.cfg.RedisAddr,
			Password: a.cfg.RedisPass,
			DB:       a.cfg.RedisDB,
		})
		if err := a.rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.logger.Info("connected to Redis",
			slog.String("addr", a.cfg.RedisAddr),
			slog.Int("db", a.cfg.RedisDB),
		)
		ttl := time.Duration(a.cfg.CartTTL) * time.Hour
		return redisstore.New(a.rdb, ttl), nil

	case config.BackendPostgres:
		pool, err := pgxpool.New(ctx, a.cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("create postgres pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		a.pool = pool
		a.logger.Info("connected to Postgres")
		return pgstore.New(pool), nil

	case config.BackendMemory:
		a.logger.Warn("using in-memory cart storage; carts do not survive restarts")
		return memorystore.New(), nil

	default:
		return nil, fmt.Errorf("unknown storage backend: %q", a.cfg.StorageBackend)
	}
}

func (a *App) registerHealthChecks(h *health.Handler) {
	if a.rdb != nil {
		h.Register("redis", func(ctx context.Context) error {
			return a.rdb.Ping(ctx).Err()
		})
	}
	if a.pool != nil {
		h.Register("postgres", func(ctx context.Context) error {
			return a.pool.Ping(ctx)
		})
	}
	if a.producer != nil {
		h.Register("kafka", func(ctx context.Context) error {
			return a.producer.Ping(ctx)
		})
	}
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}

	if a.pool != nil {
		a.pool.Close()
	}

	if a.tracingShutdown != nil {
		if err := a.tracingShutdown(shutdownCtx); err != nil {
			a.logger.Error("tracing shutdown error", slog.String("error", err.Error()))
		}
	}

	a.logger.Info("application shutdown complete")
	return nil
}
