package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/api"
	"github.com/utafrali/storefront/internal/auth"
	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/kvstore"
	"github.com/utafrali/storefront/internal/metrics"
	"github.com/utafrali/storefront/internal/search"
	"github.com/utafrali/storefront/internal/syncer"
	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/httpclient"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/middleware"
	"github.com/utafrali/storefront/pkg/tracing"
)

const serviceName = "storefront"

// App wires together all dependencies and runs the storefront engine daemon.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	engine    *Engine
	rdb       *redis.Client
	producer  *pkgkafka.Producer
	publisher *event.StorePublisher
	consumer  *pkgkafka.Consumer
	monitor   *health.Monitor

	httpServer     *http.Server
	shutdownTracer func(context.Context) error
	shutdownOnce   sync.Once
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize tracing.
	tracingCfg := tracing.DefaultConfig(serviceName)
	tracingCfg.Environment = cfg.Environment
	tracingCfg.OTLPEndpoint = cfg.OTelEndpoint
	tracingCfg.SampleRate = cfg.OTelSampleRate
	tracingCfg.Enabled = cfg.OTelEnabled
	shutdownTracer, err := tracing.InitTracer(ctx, tracingCfg)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Local persistence.
	backend, rdb, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("kv backend ready", slog.String("backend", cfg.KVBackend))

	// Backend API client behind retry and circuit breaker.
	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.APITimeout
	httpCfg.MaxRetries = cfg.APIRetries

	session := auth.NewSession(auth.NewJWTManager(cfg.AuthTokenSecret, cfg.AuthTokenTTL))
	client := api.NewWithBreaker(cfg.APIBaseURL, httpCfg, session, logger)

	searchCfg := search.DefaultConfig()
	searchCfg.PageSize = cfg.SearchPageSize
	searchCfg.Debounce = cfg.SearchDebounce

	engine := NewEngine(backend, client, session, EngineConfig{
		Search: searchCfg,
		Sync:   syncer.Config{PushInterval: cfg.SyncPushInterval},
	}, logger)

	a := &App{
		cfg:            cfg,
		logger:         logger,
		engine:         engine,
		rdb:            rdb,
		monitor:        health.NewMonitor("storefront-api", client.Health, cfg.HealthInterval, logger),
		shutdownTracer: shutdownTracer,
	}

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("backend", a.monitor.Checker())
	if rdb != nil {
		healthHandler.Register("redis", database.RedisChecker(rdb))
	}

	// Kafka change events and remote sync notifications.
	if cfg.KafkaEnabled {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		a.publisher = event.NewStorePublisher(a.producer, engine.Syncer.UserID, logger)
		a.consumer = pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
			Brokers:  cfg.KafkaBrokers,
			GroupID:  cfg.KafkaGroupID,
			Topic:    event.TopicUserSynced,
			MinBytes: 1,
			MaxBytes: 1 << 20,
		}, event.UserSyncedHandler(engine.Syncer, engine.Syncer.UserID, logger), logger)
		healthHandler.Register("kafka", a.producer.Ping)
		logger.Info("kafka initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.MetricsPort),
		Handler:      newRouter(healthHandler, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return a, nil
}

// Engine returns the session context.
func (a *App) Engine() *Engine {
	return a.engine
}

// openBackend selects the KV backend. The redis client is nil for the
// memory backend.
func openBackend(ctx context.Context, cfg *config.Config) (kvstore.Backend, *redis.Client, error) {
	switch cfg.KVBackend {
	case config.KVRedis:
		redisCfg := database.DefaultRedisConfig()
		redisCfg.Addr = cfg.RedisAddr
		redisCfg.Password = cfg.RedisPass
		redisCfg.DB = cfg.RedisDB

		rdb, err := database.NewRedisClient(ctx, redisCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		return kvstore.NewRedisBackend(rdb, cfg.KVKeyPrefix+":", cfg.KVTTL), rdb, nil
	default:
		return kvstore.NewMemoryBackend(), nil, nil
	}
}

func newRouter(healthHandler *health.Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.PrometheusMetrics(serviceName))

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", metrics.Handler())

	return r
}

// Run rehydrates the stores, signs in the configured user and runs the
// background loops until ctx is canceled.
func (a *App) Run(ctx context.Context) error {
	a.engine.Start(ctx)

	if a.cfg.SyncUserID != "" {
		user := auth.User{ID: a.cfg.SyncUserID}
		if err := a.engine.SignIn(ctx, user); err != nil {
			// Still signed in; pushes resume once the backend is reachable.
			a.logger.Warn("initial pull failed",
				slog.String("user_id", user.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.monitor.OnChange(func(s health.Status) {
		if s != health.StatusUp {
			return
		}
		if _, ok := a.engine.Syncer.UserID(); !ok {
			return
		}
		if err := a.engine.Syncer.Flush(ctx); err != nil {
			a.logger.Warn("flush after reconnect failed", slog.String("error", err.Error()))
		}
	})

	var wg sync.WaitGroup
	errCh := make(chan error, 1)
	goRun := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				a.logger.Error("background task failed",
					slog.String("task", name),
					slog.String("error", err.Error()),
				)
			}
		}()
	}

	goRun("syncer", a.engine.Syncer.Run)
	goRun("health-monitor", func(ctx context.Context) error {
		a.monitor.Run(ctx)
		return nil
	})
	if a.publisher != nil {
		stop := a.publisher.Watch(a.engine.Cart, a.engine.Wishlist)
		defer stop()
		goRun("event-publisher", a.publisher.Run)
	}
	if a.consumer != nil {
		goRun("user-synced-consumer", a.consumer.Start)
	}

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case runErr = <-errCh:
	}

	cancel()
	wg.Wait()
	if err := a.Shutdown(); err != nil {
		return err
	}
	return runErr
}

// Shutdown gracefully stops all components. Pending pushes are flushed
// before the backend client goes away.
func (a *App) Shutdown() error {
	var err error
	a.shutdownOnce.Do(func() {
		err = a.shutdown()
	})
	return err
}

func (a *App) shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if _, ok := a.engine.Syncer.UserID(); ok {
		if err := a.engine.Syncer.Flush(shutdownCtx); err != nil {
			a.logger.Error("final sync flush failed", slog.String("error", err.Error()))
		}
	}

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if a.consumer != nil {
		if err := a.consumer.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
		}
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

	if err := a.shutdownTracer(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
