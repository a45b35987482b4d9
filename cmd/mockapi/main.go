package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/utafrali/storefront/internal/auth"
	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/mockapi"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/logger"
)

func main() {
	cfg, err := config.LoadMockAPI()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New("mockapi", cfg.LogLevel)
	log.Info("starting mock backend",
		slog.String("environment", cfg.Environment),
		slog.Int("http_port", cfg.HTTPPort),
		slog.String("base_path", cfg.BasePath),
		slog.Int("seed_products", cfg.SeedProducts),
		slog.Bool("require_auth", cfg.RequireAuth),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("mock backend error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("mock backend stopped")
}

func run(ctx context.Context, cfg *config.MockAPIConfig, log *slog.Logger) error {
	handler := mockapi.NewHandler(mockapi.SeedCatalog(cfg.SeedProducts), mockapi.NewDocuments(), log)

	routerCfg := mockapi.RouterConfig{BasePath: cfg.BasePath}
	if cfg.RequireAuth {
		routerCfg.Validate = auth.NewJWTManager(cfg.AuthTokenSecret, time.Hour).Subject
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      mockapi.NewRouter(handler, health.NewHandler(), routerCfg, log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting HTTP server", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
