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

	"github.com/warcamp/platform/internal/app"
	"github.com/warcamp/platform/internal/auth"
	"github.com/warcamp/platform/internal/guard"
	"github.com/warcamp/platform/internal/infra"
	"github.com/warcamp/platform/internal/repository"
	"golang.org/x/sync/errgroup"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Connect to Postgres
	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to postgres")

	if cfg.AutoMigrate {
		if err := infra.RunMigrations(cfg.DSN(), logger); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	files, err := infra.NewFileStore(cfg.UploadDir, cfg.UploadURLPrefix, cfg.MaxImageBytes)
	if err != nil {
		return err
	}

	limiter := guard.NewRateLimiter(cfg.LoginRateLimit, time.Minute)
	router := app.NewRouter(app.RouterDeps{
		DB:           pool,
		Tx:           repository.NewPgTransactor(pool),
		Repos:        repository.NewPgSet(),
		Health:       pool,
		Files:        files,
		JWTMgr:       auth.NewJWTManager(cfg.SessionSecret, cfg.SessionExpiry),
		Config:       cfg,
		Logger:       logger,
		LoginLimiter: limiter,
	})

	addr := fmt.Sprintf(":%d", cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("api server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				limiter.Sweep()
			}
		}
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped gracefully")
	return nil
}
