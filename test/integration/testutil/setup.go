//go:build integration

package testutil

import (
	"context"
	"fmt"
	"log/slog"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/warcamp/platform/internal/app"
	"github.com/warcamp/platform/internal/auth"
	"github.com/warcamp/platform/internal/guard"
	"github.com/warcamp/platform/internal/infra"
	"github.com/warcamp/platform/internal/repository"
)

const (
	TestSessionSecret = "integration-test-secret"
	TestCookieName    = "warcamp_session"
	TestDBName        = "warcamp_test"
)

// TestEnv holds all resources for an integration test.
type TestEnv struct {
	Server *httptest.Server
	Pool   *pgxpool.Pool
	Repos  repository.Set
	Config *infra.Config
	t      *testing.T
}

var (
	sharedPool *pgxpool.Pool
	poolOnce   sync.Once
	poolErr    error
)

func serverDSN(database string) string {
	host := envOr("TEST_PGHOST", "localhost")
	port := envOr("TEST_PGPORT", "5435")
	return fmt.Sprintf("postgres://warcamp:warcamp@%s:%s/%s?sslmode=disable", host, port, database)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func ensureTestDB() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Connect to the main database to create the test database
	bPool, err := pgxpool.New(ctx, serverDSN("warcamp"))
	if err != nil {
		return fmt.Errorf("connect bootstrap db: %w", err)
	}
	defer bPool.Close()

	var exists bool
	err = bPool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", TestDBName).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check db exists: %w", err)
	}

	if !exists {
		if _, err := bPool.Exec(ctx, "CREATE DATABASE "+TestDBName); err != nil {
			return fmt.Errorf("create test db: %w", err)
		}
	}
	return nil
}

func getSharedPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	poolOnce.Do(func() {
		if err := ensureTestDB(); err != nil {
			poolErr = err
			return
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		if err := infra.RunMigrations(serverDSN(TestDBName), logger); err != nil {
			poolErr = fmt.Errorf("run migrations: %w", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		poolCfg, err := pgxpool.ParseConfig(serverDSN(TestDBName))
		if err != nil {
			poolErr = fmt.Errorf("parse pool config: %w", err)
			return
		}
		poolCfg.MaxConns = 10
		poolCfg.MinConns = 1

		sharedPool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			poolErr = fmt.Errorf("create pool: %w", err)
		}
	})

	if poolErr != nil {
		t.Fatalf("failed to initialize test pool: %v", poolErr)
	}
	return sharedPool
}

// NewTestEnv creates a test environment with an httptest.Server backed by the real router and test DB.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	pool := getSharedPool(t)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	cfg := &infra.Config{
		SessionSecret:      TestSessionSecret,
		SessionExpiry:      time.Hour,
		SessionCookie:      TestCookieName,
		CORSAllowedOrigins: "*",
		LoginRateLimit:     1000,
		UploadDir:          t.TempDir(),
		UploadURLPrefix:    "/uploads",
		MaxImageBytes:      1 << 20,
		KafkaTopicPrefix:   "warcamp",
		OutboxBatchSize:    100,
		OutboxPollInterval: 10 * time.Millisecond,
	}
	files, err := infra.NewFileStore(cfg.UploadDir, cfg.UploadURLPrefix, cfg.MaxImageBytes)
	if err != nil {
		t.Fatalf("file store: %v", err)
	}

	repos := repository.NewPgSet()
	router := app.NewRouter(app.RouterDeps{
		DB:           pool,
		Tx:           repository.NewPgTransactor(pool),
		Repos:        repos,
		Health:       pool,
		Files:        files,
		JWTMgr:       auth.NewJWTManager(cfg.SessionSecret, cfg.SessionExpiry),
		Config:       cfg,
		Logger:       logger,
		LoginLimiter: guard.NewRateLimiter(cfg.LoginRateLimit, time.Minute),
	})

	server := httptest.NewServer(router)

	env := &TestEnv{
		Server: server,
		Pool:   pool,
		Repos:  repos,
		Config: cfg,
		t:      t,
	}

	t.Cleanup(func() {
		server.Close()
		env.CleanAll()
	})

	// Clean before test to ensure isolation
	env.CleanAll()

	return env
}
