//go:build integration

package testutil

import (
	"context"
	"fmt"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meowrun/platform/internal/app"
	"github.com/meowrun/platform/internal/auth"
	"github.com/meowrun/platform/internal/domain"
	"github.com/meowrun/platform/internal/guard"
	"github.com/meowrun/platform/internal/infra"
)

const (
	TestJWTSecret = "integration-test-secret"
	TestDBHost    = "localhost"
	TestDBPort    = 5434
	TestDBUser    = "meowrun"
	TestDBPass    = "meowrun"
	TestDBName    = "meowrun_test"

	// DefaultDevice is the fingerprint header value helpers send unless a
	// test overrides env.Device.
	DefaultDevice = "itest-device-a"
)

// TestEnv holds all resources for an integration test.
type TestEnv struct {
	Server *httptest.Server
	Pool   *pgxpool.Pool
	JWTMgr *auth.JWTManager
	Device string
	t      *testing.T
}

var (
	sharedPool *pgxpool.Pool
	poolOnce   sync.Once
	poolErr    error
)

func testDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		TestDBUser, TestDBPass, TestDBHost, TestDBPort, TestDBName)
}

func bootstrapDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		TestDBUser, TestDBPass, TestDBHost, TestDBPort, "meowrun")
}

func ensureTestDB() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	bPool, err := pgxpool.New(ctx, bootstrapDSN())
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
		_, err = bPool.Exec(ctx, fmt.Sprintf("CREATE DATABASE %s", TestDBName))
		if err != nil {
			return fmt.Errorf("create test db: %w", err)
		}
	}

	return nil
}

func runMigrations() error {
	migratePath := fmt.Sprintf("file://%s/db/migrations", findProjectRoot())

	m, err := newMigrate(migratePath, testDSN())
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err.Error() != "no change" {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

func findProjectRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "."
		}
		dir = parent
	}
}

func getSharedPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	poolOnce.Do(func() {
		if err := ensureTestDB(); err != nil {
			poolErr = err
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		poolCfg, err := pgxpool.ParseConfig(testDSN())
		if err != nil {
			poolErr = fmt.Errorf("parse pool config: %w", err)
			return
		}
		poolCfg.MaxConns = 10
		poolCfg.MinConns = 1

		sharedPool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			poolErr = fmt.Errorf("create pool: %w", err)
			return
		}

		if err := runMigrations(); err != nil {
			poolErr = fmt.Errorf("run migrations: %w", err)
			sharedPool.Close()
			sharedPool = nil
			return
		}
	})

	if poolErr != nil {
		t.Fatalf("failed to initialize test pool: %v", poolErr)
	}
	return sharedPool
}

// testEconomy returns the production economy tables; tests assert against
// these numbers.
func testEconomy() *infra.Config {
	return &infra.Config{
		CoinsPerRM:         1000,
		MinWithdrawCents:   1000,
		DailyAdLimit:       50,
		CoinPerAd:          35,
		AdCooldown:         30 * time.Second,
		DailyTreatPeriod:   24 * time.Hour,
		DailyTreatGems:     10,
		DailyTreatActivity: 20,
	}
}

// Economy returns the default economy tables used by NewTestEnv. Tests that
// need a variant copy it, adjust, and pass it to NewTestEnvEconomy.
func Economy() domain.EconomyConfig {
	return testEconomy().Economy()
}

// NewTestEnv creates a test environment with an httptest.Server backed by the
// real router and test DB.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	return NewTestEnvEconomy(t, testEconomy().Economy())
}

// NewTestEnvEconomy is NewTestEnv with custom economy tables, for tests that
// need to tighten a cap or drop a cooldown.
func NewTestEnvEconomy(t *testing.T, economy domain.EconomyConfig) *TestEnv {
	t.Helper()

	pool := getSharedPool(t)

	jwtMgr := auth.NewJWTManager(TestJWTSecret, 24*time.Hour, 8*time.Hour)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	// Generous limits so tests never trip throttling unless they mean to.
	limits := &app.RateLimits{
		Global:   guard.NewRateLimiter(100000, time.Minute),
		Auth:     guard.NewRateLimiter(100000, time.Minute),
		Ad:       guard.NewRateLimiter(100000, time.Minute),
		Withdraw: guard.NewRateLimiter(100000, time.Minute),
	}

	router := app.NewRouter(app.RouterDeps{
		Pool:               pool,
		JWTMgr:             jwtMgr,
		Logger:             logger,
		Economy:            economy,
		CORSAllowedOrigins: "*",
		RateLimits:         limits,
	})

	server := httptest.NewServer(router)

	env := &TestEnv{
		Server: server,
		Pool:   pool,
		JWTMgr: jwtMgr,
		Device: DefaultDevice,
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
