package testutil

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dom/personal-services-api/internal/api"
	"github.com/dom/personal-services-api/internal/config"
	"github.com/dom/personal-services-api/internal/metrics"
	"github.com/dom/personal-services-api/internal/ratelimit"
	"github.com/dom/personal-services-api/internal/repository"
	repoPostgres "github.com/dom/personal-services-api/internal/repository/postgres"
	"github.com/dom/personal-services-api/internal/service"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB manages a testcontainers PostgreSQL instance
type TestDB struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
}

// NewTestDB creates a new PostgreSQL testcontainer, applies the migrations
// and returns a connection
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:15-alpine",
		tcPostgres.WithDatabase("test_personal_api"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, err := gorm.Open(gormPostgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	if err := repoPostgres.Migrate(ctx, db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	testDB := &TestDB{
		Container: container,
		DB:        db,
		DSN:       dsn,
	}

	t.Cleanup(func() {
		testDB.Cleanup()
	})

	return testDB
}

// Cleanup closes the pool and terminates the container
func (tdb *TestDB) Cleanup() {
	if tdb.DB != nil {
		_ = repoPostgres.Close(tdb.DB)
	}
	if tdb.Container != nil {
		_ = tdb.Container.Terminate(context.Background())
	}
}

// Truncate clears all tables for test isolation
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()

	tables := []string{
		"user_settings",
		"sessions",
		"users",
	}

	for _, table := range tables {
		if err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			t.Logf("warning: failed to truncate %s: %v", table, err)
		}
	}
}

// TestConfig returns a configuration suitable for testing. Limits are high
// enough that ordinary tests never trip them.
func TestConfig() *config.Config {
	return &config.Config{
		Port:               "0", // Random port
		Environment:        "test",
		LogLevel:           "error",
		CORSAllowedOrigins: []string{"http://localhost:5173"},

		SessionSecret:     "test-session-secret-key-for-testing-only",
		SessionCookieName: "sid",
		SessionMaxAge:     time.Hour,
		BcryptCost:        bcrypt.MinCost,

		RateLimitMax:      10000,
		LoginRateLimitMax: 10000,
		RateLimitWindow:   time.Minute,
		RateLimitStore:    config.RateLimitStoreMemory,
	}
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server   *httptest.Server
	DB       *TestDB
	Repos    *repository.Repositories
	Services *service.Services
	Limiters *api.Limiters
	Metrics  *metrics.Metrics
	Config   *config.Config
}

// NewTestServer creates a complete test server with all dependencies
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	return NewTestServerWithConfig(t, TestConfig())
}

// NewTestServerWithConfig is NewTestServer with a caller-supplied config
func NewTestServerWithConfig(t *testing.T, cfg *config.Config) *TestServer {
	t.Helper()

	testDB := NewTestDB(t)

	repos := repoPostgres.NewRepositories(testDB.DB)
	services, err := service.NewServices(repos, cfg)
	if err != nil {
		t.Fatalf("failed to build services: %v", err)
	}

	store := ratelimit.NewMemoryStore(time.Minute)
	t.Cleanup(store.Stop)
	limiters := api.NewLimiters(store, cfg)

	sqlDB, err := testDB.DB.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}

	m := metrics.New()
	router := api.NewRouter(services, limiters, sqlDB, m, cfg)

	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:   server,
		DB:       testDB,
		Repos:    repos,
		Services: services,
		Limiters: limiters,
		Metrics:  m,
		Config:   cfg,
	}

	t.Cleanup(func() {
		server.Close()
	})

	return ts
}

// BaseURL returns the test server's base URL
func (ts *TestServer) BaseURL() string {
	return ts.Server.URL
}

// APIURL returns the full API URL for a given path
func (ts *TestServer) APIURL(path string) string {
	return fmt.Sprintf("%s/api%s", ts.Server.URL, path)
}
