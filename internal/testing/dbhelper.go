package testing

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/shp2pg/internal/db"
	"github.com/vvka-141/shp2pg/internal/files/scanner"
	"github.com/vvka-141/shp2pg/internal/loader"
	"github.com/vvka-141/shp2pg/internal/logging"
	"github.com/vvka-141/shp2pg/internal/metrics"
	"github.com/vvka-141/shp2pg/internal/postgis"
	"github.com/vvka-141/shp2pg/internal/services"
	"github.com/vvka-141/shp2pg/internal/shapefile"
	"github.com/vvka-141/shp2pg/internal/testinfra"
	"github.com/vvka-141/shp2pg/pkg/shp2pg"
)

var (
	testContainerOnce sync.Once
	testContainerConn string
	testContainerErr  error
)

func getOrStartTestContainer() (string, error) {
	testContainerOnce.Do(func() {
		container, err := testinfra.StartPostGIS(context.Background())
		if err != nil {
			testContainerErr = err
			return
		}
		testContainerConn = container.ConnString
	})
	return testContainerConn, testContainerErr
}

// GetTestConnectionString returns a connection string to a server with PostGIS available.
// Priority: SHP2PG_TEST_CONN env var > auto-started testcontainer > skip test.
func GetTestConnectionString(t *testing.T) string {
	t.Helper()

	if connString := os.Getenv("SHP2PG_TEST_CONN"); connString != "" {
		return connString
	}

	connString, err := getOrStartTestContainer()
	if err != nil {
		t.Skipf("SHP2PG_TEST_CONN not set and Docker unavailable: %v", err)
	}
	return connString
}

// SkipIfShort skips the test if running in short mode (-short flag).
func SkipIfShort(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// RequireDatabase combines SkipIfShort and GetTestConnectionString.
func RequireDatabase(t *testing.T) string {
	t.Helper()

	SkipIfShort(t)
	return GetTestConnectionString(t)
}

// CreateTestDB creates a fresh database with the postgis extension and drops
// it when the test completes. It returns the database's ConnectionConfig.
func CreateTestDB(t *testing.T, connString string) *shp2pg.ConnectionConfig {
	t.Helper()

	cfg := CreateEmptyTestDB(t, connString)
	pool := GetTestPool(t, cfg)
	if _, err := pool.Exec(context.Background(), "CREATE EXTENSION IF NOT EXISTS postgis"); err != nil {
		t.Fatalf("Failed to create postgis extension in %s: %v", cfg.Database, err)
	}
	return cfg
}

// CreateEmptyTestDB creates a fresh database without PostGIS and drops it
// when the test completes.
func CreateEmptyTestDB(t *testing.T, connString string) *shp2pg.ConnectionConfig {
	t.Helper()
	ctx := context.Background()

	name := "shp2pg_test_" + uuid.NewString()[:8]

	admin, err := pgxpool.New(ctx, connString)
	if err != nil {
		t.Fatalf("Failed to connect for test DB creation: %v", err)
	}
	defer admin.Close()

	if _, err := admin.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{name}.Sanitize()); err != nil {
		t.Fatalf("Failed to create test database %s: %v", name, err)
	}
	t.Cleanup(func() { CleanupTestDB(t, connString, name) })

	cfg, err := db.ParseConnectionString(connString)
	if err != nil {
		t.Fatalf("Failed to parse connection string: %v", err)
	}
	cfg.Database = name
	return cfg
}

// CleanupTestDB drops the test database, terminating its sessions first.
// Safe to call multiple times.
func CleanupTestDB(t *testing.T, connString, dbName string) {
	t.Helper()
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		t.Logf("Warning: Failed to connect for cleanup: %v", err)
		return
	}
	defer pool.Close()

	_, err = pool.Exec(ctx, `
		SELECT pg_terminate_backend(pid)
		FROM pg_stat_activity
		WHERE datname = $1 AND pid <> pg_backend_pid()
	`, dbName)
	if err != nil {
		t.Logf("Warning: Failed to terminate connections to %s: %v", dbName, err)
	}

	if _, err := pool.Exec(ctx, "DROP DATABASE IF EXISTS "+pgx.Identifier{dbName}.Sanitize()); err != nil {
		t.Logf("Warning: Failed to drop database %s: %v", dbName, err)
	}
}

// GetTestPool opens a pool on cfg that is closed when the test completes.
func GetTestPool(t *testing.T, cfg *shp2pg.ConnectionConfig) *pgxpool.Pool {
	t.Helper()

	pool, err := pgxpool.New(context.Background(), db.BuildConnectionString(cfg))
	if err != nil {
		t.Fatalf("Failed to create connection pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

// NewTestBatchRunner wires the production components the way the CLI does,
// with a null logger unless one is given.
func NewTestBatchRunner(t *testing.T, opts shp2pg.LoadOptions, logger shp2pg.Logger) *services.BatchService {
	t.Helper()

	if logger == nil {
		logger = logging.NewNullLogger()
	}
	recorder := metrics.NewRecorder()
	return services.NewBatchService(
		scanner.NewScanner(),
		loader.NewLoader(shapefile.NewReader(logger), postgis.NewWriter(opts, logger), opts, logger, recorder),
		db.NewDatabaseProvider(logger),
		logger,
		recorder,
	)
}

// CountRows returns the number of rows in schema.table.
func CountRows(t *testing.T, pool *pgxpool.Pool, schema, table string) int64 {
	t.Helper()

	var n int64
	query := fmt.Sprintf("SELECT count(*) FROM %s", pgx.Identifier{schema, table}.Sanitize())
	if err := pool.QueryRow(context.Background(), query).Scan(&n); err != nil {
		t.Fatalf("count %s.%s: %v", schema, table, err)
	}
	return n
}
