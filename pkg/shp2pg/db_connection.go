package shp2pg

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBConnection is the single-session surface the loader and writer need.
// *pgxpool.Conn satisfies it directly.
type DBConnection interface {
	// Exec executes a statement without returning any rows.
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)

	// QueryRow executes a query that is expected to return at most one row.
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row

	// Begin starts a transaction on this session.
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PooledConnection represents a connection acquired from a pool.
// The caller must call Release() when done to return it to the pool.
type PooledConnection interface {
	DBConnection

	// Release returns the connection to the pool.
	// After calling Release, the connection should not be used.
	Release()
}

// Database is the run-scoped handle owned by the batch runner.
//
// Thread-Safety: implementations must allow concurrent Acquire calls; each
// acquired PooledConnection is used by one goroutine at a time.
type Database interface {
	// Ping performs a no-op round trip.
	Ping(ctx context.Context) error

	// Acquire obtains a dedicated session.
	Acquire(ctx context.Context) (PooledConnection, error)

	// Close releases every connection. Safe to call more than once.
	Close()
}

// DatabaseProvider opens the run-scoped Database for the given connection parameters.
type DatabaseProvider func(ctx context.Context, config *ConnectionConfig) (Database, error)
