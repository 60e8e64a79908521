package db

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/shp2pg/internal/logging"
	"github.com/vvka-141/shp2pg/pkg/shp2pg"
)

// PoolDatabase adapts *pgxpool.Pool to shp2pg.Database.
//
// Thread-Safety: Safe for concurrent use (pgxpool.Pool is thread-safe).
type PoolDatabase struct {
	pool      *pgxpool.Pool
	connector shp2pg.Connector
	closeOnce sync.Once
}

// NewPoolDatabase wraps pool. If connector implements io.Closer it is closed
// after the pool, releasing dialers that outlive it.
func NewPoolDatabase(pool *pgxpool.Pool, connector shp2pg.Connector) *PoolDatabase {
	return &PoolDatabase{pool: pool, connector: connector}
}

// Ping performs a round trip on any pooled connection.
func (d *PoolDatabase) Ping(ctx context.Context) error {
	return d.pool.Ping(ctx)
}

// Acquire obtains a dedicated session. *pgxpool.Conn satisfies PooledConnection.
func (d *PoolDatabase) Acquire(ctx context.Context) (shp2pg.PooledConnection, error) {
	conn, err := d.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Close closes the pool, then the connector if it holds resources.
func (d *PoolDatabase) Close() {
	d.closeOnce.Do(func() {
		d.pool.Close()
		if closer, ok := d.connector.(io.Closer); ok {
			_ = closer.Close()
		}
	})
}

// NewDatabaseProvider returns the shp2pg.DatabaseProvider the batch runner
// opens its run-scoped pool with. logger may be nil.
func NewDatabaseProvider(logger shp2pg.Logger) shp2pg.DatabaseProvider {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return func(ctx context.Context, config *shp2pg.ConnectionConfig) (shp2pg.Database, error) {
		if config == nil {
			return nil, fmt.Errorf("connection config is required: %w", shp2pg.ErrInvalidConfig)
		}
		logger.Verbose("Connecting to %s:%d/%s as %s (%s)", config.Host, config.Port, config.Database, config.Username, config.AuthMethod)

		connector, err := NewConnector(config, logger)
		if err != nil {
			return nil, err
		}
		pool, err := connector.Connect(ctx)
		if err != nil {
			if closer, ok := connector.(io.Closer); ok {
				_ = closer.Close()
			}
			return nil, err
		}
		return NewPoolDatabase(pool, connector), nil
	}
}

var _ shp2pg.Database = (*PoolDatabase)(nil)
