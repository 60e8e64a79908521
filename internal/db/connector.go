package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/shp2pg/internal/logging"
	"github.com/vvka-141/shp2pg/internal/retry"
	"github.com/vvka-141/shp2pg/pkg/shp2pg"
)

// Connection pool configuration constants
const (
	// DefaultMaxConns serves one worker plus the connection check session.
	DefaultMaxConns = shp2pg.DefaultWorkers + 1

	// DefaultMinConns keeps the check session warm for sequential loads.
	DefaultMinConns = 1

	// DefaultMaxConnIdleTime covers a long pause between two large files.
	DefaultMaxConnIdleTime = 30 * time.Minute

	// DefaultAppName is reported in pg_stat_activity.
	DefaultAppName = "shp2pg"
)

// configurePool sizes the pool for config.MaxConns sessions and routes server
// notices (NOTICE from CREATE EXTENSION, DROP TABLE IF EXISTS) to the logger.
func configurePool(poolConfig *pgxpool.Config, config *shp2pg.ConnectionConfig, logger shp2pg.Logger) {
	maxConns := config.MaxConns
	if maxConns < 1 {
		maxConns = DefaultMaxConns
	}
	poolConfig.MaxConns = int32(maxConns)
	poolConfig.MinConns = DefaultMinConns
	poolConfig.MaxConnIdleTime = DefaultMaxConnIdleTime
	poolConfig.ConnConfig.OnNotice = func(_ *pgconn.PgConn, notice *pgconn.Notice) {
		logger.Verbose("%s: %s", notice.Severity, notice.Message)
	}
}

// newPool builds and pings a pool for connStr.
func newPool(ctx context.Context, connStr string, config *shp2pg.ConnectionConfig, logger shp2pg.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}
	configurePool(poolConfig, config, logger)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, wrapConnectionError(err, config.Host, config.Port, config.Database)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, wrapConnectionError(err, config.Host, config.Port, config.Database)
	}
	return pool, nil
}

// StandardConnector implements the Connector interface for standard
// username/password authentication with automatic retry on transient failures.
type StandardConnector struct {
	config        *shp2pg.ConnectionConfig
	logger        shp2pg.Logger
	retryExecutor *retry.Executor
}

// NewStandardConnector creates a StandardConnector that retries with the connect defaults.
func NewStandardConnector(config *shp2pg.ConnectionConfig, logger shp2pg.Logger) *StandardConnector {
	return &StandardConnector{
		config:        config,
		logger:        logger,
		retryExecutor: retry.NewConnectExecutor(logger),
	}
}

// Connect establishes a connection pool using standard authentication with automatic retry.
func (c *StandardConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	connStr := BuildConnectionString(c.config)

	err := c.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		var err error
		pool, err = newPool(ctx, connStr, c.config, c.logger)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// NewConnector returns the Connector matching config.AuthMethod.
// logger may be nil.
func NewConnector(config *shp2pg.ConnectionConfig, logger shp2pg.Logger) (shp2pg.Connector, error) {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	if config.AppName == "" {
		config.AppName = DefaultAppName
	}

	switch config.AuthMethod {
	case shp2pg.AuthMethodStandard:
		return NewStandardConnector(config, logger), nil
	case shp2pg.AuthMethodAWSIAM:
		return newAWSConnector(config, logger)
	case shp2pg.AuthMethodGoogleIAM:
		return newGoogleConnector(config, logger)
	case shp2pg.AuthMethodAzureEntraID:
		return newAzureConnector(config, logger)
	default:
		return nil, fmt.Errorf("unsupported auth method %v: %w", config.AuthMethod, shp2pg.ErrUnsupportedAuthMethod)
	}
}

// wrapConnectionError wraps raw pgx connection errors with actionable guidance.
func wrapConnectionError(err error, host string, port int, database string) error {
	errStr := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", host, port)

	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		return fmt.Errorf(`connection refused to %s

Check that PostgreSQL is running (pg_isready -h %s -p %d) and that host and port are right.

Original error: %w`, addr, host, port, err)

	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		return fmt.Errorf(`cannot resolve host "%s"

Check the host name and your DNS or network connection.

Original error: %w`, host, err)

	case strings.Contains(errStr, "password authentication failed"):
		return fmt.Errorf(`password authentication failed for database "%s"

Check the user name and the password in $PGPASSWORD, ~/.pgpass or the connection string.

Original error: %w`, database, err)

	case strings.Contains(errStr, "does not exist"):
		return fmt.Errorf(`database "%s" does not exist

Create it first, with the postgis extension:
  createdb %s && psql -d %s -c 'CREATE EXTENSION postgis'

Original error: %w`, database, database, database, err)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		return fmt.Errorf(`connection timed out to %s

The server may be overloaded, or a firewall may be dropping packets.

Original error: %w`, addr, err)

	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		return fmt.Errorf(`SSL/TLS connection error

Check --sslmode against what the server requires.

Original error: %w`, err)

	case strings.Contains(errStr, "too many connections"):
		return fmt.Errorf(`too many connections to database "%s"

Lower --workers or raise max_connections on the server.

Original error: %w`, database, err)

	default:
		return fmt.Errorf("failed to connect to database: %w", err)
	}
}

// newAWSConnector creates a token-based connector with the AWS IAM token provider.
func newAWSConnector(config *shp2pg.ConnectionConfig, logger shp2pg.Logger) (shp2pg.Connector, error) {
	endpoint := fmt.Sprintf("%s:%d", config.Host, config.Port)

	tokenProvider, err := NewAWSIAMTokenProvider(endpoint, config.AWSRegion, config.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS IAM token provider: %w", err)
	}

	return NewTokenBasedConnector(config, tokenProvider, "AWS IAM", logger), nil
}

// newGoogleConnector creates a GoogleCloudSQLConnector for Google Cloud SQL IAM authentication.
func newGoogleConnector(config *shp2pg.ConnectionConfig, logger shp2pg.Logger) (shp2pg.Connector, error) {
	if config.GoogleInstance == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires --google-instance (project:region:instance): %w", shp2pg.ErrInvalidConfig)
	}
	if config.Username == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires username (-U): %w", shp2pg.ErrInvalidConfig)
	}

	return NewGoogleCloudSQLConnector(config, config.GoogleInstance, logger), nil
}

// newAzureConnector uses Service Principal auth when tenant, client and secret
// are all set, and the DefaultAzureCredential chain otherwise.
func newAzureConnector(config *shp2pg.ConnectionConfig, logger shp2pg.Logger) (shp2pg.Connector, error) {
	var tokenProvider TokenProvider
	var err error

	if config.AzureTenantID != "" && config.AzureClientID != "" && config.AzureClientSecret != "" {
		tokenProvider, err = NewAzureServicePrincipalProvider(config.AzureTenantID, config.AzureClientID, config.AzureClientSecret)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure Service Principal provider: %w", err)
		}
	} else {
		tokenProvider, err = NewAzureDefaultCredentialProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure Default Credential provider: %w", err)
		}
	}

	return NewTokenBasedConnector(config, tokenProvider, "Azure", logger), nil
}
