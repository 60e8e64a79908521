package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/shp2pg/internal/retry"
	"github.com/vvka-141/shp2pg/pkg/shp2pg"
)

// tokenExpiryWarning is the remaining lifetime below which a fresh token is reported.
const tokenExpiryWarning = 5 * time.Minute

// TokenBasedConnector connects with a short-lived cloud token (AWS IAM,
// Azure Entra ID) as the password. Every attempt fetches a new token.
type TokenBasedConnector struct {
	config        *shp2pg.ConnectionConfig
	tokenProvider TokenProvider
	retryExecutor *retry.Executor
	providerName  string
	logger        shp2pg.Logger
}

// NewTokenBasedConnector creates a connector that uses a TokenProvider for authentication.
// providerName is used in error and warning messages (e.g. "AWS IAM", "Azure").
func NewTokenBasedConnector(config *shp2pg.ConnectionConfig, tokenProvider TokenProvider, providerName string, logger shp2pg.Logger) *TokenBasedConnector {
	return &TokenBasedConnector{
		config:        config,
		tokenProvider: tokenProvider,
		retryExecutor: retry.NewConnectExecutor(logger),
		providerName:  providerName,
		logger:        logger,
	}
}

func (c *TokenBasedConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool

	err := c.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		token, expiresOn, err := c.tokenProvider.GetToken(ctx)
		if err != nil {
			return fmt.Errorf("failed to acquire %s token: %w", c.providerName, err)
		}
		c.logger.Verbose("Acquired %s token from %s", c.providerName, c.tokenProvider)
		if left := time.Until(expiresOn); left < tokenExpiryWarning {
			c.logger.Warn("%s token expires in %v", c.providerName, left.Round(time.Second))
		}

		configWithToken := *c.config
		configWithToken.Password = token

		pool, err = newPool(ctx, BuildConnectionString(&configWithToken), c.config, c.logger)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}
