package postgis

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vvka-141/shp2pg/pkg/shp2pg"
)

// ErrPostGISMissing indicates the target database has no postgis extension.
var ErrPostGISMissing = errors.New("postgis extension is not installed")

// VerifyPostGIS checks that the postgis extension is available on conn and
// returns its version. When create is true the extension is created first.
func VerifyPostGIS(ctx context.Context, conn shp2pg.DBConnection, create bool) (string, error) {
	if create {
		if _, err := conn.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS postgis"); err != nil {
			return "", fmt.Errorf("failed to create postgis extension: %w", err)
		}
	}

	var version string
	err := conn.QueryRow(ctx, "SELECT extversion FROM pg_extension WHERE extname = 'postgis'").Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("%w (run CREATE EXTENSION postgis, or pass --create-extension)", ErrPostGISMissing)
	}
	if err != nil {
		return "", fmt.Errorf("failed to query postgis version: %w", err)
	}
	return version, nil
}
