package cli

import (
	"errors"
	"fmt"

	"github.com/joho/godotenv"

	"github.com/vvka-141/shp2pg/internal/config"
	"github.com/vvka-141/shp2pg/pkg/shp2pg"
)

// loadEnvFile reads .env from the working directory into the process
// environment. Variables already set win. A missing file is not an error.
func loadEnvFile() {
	_ = godotenv.Load()
}

// loadProjectConfig returns the shp2pg.yaml that applies to a run over rootDir.
// An explicit path must exist. Otherwise the working directory is searched
// first, then rootDir; no file at all yields a nil config and no error.
func loadProjectConfig(rootDir, explicitPath string) (*config.ProjectConfig, string, error) {
	if explicitPath != "" {
		cfg, err := config.LoadFile(explicitPath)
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, "", fmt.Errorf("%s: %w: %w", explicitPath, shp2pg.ErrInvalidConfig, err)
		}
		if err != nil {
			return nil, "", err
		}
		return cfg, explicitPath, nil
	}

	for _, dir := range []string{".", rootDir} {
		cfg, err := config.Load(dir)
		if errors.Is(err, config.ErrConfigNotFound) {
			continue
		}
		if err != nil {
			return nil, "", fmt.Errorf("failed to load %s: %w", config.ConfigFileName, err)
		}
		return cfg, dir, nil
	}
	return nil, "", nil
}
