package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vvka-141/shp2pg/internal/config"
	"github.com/vvka-141/shp2pg/pkg/shp2pg"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a starter shp2pg.yaml",
	Long: `Init writes shp2pg.yaml with the default load settings into dir (default:
the current directory). Edit the connection section, then run

  shp2pg load <root_dir>

from that directory. An existing file is kept unless --force is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

var initForce bool

const configHeader = `# shp2pg project configuration.
# Command-line flags and environment variables (PGHOST, PGDATABASE, ...)
# override every value below.
`

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing shp2pg.yaml")
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	path, err := writeStarterConfig(dir, initForce)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "✓ Configuration written to %s\n", path)
	return nil
}

// starterConfig is the configuration init writes.
func starterConfig() config.ProjectConfig {
	spatialIndex := true
	return config.ProjectConfig{
		Connection: config.ConnectionConfig{
			Host:     "localhost",
			Port:     5432,
			Database: "gis",
			SSLMode:  "prefer",
		},
		Load: config.LoadConfig{
			Schema:       shp2pg.DefaultSchema,
			ChunkSize:    shp2pg.DefaultChunkSize,
			DefaultSRID:  shp2pg.DefaultSRID,
			SpatialIndex: &spatialIndex,
			Workers:      shp2pg.DefaultWorkers,
		},
	}
}

func writeStarterConfig(dir string, force bool) (string, error) {
	path := filepath.Join(dir, config.ConfigFileName)
	if _, err := os.Stat(path); err == nil && !force {
		return "", fmt.Errorf("%s already exists (use --force to overwrite): %w", path, shp2pg.ErrInvalidConfig)
	}

	data, err := yaml.Marshal(starterConfig())
	if err != nil {
		return "", fmt.Errorf("failed to serialize config: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, append([]byte(configHeader), data...), 0o644); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}
	return path, nil
}
