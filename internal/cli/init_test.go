package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vvka-141/shp2pg/internal/config"
	"github.com/vvka-141/shp2pg/pkg/shp2pg"
)

func TestWriteStarterConfig_RoundTrips(t *testing.T) {
	dir := t.TempDir()

	path, err := writeStarterConfig(dir, false)
	if err != nil {
		t.Fatalf("writeStarterConfig() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# shp2pg project configuration.") {
		t.Errorf("missing header comment:\n%s", data)
	}

	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("written config does not load: %v", err)
	}
	if cfg.Load.ChunkSize != shp2pg.DefaultChunkSize || cfg.Load.DefaultSRID != shp2pg.DefaultSRID {
		t.Errorf("unexpected load defaults: %+v", cfg.Load)
	}
	if cfg.Load.SpatialIndex == nil || !*cfg.Load.SpatialIndex {
		t.Error("spatial_index should default to true")
	}
}

func TestWriteStarterConfig_KeepsExisting(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, config.ConfigFileName)
	writeFile(t, existing, "load:\n  schema: mine\n")

	_, err := writeStarterConfig(dir, false)
	if !errors.Is(err, shp2pg.ErrInvalidConfig) {
		t.Fatalf("error = %v, want ErrInvalidConfig", err)
	}
	data, _ := os.ReadFile(existing)
	if !strings.Contains(string(data), "mine") {
		t.Error("existing config was overwritten")
	}

	if _, err := writeStarterConfig(dir, true); err != nil {
		t.Fatalf("--force: %v", err)
	}
}

func TestWriteStarterConfig_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "new", "project")
	if _, err := writeStarterConfig(dir, false); err != nil {
		t.Fatalf("writeStarterConfig() error = %v", err)
	}
}
