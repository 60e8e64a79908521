// Package config reads the optional shp2pg.yaml project file.
//
// Values from the file sit below command-line flags and environment
// variables: they only fill in what neither of those provided.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vvka-141/shp2pg/pkg/shp2pg"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// ConfigFileName is looked up in the working directory and then in the scanned root.
const ConfigFileName = "shp2pg.yaml"

type ConnectionConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Username       string `yaml:"username"`
	Database       string `yaml:"database"`
	SSLMode        string `yaml:"sslmode"`
	AuthMethod     string `yaml:"auth_method,omitempty"`
	AzureTenantID  string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID  string `yaml:"azure_client_id,omitempty"`
	AWSRegion      string `yaml:"aws_region,omitempty"`
	GoogleInstance string `yaml:"google_instance,omitempty"`
}

// LoadConfig holds defaults for the load command.
type LoadConfig struct {
	Schema          string `yaml:"schema"`
	ChunkSize       int    `yaml:"chunk_size"`
	DefaultSRID     int    `yaml:"default_srid"`
	SpatialIndex    *bool  `yaml:"spatial_index"`
	Workers         int    `yaml:"workers"`
	CreateExtension bool   `yaml:"create_extension"`
	Timeout         string `yaml:"timeout"`
	FailOnError     bool   `yaml:"fail_on_error"`
}

type ProjectConfig struct {
	Connection ConnectionConfig `yaml:"connection"`
	Load       LoadConfig       `yaml:"load"`
}

// Load reads ConfigFileName from dir.
func Load(dir string) (*ProjectConfig, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads and validates the config file at path. Unknown keys are rejected.
func LoadFile(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w: %w", path, shp2pg.ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks value ranges. Zero values mean "not set" and are accepted.
func (c *ProjectConfig) Validate() error {
	var errs []error

	if c.Connection.Port < 0 || c.Connection.Port > 65535 {
		errs = append(errs, fmt.Errorf("connection.port %d out of range: %w", c.Connection.Port, shp2pg.ErrInvalidConfig))
	}
	if _, err := c.Connection.Auth(); err != nil {
		errs = append(errs, err)
	}
	if c.Load.ChunkSize < 0 {
		errs = append(errs, fmt.Errorf("load.chunk_size cannot be negative: %w", shp2pg.ErrInvalidConfig))
	}
	if c.Load.DefaultSRID < 0 {
		errs = append(errs, fmt.Errorf("load.default_srid cannot be negative: %w", shp2pg.ErrInvalidConfig))
	}
	if c.Load.Workers < 0 || c.Load.Workers > shp2pg.MaxWorkers {
		errs = append(errs, fmt.Errorf("load.workers must be between 1 and %d: %w", shp2pg.MaxWorkers, shp2pg.ErrInvalidConfig))
	}
	if _, err := c.Load.TimeoutDuration(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Auth maps auth_method to an AuthMethod. Empty means standard.
func (c ConnectionConfig) Auth() (shp2pg.AuthMethod, error) {
	switch strings.ToLower(strings.TrimSpace(c.AuthMethod)) {
	case "", "standard", "password":
		return shp2pg.AuthMethodStandard, nil
	case "aws", "aws_iam":
		return shp2pg.AuthMethodAWSIAM, nil
	case "google", "google_iam":
		return shp2pg.AuthMethodGoogleIAM, nil
	case "azure", "entra", "azure_entra_id":
		return shp2pg.AuthMethodAzureEntraID, nil
	default:
		return shp2pg.AuthMethodStandard, fmt.Errorf("connection.auth_method %q: %w", c.AuthMethod, shp2pg.ErrUnsupportedAuthMethod)
	}
}

// TimeoutDuration parses load.timeout. Empty yields zero.
func (l LoadConfig) TimeoutDuration() (time.Duration, error) {
	if l.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(l.Timeout)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("load.timeout %q is not a valid duration: %w", l.Timeout, shp2pg.ErrInvalidConfig)
	}
	return d, nil
}
