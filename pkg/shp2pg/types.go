package shp2pg

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// VectorFile is a handle to one shapefile found on disk. Immutable once discovered.
type VectorFile struct {
	// Path is the absolute path to the .shp file
	Path string

	// Name is the base file name including extension (e.g. "roads.shp").
	// It is the case-sensitive deduplication key.
	Name string

	// RelativePath is the path relative to the scanned root, forward slashes, for display
	RelativePath string
}

// TableName returns the destination table name: the base name with its extension removed.
func (f VectorFile) TableName() string {
	return strings.TrimSuffix(f.Name, filepath.Ext(f.Name))
}

// BatchConfig contains all parameters needed for a load run.
type BatchConfig struct {
	// RootDir is the directory tree scanned for shapefiles
	RootDir string

	// Connection holds the resolved database connection parameters
	Connection *ConnectionConfig

	// Workers is the number of files loaded concurrently (1 = sequential over one session)
	Workers int

	// CreateExtension runs CREATE EXTENSION IF NOT EXISTS postgis during the connection check
	CreateExtension bool

	// Timeout bounds the run; it is only checked between files
	Timeout time.Duration

	// Verbose enables detailed logging
	Verbose bool
}

// Validate checks if the BatchConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *BatchConfig) Validate() error {
	var errs []error

	if c.RootDir == "" {
		errs = append(errs, fmt.Errorf("RootDir is required: %w", ErrInvalidConfig))
	}

	if c.Connection == nil {
		errs = append(errs, fmt.Errorf("Connection is required: %w", ErrInvalidConfig))
	} else if c.Connection.Database == "" {
		errs = append(errs, fmt.Errorf("database name is required: %w", ErrInvalidConfig))
	}

	if c.Workers < 0 || c.Workers > MaxWorkers {
		errs = append(errs, fmt.Errorf("workers must be between 1 and %d: %w", MaxWorkers, ErrInvalidConfig))
	}

	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// LoadOptions controls how a single layer is written.
type LoadOptions struct {
	// Schema is the target schema for created tables
	Schema string

	// ChunkSize is the number of rows sent per insert batch
	ChunkSize int

	// DefaultSRID is used when a file's CRS cannot be resolved
	DefaultSRID int

	// SpatialIndex creates a GiST index on the geometry column
	SpatialIndex bool
}

// DefaultLoadOptions returns the options used when nothing is configured.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Schema:       DefaultSchema,
		ChunkSize:    DefaultChunkSize,
		DefaultSRID:  DefaultSRID,
		SpatialIndex: true,
	}
}

// Validate checks LoadOptions for values the writer cannot honour.
func (o *LoadOptions) Validate() error {
	var errs []error

	if o.Schema == "" {
		errs = append(errs, fmt.Errorf("schema is required: %w", ErrInvalidConfig))
	}
	if o.ChunkSize < 1 {
		errs = append(errs, fmt.Errorf("chunk size must be positive: %w", ErrInvalidConfig))
	}
	if o.DefaultSRID <= 0 {
		errs = append(errs, fmt.Errorf("default SRID must be positive: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// ConnectionConfig represents parsed connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	// Additional connection parameters
	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string

	// MaxConns sizes the pool; zero uses the connector default
	MaxConns int

	// Azure Entra ID authentication parameters (used when AuthMethod is AuthMethodAzureEntraID)
	// If all three are provided, Service Principal authentication is used.
	// If none are provided, DefaultAzureCredential chain is used (env vars, managed identity, CLI, etc.)
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string

	// AWSRegion is required for AuthMethodAWSIAM
	AWSRegion string

	// GoogleInstance is the Cloud SQL instance connection name (project:region:instance)
	GoogleInstance string
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password
	AuthMethodAWSIAM                         // AWS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStandard && a <= AuthMethodAzureEntraID
}
