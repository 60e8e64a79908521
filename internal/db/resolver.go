package db

import (
	"fmt"
	"os"
	"strconv"

	"github.com/vvka-141/shp2pg/internal/config"
	"github.com/vvka-141/shp2pg/pkg/shp2pg"
)

// GranularConnFlags holds the libpq-style connection flags (-h, -p, -U, -d).
//
// There is deliberately no password flag. Use $PGPASSWORD, ~/.pgpass or a
// connection string instead.
type GranularConnFlags struct {
	Host     string
	Port     int
	Username string
	Database string
	SSLMode  string
}

// IsEmpty reports whether no server-selecting flag was given. Database is not
// counted: -d may override the database of a connection string.
func (g *GranularConnFlags) IsEmpty() bool {
	return g.Host == "" && g.Port == 0 && g.Username == "" && g.SSLMode == ""
}

// CloudFlags selects a cloud IAM authentication method.
// The Azure client secret is read from $AZURE_CLIENT_SECRET only.
type CloudFlags struct {
	AWS       bool
	AWSRegion string

	Google         bool
	GoogleInstance string

	Azure         bool
	AzureTenantID string
	AzureClientID string
}

// count returns how many methods were selected.
func (c *CloudFlags) count() int {
	n := 0
	for _, on := range []bool{c.AWS, c.Google, c.Azure} {
		if on {
			n++
		}
	}
	return n
}

// EnvVars holds the environment variables the resolver reads.
// See https://www.postgresql.org/docs/current/libpq-envars.html
type EnvVars struct {
	PGHOST       string
	PGPORT       string
	PGUSER       string
	PGPASSWORD   string
	PGDATABASE   string
	PGSSLMODE    string
	DATABASE_URL string

	// SHP2PG_CONNECTION_STRING takes precedence over DATABASE_URL
	SHP2PG_CONNECTION_STRING string

	AZURE_TENANT_ID     string
	AZURE_CLIENT_ID     string
	AZURE_CLIENT_SECRET string
	AWS_REGION          string
}

// LoadFromEnvironment reads EnvVars from the process environment.
func LoadFromEnvironment() *EnvVars {
	return &EnvVars{
		PGHOST:                   os.Getenv("PGHOST"),
		PGPORT:                   os.Getenv("PGPORT"),
		PGUSER:                   os.Getenv("PGUSER"),
		PGPASSWORD:               os.Getenv("PGPASSWORD"),
		PGDATABASE:               os.Getenv("PGDATABASE"),
		PGSSLMODE:                os.Getenv("PGSSLMODE"),
		DATABASE_URL:             os.Getenv("DATABASE_URL"),
		SHP2PG_CONNECTION_STRING: os.Getenv("SHP2PG_CONNECTION_STRING"),
		AZURE_TENANT_ID:          os.Getenv("AZURE_TENANT_ID"),
		AZURE_CLIENT_ID:          os.Getenv("AZURE_CLIENT_ID"),
		AZURE_CLIENT_SECRET:      os.Getenv("AZURE_CLIENT_SECRET"),
		AWS_REGION:               os.Getenv("AWS_REGION"),
	}
}

// ResolveConnectionParams builds the connection for a run.
//
// The server is chosen by the first of:
//  1. --connection
//  2. $SHP2PG_CONNECTION_STRING, then $DATABASE_URL, when no granular flag is set
//  3. granular flags, each falling back to its PG* variable, then shp2pg.yaml,
//     then the libpq default
//
// -d overrides the database of any connection string. The authentication
// method comes from the cloud flags, then shp2pg.yaml, then the presence of
// $AZURE_TENANT_ID or $AZURE_CLIENT_ID.
func ResolveConnectionParams(
	connStringFlag string,
	granularFlags *GranularConnFlags,
	cloudFlags *CloudFlags,
	envVars *EnvVars,
	projectConfig *config.ProjectConfig,
) (*shp2pg.ConnectionConfig, error) {
	if granularFlags == nil {
		granularFlags = &GranularConnFlags{}
	}
	if cloudFlags == nil {
		cloudFlags = &CloudFlags{}
	}
	if envVars == nil {
		envVars = &EnvVars{}
	}
	var pc config.ConnectionConfig
	if projectConfig != nil {
		pc = projectConfig.Connection
	}

	if connStringFlag != "" && !granularFlags.IsEmpty() {
		return nil, fmt.Errorf(
			"cannot specify both --connection and granular flags (-h, -p, -U, --sslmode)\n"+
				"Choose one approach:\n"+
				"  1. Connection string: --connection \"postgresql://user@localhost:5432/gis\"\n"+
				"  2. Granular flags: -h localhost -p 5432 -U loader -d gis\n"+
				"  3. Environment variables: export PGHOST=localhost PGUSER=loader PGDATABASE=gis: %w",
			shp2pg.ErrInvalidConfig,
		)
	}
	if cloudFlags.count() > 1 {
		return nil, fmt.Errorf("choose only one of --aws, --google and --azure: %w", shp2pg.ErrInvalidConfig)
	}

	var (
		cfg *shp2pg.ConnectionConfig
		err error
	)
	switch {
	case connStringFlag != "":
		cfg, err = resolveFromConnectionString(connStringFlag, envVars)
	case granularFlags.IsEmpty() && envVars.SHP2PG_CONNECTION_STRING != "":
		cfg, err = resolveFromConnectionString(envVars.SHP2PG_CONNECTION_STRING, envVars)
	case granularFlags.IsEmpty() && envVars.DATABASE_URL != "":
		cfg, err = resolveFromConnectionString(envVars.DATABASE_URL, envVars)
	default:
		cfg, err = resolveFromGranularParams(granularFlags, envVars, pc)
	}
	if err != nil {
		return nil, err
	}
	if granularFlags.Database != "" {
		cfg.Database = granularFlags.Database
	}

	if err := applyAuth(cfg, cloudFlags, envVars, pc); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyAuth selects the authentication method and attaches its parameters.
func applyAuth(cfg *shp2pg.ConnectionConfig, flags *CloudFlags, env *EnvVars, pc config.ConnectionConfig) error {
	method, err := pc.Auth()
	if err != nil {
		return err
	}
	switch {
	case flags.AWS:
		method = shp2pg.AuthMethodAWSIAM
	case flags.Google:
		method = shp2pg.AuthMethodGoogleIAM
	case flags.Azure:
		method = shp2pg.AuthMethodAzureEntraID
	case pc.AuthMethod == "" && (flags.AzureTenantID != "" || flags.AzureClientID != "" ||
		env.AZURE_TENANT_ID != "" || env.AZURE_CLIENT_ID != ""):
		method = shp2pg.AuthMethodAzureEntraID
	}
	cfg.AuthMethod = method

	switch method {
	case shp2pg.AuthMethodAWSIAM:
		cfg.AWSRegion = firstNonEmpty(flags.AWSRegion, pc.AWSRegion, env.AWS_REGION)
	case shp2pg.AuthMethodGoogleIAM:
		cfg.GoogleInstance = firstNonEmpty(flags.GoogleInstance, pc.GoogleInstance)
	case shp2pg.AuthMethodAzureEntraID:
		cfg.AzureTenantID = firstNonEmpty(flags.AzureTenantID, env.AZURE_TENANT_ID, pc.AzureTenantID)
		cfg.AzureClientID = firstNonEmpty(flags.AzureClientID, env.AZURE_CLIENT_ID, pc.AzureClientID)
		cfg.AzureClientSecret = env.AZURE_CLIENT_SECRET
	}
	return nil
}

// resolveFromConnectionString parses connStr; $PGSSLMODE fills in a missing sslmode.
func resolveFromConnectionString(connStr string, envVars *EnvVars) (*shp2pg.ConnectionConfig, error) {
	cfg, err := ParseConnectionString(connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid connection string: %w: %w", shp2pg.ErrInvalidConfig, err)
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = firstNonEmpty(envVars.PGSSLMODE, "prefer")
	}
	return cfg, nil
}

// resolveFromGranularParams applies flag > environment > shp2pg.yaml > default per parameter.
func resolveFromGranularParams(flags *GranularConnFlags, env *EnvVars, pc config.ConnectionConfig) (*shp2pg.ConnectionConfig, error) {
	cfg := &shp2pg.ConnectionConfig{
		AuthMethod:       shp2pg.AuthMethodStandard,
		AdditionalParams: make(map[string]string),
	}

	cfg.Host = firstNonEmpty(flags.Host, env.PGHOST, pc.Host, "localhost")

	switch {
	case flags.Port != 0:
		cfg.Port = flags.Port
	case env.PGPORT != "":
		port, err := strconv.Atoi(env.PGPORT)
		if err != nil {
			return nil, fmt.Errorf("invalid $PGPORT value '%s': must be an integer: %w", env.PGPORT, shp2pg.ErrInvalidConfig)
		}
		cfg.Port = port
	case pc.Port != 0:
		cfg.Port = pc.Port
	default:
		cfg.Port = 5432
	}

	cfg.Username = firstNonEmpty(flags.Username, env.PGUSER, pc.Username, os.Getenv("USER"), os.Getenv("USERNAME"))
	cfg.Password = env.PGPASSWORD
	cfg.Database = firstNonEmpty(flags.Database, env.PGDATABASE, pc.Database)
	cfg.SSLMode = firstNonEmpty(flags.SSLMode, env.PGSSLMODE, pc.SSLMode, "prefer")

	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
