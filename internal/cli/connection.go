package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vvka-141/shp2pg/internal/config"
	"github.com/vvka-141/shp2pg/internal/db"
	"github.com/vvka-141/shp2pg/pkg/shp2pg"
)

// connectionFlags holds the connection-related flag values.
type connectionFlags struct {
	connection     string
	host           string
	port           int
	username       string
	database       string
	sslMode        string
	aws            bool
	awsRegion      string
	google         bool
	googleInstance string
	azure          bool
	azureTenantID  string
	azureClientID  string
}

// registerConnectionFlags binds the PostgreSQL connection flags of cmd to f.
// Passwords are deliberately not accepted as flags.
func registerConnectionFlags(cmd *cobra.Command, f *connectionFlags) {
	flags := cmd.Flags()

	flags.StringVar(&f.connection, "connection", "",
		"PostgreSQL connection string (URI, ADO.NET or key=value format).\n"+
			"Mutually exclusive with --host, --port, --username and --sslmode.\n"+
			"Alternative: SHP2PG_CONNECTION_STRING or DATABASE_URL.\n"+
			"Example: postgresql://loader@localhost:5432/gis")

	// Precedence: flag > environment variable > shp2pg.yaml > default
	flags.StringVarP(&f.host, "host", "h", "",
		"PostgreSQL server host\n"+
			"Precedence: --host > $PGHOST > shp2pg.yaml > localhost")
	flags.IntVarP(&f.port, "port", "p", 0,
		"PostgreSQL server port\n"+
			"Precedence: --port > $PGPORT > shp2pg.yaml > 5432")
	flags.StringVarP(&f.username, "username", "U", "",
		"PostgreSQL user (default: $PGUSER or current OS user)")
	flags.StringVarP(&f.database, "database", "d", "",
		"Target database (overrides the database of a connection string, or $PGDATABASE)")
	flags.StringVar(&f.sslMode, "sslmode", "",
		"SSL mode: disable|allow|prefer|require|verify-ca|verify-full\n"+
			"(default: prefer, or $PGSSLMODE)")
	_ = cmd.RegisterFlagCompletionFunc("sslmode", completeSSLModes)

	flags.BoolVar(&f.aws, "aws", false,
		"Enable AWS RDS IAM authentication (default AWS credential chain)")
	flags.StringVar(&f.awsRegion, "aws-region", "",
		"AWS region of the RDS instance (overrides $AWS_REGION)")

	flags.BoolVar(&f.google, "google", false,
		"Enable Google Cloud SQL IAM authentication (Application Default Credentials)")
	flags.StringVar(&f.googleInstance, "google-instance", "",
		"Cloud SQL instance connection name (project:region:instance)")

	flags.BoolVar(&f.azure, "azure", false,
		"Enable Azure Entra ID authentication\n"+
			"Uses DefaultAzureCredential chain (Managed Identity, Azure CLI, etc.)")
	flags.StringVar(&f.azureTenantID, "azure-tenant-id", "",
		"Azure AD tenant/directory ID (overrides $AZURE_TENANT_ID)")
	flags.StringVar(&f.azureClientID, "azure-client-id", "",
		"Azure AD application/client ID (overrides $AZURE_CLIENT_ID)")
}

// resolveConnectionFromFlags merges flags, environment and shp2pg.yaml into
// one ConnectionConfig. A target database is required.
func resolveConnectionFromFlags(
	flags connectionFlags,
	projectCfg *config.ProjectConfig,
	env *db.EnvVars,
) (*shp2pg.ConnectionConfig, error) {
	granular := &db.GranularConnFlags{
		Host:     flags.host,
		Port:     flags.port,
		Username: flags.username,
		Database: flags.database,
		SSLMode:  flags.sslMode,
	}
	cloud := &db.CloudFlags{
		AWS:            flags.aws,
		AWSRegion:      flags.awsRegion,
		Google:         flags.google,
		GoogleInstance: flags.googleInstance,
		Azure:          flags.azure,
		AzureTenantID:  flags.azureTenantID,
		AzureClientID:  flags.azureClientID,
	}

	connConfig, err := db.ResolveConnectionParams(flags.connection, granular, cloud, env, projectCfg)
	if err != nil {
		return nil, err
	}

	if connConfig.Database == "" {
		return nil, fmt.Errorf("database name is required\n"+
			"Provide via:\n"+
			"  1. --database/-d flag: shp2pg load ./data -d gis\n"+
			"  2. Connection string: shp2pg load ./data --connection \"postgresql://user@host/gis\"\n"+
			"  3. Environment variable: export PGDATABASE=gis\n"+
			"  4. shp2pg.yaml: connection.database: %w", shp2pg.ErrInvalidConfig)
	}
	return connConfig, nil
}

// logConnectionVerbose logs the resolved connection without secrets.
func logConnectionVerbose(logger shp2pg.Logger, connConfig *shp2pg.ConnectionConfig) {
	logger.Verbose("Connection resolved: %s", db.RedactedConnectionString(connConfig))
	logger.Verbose("  Host: %s", connConfig.Host)
	logger.Verbose("  Port: %d", connConfig.Port)
	logger.Verbose("  User: %s", connConfig.Username)
	logger.Verbose("  Database: %s", connConfig.Database)
	logger.Verbose("  SSL Mode: %s", connConfig.SSLMode)
	logger.Verbose("  Auth Method: %s", connConfig.AuthMethod)
}
