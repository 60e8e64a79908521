package shp2pg

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success (the run reached Reporting, even if some files failed)
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess           = 0  // Run completed and a report was produced
	ExitGeneralError      = 1  // Unknown or unclassified error
	ExitUsageError        = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic             = 3  // Internal panic (unexpected crash)
	ExitConfigError       = 10 // Invalid configuration or parameters
	ExitConnectionError   = 11 // Database unreachable, credentials rejected or PostGIS missing
	ExitDirectoryNotFound = 12 // Root directory missing or not a directory
	ExitInterrupted       = 13 // Run cancelled before every file was processed
	ExitLoadFailures      = 14 // --fail-on-error and at least one file failed
)

const (
	// ShapefileExtension is the extension FileDiscoverer matches (case-insensitive).
	ShapefileExtension = ".shp"

	// DefaultSRID is the spatial reference used when a file carries no resolvable CRS (WGS84).
	DefaultSRID = 4326

	// DefaultChunkSize is the number of rows sent per insert batch.
	DefaultChunkSize = 1000

	// DefaultSchema is the target schema for created tables.
	DefaultSchema = "public"

	// GeometryColumn is the name of the geometry column of every created table.
	GeometryColumn = "geometry"

	// DefaultWorkers processes files sequentially over one shared connection.
	DefaultWorkers = 1

	// MaxWorkers bounds the worker pool.
	MaxWorkers = 32

	// DefaultRetryInitialDelay is the default initial delay before the first retry attempt.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between retry attempts.
	DefaultRetryMaxDelay = 1 * time.Minute

	// DefaultRetryMaxAttempts is the default maximum number of retry attempts.
	DefaultRetryMaxAttempts = 3

	// DefaultManagementDB is the database used when none is given.
	DefaultManagementDB = "postgres"

	// MaxReasonLength caps failure reasons shown in the console report.
	MaxReasonLength = 300
)
