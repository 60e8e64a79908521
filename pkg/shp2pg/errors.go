package shp2pg

import (
	"errors"
	"strings"
)

// Sentinel errors for the failure classes of a load run.
// Callers distinguish them with errors.Is().
//
// Only ErrDirectoryNotFound and ErrConnectionFailed abort a run. ErrParseFailed and
// ErrWriteFailed are attached to per-file LoadOutcome values and never escape
// the loader.
//
//	report, err := runner.Run(ctx, cfg)
//	if errors.Is(err, shp2pg.ErrConnectionFailed) {
//	    // nothing was loaded
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrDirectoryNotFound indicates the root directory does not exist or is not a directory.
	ErrDirectoryNotFound = errors.New("directory not found")

	// ErrConnectionFailed indicates the database could not be reached or is not usable.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrParseFailed indicates a shapefile could not be read.
	ErrParseFailed = errors.New("parse failed")

	// ErrWriteFailed indicates a layer could not be written to the database.
	ErrWriteFailed = errors.New("write failed")

	// ErrRunInterrupted indicates the run was cancelled before every file was loaded.
	ErrRunInterrupted = errors.New("run interrupted")

	// ErrLoadFailures is returned by the CLI when --fail-on-error is set and at least one file failed.
	ErrLoadFailures = errors.New("one or more files failed to load")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")
)

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrUnsupportedAuthMethod):
		return ExitConfigError
	case errors.Is(err, ErrDirectoryNotFound):
		return ExitDirectoryNotFound
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrRunInterrupted):
		return ExitInterrupted
	case errors.Is(err, ErrLoadFailures):
		return ExitLoadFailures
	}

	errStr := err.Error()

	// Cobra argument and flag errors
	for _, prefix := range []string{"unknown flag", "unknown shorthand flag", "unknown command", "accepts ", "required flag", "invalid argument"} {
		if strings.HasPrefix(errStr, prefix) {
			return ExitUsageError
		}
	}

	// Connection errors raised before the sentinel could be attached
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
