package shp2pg

import "time"

// OutcomeStatus tags a LoadOutcome.
type OutcomeStatus int

const (
	OutcomeSuccess OutcomeStatus = iota
	OutcomeFailure
)

// String returns "success" or "failure".
func (s OutcomeStatus) String() string {
	if s == OutcomeSuccess {
		return "success"
	}
	return "failure"
}

// MarshalText renders the status as its name in JSON output.
func (s OutcomeStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// LoadOutcome is the result of loading one file. Immutable once produced:
// build it with Success or Failure and read it through its fields.
type LoadOutcome struct {
	Status       OutcomeStatus `json:"status"`
	FileName     string        `json:"file_name"`
	RelativePath string        `json:"relative_path"`
	Table        string        `json:"table"`

	// Reason is the human-readable failure reason (empty on success)
	Reason string `json:"reason,omitempty"`

	// Err is the underlying failure, wrapping ErrParseFailed or ErrWriteFailed
	Err error `json:"-"`

	// SRID is the spatial reference written with every geometry (0 if the file never got that far)
	SRID int `json:"srid,omitempty"`

	// SRIDDefaulted is set when the file carried no resolvable CRS and the default policy applied
	SRIDDefaulted bool `json:"srid_defaulted,omitempty"`

	Rows     int64         `json:"rows"`
	Duration time.Duration `json:"duration_ns"`
}

// Success builds a successful outcome.
func Success(file VectorFile, srid int, defaulted bool, rows int64, elapsed time.Duration) LoadOutcome {
	return LoadOutcome{
		Status:        OutcomeSuccess,
		FileName:      file.Name,
		RelativePath:  file.RelativePath,
		Table:         file.TableName(),
		SRID:          srid,
		SRIDDefaulted: defaulted,
		Rows:          rows,
		Duration:      elapsed,
	}
}

// Failure builds a failed outcome. The reason is taken from err.
func Failure(file VectorFile, err error) LoadOutcome {
	reason := "unknown error"
	if err != nil {
		reason = err.Error()
	}
	return LoadOutcome{
		Status:       OutcomeFailure,
		FileName:     file.Name,
		RelativePath: file.RelativePath,
		Table:        file.TableName(),
		Reason:       reason,
		Err:          err,
	}
}

// IsSuccess reports whether the file was loaded.
func (o LoadOutcome) IsSuccess() bool {
	return o.Status == OutcomeSuccess
}

// WithReference returns a copy carrying the resolved spatial reference.
// Used for failures that happen after the SRID was resolved.
func (o LoadOutcome) WithReference(srid int, defaulted bool) LoadOutcome {
	o.SRID = srid
	o.SRIDDefaulted = defaulted
	return o
}

// WithDuration returns a copy carrying the elapsed load time.
func (o LoadOutcome) WithDuration(d time.Duration) LoadOutcome {
	o.Duration = d
	return o
}
