package shp2pg

import (
	"time"

	"github.com/google/uuid"
)

// BatchReport aggregates every LoadOutcome of one run.
// It is assembled by the runner and handed to the caller; it is never persisted.
type BatchReport struct {
	RunID   uuid.UUID `json:"run_id"`
	RootDir string    `json:"root_dir"`

	// Discovered is the number of shapefiles found before deduplication
	Discovered int `json:"discovered"`

	// Retained is the number of files left after deduplication (= attempted loads)
	Retained int `json:"retained"`

	// Duplicates lists base names found more than once, in order of first repeat
	Duplicates []string `json:"duplicates"`

	Successes []LoadOutcome `json:"successes"`
	Failures  []LoadOutcome `json:"failures"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// NewBatchReport starts an empty report for a run over rootDir.
func NewBatchReport(rootDir string) *BatchReport {
	return &BatchReport{
		RunID:      uuid.New(),
		RootDir:    rootDir,
		Duplicates: []string{},
		Successes:  []LoadOutcome{},
		Failures:   []LoadOutcome{},
		StartedAt:  time.Now(),
	}
}

// Add folds one outcome into the report.
func (r *BatchReport) Add(o LoadOutcome) {
	if o.IsSuccess() {
		r.Successes = append(r.Successes, o)
		return
	}
	r.Failures = append(r.Failures, o)
}

// Finish stamps the end time.
func (r *BatchReport) Finish() {
	r.FinishedAt = time.Now()
}

// Attempted returns the number of loads that produced an outcome.
func (r *BatchReport) Attempted() int {
	return len(r.Successes) + len(r.Failures)
}

// HasFailures reports whether any file failed.
func (r *BatchReport) HasFailures() bool {
	return len(r.Failures) > 0
}

// SuccessNames returns the file names that loaded.
func (r *BatchReport) SuccessNames() []string {
	return outcomeNames(r.Successes)
}

// FailureNames returns the file names that failed.
func (r *BatchReport) FailureNames() []string {
	return outcomeNames(r.Failures)
}

// Defaulted returns every outcome whose spatial reference fell back to the default.
func (r *BatchReport) Defaulted() []LoadOutcome {
	var out []LoadOutcome
	for _, o := range r.Successes {
		if o.SRIDDefaulted {
			out = append(out, o)
		}
	}
	for _, o := range r.Failures {
		if o.SRIDDefaulted {
			out = append(out, o)
		}
	}
	return out
}

// Elapsed returns the wall time of the run.
func (r *BatchReport) Elapsed() time.Duration {
	if r.FinishedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

func outcomeNames(outcomes []LoadOutcome) []string {
	names := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		names = append(names, o.FileName)
	}
	return names
}
