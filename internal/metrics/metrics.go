// Package metrics records per-run load metrics on a private Prometheus registry.
//
// A shp2pg run is a batch job, so nothing is served over HTTP: the registry is
// written once at the end of a run in node-exporter textfile format.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vvka-141/shp2pg/pkg/shp2pg"
)

const namespace = "shp2pg"

// Recorder holds the metrics of one run.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	filesTotal    *prometheus.CounterVec
	rowsTotal     prometheus.Counter
	sridDefaulted prometheus.Counter
	loadDuration  prometheus.Histogram

	discovered  prometheus.Gauge
	retained    prometheus.Gauge
	duplicates  prometheus.Gauge
	runDuration prometheus.Gauge
	lastRun     prometheus.Gauge
}

// NewRecorder creates a recorder with its own registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Recorder{
		registry: reg,
		filesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_total",
			Help:      "Files processed, by outcome.",
		}, []string{"status"}),
		rowsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_inserted_total",
			Help:      "Rows inserted across all successfully loaded files.",
		}),
		sridDefaulted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "srid_defaulted_total",
			Help:      "Files loaded with the default spatial reference.",
		}),
		loadDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "file_load_duration_seconds",
			Help:      "Time taken to read and write one file.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 600},
		}),
		discovered: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_discovered_files",
			Help:      "Shapefiles found under the root directory.",
		}),
		retained: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_retained_files",
			Help:      "Shapefiles left after removing duplicate names.",
		}),
		duplicates: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duplicate_names",
			Help:      "File names that occurred more than once.",
		}),
		runDuration: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
		lastRun: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_last_completion_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
	}
}

// ObserveLoad records one file outcome.
func (r *Recorder) ObserveLoad(o shp2pg.LoadOutcome) {
	if r == nil {
		return
	}
	r.filesTotal.WithLabelValues(o.Status.String()).Inc()
	if o.Duration > 0 {
		r.loadDuration.Observe(o.Duration.Seconds())
	}
	if o.IsSuccess() {
		r.rowsTotal.Add(float64(o.Rows))
		if o.SRIDDefaulted {
			r.sridDefaulted.Inc()
		}
	}
}

// ObserveRun records the run-level totals of a finished report.
func (r *Recorder) ObserveRun(report *shp2pg.BatchReport) {
	if r == nil || report == nil {
		return
	}
	r.discovered.Set(float64(report.Discovered))
	r.retained.Set(float64(report.Retained))
	r.duplicates.Set(float64(len(report.Duplicates)))
	r.runDuration.Set(report.Elapsed().Seconds())
	if !report.FinishedAt.IsZero() {
		r.lastRun.Set(float64(report.FinishedAt.Unix()))
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// WriteTextfile writes every metric to path atomically, in the format read by
// the node exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
