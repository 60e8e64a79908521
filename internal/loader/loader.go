// Package loader implements shp2pg.SpatialLoader: read one shapefile, resolve
// its spatial reference, tag every geometry and replace the destination table.
package loader

import (
	"context"
	"fmt"
	"time"

	"github.com/twpayne/go-geom"

	"github.com/vvka-141/shp2pg/internal/metrics"
	"github.com/vvka-141/shp2pg/internal/postgis"
	"github.com/vvka-141/shp2pg/pkg/shp2pg"
)

// Loader loads single files. It never returns an error or panics: every
// failure is reported through the returned shp2pg.LoadOutcome.
// Loader is safe for concurrent use when its source and writer are.
type Loader struct {
	source  shp2pg.GeometrySource
	writer  shp2pg.TableWriter
	policy  shp2pg.SRIDPolicy
	schema  string
	logger  shp2pg.Logger
	metrics *metrics.Recorder
}

// NewLoader creates a loader. recorder may be nil.
// Panics if source, writer or logger is nil.
func NewLoader(source shp2pg.GeometrySource, writer shp2pg.TableWriter, opts shp2pg.LoadOptions, logger shp2pg.Logger, recorder *metrics.Recorder) *Loader {
	if source == nil {
		panic("source cannot be nil")
	}
	if writer == nil {
		panic("writer cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	schema := opts.Schema
	if schema == "" {
		schema = shp2pg.DefaultSchema
	}
	return &Loader{
		source:  source,
		writer:  writer,
		policy:  shp2pg.NewSRIDPolicy(opts.DefaultSRID),
		schema:  schema,
		logger:  logger,
		metrics: recorder,
	}
}

// Load reads file and writes it to a table named after it on conn.
func (l *Loader) Load(ctx context.Context, conn shp2pg.DBConnection, file shp2pg.VectorFile) (outcome shp2pg.LoadOutcome) {
	start := time.Now()
	var (
		srid      int
		defaulted bool
	)

	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("%w: internal error: %v", shp2pg.ErrWriteFailed, rec)
			l.logger.Error("Loading %s panicked: %v", file.RelativePath, rec)
			outcome = shp2pg.Failure(file, err).WithReference(srid, defaulted)
		}
		outcome = outcome.WithDuration(time.Since(start))
		l.metrics.ObserveLoad(outcome)
	}()

	l.logger.Info("Writing: %s", file.RelativePath)

	if err := postgis.CheckIdentifier(file.TableName()); err != nil {
		l.logger.Error("Cannot load %s: table %v", file.RelativePath, err)
		return shp2pg.Failure(file, fmt.Errorf("%w: table %w", shp2pg.ErrWriteFailed, err))
	}

	ds, err := l.source.Read(ctx, file.Path)
	if err != nil {
		l.logger.Error("Failed to read %s: %v", file.RelativePath, err)
		return shp2pg.Failure(file, fmt.Errorf("%w: %w", shp2pg.ErrParseFailed, err))
	}

	srid, defaulted = l.policy.Resolve(ds.EPSG)
	if defaulted {
		l.logger.Warn("%s has no recognised spatial reference, using default SRID %d", file.RelativePath, srid)
	}
	l.logger.Info("Spatial reference (SRID): %d", srid)
	l.logger.Verbose("%s: %d features, %d fields, %s, encoding %s", file.RelativePath, len(ds.Features), len(ds.Fields), ds.ShapeType, ds.Encoding)

	layer, err := tagLayer(ds, l.schema, file.TableName(), srid)
	if err != nil {
		l.logger.Error("Failed to prepare %s: %v", file.RelativePath, err)
		return shp2pg.Failure(file, fmt.Errorf("%w: %w", shp2pg.ErrParseFailed, err)).WithReference(srid, defaulted)
	}

	rows, err := l.writer.ReplaceTable(ctx, conn, layer)
	if err != nil {
		l.logger.Error("Failed to write %s: %v", file.RelativePath, err)
		return shp2pg.Failure(file, fmt.Errorf("%w: %w", shp2pg.ErrWriteFailed, err)).WithReference(srid, defaulted)
	}

	l.logger.Info("Table %s written successfully (%d rows)", layer.Table, rows)
	return shp2pg.Success(file, srid, defaulted, rows, time.Since(start))
}

// tagLayer stamps srid onto every geometry of ds.
func tagLayer(ds *shp2pg.Dataset, schema, table string, srid int) (*shp2pg.Layer, error) {
	features := make([]shp2pg.Feature, len(ds.Features))
	for i, f := range ds.Features {
		features[i] = f
		if f.Geometry == nil {
			continue
		}
		g, err := geom.SetSRID(f.Geometry, srid)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i+1, err)
		}
		features[i].Geometry = g
	}

	return &shp2pg.Layer{
		Schema:   schema,
		Table:    table,
		SRID:     srid,
		Layout:   ds.Layout,
		Fields:   ds.Fields,
		Features: features,
	}, nil
}

var _ shp2pg.SpatialLoader = (*Loader)(nil)
