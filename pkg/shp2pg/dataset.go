package shp2pg

import (
	"context"

	"github.com/twpayne/go-geom"
)

// FieldType is the column type derived from a DBF field descriptor.
type FieldType int

const (
	FieldText FieldType = iota
	FieldInteger
	FieldFloat
	FieldBoolean
	FieldDate

	// FieldNumeric holds integers too wide for bigint; values are decimal strings
	FieldNumeric
)

// String returns the type name used in logs.
func (t FieldType) String() string {
	switch t {
	case FieldInteger:
		return "integer"
	case FieldFloat:
		return "float"
	case FieldBoolean:
		return "boolean"
	case FieldDate:
		return "date"
	case FieldNumeric:
		return "numeric"
	default:
		return "text"
	}
}

// Field describes one attribute column.
type Field struct {
	Name      string
	Type      FieldType
	Size      int
	Precision int
}

// Feature is one record: a geometry plus attribute values aligned with Dataset.Fields.
// Attribute values are nil, string, int64, float64, bool or time.Time.
type Feature struct {
	Geometry   geom.T
	Attributes []any
}

// Dataset is what a geometry source yields for one file.
type Dataset struct {
	Fields   []Field
	Features []Feature

	// ShapeType is the declared shapefile geometry type (e.g. "POLYGON")
	ShapeType string

	// Layout is the coordinate layout shared by every geometry (XY, XYZ or XYM)
	Layout geom.Layout

	// EPSG is the resolved coordinate reference code; zero when the file has none or it is unknown
	EPSG int

	// CRSName is the name found in the .prj file, if any
	CRSName string

	// Encoding is the code page the attributes were decoded from
	Encoding string
}

// Layer is a dataset whose geometries are tagged with one spatial reference, ready for write.
type Layer struct {
	Schema   string
	Table    string
	SRID     int
	Layout   geom.Layout
	Fields   []Field
	Features []Feature
}

// GeometrySource reads one vector file into memory.
type GeometrySource interface {
	Read(ctx context.Context, path string) (*Dataset, error)
}

// TableWriter creates or replaces a table from a Layer on the given session.
// It returns the number of rows written.
type TableWriter interface {
	ReplaceTable(ctx context.Context, conn DBConnection, layer *Layer) (int64, error)
}

// SpatialLoader loads a single file. It never returns an error: every failure
// is reported through the LoadOutcome.
type SpatialLoader interface {
	Load(ctx context.Context, conn DBConnection, file VectorFile) LoadOutcome
}

// FileDiscoverer finds shapefiles under a root directory in a stable order.
type FileDiscoverer interface {
	Discover(root string) ([]VectorFile, error)
}

// BatchRunner runs a whole directory load.
type BatchRunner interface {
	Run(ctx context.Context, config BatchConfig) (*BatchReport, error)
}
