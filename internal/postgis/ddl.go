package postgis

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/twpayne/go-geom"

	"github.com/vvka-141/shp2pg/pkg/shp2pg"
)

// maxIdentifierLength is PostgreSQL's NAMEDATALEN - 1.
const maxIdentifierLength = 63

// CheckIdentifier rejects names PostgreSQL would silently truncate.
func CheckIdentifier(name string) error {
	if len(name) > maxIdentifierLength {
		return fmt.Errorf("name %q is %d bytes, PostgreSQL identifiers are limited to %d", name, len(name), maxIdentifierLength)
	}
	return nil
}

func qualifiedName(schema, table string) string {
	return pgx.Identifier{schema, table}.Sanitize()
}

func columnType(t shp2pg.FieldType) string {
	switch t {
	case shp2pg.FieldInteger:
		return "bigint"
	case shp2pg.FieldFloat:
		return "double precision"
	case shp2pg.FieldBoolean:
		return "boolean"
	case shp2pg.FieldDate:
		return "date"
	case shp2pg.FieldNumeric:
		return "numeric"
	default:
		return "text"
	}
}

// geometryTypmod returns the typmod geometry type for a layout, e.g. "GeometryZ".
func geometryTypmod(layout geom.Layout) string {
	switch layout {
	case geom.XYZ:
		return "GeometryZ"
	case geom.XYM:
		return "GeometryM"
	case geom.XYZM:
		return "GeometryZM"
	default:
		return "Geometry"
	}
}

func dropTableSQL(layer *shp2pg.Layer) string {
	return "DROP TABLE IF EXISTS " + qualifiedName(layer.Schema, layer.Table)
}

func createTableSQL(layer *shp2pg.Layer) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(qualifiedName(layer.Schema, layer.Table))
	b.WriteString(" (")
	for _, f := range layer.Fields {
		b.WriteString(pgx.Identifier{f.Name}.Sanitize())
		b.WriteByte(' ')
		b.WriteString(columnType(f.Type))
		b.WriteString(", ")
	}
	fmt.Fprintf(&b, "%s geometry(%s, %d))",
		pgx.Identifier{shp2pg.GeometryColumn}.Sanitize(), geometryTypmod(layer.Layout), layer.SRID)
	return b.String()
}

// insertSQL returns a single-row INSERT. Numeric columns are sent as text and
// cast server-side; the geometry is sent as EWKB.
func insertSQL(layer *shp2pg.Layer) string {
	cols := make([]string, 0, len(layer.Fields)+1)
	vals := make([]string, 0, len(layer.Fields)+1)
	for i, f := range layer.Fields {
		cols = append(cols, pgx.Identifier{f.Name}.Sanitize())
		if f.Type == shp2pg.FieldNumeric {
			vals = append(vals, fmt.Sprintf("$%d::text::numeric", i+1))
		} else {
			vals = append(vals, fmt.Sprintf("$%d", i+1))
		}
	}
	cols = append(cols, pgx.Identifier{shp2pg.GeometryColumn}.Sanitize())
	vals = append(vals, fmt.Sprintf("ST_GeomFromEWKB($%d::bytea)", len(layer.Fields)+1))

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		qualifiedName(layer.Schema, layer.Table), strings.Join(cols, ", "), strings.Join(vals, ", "))
}

// indexName derives "<table>_geometry_idx". When that does not fit an
// identifier the table part is shortened and a hash of the full table name
// keeps the result distinct per table.
func indexName(table string) string {
	suffix := "_" + shp2pg.GeometryColumn + "_idx"
	if len(table)+len(suffix) <= maxIdentifierLength {
		return table + suffix
	}
	h := fnv.New32a()
	h.Write([]byte(table))
	tag := fmt.Sprintf("_%08x", h.Sum32())
	return truncateUTF8(table, maxIdentifierLength-len(tag)-len(suffix)) + tag + suffix
}

func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && (s[n]&0xC0) == 0x80 {
		n--
	}
	return s[:n]
}

func createIndexSQL(layer *shp2pg.Layer) string {
	return fmt.Sprintf("CREATE INDEX %s ON %s USING GIST (%s)",
		pgx.Identifier{indexName(layer.Table)}.Sanitize(),
		qualifiedName(layer.Schema, layer.Table),
		pgx.Identifier{shp2pg.GeometryColumn}.Sanitize())
}
