package shapefile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/require"
)

// fixture describes a shapefile written by writeShapefile.
type fixture struct {
	shapeType shp.ShapeType
	shapes    []shp.Shape
	fields    []shp.Field
	rows      [][]interface{}
	prj       string
	cpg       string
}

// writeShapefile writes dir/name.shp with its .shx and .dbf, plus optional
// .prj and .cpg sidecars, and returns the .shp path.
func writeShapefile(t *testing.T, dir, name string, fx fixture) string {
	t.Helper()

	base := filepath.Join(dir, name)
	w, err := shp.Create(base+".shp", fx.shapeType)
	require.NoError(t, err)
	require.NoError(t, w.SetFields(fx.fields))

	for i, s := range fx.shapes {
		row := w.Write(s)
		if i < len(fx.rows) {
			for j, v := range fx.rows[i] {
				if v == nil {
					continue
				}
				require.NoError(t, w.WriteAttribute(int(row), j, v))
			}
		}
	}
	w.Close()

	// go-shp v0.1.1 names the table "<base>dbf"
	if _, err := os.Stat(base + "dbf"); err == nil {
		require.NoError(t, os.Rename(base+"dbf", base+".dbf"))
	}

	if fx.prj != "" {
		require.NoError(t, os.WriteFile(base+".prj", []byte(fx.prj), 0644))
	}
	if fx.cpg != "" {
		require.NoError(t, os.WriteFile(base+".cpg", []byte(fx.cpg), 0644))
	}
	return base + ".shp"
}

func polygonShape(rings ...[]shp.Point) *shp.Polygon {
	p := shp.Polygon(*shp.NewPolyLine(rings))
	return &p
}

// square returns a closed ring; clockwise when cw is true.
func square(x, y, size float64, cw bool) []shp.Point {
	ring := []shp.Point{{X: x, Y: y}, {X: x, Y: y + size}, {X: x + size, Y: y + size}, {X: x + size, Y: y}, {X: x, Y: y}}
	if !cw {
		for i, j := 0, len(ring)-1; i < j; i, j = i+1, j-1 {
			ring[i], ring[j] = ring[j], ring[i]
		}
	}
	return ring
}

func renameToUpper(t *testing.T, dir, name string) {
	t.Helper()
	for _, ext := range []string{".shp", ".shx", ".dbf"} {
		require.NoError(t, os.Rename(
			filepath.Join(dir, name+ext),
			filepath.Join(dir, strings.ToUpper(name+ext)),
		))
	}
}
