// Package fixtures writes shapefile directory trees for tests.
package fixtures

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jonas-p/go-shp"
)

// Spatial reference sidecars in ESRI WKT, as written by desktop GIS tools.
const (
	WGS84PRJ    = `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]]`
	CGCS2000PRJ = `GEOGCS["GCS_China_Geodetic_Coordinate_System_2000",DATUM["D_China_2000",SPHEROID["CGCS2000",6378137.0,298.257222101]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]]`
)

type layer struct {
	points  [][2]float64
	prj     string
	corrupt bool
}

// TreeBuilder accumulates shapefiles keyed by path relative to the tree root.
//
// Example usage:
//
//	err := fixtures.NewTreeBuilder().
//	    AddPoints("roads.shp", fixtures.WGS84PRJ, [2]float64{1, 2}).
//	    AddCorrupt("broken/rivers.shp").
//	    Build(t.TempDir())
type TreeBuilder struct {
	layers map[string]layer
}

func NewTreeBuilder() *TreeBuilder {
	return &TreeBuilder{layers: make(map[string]layer)}
}

// AddPoints adds a point layer with one "name" attribute per point.
// An empty prj writes no .prj sidecar.
func (b *TreeBuilder) AddPoints(relPath, prj string, points ...[2]float64) *TreeBuilder {
	b.layers[relPath] = layer{points: points, prj: prj}
	return b
}

// AddCorrupt adds a .shp whose header is garbage, with no sidecars.
func (b *TreeBuilder) AddCorrupt(relPath string) *TreeBuilder {
	b.layers[relPath] = layer{corrupt: true}
	return b
}

// Paths returns the relative paths added so far, sorted.
func (b *TreeBuilder) Paths() []string {
	paths := make([]string, 0, len(b.layers))
	for p := range b.layers {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Build writes every layer under root.
func (b *TreeBuilder) Build(root string) error {
	for _, rel := range b.Paths() {
		l := b.layers[rel]
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}

		if l.corrupt {
			if err := os.WriteFile(path, []byte("this is not a shapefile"), 0o644); err != nil {
				return err
			}
			continue
		}
		if err := writePoints(path, l); err != nil {
			return fmt.Errorf("write %s: %w", rel, err)
		}
	}
	return nil
}

func writePoints(path string, l layer) error {
	w, err := shp.Create(path, shp.POINT)
	if err != nil {
		return err
	}
	if err := w.SetFields([]shp.Field{shp.StringField("name", 32)}); err != nil {
		w.Close()
		return err
	}
	for i, p := range l.points {
		row := w.Write(&shp.Point{X: p[0], Y: p[1]})
		if err := w.WriteAttribute(int(row), 0, fmt.Sprintf("feature %d", i+1)); err != nil {
			w.Close()
			return err
		}
	}
	w.Close()

	base := strings.TrimSuffix(path, filepath.Ext(path))
	// go-shp v0.1.1 names the table "<base>dbf"
	if _, err := os.Stat(base + "dbf"); err == nil {
		if err := os.Rename(base+"dbf", base+".dbf"); err != nil {
			return err
		}
	}

	if l.prj != "" {
		return os.WriteFile(base+".prj", []byte(l.prj), 0o644)
	}
	return nil
}

// StandardTree is a small survey delivery:
//   - roads.shp (WGS84, 3 points) and a nested duplicate a/roads.shp
//   - b/parcels.shp (CGCS2000, 2 points)
//   - b/c/wells.shp (no .prj, 1 point)
//   - broken/rivers.shp (unreadable)
func StandardTree() *TreeBuilder {
	return NewTreeBuilder().
		AddPoints("a/roads.shp", WGS84PRJ, [2]float64{10, 10}).
		AddPoints("b/parcels.shp", CGCS2000PRJ, [2]float64{116.4, 39.9}, [2]float64{121.5, 31.2}).
		AddPoints("b/c/wells.shp", "", [2]float64{5, 5}).
		AddCorrupt("broken/rivers.shp").
		AddPoints("roads.shp", WGS84PRJ, [2]float64{1, 1}, [2]float64{2, 2}, [2]float64{3, 3})
}
