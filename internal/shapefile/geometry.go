package shapefile

import (
	"fmt"

	"github.com/jonas-p/go-shp"
	"github.com/twpayne/go-geom"
)

// layoutFor returns the coordinate layout used for every geometry of a file of type t.
// Z types keep Z and drop M, since PostGIS typmods cannot mix the two per column.
func layoutFor(t shp.ShapeType) geom.Layout {
	switch t {
	case shp.POINTZ, shp.POLYLINEZ, shp.POLYGONZ, shp.MULTIPOINTZ:
		return geom.XYZ
	case shp.POINTM, shp.POLYLINEM, shp.POLYGONM, shp.MULTIPOINTM:
		return geom.XYM
	default:
		return geom.XY
	}
}

func shapeTypeName(t shp.ShapeType) string {
	switch t {
	case shp.NULL:
		return "NULL"
	case shp.POINT:
		return "POINT"
	case shp.POLYLINE:
		return "POLYLINE"
	case shp.POLYGON:
		return "POLYGON"
	case shp.MULTIPOINT:
		return "MULTIPOINT"
	case shp.POINTZ:
		return "POINTZ"
	case shp.POLYLINEZ:
		return "POLYLINEZ"
	case shp.POLYGONZ:
		return "POLYGONZ"
	case shp.MULTIPOINTZ:
		return "MULTIPOINTZ"
	case shp.POINTM:
		return "POINTM"
	case shp.POLYLINEM:
		return "POLYLINEM"
	case shp.POLYGONM:
		return "POLYGONM"
	case shp.MULTIPOINTM:
		return "MULTIPOINTM"
	case shp.MULTIPATCH:
		return "MULTIPATCH"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int32(t))
	}
}

// toGeometry converts one shape record. A Null shape yields a nil geometry.
func toGeometry(s shp.Shape) (geom.T, error) {
	switch v := s.(type) {
	case *shp.Null:
		return nil, nil
	case *shp.Point:
		return geom.NewPointFlat(geom.XY, []float64{v.X, v.Y}), nil
	case *shp.PointZ:
		return geom.NewPointFlat(geom.XYZ, []float64{v.X, v.Y, v.Z}), nil
	case *shp.PointM:
		return geom.NewPointFlat(geom.XYM, []float64{v.X, v.Y, v.M}), nil
	case *shp.MultiPoint:
		return multiPoint(geom.XY, v.Points, nil)
	case *shp.MultiPointZ:
		return multiPoint(geom.XYZ, v.Points, v.ZArray)
	case *shp.MultiPointM:
		return multiPoint(geom.XYM, v.Points, v.MArray)
	case *shp.PolyLine:
		return lines(geom.XY, v.Parts, v.Points, nil)
	case *shp.PolyLineZ:
		return lines(geom.XYZ, v.Parts, v.Points, v.ZArray)
	case *shp.PolyLineM:
		return lines(geom.XYM, v.Parts, v.Points, v.MArray)
	case *shp.Polygon:
		return polygons(geom.XY, v.Parts, v.Points, nil)
	case *shp.PolygonZ:
		return polygons(geom.XYZ, v.Parts, v.Points, v.ZArray)
	case *shp.PolygonM:
		return polygons(geom.XYM, v.Parts, v.Points, v.MArray)
	default:
		return nil, fmt.Errorf("unsupported shape %T", s)
	}
}

// flatten interleaves points with an optional third ordinate.
func flatten(layout geom.Layout, pts []shp.Point, third []float64) ([]float64, error) {
	stride := layout.Stride()
	if stride == 3 && len(third) != len(pts) {
		return nil, fmt.Errorf("ordinate array has %d values for %d points", len(third), len(pts))
	}
	flat := make([]float64, 0, len(pts)*stride)
	for i, p := range pts {
		flat = append(flat, p.X, p.Y)
		if stride == 3 {
			flat = append(flat, third[i])
		}
	}
	return flat, nil
}

func multiPoint(layout geom.Layout, pts []shp.Point, third []float64) (geom.T, error) {
	flat, err := flatten(layout, pts, third)
	if err != nil {
		return nil, err
	}
	return geom.NewMultiPointFlat(layout, flat), nil
}

// partRanges splits point indices by part offsets, validating them.
func partRanges(parts []int32, numPoints int) ([][2]int, error) {
	ranges := make([][2]int, 0, len(parts))
	for i, start := range parts {
		end := numPoints
		if i+1 < len(parts) {
			end = int(parts[i+1])
		}
		if start < 0 || int(start) > end || end > numPoints {
			return nil, fmt.Errorf("part %d has invalid bounds [%d, %d) for %d points", i, start, end, numPoints)
		}
		ranges = append(ranges, [2]int{int(start), end})
	}
	return ranges, nil
}

func lines(layout geom.Layout, parts []int32, pts []shp.Point, third []float64) (geom.T, error) {
	flat, err := flatten(layout, pts, third)
	if err != nil {
		return nil, err
	}
	ranges, err := partRanges(parts, len(pts))
	if err != nil {
		return nil, err
	}
	stride := layout.Stride()

	if len(ranges) == 1 {
		r := ranges[0]
		return geom.NewLineStringFlat(layout, flat[r[0]*stride:r[1]*stride]), nil
	}

	ends := make([]int, len(ranges))
	for i, r := range ranges {
		ends[i] = r[1] * stride
	}
	return geom.NewMultiLineStringFlat(layout, flat, ends), nil
}

// polygons groups rings into polygons. Shapefile outer rings are clockwise and
// holes counter-clockwise; a hole belongs to the outer ring preceding it.
// A hole with no preceding outer ring is promoted to an outer ring.
func polygons(layout geom.Layout, parts []int32, pts []shp.Point, third []float64) (geom.T, error) {
	flat, err := flatten(layout, pts, third)
	if err != nil {
		return nil, err
	}
	ranges, err := partRanges(parts, len(pts))
	if err != nil {
		return nil, err
	}
	stride := layout.Stride()

	var (
		coords []float64
		endss  [][]int
	)
	for _, r := range ranges {
		ring := flat[r[0]*stride : r[1]*stride]
		if len(ring) == 0 {
			continue
		}
		if clockwise(pts[r[0]:r[1]]) || len(endss) == 0 {
			endss = append(endss, nil)
		}
		coords = append(coords, ring...)
		last := len(endss) - 1
		endss[last] = append(endss[last], len(coords))
	}

	switch len(endss) {
	case 0:
		return geom.NewPolygon(layout), nil
	case 1:
		return geom.NewPolygonFlat(layout, coords, endss[0]), nil
	default:
		return geom.NewMultiPolygonFlat(layout, coords, endss), nil
	}
}

// clockwise reports whether a ring winds clockwise, using the shoelace sum.
func clockwise(ring []shp.Point) bool {
	var sum float64
	for i := 0; i < len(ring); i++ {
		a := ring[i]
		b := ring[(i+1)%len(ring)]
		sum += (b.X - a.X) * (b.Y + a.Y)
	}
	return sum > 0
}
