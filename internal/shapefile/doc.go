// Package shapefile reads ESRI shapefiles into shp2pg.Dataset values.
//
// The .shp and .dbf members are decoded by github.com/jonas-p/go-shp, shapes are
// converted to github.com/twpayne/go-geom geometries, the coordinate reference is
// resolved from the .prj sidecar and attribute text is decoded using the code page
// named in the .cpg sidecar. Sidecars are looked up case-insensitively.
package shapefile
