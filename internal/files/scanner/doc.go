// Package scanner implements shapefile discovery over a filesystem.FileSystemProvider.
//
// Only the primary .shp member of each shapefile is reported; the .shx, .dbf,
// .prj and .cpg sidecars are resolved later by the reader from the same base path.
package scanner
