// Package files groups the shapefile discovery sub-packages.
//
//   - filesystem: filesystem abstraction (OS and in-memory) for testability
//   - scanner: recursive discovery of *.shp files under a root directory
//   - dedup: keep-first deduplication by base file name
//
// # Usage
//
//	import (
//	    "github.com/vvka-141/shp2pg/internal/files/dedup"
//	    "github.com/vvka-141/shp2pg/internal/files/scanner"
//	)
//
//	found, err := scanner.NewScanner().Discover("./data")
//	result := dedup.Deduplicate(found)
//	// result.Retained is loaded, result.Duplicates is reported
package files
