// Package dedup reduces discovered shapefiles to one file per base name.
package dedup

import "github.com/vvka-141/shp2pg/pkg/shp2pg"

// Result is the outcome of deduplication.
type Result struct {
	// Retained holds the first file seen for each name, in discovery order.
	Retained []shp2pg.VectorFile

	// Duplicates lists each name that occurred more than once, ordered by
	// the position of its first repeat.
	Duplicates []string

	// Index maps each retained name to its file.
	Index map[string]shp2pg.VectorFile
}

// HasDuplicates reports whether any name was seen more than once.
func (r Result) HasDuplicates() bool {
	return len(r.Duplicates) > 0
}

// Deduplicate keeps the first file per base name (case-sensitive) and drops the rest.
// Input order is preserved in Retained.
func Deduplicate(files []shp2pg.VectorFile) Result {
	res := Result{
		Retained: make([]shp2pg.VectorFile, 0, len(files)),
		Index:    make(map[string]shp2pg.VectorFile, len(files)),
	}
	reported := make(map[string]bool)

	for _, f := range files {
		if _, seen := res.Index[f.Name]; seen {
			if !reported[f.Name] {
				reported[f.Name] = true
				res.Duplicates = append(res.Duplicates, f.Name)
			}
			continue
		}
		res.Index[f.Name] = f
		res.Retained = append(res.Retained, f)
	}

	return res
}
