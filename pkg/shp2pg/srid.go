package shp2pg

// SRIDPolicy resolves the spatial reference written for a file.
//
// A file whose CRS resolves to an EPSG code keeps it. Otherwise the Default
// identifier is used and the result is flagged as defaulted, so operators can
// audit inputs with missing or unknown .prj files.
type SRIDPolicy struct {
	Default int
}

// NewSRIDPolicy returns a policy falling back to def, or DefaultSRID when def is not positive.
func NewSRIDPolicy(def int) SRIDPolicy {
	if def <= 0 {
		def = DefaultSRID
	}
	return SRIDPolicy{Default: def}
}

// Resolve returns the identifier to use and whether the default was applied.
// epsg is the code found by the geometry source; zero or negative means unresolved.
func (p SRIDPolicy) Resolve(epsg int) (srid int, defaulted bool) {
	if epsg > 0 {
		return epsg, false
	}
	def := p.Default
	if def <= 0 {
		def = DefaultSRID
	}
	return def, true
}
