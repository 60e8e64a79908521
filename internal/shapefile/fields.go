package shapefile

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jonas-p/go-shp"

	"github.com/vvka-141/shp2pg/pkg/shp2pg"
)

// maxBigintDigits is the widest N(x,0) field stored as bigint.
const maxBigintDigits = 18

// fieldType maps a DBF field descriptor to a column type.
func fieldType(f shp.Field) shp2pg.FieldType {
	switch f.Fieldtype {
	case 'N':
		if f.Precision > 0 {
			return shp2pg.FieldFloat
		}
		if f.Size > maxBigintDigits {
			return shp2pg.FieldNumeric
		}
		return shp2pg.FieldInteger
	case 'F', 'O':
		return shp2pg.FieldFloat
	case 'I', '+':
		return shp2pg.FieldInteger
	case 'L':
		return shp2pg.FieldBoolean
	case 'D':
		return shp2pg.FieldDate
	default:
		return shp2pg.FieldText
	}
}

// columnFields builds the column list, decoding names and making them unique.
// A name equal to the geometry column or to an earlier field gets a numeric suffix.
// Columns are quoted identifiers, so the comparison is case-sensitive.
func columnFields(raw []shp.Field, dec *textDecoder) []shp2pg.Field {
	used := map[string]bool{shp2pg.GeometryColumn: true}
	out := make([]shp2pg.Field, len(raw))

	for i, f := range raw {
		name := dec.decode(f.String())
		if name == "" {
			name = fmt.Sprintf("field_%d", i+1)
		}
		base := name
		for n := 1; used[name]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		used[name] = true

		out[i] = shp2pg.Field{
			Name:      name,
			Type:      fieldType(f),
			Size:      int(f.Size),
			Precision: int(f.Precision),
		}
	}
	return out
}

// parseValue converts a trimmed DBF value. Blank and unparseable values become nil.
func parseValue(t shp2pg.FieldType, raw string, dec *textDecoder) any {
	if t == shp2pg.FieldText {
		s := dec.decode(raw)
		if s == "" {
			return nil
		}
		return s
	}

	s := strings.Trim(raw, " \x00")
	if s == "" || strings.Trim(s, "*") == "" {
		return nil
	}

	switch t {
	case shp2pg.FieldInteger:
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			return v
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) && math.Abs(f) < 1<<62 {
			return int64(f)
		}
		return nil
	case shp2pg.FieldNumeric:
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return nil
		}
		return s
	case shp2pg.FieldFloat:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return f
	case shp2pg.FieldBoolean:
		switch s[0] {
		case 'T', 't', 'Y', 'y':
			return true
		case 'F', 'f', 'N', 'n':
			return false
		default:
			return nil
		}
	case shp2pg.FieldDate:
		d, err := time.Parse("20060102", s)
		if err != nil {
			return nil
		}
		return d
	default:
		return s
	}
}
