package shapefile

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// CRS is the coordinate reference found in a .prj file.
type CRS struct {
	// Name is the name of the root CRS node
	Name string

	// EPSG is the resolved code, zero when unknown
	EPSG int
}

// wktNode is one KEYWORD[...] element of a WKT string.
type wktNode struct {
	keyword  string
	strings  []string
	numbers  []string
	children []*wktNode
}

func (n *wktNode) child(keyword string) *wktNode {
	for _, c := range n.children {
		if strings.EqualFold(c.keyword, keyword) {
			return c
		}
	}
	return nil
}

// ParsePRJ resolves the coordinate reference of WKT text. It reads the root
// node's AUTHORITY (WKT1) or ID (WKT2) first, then falls back to well-known
// names. Unknown references return a CRS with a zero EPSG and no error;
// malformed WKT returns an error.
func ParsePRJ(wkt string) (CRS, error) {
	wkt = strings.TrimSpace(strings.TrimPrefix(wkt, "\ufeff"))
	if wkt == "" {
		return CRS{}, nil
	}

	p := &wktParser{src: wkt}
	root, err := p.parseNode()
	if err != nil {
		return CRS{}, fmt.Errorf("malformed WKT: %w", err)
	}

	crs := CRS{}
	if len(root.strings) > 0 {
		crs.Name = root.strings[0]
	}
	crs.EPSG = authorityCode(root)
	if crs.EPSG == 0 {
		crs.EPSG = lookupName(crs.Name)
	}
	if crs.EPSG == 0 && strings.EqualFold(root.keyword, "GEOGCS") {
		if datum := root.child("DATUM"); datum != nil && len(datum.strings) > 0 {
			crs.EPSG = lookupName(datum.strings[0])
		}
	}
	return crs, nil
}

func authorityCode(n *wktNode) int {
	for _, kw := range []string{"AUTHORITY", "ID"} {
		a := n.child(kw)
		if a == nil || len(a.strings) == 0 || !strings.EqualFold(a.strings[0], "EPSG") {
			continue
		}
		raw := ""
		if len(a.strings) > 1 {
			raw = a.strings[1]
		} else if len(a.numbers) > 0 {
			raw = a.numbers[0]
		}
		if code, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && code > 0 {
			return code
		}
	}
	return 0
}

var wellKnownNames = map[string]int{
	"gcs_wgs_1984":                              4326,
	"wgs_84":                                    4326,
	"wgs84":                                     4326,
	"wgs_1984":                                  4326,
	"d_wgs_1984":                                4326,
	"wgs_1984_web_mercator_auxiliary_sphere":    3857,
	"wgs_84_pseudo_mercator":                    3857,
	"web_mercator":                              3857,
	"gcs_china_geodetic_coordinate_system_2000": 4490,
	"china_geodetic_coordinate_system_2000":     4490,
	"d_china_2000":                              4490,
	"cgcs2000":                                  4490,
	"gcs_north_american_1983":                   4269,
	"nad83":                                     4269,
	"d_north_american_1983":                     4269,
	"gcs_north_american_1927":                   4267,
	"nad27":                                     4267,
	"gcs_etrs_1989":                             4258,
	"etrs89":                                    4258,
	"d_etrs_1989":                               4258,
	"gcs_beijing_1954":                          4214,
	"gcs_xian_1980":                             4610,
}

var (
	wgsUTM     = regexp.MustCompile(`^wgs_(?:1984|84)_utm_zone_(\d{1,2})([ns])$`)
	nadUTM     = regexp.MustCompile(`^nad_?(?:1983|83)_utm_zone_(\d{1,2})n$`)
	etrsUTM    = regexp.MustCompile(`^etrs_?(?:1989|89)_utm_zone_(\d{1,2})n$`)
	cgcsGKCM   = regexp.MustCompile(`^cgcs2000_3_degree_gk_cm_(\d{2,3})e$`)
	cgcsGKZone = regexp.MustCompile(`^cgcs2000_3_degree_gk_zone_(\d{2})$`)
)

// normalizeName lower-cases a CRS name and collapses punctuation and spaces to underscores.
func normalizeName(name string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore && b.Len() > 0 {
			b.WriteByte('_')
			underscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

func lookupName(name string) int {
	key := normalizeName(name)
	if key == "" {
		return 0
	}
	if code, ok := wellKnownNames[key]; ok {
		return code
	}

	if m := wgsUTM.FindStringSubmatch(key); m != nil {
		zone, _ := strconv.Atoi(m[1])
		if zone < 1 || zone > 60 {
			return 0
		}
		if m[2] == "n" {
			return 32600 + zone
		}
		return 32700 + zone
	}
	if m := nadUTM.FindStringSubmatch(key); m != nil {
		zone, _ := strconv.Atoi(m[1])
		if zone >= 1 && zone <= 23 {
			return 26900 + zone
		}
		return 0
	}
	if m := etrsUTM.FindStringSubmatch(key); m != nil {
		zone, _ := strconv.Atoi(m[1])
		if zone >= 28 && zone <= 38 {
			return 25800 + zone
		}
		return 0
	}
	if m := cgcsGKCM.FindStringSubmatch(key); m != nil {
		cm, _ := strconv.Atoi(m[1])
		if cm >= 75 && cm <= 135 && cm%3 == 0 {
			return 4534 + (cm-75)/3
		}
		return 0
	}
	if m := cgcsGKZone.FindStringSubmatch(key); m != nil {
		zone, _ := strconv.Atoi(m[1])
		if zone >= 25 && zone <= 45 {
			return 4513 + zone - 25
		}
		return 0
	}
	return 0
}

// wktParser is a recursive-descent parser for the bracketed WKT CRS grammar.
type wktParser struct {
	src string
	pos int
}

func (p *wktParser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *wktParser) parseNode() (*wktNode, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && (isWordByte(p.src[p.pos])) {
		p.pos++
	}
	if start == p.pos {
		return nil, fmt.Errorf("expected keyword at offset %d", p.pos)
	}
	node := &wktNode{keyword: p.src[start:p.pos]}

	p.skipSpace()
	if p.pos >= len(p.src) || (p.src[p.pos] != '[' && p.src[p.pos] != '(') {
		return nil, fmt.Errorf("expected '[' after %s at offset %d", node.keyword, p.pos)
	}
	closing := byte(']')
	if p.src[p.pos] == '(' {
		closing = ')'
	}
	p.pos++

	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return nil, fmt.Errorf("unterminated %s", node.keyword)
		}
		switch c := p.src[p.pos]; {
		case c == closing:
			p.pos++
			return node, nil
		case c == ',':
			p.pos++
		case c == '"':
			s, err := p.parseString()
			if err != nil {
				return nil, err
			}
			node.strings = append(node.strings, s)
		case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
			start := p.pos
			for p.pos < len(p.src) && strings.IndexByte("+-.0123456789eE", p.src[p.pos]) >= 0 {
				p.pos++
			}
			node.numbers = append(node.numbers, p.src[start:p.pos])
		case isWordByte(c):
			// Bare enumerations (e.g. AXIS["X",EAST]) are words without brackets.
			save := p.pos
			child, err := p.parseNode()
			if err != nil {
				p.pos = save
				for p.pos < len(p.src) && isWordByte(p.src[p.pos]) {
					p.pos++
				}
				continue
			}
			node.children = append(node.children, child)
		default:
			return nil, fmt.Errorf("unexpected %q at offset %d", c, p.pos)
		}
	}
}

func (p *wktParser) parseString() (string, error) {
	p.pos++ // opening quote
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '"' {
			// "" is an escaped quote
			if p.pos+1 < len(p.src) && p.src[p.pos+1] == '"' {
				b.WriteByte('"')
				p.pos += 2
				continue
			}
			p.pos++
			return b.String(), nil
		}
		b.WriteByte(c)
		p.pos++
	}
	return "", fmt.Errorf("unterminated string")
}

func isWordByte(c byte) bool {
	return c == '_' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}
