package shapefile

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

const encodingUTF8 = "utf-8"

// codePages maps Windows code page numbers, as written by ArcGIS in .cpg files,
// to WHATWG encoding labels.
var codePages = map[string]string{
	"65001": "utf-8",
	"936":   "gbk",
	"54936": "gb18030",
	"950":   "big5",
	"932":   "shift_jis",
	"949":   "euc-kr",
	"1250":  "windows-1250",
	"1251":  "windows-1251",
	"1252":  "windows-1252",
	"1253":  "windows-1253",
	"1254":  "windows-1254",
	"1255":  "windows-1255",
	"1256":  "windows-1256",
	"1257":  "windows-1257",
	"28591": "iso-8859-1",
	"28592": "iso-8859-2",
	"28605": "iso-8859-15",
}

// languageDrivers maps the DBF header language driver byte to a label.
// Used only when no .cpg file is present.
var languageDrivers = map[byte]string{
	0x03: "windows-1252",
	0x13: "shift_jis",
	0x4D: "gbk",
	0x4E: "euc-kr",
	0x4F: "big5",
	0x57: "windows-1252",
	0x7A: "gbk",
	0xC8: "windows-1250",
	0xC9: "windows-1251",
}

// textDecoder turns raw DBF bytes into valid UTF-8.
type textDecoder struct {
	label string
	enc   encoding.Encoding
}

// newTextDecoder resolves a .cpg label. Empty means UTF-8.
func newTextDecoder(label string) (*textDecoder, error) {
	label = strings.ToLower(strings.TrimSpace(label))
	label = strings.TrimPrefix(label, "ansi ")
	label = strings.TrimPrefix(label, "cp")
	if label == "" || label == "utf8" {
		label = encodingUTF8
	}
	if mapped, ok := codePages[label]; ok {
		label = mapped
	}
	if label == encodingUTF8 {
		return &textDecoder{label: encodingUTF8}, nil
	}

	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported code page %q: %w", label, err)
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		name = label
	}
	return &textDecoder{label: name, enc: enc}, nil
}

// decoderForDriver returns the decoder implied by a DBF language driver byte,
// or UTF-8 when the byte is zero or unknown.
func decoderForDriver(ldid byte) *textDecoder {
	if label, ok := languageDrivers[ldid]; ok {
		if d, err := newTextDecoder(label); err == nil {
			return d
		}
	}
	return &textDecoder{label: encodingUTF8}
}

func (d *textDecoder) decode(raw string) string {
	raw = strings.Trim(raw, " \x00")
	if d.enc == nil {
		if utf8.ValidString(raw) {
			return raw
		}
		return strings.ToValidUTF8(raw, "\uFFFD")
	}
	out, err := d.enc.NewDecoder().String(raw)
	if err != nil {
		return strings.ToValidUTF8(raw, "\uFFFD")
	}
	return out
}
