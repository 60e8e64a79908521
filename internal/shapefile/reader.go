package shapefile

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"

	"github.com/vvka-141/shp2pg/pkg/shp2pg"
)

const (
	shpFileCode      = 9994
	shpHeaderSize    = 100
	dbfLanguageByte  = 29
	cancelCheckEvery = 1024
)

// Reader implements shp2pg.GeometrySource for ESRI shapefiles.
// Reader holds no per-file state and is safe for concurrent use.
type Reader struct {
	logger shp2pg.Logger
}

// NewReader creates a shapefile reader.
// Panics if logger is nil.
func NewReader(logger shp2pg.Logger) *Reader {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Reader{logger: logger}
}

// Read loads every record of the shapefile at path into memory.
// Corrupt input of any kind, including decoder panics, is returned as an error.
func (r *Reader) Read(ctx context.Context, path string) (ds *shp2pg.Dataset, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			ds = nil
			err = fmt.Errorf("corrupt shapefile: %v", rec)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base := strings.TrimSuffix(path, filepath.Ext(path))

	shpFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open shapefile: %w", err)
	}
	shapeType, err := readShpHeader(shpFile)
	if err != nil {
		shpFile.Close()
		return nil, err
	}

	dbfPath, ok := findSidecar(base, ".dbf")
	if !ok {
		shpFile.Close()
		return nil, fmt.Errorf("missing attribute table %s.dbf", filepath.Base(base))
	}
	dbfFile, err := os.Open(dbfPath)
	if err != nil {
		shpFile.Close()
		return nil, fmt.Errorf("failed to open attribute table: %w", err)
	}
	ldid, records, err := readDbfHeader(dbfFile)
	if err != nil {
		shpFile.Close()
		dbfFile.Close()
		return nil, err
	}

	dec, err := r.decoder(base, ldid)
	if err != nil {
		shpFile.Close()
		dbfFile.Close()
		return nil, err
	}

	sr := shp.SequentialReaderFromExt(shpFile, dbfFile)
	defer sr.Close()
	if err := sr.Err(); err != nil {
		return nil, fmt.Errorf("invalid header: %w", err)
	}

	crs := r.readCRS(base)
	layout := layoutFor(shapeType)
	fields := columnFields(sr.Fields(), dec)

	ds = &shp2pg.Dataset{
		Fields:    fields,
		ShapeType: shapeTypeName(shapeType),
		Layout:    layout,
		EPSG:      crs.EPSG,
		CRSName:   crs.Name,
		Encoding:  dec.label,
	}

	for n := 0; sr.Next(); n++ {
		if n%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		idx, shape := sr.Shape()
		g, err := toGeometry(shape)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", idx+1, err)
		}
		if g != nil && g.Layout() != layout {
			return nil, fmt.Errorf("record %d has %s coordinates but the file declares %s", idx+1, g.Layout(), layout)
		}

		attrs := make([]any, len(fields))
		for i, f := range fields {
			attrs[i] = parseValue(f.Type, sr.Attribute(i), dec)
		}
		ds.Features = append(ds.Features, shp2pg.Feature{Geometry: g, Attributes: attrs})
	}
	if err := sr.Err(); err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	if len(ds.Features) != records {
		return nil, fmt.Errorf("read %d shapes but the attribute table has %d records", len(ds.Features), records)
	}

	return ds, nil
}

// readShpHeader validates the file code and declared length, and returns the
// declared shape type. The file is rewound so go-shp can parse the header again.
func readShpHeader(f *os.File) (shp.ShapeType, error) {
	header := make([]byte, shpHeaderSize)
	if _, err := io.ReadFull(f, header); err != nil {
		return 0, fmt.Errorf("truncated shapefile header: %w", err)
	}
	if code := binary.BigEndian.Uint32(header[0:4]); code != shpFileCode {
		return 0, fmt.Errorf("not a shapefile: file code %d", code)
	}

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	// The header length is counted in 16-bit words.
	declared := int64(binary.BigEndian.Uint32(header[24:28])) * 2
	if declared > info.Size() {
		return 0, fmt.Errorf("shapefile is truncated: header declares %d bytes, file has %d", declared, info.Size())
	}

	shapeType := shp.ShapeType(int32(binary.LittleEndian.Uint32(header[32:36])))
	if shapeType == shp.MULTIPATCH {
		return 0, fmt.Errorf("unsupported shape type %s", shapeTypeName(shapeType))
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	return shapeType, nil
}

// readDbfHeader returns the language driver byte and the record count.
func readDbfHeader(f io.ReadSeeker) (byte, int, error) {
	header := make([]byte, dbfLanguageByte+1)
	if _, err := io.ReadFull(f, header); err != nil {
		return 0, 0, fmt.Errorf("truncated attribute table header: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, 0, err
	}
	records := int(binary.LittleEndian.Uint32(header[4:8]))
	return header[dbfLanguageByte], records, nil
}

// decoder picks the attribute decoder: .cpg first, then the DBF language driver.
func (r *Reader) decoder(base string, ldid byte) (*textDecoder, error) {
	cpgPath, ok := findSidecar(base, ".cpg")
	if !ok {
		return decoderForDriver(ldid), nil
	}
	raw, err := os.ReadFile(cpgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read code page file: %w", err)
	}
	dec, err := newTextDecoder(string(raw))
	if err != nil {
		return nil, err
	}
	return dec, nil
}

// readCRS returns the reference declared in the .prj sidecar.
// A missing or malformed .prj yields a zero CRS.
func (r *Reader) readCRS(base string) CRS {
	prjPath, ok := findSidecar(base, ".prj")
	if !ok {
		return CRS{}
	}
	raw, err := os.ReadFile(prjPath)
	if err != nil {
		r.logger.Warn("Cannot read %s: %v", filepath.Base(prjPath), err)
		return CRS{}
	}
	crs, err := ParsePRJ(string(raw))
	if err != nil {
		r.logger.Warn("Ignoring %s: %v", filepath.Base(prjPath), err)
		return CRS{}
	}
	if crs.EPSG == 0 && crs.Name != "" {
		r.logger.Verbose("No EPSG code known for CRS %q", crs.Name)
	}
	return crs
}

// findSidecar locates base+ext, matching the extension case-insensitively.
func findSidecar(base, ext string) (string, bool) {
	for _, candidate := range []string{base + ext, base + strings.ToUpper(ext)} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}

	dir, stem := filepath.Split(base)
	if dir == "" {
		dir = "."
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.EqualFold(filepath.Ext(name), ext) {
			continue
		}
		if strings.TrimSuffix(name, filepath.Ext(name)) == stem {
			return filepath.Join(dir, name), true
		}
	}
	return "", false
}

var _ shp2pg.GeometrySource = (*Reader)(nil)
