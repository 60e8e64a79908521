package postgis

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/twpayne/go-geom/encoding/ewkb"

	"github.com/vvka-141/shp2pg/pkg/shp2pg"
)

// Writer implements shp2pg.TableWriter.
// Writer holds only configuration and is safe for concurrent use on distinct connections.
type Writer struct {
	chunkSize    int
	spatialIndex bool
	logger       shp2pg.Logger
}

// NewWriter creates a table writer from load options.
// Panics if logger is nil.
func NewWriter(opts shp2pg.LoadOptions, logger shp2pg.Logger) *Writer {
	if logger == nil {
		panic("logger cannot be nil")
	}
	chunk := opts.ChunkSize
	if chunk < 1 {
		chunk = shp2pg.DefaultChunkSize
	}
	return &Writer{
		chunkSize:    chunk,
		spatialIndex: opts.SpatialIndex,
		logger:       logger,
	}
}

// ReplaceTable drops and recreates layer.Table and inserts every feature, all in
// one transaction. It returns the number of rows inserted. On error nothing is
// committed and any previous table with the same name is left as it was.
func (w *Writer) ReplaceTable(ctx context.Context, conn shp2pg.DBConnection, layer *shp2pg.Layer) (rows int64, err error) {
	if err := validateLayer(layer); err != nil {
		return 0, err
	}

	// Encode up front so a bad geometry fails before anything is sent.
	args, err := encodeRows(layer)
	if err != nil {
		return 0, err
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				w.logger.Verbose("Rollback of %s failed: %v", layer.Table, rbErr)
			}
		}
	}()

	if err = ensureSchema(ctx, tx, layer.Schema); err != nil {
		return 0, err
	}
	if _, err = tx.Exec(ctx, dropTableSQL(layer)); err != nil {
		return 0, fmt.Errorf("failed to drop existing table: %w", err)
	}
	if _, err = tx.Exec(ctx, createTableSQL(layer)); err != nil {
		return 0, fmt.Errorf("failed to create table: %w", err)
	}

	rows, err = w.insertChunks(ctx, tx, layer, args)
	if err != nil {
		return 0, err
	}

	if w.spatialIndex {
		if _, err = tx.Exec(ctx, createIndexSQL(layer)); err != nil {
			return 0, fmt.Errorf("failed to create spatial index: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return rows, nil
}

// insertChunks sends rows as pgx batches of at most chunkSize statements.
func (w *Writer) insertChunks(ctx context.Context, tx pgx.Tx, layer *shp2pg.Layer, args [][]any) (int64, error) {
	sql := insertSQL(layer)
	var total int64

	for start := 0; start < len(args); start += w.chunkSize {
		end := start + w.chunkSize
		if end > len(args) {
			end = len(args)
		}

		batch := &pgx.Batch{}
		for _, row := range args[start:end] {
			batch.Queue(sql, row...)
		}

		results := tx.SendBatch(ctx, batch)
		for i := start; i < end; i++ {
			tag, err := results.Exec()
			if err != nil {
				results.Close()
				return 0, fmt.Errorf("failed to insert feature %d: %w", i+1, err)
			}
			total += tag.RowsAffected()
		}
		if err := results.Close(); err != nil {
			return 0, fmt.Errorf("failed to complete insert batch: %w", err)
		}

		w.logger.Verbose("%s: inserted %d/%d rows", layer.Table, end, len(args))
	}

	return total, nil
}

func ensureSchema(ctx context.Context, tx pgx.Tx, schema string) error {
	var exists bool
	if err := tx.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM pg_namespace WHERE nspname = $1)", schema).Scan(&exists); err != nil {
		return fmt.Errorf("failed to look up schema %s: %w", schema, err)
	}
	if exists {
		return nil
	}
	if _, err := tx.Exec(ctx, "CREATE SCHEMA "+pgx.Identifier{schema}.Sanitize()); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", schema, err)
	}
	return nil
}

// validateLayer enforces that every geometry carries the layer's reference and layout.
func validateLayer(layer *shp2pg.Layer) error {
	if layer == nil {
		return errors.New("layer is nil")
	}
	if layer.Schema == "" || layer.Table == "" {
		return errors.New("layer schema and table are required")
	}
	if err := CheckIdentifier(layer.Schema); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	if err := CheckIdentifier(layer.Table); err != nil {
		return fmt.Errorf("table: %w", err)
	}
	if layer.SRID <= 0 {
		return fmt.Errorf("layer has invalid SRID %d", layer.SRID)
	}
	for i, f := range layer.Features {
		if len(f.Attributes) != len(layer.Fields) {
			return fmt.Errorf("feature %d has %d attributes for %d fields", i+1, len(f.Attributes), len(layer.Fields))
		}
		if f.Geometry == nil {
			continue
		}
		if srid := f.Geometry.SRID(); srid != layer.SRID {
			return fmt.Errorf("feature %d has SRID %d, expected %d", i+1, srid, layer.SRID)
		}
		if f.Geometry.Layout() != layer.Layout {
			return fmt.Errorf("feature %d has layout %s, expected %s", i+1, f.Geometry.Layout(), layer.Layout)
		}
	}
	return nil
}

func encodeRows(layer *shp2pg.Layer) ([][]any, error) {
	rows := make([][]any, len(layer.Features))
	for i, f := range layer.Features {
		row := make([]any, 0, len(f.Attributes)+1)
		row = append(row, f.Attributes...)

		var wkb []byte
		if f.Geometry != nil {
			b, err := ewkb.Marshal(f.Geometry, binary.LittleEndian)
			if err != nil {
				return nil, fmt.Errorf("failed to encode geometry of feature %d: %w", i+1, err)
			}
			wkb = b
		}
		rows[i] = append(row, wkb)
	}
	return rows, nil
}

var _ shp2pg.TableWriter = (*Writer)(nil)
