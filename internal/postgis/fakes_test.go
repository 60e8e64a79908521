package postgis

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeConn records every statement sent through it or its transactions.
type fakeConn struct {
	statements []string
	batches    [][]*pgx.QueuedQuery

	schemaExists   bool
	postgisVersion string
	failInsertAt   int // 1-based row number to fail, zero for never
	failBegin      error

	begun, committed, rolledBack bool
	insertsSeen                  int
}

func (c *fakeConn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	c.statements = append(c.statements, sql)
	return pgconn.NewCommandTag("OK"), nil
}

func (c *fakeConn) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	c.statements = append(c.statements, sql)
	switch {
	case strings.Contains(sql, "pg_namespace"):
		return fakeRow{value: c.schemaExists}
	case strings.Contains(sql, "pg_extension"):
		if c.postgisVersion == "" {
			return fakeRow{err: pgx.ErrNoRows}
		}
		return fakeRow{value: c.postgisVersion}
	}
	return fakeRow{err: errors.New("unexpected query")}
}

func (c *fakeConn) Begin(ctx context.Context) (pgx.Tx, error) {
	if c.failBegin != nil {
		return nil, c.failBegin
	}
	c.begun = true
	return &fakeTx{conn: c}, nil
}

type fakeTx struct {
	pgx.Tx
	conn *fakeConn
}

func (t *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return t.conn.Exec(ctx, sql, args...)
}

func (t *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return t.conn.QueryRow(ctx, sql, args...)
}

func (t *fakeTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	t.conn.batches = append(t.conn.batches, b.QueuedQueries)
	return &fakeBatchResults{conn: t.conn, remaining: b.Len()}
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.conn.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if t.conn.committed {
		return pgx.ErrTxClosed
	}
	t.conn.rolledBack = true
	return nil
}

type fakeBatchResults struct {
	pgx.BatchResults
	conn      *fakeConn
	remaining int
}

func (r *fakeBatchResults) Exec() (pgconn.CommandTag, error) {
	r.remaining--
	r.conn.insertsSeen++
	if r.conn.failInsertAt > 0 && r.conn.insertsSeen == r.conn.failInsertAt {
		return pgconn.CommandTag{}, errors.New("value too long for type")
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (r *fakeBatchResults) Close() error { return nil }

type fakeRow struct {
	value any
	err   error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	switch d := dest[0].(type) {
	case *bool:
		*d = r.value.(bool)
	case *string:
		*d = r.value.(string)
	}
	return nil
}
