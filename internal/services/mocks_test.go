package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vvka-141/shp2pg/pkg/shp2pg"
)

type mockDiscoverer struct {
	files []shp2pg.VectorFile
	err   error
}

func (m *mockDiscoverer) Discover(_ string) ([]shp2pg.VectorFile, error) {
	return m.files, m.err
}

// mockLoader fails every file named in fail and succeeds otherwise.
type mockLoader struct {
	fail   map[string]bool
	onLoad func(shp2pg.VectorFile)

	mu       sync.Mutex
	loaded   []string
	conns    []shp2pg.DBConnection
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (m *mockLoader) Load(ctx context.Context, conn shp2pg.DBConnection, file shp2pg.VectorFile) shp2pg.LoadOutcome {
	n := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		p := m.peak.Load()
		if n <= p || m.peak.CompareAndSwap(p, n) {
			break
		}
	}

	m.mu.Lock()
	m.loaded = append(m.loaded, file.Name)
	m.conns = append(m.conns, conn)
	m.mu.Unlock()

	if m.onLoad != nil {
		m.onLoad(file)
	}
	if m.fail[file.Name] {
		return shp2pg.Failure(file, errors.Join(shp2pg.ErrParseFailed, errors.New("corrupt")))
	}
	return shp2pg.Success(file, 4326, false, 10, 0)
}

func (m *mockLoader) loadedNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.loaded...)
}

// mockDatabase hands out mockConns and counts releases.
type mockDatabase struct {
	pingErr    error
	acquireErr error
	postgis    bool

	acquired atomic.Int32
	released atomic.Int32
	closed   atomic.Int32
}

func (m *mockDatabase) Ping(_ context.Context) error { return m.pingErr }

func (m *mockDatabase) Acquire(_ context.Context) (shp2pg.PooledConnection, error) {
	if m.acquireErr != nil {
		return nil, m.acquireErr
	}
	id := m.acquired.Add(1)
	return &mockConn{id: id, db: m}, nil
}

func (m *mockDatabase) Close() { m.closed.Add(1) }

type mockConn struct {
	id int32
	db *mockDatabase
}

func (c *mockConn) Exec(_ context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag("CREATE EXTENSION"), nil
}

func (c *mockConn) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row {
	if !c.db.postgis {
		return mockRow{err: pgx.ErrNoRows}
	}
	return mockRow{value: "3.4.2"}
}

func (c *mockConn) Begin(_ context.Context) (pgx.Tx, error) {
	return nil, errors.New("not supported")
}

func (c *mockConn) Release() { c.db.released.Add(1) }

type mockRow struct {
	value string
	err   error
}

func (r mockRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*string)) = r.value
	return nil
}

func providerFor(db *mockDatabase, err error) shp2pg.DatabaseProvider {
	return func(_ context.Context, _ *shp2pg.ConnectionConfig) (shp2pg.Database, error) {
		if err != nil {
			return nil, err
		}
		return db, nil
	}
}
