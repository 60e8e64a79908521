package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vvka-141/shp2pg/internal/files/dedup"
	"github.com/vvka-141/shp2pg/internal/metrics"
	"github.com/vvka-141/shp2pg/internal/postgis"
	"github.com/vvka-141/shp2pg/pkg/shp2pg"
)

// skippedReason is the failure reason of files never started because the run was cancelled.
const skippedReason = "skipped: run cancelled"

// BatchService implements shp2pg.BatchRunner.
//
// A run moves through Idle, Discovering, Deduplicating, ConnectionCheck,
// Loading, Reporting and Done. Only a missing root directory or an unusable
// database abort it; once the connection check passes a report is always
// produced, whatever happens to individual files.
//
// Thread-Safety: NOT safe for concurrent Run() calls on the same instance.
// State() may be called from any goroutine.
type BatchService struct {
	discoverer shp2pg.FileDiscoverer
	loader     shp2pg.SpatialLoader
	openDB     shp2pg.DatabaseProvider
	logger     shp2pg.Logger
	metrics    *metrics.Recorder

	mu    sync.Mutex
	state State
}

// NewBatchService creates a BatchService with all dependencies injected.
// recorder may be nil. Panics if any other dependency is nil.
func NewBatchService(
	discoverer shp2pg.FileDiscoverer,
	loader shp2pg.SpatialLoader,
	openDB shp2pg.DatabaseProvider,
	logger shp2pg.Logger,
	recorder *metrics.Recorder,
) *BatchService {
	if discoverer == nil {
		panic("discoverer cannot be nil")
	}
	if loader == nil {
		panic("loader cannot be nil")
	}
	if openDB == nil {
		panic("openDB cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	return &BatchService{
		discoverer: discoverer,
		loader:     loader,
		openDB:     openDB,
		logger:     logger,
		metrics:    recorder,
	}
}

// State returns the current phase.
func (s *BatchService) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *BatchService) transition(next State) {
	s.mu.Lock()
	prev := s.state
	s.state = next
	s.mu.Unlock()
	s.logger.Verbose("State: %s -> %s", prev, next)
}

// Run loads every distinct shapefile under config.RootDir.
//
// The returned error is non-nil with a nil report when the directory is
// missing (ErrDirectoryNotFound) or the database is unusable
// (ErrConnectionFailed). When the run is cancelled after the connection check
// the partial report is returned together with ErrRunInterrupted.
func (s *BatchService) Run(ctx context.Context, config shp2pg.BatchConfig) (*shp2pg.BatchReport, error) {
	s.transition(StateIdle)

	if err := config.Validate(); err != nil {
		s.transition(StateAborted)
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	workers := config.Workers
	if workers < 1 {
		workers = shp2pg.DefaultWorkers
	}
	if config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Timeout)
		defer cancel()
	}

	report := shp2pg.NewBatchReport(config.RootDir)

	s.transition(StateDiscovering)
	files, err := s.discover(config.RootDir)
	if err != nil {
		s.transition(StateAborted)
		return nil, err
	}
	report.Discovered = len(files)

	s.transition(StateDeduplicating)
	deduped := dedup.Deduplicate(files)
	report.Retained = len(deduped.Retained)
	report.Duplicates = append(report.Duplicates, deduped.Duplicates...)
	for _, name := range deduped.Duplicates {
		s.logger.Warn("Duplicate file name %s: only %s will be loaded", name, deduped.Index[name].RelativePath)
	}

	if err := ctx.Err(); err != nil {
		s.transition(StateAborted)
		return nil, fmt.Errorf("%w: %w", shp2pg.ErrRunInterrupted, err)
	}

	s.transition(StateConnectionCheck)
	database, err := s.openDB(ctx, config.Connection)
	if err != nil {
		s.transition(StateAborted)
		return nil, fmt.Errorf("%w: %w", shp2pg.ErrConnectionFailed, err)
	}
	defer database.Close()

	conn, err := s.checkConnection(ctx, database, config.CreateExtension)
	if err != nil {
		s.transition(StateAborted)
		return nil, fmt.Errorf("%w: %w", shp2pg.ErrConnectionFailed, err)
	}

	release := sync.OnceFunc(conn.Release)
	defer release()

	s.transition(StateLoading)
	var outcomes []shp2pg.LoadOutcome
	if workers == 1 {
		outcomes = s.loadSequential(ctx, conn, deduped.Retained)
		release()
	} else {
		release()
		outcomes = s.loadParallel(ctx, database, deduped.Retained, workers)
	}

	s.transition(StateReporting)
	skipped := 0
	for _, o := range outcomes {
		if errors.Is(o.Err, shp2pg.ErrRunInterrupted) {
			skipped++
		}
		report.Add(o)
	}
	report.Finish()
	s.metrics.ObserveRun(report)
	s.logger.Info("Loaded %d of %d file(s), %d failed, %d duplicate name(s) in %s",
		len(report.Successes), report.Retained, len(report.Failures), len(report.Duplicates), report.Elapsed().Round(time.Millisecond))

	s.transition(StateDone)
	if skipped > 0 {
		return report, fmt.Errorf("%w: %d of %d file(s) not started", shp2pg.ErrRunInterrupted, skipped, len(outcomes))
	}
	return report, nil
}

// discover lists the shapefiles under root and logs them numbered in scan order.
func (s *BatchService) discover(root string) ([]shp2pg.VectorFile, error) {
	s.logger.Verbose("Scanning %s for shapefiles...", root)

	files, err := s.discoverer.Discover(root)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Found %d shapefile(s)", len(files))
	for i, f := range files {
		s.logger.Info("%d. %s", i+1, f.RelativePath)
	}
	return files, nil
}

// checkConnection pings the database, acquires a session and verifies PostGIS on it.
// The caller owns the returned connection.
func (s *BatchService) checkConnection(ctx context.Context, database shp2pg.Database, createExtension bool) (shp2pg.PooledConnection, error) {
	if err := database.Ping(ctx); err != nil {
		return nil, err
	}

	conn, err := database.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}

	version, err := postgis.VerifyPostGIS(ctx, conn, createExtension)
	if err != nil {
		conn.Release()
		return nil, err
	}

	s.logger.Info("connected (PostGIS %s)", version)
	return conn, nil
}

// loadSequential loads files in order over one shared session.
func (s *BatchService) loadSequential(ctx context.Context, conn shp2pg.DBConnection, files []shp2pg.VectorFile) []shp2pg.LoadOutcome {
	outcomes := make([]shp2pg.LoadOutcome, len(files))
	for i, f := range files {
		if ctx.Err() != nil {
			outcomes[i] = skipped(f)
			continue
		}
		s.logger.Verbose("[%d/%d] %s", i+1, len(files), f.RelativePath)
		outcomes[i] = s.loader.Load(context.WithoutCancel(ctx), conn, f)
	}
	return outcomes
}

// loadParallel loads files on up to workers sessions. Each load acquires its
// own connection; outcomes keep the scan order.
func (s *BatchService) loadParallel(ctx context.Context, database shp2pg.Database, files []shp2pg.VectorFile, workers int) []shp2pg.LoadOutcome {
	outcomes := make([]shp2pg.LoadOutcome, len(files))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, f := range files {
		if ctx.Err() != nil {
			outcomes[i] = skipped(f)
			continue
		}
		s.logger.Verbose("[%d/%d] %s", i+1, len(files), f.RelativePath)
		g.Go(func() error {
			outcomes[i] = s.loadOnOwnConnection(context.WithoutCancel(ctx), database, f)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func (s *BatchService) loadOnOwnConnection(ctx context.Context, database shp2pg.Database, f shp2pg.VectorFile) shp2pg.LoadOutcome {
	conn, err := database.Acquire(ctx)
	if err != nil {
		s.logger.Error("Failed to acquire a connection for %s: %v", f.RelativePath, err)
		return shp2pg.Failure(f, fmt.Errorf("%w: failed to acquire connection: %w", shp2pg.ErrWriteFailed, err))
	}
	defer conn.Release()

	return s.loader.Load(ctx, conn, f)
}

func skipped(f shp2pg.VectorFile) shp2pg.LoadOutcome {
	o := shp2pg.Failure(f, fmt.Errorf("%w: %s", shp2pg.ErrRunInterrupted, skippedReason))
	o.Reason = skippedReason
	return o
}

var _ shp2pg.BatchRunner = (*BatchService)(nil)
