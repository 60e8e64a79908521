package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/vvka-141/shp2pg/internal/files/filesystem"
	"github.com/vvka-141/shp2pg/pkg/shp2pg"
)

// Scanner discovers shapefiles in a directory tree.
// Scanner is safe for concurrent use as long as the filesystem provider is.
type Scanner struct {
	fsProvider filesystem.FileSystemProvider
}

// NewScanner creates a scanner over the OS filesystem.
func NewScanner() *Scanner {
	return &Scanner{fsProvider: filesystem.NewOSFileSystem()}
}

// NewScannerWithFS creates a scanner with a custom filesystem provider.
// Panics if fsProvider is nil.
func NewScannerWithFS(fsProvider filesystem.FileSystemProvider) *Scanner {
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}
	return &Scanner{fsProvider: fsProvider}
}

// Discover walks root recursively and returns every file with a .shp extension
// (case-insensitive), in lexical walk order. Sidecar files are ignored.
//
// A missing root, or a root that is not a directory, yields an error wrapping
// shp2pg.ErrDirectoryNotFound. An empty result is not an error.
func (s *Scanner) Discover(root string) ([]shp2pg.VectorFile, error) {
	info, err := s.fsProvider.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", root, shp2pg.ErrDirectoryNotFound)
		}
		return nil, fmt.Errorf("%s: %w: %v", root, shp2pg.ErrDirectoryNotFound, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory: %w", root, shp2pg.ErrDirectoryNotFound)
	}

	dir, err := s.fsProvider.Open(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open directory: %w", err)
	}

	var files []shp2pg.VectorFile
	err = dir.Walk(func(file filesystem.File, err error) error {
		if err != nil {
			return fmt.Errorf("error walking path: %w", err)
		}
		if file.Info().IsDir() {
			return nil
		}

		name := file.Info().Name()
		if !strings.EqualFold(filepath.Ext(name), shp2pg.ShapefileExtension) {
			return nil
		}

		files = append(files, shp2pg.VectorFile{
			Path:         file.Path(),
			Name:         name,
			RelativePath: file.RelativePath(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}
