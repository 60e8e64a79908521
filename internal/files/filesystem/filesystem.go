package filesystem

import (
	"io/fs"
)

// FileInfo is an alias for fs.FileInfo from the standard library.
type FileInfo = fs.FileInfo

// File represents one entry met during a directory walk.
type File interface {
	// Path returns the absolute path to the entry
	Path() string

	// RelativePath returns the path relative to the walked root, using forward slashes
	RelativePath() string

	// Info returns entry metadata
	Info() FileInfo
}

// Directory represents a directory that can be traversed to discover files
type Directory interface {
	// Path returns the absolute path to the directory
	Path() string

	// Walk traverses the directory tree in lexical order, calling fn for each file and directory.
	// Entries of a directory are visited by name; a subdirectory is descended into
	// before its following siblings. If fn returns an error, walking stops.
	Walk(fn func(File, error) error) error
}

// FileSystemProvider is a factory for creating Directory instances
type FileSystemProvider interface {
	// Open opens a directory at the specified path
	Open(path string) (Directory, error)

	// Stat returns file information for the given path.
	// Missing paths yield an error satisfying errors.Is(err, fs.ErrNotExist).
	Stat(path string) (FileInfo, error)
}
