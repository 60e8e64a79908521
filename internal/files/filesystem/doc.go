// Package filesystem provides the directory-walking abstraction used by shapefile discovery.
//
// Implementations:
//   - OSFileSystem: production implementation over the OS filesystem
//   - MemoryFileSystem: in-memory tree for tests
//
// Both walk in the same lexical order, so discovery results are stable and
// identical between tests and production for the same tree.
package filesystem
