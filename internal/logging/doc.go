// Package logging provides concrete implementations of the shp2pg.Logger interface.
//
// Available implementations:
//   - ConsoleLogger: plain text on stderr with [VERBOSE], [WARN] and [ERROR] prefixes
//   - ZapLogger: JSON lines through go.uber.org/zap, selected with --log-format json
//   - NullLogger: discards all messages (useful for testing)
//
// All logger implementations are safe for concurrent use by multiple goroutines.
package logging
