// Package sqlite provides a SQLite-backed index store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. A snapshot is stored as one metadata row
// (format version, distance metric, dimensions) plus one row per document with its
// embedding encoded as a little-endian float32 BLOB.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.scheme-research/index.db
//
// # Thread Safety
//
// Save replaces the snapshot inside a single transaction, so a concurrent or
// failed Save never leaves a partially written index behind.
package sqlite
