// Package sqlite provides a SQLite-backed implementation of driven.CacheStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Positive and negative entries share the
// cache_entries table, keyed by (source, uri, requested_kind); negative entries have
// kind "not_found" and no payload.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at <user cache dir>/tingbok/skos/skos_cache.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode, so several tingbok processes can share one database.
package sqlite
