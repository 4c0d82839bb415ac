package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/tingbok/tingbok/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/tingbok/tingbok/internal/core/domain"
	"github.com/tingbok/tingbok/internal/core/ports/driven"
)

// dbFile is the database file name inside the cache directory.
const dbFile = "skos_cache.db"

var _ driven.CacheStore = (*Store)(nil)

// Store is a SQLite-based cache store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store in the specified cache directory.
// If dir is empty, defaults to the user cache directory.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		dir = domain.DefaultCacheDir()
	}

	// Ensure directory exists
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Get retrieves the entry for key and kind.
func (s *Store) Get(ctx context.Context, key domain.ConceptKey, kind domain.Kind) (*domain.CachedEntry, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT kind, payload, fetched_at, ttl_seconds
		FROM cache_entries
		WHERE source = ? AND uri = ? AND requested_kind = ?
	`, string(key.Source), key.ID(), string(kind))

	var (
		storedKind string
		payload    sql.NullString
		fetchedAt  float64
		ttlSeconds float64
	)
	if err := row.Scan(&storedKind, &payload, &fetchedAt, &ttlSeconds); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("querying cache entry: %w", err)
	}

	entry := &domain.CachedEntry{
		Key:       key,
		Requested: kind,
		Kind:      domain.Kind(storedKind),
		FetchedAt: fromUnixSeconds(fetchedAt),
		TTL:       time.Duration(ttlSeconds * float64(time.Second)),
	}
	if payload.Valid {
		entry.Payload = []byte(payload.String)
	}
	return entry, true, nil
}

// Put stores or replaces an entry.
func (s *Store) Put(ctx context.Context, entry domain.CachedEntry) error {
	if !entry.Requested.IsValid() {
		return fmt.Errorf("%w: cache kind %q", domain.ErrInvalidInput, entry.Requested)
	}

	var payload sql.NullString
	if len(entry.Payload) > 0 && !entry.IsNegative() {
		payload = sql.NullString{String: string(entry.Payload), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cache_entries (source, uri, requested_kind, kind, payload, fetched_at, ttl_seconds)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source, uri, requested_kind) DO UPDATE SET
			kind = excluded.kind,
			payload = excluded.payload,
			fetched_at = excluded.fetched_at,
			ttl_seconds = excluded.ttl_seconds
	`,
		string(entry.Key.Source),
		entry.Key.ID(),
		string(entry.Requested),
		string(entry.Kind),
		payload,
		unixSeconds(entry.FetchedAt),
		entry.TTL.Seconds(),
	)
	if err != nil {
		return fmt.Errorf("saving cache entry: %w", err)
	}
	return nil
}

// Stats counts entries by source and kind.
func (s *Store) Stats(ctx context.Context) (domain.CacheStats, error) {
	stats := domain.CacheStats{
		BySource: make(map[domain.Source]domain.SourceStat),
		Location: s.path,
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT source, kind, COUNT(*)
		FROM cache_entries
		GROUP BY source, kind
	`)
	if err != nil {
		return stats, fmt.Errorf("querying cache stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			source string
			kind   string
			count  int
		)
		if err := rows.Scan(&source, &kind, &count); err != nil {
			return stats, fmt.Errorf("scanning cache stats: %w", err)
		}
		stats.AddN(domain.Source(source), domain.Kind(kind), count)
	}
	if err := rows.Err(); err != nil {
		return stats, fmt.Errorf("iterating cache stats: %w", err)
	}
	return stats, nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_cache_entries.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

func unixSeconds(t time.Time) float64 {
	if t.IsZero() {
		return 0
	}
	return float64(t.UnixNano()) / float64(time.Second)
}

func fromUnixSeconds(v float64) time.Time {
	sec, frac := math.Modf(v)
	return time.Unix(int64(sec), int64(frac*float64(time.Second)))
}
