package filecache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/tingbok/tingbok/internal/core/domain"
	"github.com/tingbok/tingbok/internal/core/ports/driven"
	"github.com/tingbok/tingbok/internal/logger"
)

// Verify interface compliance.
var _ driven.CacheStore = (*Store)(nil)

const (
	fieldCachedAt = "_cached_at"
	fieldTTL      = "_ttl"
)

// Store is a file-backed cache store.
type Store struct {
	dir         string
	ttl         time.Duration
	negativeTTL time.Duration

	// nfWrite serialises read-modify-write cycles on _not_found.json.
	nfWrite sync.Mutex
	nf      negativeSnapshot
}

// negativeSnapshot is the parsed _not_found.json, valid while the file's
// modification time and size are unchanged. The entries map is never
// modified after it is stored.
type negativeSnapshot struct {
	mu      sync.RWMutex
	loaded  bool
	modTime time.Time
	size    int64
	entries map[string]notFoundEntry
	reloads int
}

// NewStore creates a store rooted at dir, creating the directory if needed.
// ttl and negativeTTL apply to records written without an explicit "_ttl",
// which is the case for every record written by older tools.
func NewStore(dir string, ttl, negativeTTL time.Duration) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: cache directory is empty", domain.ErrInvalidInput)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	if ttl <= 0 {
		ttl = domain.DefaultCacheTTL
	}
	if negativeTTL <= 0 {
		negativeTTL = domain.DefaultNegativeCacheTTL
	}
	return &Store{dir: dir, ttl: ttl, negativeTTL: negativeTTL}, nil
}

// Dir returns the cache directory.
func (s *Store) Dir() string {
	return s.dir
}

// Get returns the newest record for key and kind, positive or negative.
// Corrupt or mismatched files are treated as misses.
func (s *Store) Get(ctx context.Context, key domain.ConceptKey, kind domain.Kind) (*domain.CachedEntry, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	cacheKey := CacheKey(key, kind)
	positive, err := s.readRecord(key, kind, cacheKey)
	if err != nil {
		return nil, false, err
	}
	negative, err := s.readNegative(key, kind, cacheKey)
	if err != nil {
		return nil, false, err
	}

	switch {
	case positive == nil && negative == nil:
		return nil, false, nil
	case positive == nil:
		return negative, true, nil
	case negative == nil:
		return positive, true, nil
	case negative.FetchedAt.After(positive.FetchedAt):
		return negative, true, nil
	default:
		return positive, true, nil
	}
}

// Put writes an entry. Positive entries replace their file atomically;
// negative entries are merged into _not_found.json.
func (s *Store) Put(ctx context.Context, entry domain.CachedEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !entry.Requested.IsValid() {
		return fmt.Errorf("%w: cache kind %q", domain.ErrInvalidInput, entry.Requested)
	}

	cacheKey := CacheKey(entry.Key, entry.Requested)
	if entry.IsNegative() {
		return s.updateNegatives(func(entries map[string]notFoundEntry) bool {
			entries[cacheKey] = notFoundEntry{
				CachedAt: unixSeconds(entry.FetchedAt),
				TTL:      entry.TTL.Seconds(),
			}
			return true
		})
	}

	data, err := encodeRecord(entry)
	if err != nil {
		return err
	}
	if err := writeAtomic(filepath.Join(s.dir, FileName(cacheKey)), data); err != nil {
		return err
	}

	// Drop a stale negative entry so stats reflect the current state. Only
	// keys already in the snapshot take the write lock.
	negatives, err := s.negatives()
	if err != nil {
		return err
	}
	if _, ok := negatives[cacheKey]; !ok {
		return nil
	}
	return s.updateNegatives(func(entries map[string]notFoundEntry) bool {
		if _, ok := entries[cacheKey]; !ok {
			return false
		}
		delete(entries, cacheKey)
		return true
	})
}

// Stats counts records by kind and source. Expired records are included.
func (s *Store) Stats(ctx context.Context) (domain.CacheStats, error) {
	stats := domain.CacheStats{
		BySource: make(map[domain.Source]domain.SourceStat),
		Location: s.dir,
	}

	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return stats, nil
		}
		return stats, fmt.Errorf("reading cache directory: %w", err)
	}

	for _, de := range dirEntries {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		name := de.Name()
		if de.IsDir() || !strings.HasSuffix(name, ".json") || name == notFoundFile {
			continue
		}
		kind, source, ok := parseFileName(name)
		if !ok {
			continue
		}
		stats.Add(source, kind)
	}

	negatives, err := s.negatives()
	if err != nil {
		return stats, err
	}
	for key := range negatives {
		if _, source, ok := parseCacheKey(key); ok {
			stats.Add(source, domain.KindNotFound)
		} else {
			stats.Add("", domain.KindNotFound)
		}
	}
	return stats, nil
}

// Close is a no-op; the store holds no open handles.
func (s *Store) Close() error {
	return nil
}

// readRecord loads a positive record file.
func (s *Store) readRecord(key domain.ConceptKey, kind domain.Kind, cacheKey string) (*domain.CachedEntry, error) {
	path := filepath.Join(s.dir, FileName(cacheKey))
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading cache record: %w", err)
	}

	entry, err := decodeRecord(key, kind, data, s.ttl)
	if err != nil {
		logger.Debug("filecache: ignoring %s: %v", filepath.Base(path), err)
		return nil, nil
	}
	return entry, nil
}

// readNegative loads the negative entry for cacheKey, if any.
func (s *Store) readNegative(key domain.ConceptKey, kind domain.Kind, cacheKey string) (*domain.CachedEntry, error) {
	negatives, err := s.negatives()
	if err != nil {
		return nil, err
	}

	e, ok := negatives[cacheKey]
	if !ok {
		return nil, nil
	}
	ttl := s.negativeTTL
	if e.TTL > 0 {
		ttl = seconds(e.TTL)
	}
	return &domain.CachedEntry{
		Key:       key,
		Requested: kind,
		Kind:      domain.KindNotFound,
		FetchedAt: fromUnixSeconds(e.CachedAt),
		TTL:       ttl,
	}, nil
}

type notFoundEntry struct {
	CachedAt float64 `json:"cached_at"`
	TTL      float64 `json:"ttl,omitempty"`
}

type notFoundFileContent struct {
	Entries map[string]notFoundEntry `json:"entries"`
}

// negatives returns the negative entries, re-parsing _not_found.json only
// when its modification time or size changed. The map must not be modified.
func (s *Store) negatives() (map[string]notFoundEntry, error) {
	var (
		modTime time.Time
		size    int64 = -1
	)
	info, err := os.Stat(s.notFoundPath())
	switch {
	case err == nil:
		modTime, size = info.ModTime(), info.Size()
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("reading not-found cache: %w", err)
	}

	s.nf.mu.RLock()
	if s.nf.loaded && s.nf.size == size && s.nf.modTime.Equal(modTime) {
		entries := s.nf.entries
		s.nf.mu.RUnlock()
		return entries, nil
	}
	s.nf.mu.RUnlock()

	// The file is read after the stat, so the content is never older than
	// the stamp it is stored under.
	nf, err := s.loadNegatives()
	if err != nil {
		return nil, err
	}
	s.nf.mu.Lock()
	s.nf.store(nf.Entries, modTime, size)
	s.nf.reloads++
	s.nf.mu.Unlock()
	return nf.Entries, nil
}

func (n *negativeSnapshot) store(entries map[string]notFoundEntry, modTime time.Time, size int64) {
	n.loaded = true
	n.entries = entries
	n.modTime = modTime
	n.size = size
}

func (s *Store) notFoundPath() string {
	return filepath.Join(s.dir, notFoundFile)
}

// loadNegatives parses _not_found.json from disk. A missing or corrupt file
// reads as empty.
func (s *Store) loadNegatives() (notFoundFileContent, error) {
	nf := notFoundFileContent{Entries: make(map[string]notFoundEntry)}
	data, err := os.ReadFile(s.notFoundPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nf, nil
		}
		return nf, fmt.Errorf("reading not-found cache: %w", err)
	}
	if err := json.Unmarshal(data, &nf); err != nil {
		logger.Debug("filecache: ignoring corrupt %s: %v", notFoundFile, err)
		return notFoundFileContent{Entries: make(map[string]notFoundEntry)}, nil
	}
	if nf.Entries == nil {
		nf.Entries = make(map[string]notFoundEntry)
	}
	return nf, nil
}

// updateNegatives applies fn to the negative entries and writes the result
// back when fn reports a change.
// The file is re-read under the write lock to merge updates from other
// processes.
func (s *Store) updateNegatives(fn func(map[string]notFoundEntry) bool) error {
	s.nfWrite.Lock()
	defer s.nfWrite.Unlock()

	nf, err := s.loadNegatives()
	if err != nil {
		return err
	}
	if !fn(nf.Entries) {
		return nil
	}
	data, err := marshalIndent(nf)
	if err != nil {
		return fmt.Errorf("encoding not-found cache: %w", err)
	}
	if err := writeAtomic(s.notFoundPath(), data); err != nil {
		return err
	}

	if info, err := os.Stat(s.notFoundPath()); err == nil {
		s.nf.mu.Lock()
		s.nf.store(nf.Entries, info.ModTime(), info.Size())
		s.nf.mu.Unlock()
	}
	return nil
}

// encodeRecord merges the payload object with the cache metadata fields.
func encodeRecord(entry domain.CachedEntry) ([]byte, error) {
	fields := make(map[string]json.RawMessage)
	if len(entry.Payload) > 0 {
		if err := json.Unmarshal(entry.Payload, &fields); err != nil {
			return nil, fmt.Errorf("%w: payload is not a JSON object: %v", domain.ErrInvalidInput, err)
		}
	}
	if _, ok := fields["uri"]; !ok {
		raw, _ := json.Marshal(entry.Key.URI)
		fields["uri"] = raw
	}
	cachedAt, err := json.Marshal(unixSeconds(entry.FetchedAt))
	if err != nil {
		return nil, fmt.Errorf("encoding cache timestamp: %w", err)
	}
	fields[fieldCachedAt] = cachedAt
	if entry.TTL > 0 {
		ttl, _ := json.Marshal(entry.TTL.Seconds())
		fields[fieldTTL] = ttl
	}
	data, err := marshalIndent(fields)
	if err != nil {
		return nil, fmt.Errorf("encoding cache record: %w", err)
	}
	return data, nil
}

// decodeRecord parses a record file and checks it belongs to key. Records
// stored under a label carry the matched concept's uri.
func decodeRecord(key domain.ConceptKey, kind domain.Kind, data []byte, defaultTTL time.Duration) (*domain.CachedEntry, error) {
	var meta struct {
		URI      string   `json:"uri"`
		CachedAt *float64 `json:"_cached_at"`
		TTL      float64  `json:"_ttl"`
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("malformed record: %w", err)
	}
	if meta.URI == "" {
		return nil, errors.New("record has no uri")
	}
	if !key.IsLabel() && meta.URI != key.URI {
		return nil, fmt.Errorf("record is for %s", meta.URI)
	}

	var cachedAt float64
	if meta.CachedAt != nil {
		cachedAt = *meta.CachedAt
	}
	ttl := defaultTTL
	if meta.TTL > 0 {
		ttl = seconds(meta.TTL)
	}
	return &domain.CachedEntry{
		Key:       key,
		Requested: kind,
		Kind:      kind,
		Payload:   json.RawMessage(data),
		FetchedAt: fromUnixSeconds(cachedAt),
		TTL:       ttl,
	}, nil
}

// writeAtomic replaces path with data via a temp file in the same directory.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if tmpName != "" {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	tmpName = ""
	return nil
}

// marshalIndent encodes v with two-space indentation and without HTML
// escaping, matching the files written by other tools.
func marshalIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func unixSeconds(t time.Time) float64 {
	if t.IsZero() {
		return 0
	}
	return float64(t.UnixNano()) / float64(time.Second)
}

func fromUnixSeconds(s float64) time.Time {
	sec, frac := math.Modf(s)
	return time.Unix(int64(sec), int64(frac*float64(time.Second)))
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
