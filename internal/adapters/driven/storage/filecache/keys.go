package filecache

import (
	"crypto/md5" //nolint:gosec // non-cryptographic key derivation shared with the cache format
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"

	"github.com/tingbok/tingbok/internal/core/domain"
)

const (
	notFoundFile  = "_not_found.json"
	safeKeyLength = 50
)

// CacheKey returns the string key of a record. Label keys read
// "concept:{source}:{lang}:{label}".
func CacheKey(key domain.ConceptKey, kind domain.Kind) string {
	switch kind {
	case domain.KindLabels:
		sum := md5.Sum([]byte(key.URI)) //nolint:gosec // see import
		return "labels:" + string(key.Source) + ":" + hex.EncodeToString(sum[:])[:16]
	default:
		return "concept:" + string(key.Source) + ":" + key.ID()
	}
}

// FileName returns the file name a cache key is stored under.
func FileName(cacheKey string) string {
	sum := sha256.Sum256([]byte(cacheKey))
	var b strings.Builder
	for i, r := range []rune(cacheKey) {
		if i >= safeKeyLength {
			break
		}
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String() + "_" + hex.EncodeToString(sum[:])[:16] + ".json"
}

// parseFileName recovers kind and source from a record file name.
func parseFileName(name string) (domain.Kind, domain.Source, bool) {
	stem := strings.TrimSuffix(name, ".json")
	parts := strings.SplitN(stem, "_", 3)
	if len(parts) < 3 {
		return "", "", false
	}
	kind := domain.Kind(parts[0])
	if !kind.IsValid() {
		return "", "", false
	}
	return kind, domain.Source(parts[1]), true
}

// parseCacheKey recovers kind and source from a cache key string.
func parseCacheKey(key string) (domain.Kind, domain.Source, bool) {
	parts := strings.SplitN(key, ":", 3)
	if len(parts) < 3 {
		return "", "", false
	}
	kind := domain.Kind(parts[0])
	if !kind.IsValid() {
		return "", "", false
	}
	return kind, domain.Source(parts[1]), true
}
