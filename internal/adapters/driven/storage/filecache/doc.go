// Package filecache implements driven.CacheStore as a directory of JSON files.
//
// The layout is shared with inventory-md and other tingbok installations so a
// cache directory can be copied between machines:
//
//   - one file per positive record, named {safe}_{hash}.json where hash is the
//     first 16 hex digits of SHA-256 over the cache key and safe is the first
//     50 characters of the key with every non-alphanumeric replaced by "_"
//   - concept keys are "concept:{source}:{uri}"; labels keys are
//     "labels:{source}:{md5(uri)[:16]}"
//   - a record is the payload object plus "_cached_at" (unix seconds) and
//     "_ttl" (seconds, optional)
//   - negative entries are collected in _not_found.json as
//     {"entries": {key: {"cached_at": ..., "ttl": ...}}}
//
// Files are replaced atomically with a temp file and rename, so readers never
// see a partial record. Updates to _not_found.json are serialised within the
// process; two processes updating it at once can lose one negative entry,
// which only costs a repeated upstream call.
package filecache
