package workspace

import (
	"sync"

	"github.com/pgls/pgls/document"
	"github.com/pgls/pgls/parser"
)

// parseCacheKey names one statement independently of its text, so an edit
// outside a statement's window leaves its cache entry addressable and
// reusable (spec §4.5 "parse_caches... one entry per Statement").
type parseCacheKey struct {
	path string
	id   document.StatementID
}

// parseCacheEntry memoizes one statement's ParseResult behind its own
// mutex, so two statements' parses never block each other (spec §4.5
// "each entry independently lockable").
type parseCacheEntry struct {
	mu     sync.Mutex
	text   string
	result parser.ParseResult
	valid  bool
}

// ParseCache is a sync.Map-backed keyed-lock cache: the idiomatic
// stdlib-only structure for a lazily-populated, independently-lockable map
// of statement parses (see DESIGN.md for why no pack dependency replaces
// this).
type ParseCache struct {
	entries sync.Map // parseCacheKey -> *parseCacheEntry
}

// NewParseCache returns an empty ParseCache.
func NewParseCache() *ParseCache {
	return &ParseCache{}
}

// Get returns the memoized ParseResult for (path, id, text), computing it
// via compute() on a cache miss or text mismatch, and memoizing the fresh
// result. Concurrent callers for the same key block on each other; callers
// for different keys never do.
func (c *ParseCache) Get(path string, id document.StatementID, text string, compute func() parser.ParseResult) parser.ParseResult {
	key := parseCacheKey{path: path, id: id}
	v, _ := c.entries.LoadOrStore(key, &parseCacheEntry{})
	entry := v.(*parseCacheEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.valid && entry.text == text {
		return entry.result
	}
	entry.result = compute()
	entry.text = text
	entry.valid = true
	return entry.result
}

// Evict drops the memoized entry for one statement, e.g. because the
// Document Model reported it invalidated by an edit.
func (c *ParseCache) Evict(path string, id document.StatementID) {
	c.entries.Delete(parseCacheKey{path: path, id: id})
}

// EvictFile drops every memoized entry belonging to path, used on close or
// whole-file replace.
func (c *ParseCache) EvictFile(path string) {
	c.entries.Range(func(k, _ any) bool {
		if key, ok := k.(parseCacheKey); ok && key.path == path {
			c.entries.Delete(key)
		}
		return true
	})
}
