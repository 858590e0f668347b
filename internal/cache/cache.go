// Package cache implements a content-addressed result cache: keys derive
// solely from file bytes + canonicalised options
// (never the path), eviction is LRU over a byte budget, and at most one
// build runs concurrently per key, with later callers coalescing onto the
// first.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"chunkstream/internal/model"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Key is a content-addressed cache key: sha256(file bytes) combined with
// canonicalised chunking options.
type Key string

// ComputeKey derives a Key from a file's raw bytes and the options a run
// was invoked with.
func ComputeKey(fileBytes []byte, opts model.ChunkingOptions) Key {
	sum := sha256.Sum256(fileBytes)
	canon := canonicalizeOptions(opts)
	h := sha256.New()
	h.Write(sum[:])
	h.Write(canon)
	return Key(hex.EncodeToString(h.Sum(nil)))
}

func canonicalizeOptions(opts model.ChunkingOptions) []byte {
	keys := make([]string, 0, len(opts.Custom))
	for k := range opts.Custom {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ordered := make(map[string]interface{}, len(keys))
	for _, k := range keys {
		ordered[k] = opts.Custom[k]
	}
	payload := struct {
		Strategy     string
		MaxChunkSize int
		OverlapSize  int
		Custom       map[string]interface{}
	}{opts.Strategy, opts.MaxChunkSize, opts.OverlapSize, ordered}
	b, _ := json.Marshal(payload)
	return b
}

// Entry is a cached chunk set plus bookkeeping. The chunk set is never
// mutated after insertion; Get refreshes LastAccessed on every hit.
type Entry struct {
	Chunks       []*model.Chunk
	CreatedAt    time.Time
	LastAccessed time.Time
	SizeHint     int64
}

// Stats mirrors the counters a cache-aware caller (the CLI's --verbose
// mode, benchmarks) reports.
type Stats struct {
	Hits      int64
	Misses    int64
	Builds    int64
	Evictions int64
}

// Cache is a thread-safe, content-addressed LRU cache of chunk sets over a
// byte budget.
type Cache struct {
	mu         sync.Mutex
	lru        *lru.Cache[Key, *Entry]
	budget     int64
	usedBytes  int64
	stats      Stats
	inflight   map[Key]*buildState
	inflightMu sync.Mutex
}

// New constructs a Cache that evicts least-recently-used entries once the
// sum of SizeHint across all entries exceeds budgetBytes.
func New(budgetBytes int64) *Cache {
	c := &Cache{budget: budgetBytes, inflight: make(map[Key]*buildState)}
	// capacity is nominal; actual bound enforcement is byte-budget driven
	// via the onEvict hook below, not entry count.
	l, _ := lru.NewWithEvict[Key, *Entry](1<<20, c.onEvict)
	c.lru = l
	return c
}

func (c *Cache) onEvict(_ Key, entry *Entry) {
	c.usedBytes -= entry.SizeHint
	c.stats.Evictions++
}

// Get is non-blocking: it never waits on an in-flight build.
func (c *Cache) Get(key Key) (*Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.lru.Get(key)
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	c.stats.Hits++
	entry.LastAccessed = time.Now()
	return entry, true
}

// Put inserts entry under key, evicting least-recently-used entries until
// the byte budget is satisfied.
func (c *Cache) Put(key Key, entry *Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry.SizeHint == 0 {
		entry.SizeHint = estimateSize(entry.Chunks)
	}
	c.lru.Add(key, entry)
	c.usedBytes += entry.SizeHint
	for c.budget > 0 && c.usedBytes > c.budget && c.lru.Len() > 1 {
		c.lru.RemoveOldest()
	}
}

func estimateSize(chunks []*model.Chunk) int64 {
	var n int64
	for _, c := range chunks {
		n += int64(len(c.Content)) + 256 // rough per-chunk metadata overhead
	}
	return n
}

// Stats returns a snapshot of the cache's counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// buildState tracks one in-flight build so concurrent callers for the same
// key coalesce onto it instead of racing.
type buildState struct {
	done    chan struct{}
	chunks  []*model.Chunk
	err     error
}

// GetOrBuild returns the cached entry for key if present; otherwise it runs
// build exactly once even under concurrent callers, stores the result on
// success, and never caches a result when ctx is cancelled mid-build.
func (c *Cache) GetOrBuild(ctx context.Context, key Key, build func() ([]*model.Chunk, error)) (chunks []*model.Chunk, hit bool, err error) {
	if entry, ok := c.Get(key); ok {
		return entry.Chunks, true, nil
	}

	c.inflightMu.Lock()
	if state, ok := c.inflight[key]; ok {
		c.inflightMu.Unlock()
		<-state.done
		return state.chunks, false, state.err
	}
	state := &buildState{done: make(chan struct{})}
	c.inflight[key] = state
	c.inflightMu.Unlock()

	defer func() {
		c.inflightMu.Lock()
		delete(c.inflight, key)
		c.inflightMu.Unlock()
	}()

	c.mu.Lock()
	c.stats.Builds++
	c.mu.Unlock()

	chunks, err = build()
	state.chunks, state.err = chunks, err
	close(state.done)

	select {
	case <-ctx.Done():
		// Cancelled mid-build: never cache partial/abandoned work.
		return chunks, false, err
	default:
	}
	if err == nil {
		c.Put(key, &Entry{Chunks: chunks, CreatedAt: time.Now(), LastAccessed: time.Now()})
	}
	return chunks, false, err
}

// ErrCacheUnavailable wraps a disk-persistence failure; callers must treat
// it as non-fatal and degrade to direct processing.
type ErrCacheUnavailable struct{ Cause error }

func (e *ErrCacheUnavailable) Error() string {
	return fmt.Sprintf("cache: unavailable: %v", e.Cause)
}

func (e *ErrCacheUnavailable) Unwrap() error { return e.Cause }
