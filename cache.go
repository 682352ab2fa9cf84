package cordsearch

import (
	"container/list"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// cacheEntryJSON is the on-disk shape for one cache entry: a JSON
// array of {"key":..., "result":...} objects, matching the original
// engine's save format. Entries are written most-recently-used first,
// so loading a saved file into an empty cache restores its LRU order.
type cacheEntryJSON struct {
	Key    string          `json:"key"`
	Result json.RawMessage `json:"result"`
}

// LRUCache is a bounded, JSON-file-backed least-recently-used cache.
// It is used for three independent purposes (search results, AI
// overviews, AI summaries) each with its own capacity and file.
type LRUCache struct {
	mu       sync.Mutex
	capacity int
	path     string

	ll    *list.List // front = most recently used
	items map[string]*list.Element

	group          singleflight.Group
	updatesSince   int
	saveEveryNPuts int
	dirty          bool
}

type lruElem struct {
	key    string
	result json.RawMessage
}

// NewLRUCache creates an empty cache with the given capacity and
// backing file path (used by Load/Save).
func NewLRUCache(capacity int, path string, saveEveryNPuts int) *LRUCache {
	if saveEveryNPuts <= 0 {
		saveEveryNPuts = 50
	}
	return &LRUCache{
		capacity:       capacity,
		path:           path,
		ll:             list.New(),
		items:          make(map[string]*list.Element),
		saveEveryNPuts: saveEveryNPuts,
	}
}

// MakeCacheKey builds the canonical key for a (query, k) search
// request, matching the original engine's `query + "|" + k`.
func MakeCacheKey(query string, k int) string {
	return query + "|" + strconv.Itoa(k)
}

// Get returns the cached JSON result for key, if present, promoting it
// to most-recently-used.
func (c *LRUCache) Get(key string) (json.RawMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*lruElem).result, true
}

// Put inserts or updates key, evicting the least-recently-used entry
// if the cache is over capacity. Periodically (every saveEveryNPuts
// calls) it persists to disk, matching the original engine's
// throughput-preserving save cadence instead of saving on every put.
func (c *LRUCache) Put(key string, result json.RawMessage) {
	c.mu.Lock()
	if el, ok := c.items[key]; ok {
		el.Value.(*lruElem).result = result
		c.ll.MoveToFront(el)
	} else {
		el := c.ll.PushFront(&lruElem{key: key, result: result})
		c.items[key] = el
		if c.capacity > 0 && c.ll.Len() > c.capacity {
			back := c.ll.Back()
			if back != nil {
				c.ll.Remove(back)
				delete(c.items, back.Value.(*lruElem).key)
			}
		}
	}
	c.dirty = true
	c.updatesSince++
	shouldSave := c.updatesSince >= c.saveEveryNPuts
	if shouldSave {
		c.updatesSince = 0
	}
	c.mu.Unlock()

	if shouldSave {
		_ = c.Save()
	}
}

// GetOrCompute coalesces concurrent identical-key misses into one
// call to fn via singleflight, so an expensive query is never computed
// twice concurrently for the same cache key.
func (c *LRUCache) GetOrCompute(key string, fn func() (json.RawMessage, error)) (json.RawMessage, bool, error) {
	if v, ok := c.Get(key); ok {
		return v, true, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		result, err := fn()
		if err != nil {
			return nil, err
		}
		c.Put(key, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(json.RawMessage), false, nil
}

// Save writes the cache contents to its backing JSON file. Save is a
// full dump in LRU order, most-recently-used entry first.
func (c *LRUCache) Save() error {
	c.mu.Lock()
	entries := make([]cacheEntryJSON, 0, len(c.items))
	for e := c.ll.Front(); e != nil; e = e.Next() {
		le := e.Value.(*lruElem)
		entries = append(entries, cacheEntryJSON{Key: le.key, Result: le.result})
	}
	c.dirty = false
	c.mu.Unlock()

	if c.path == "" {
		return nil
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	return os.Rename(tmp, c.path)
}

// SaveIfDirty saves only if entries have changed since the last save,
// used on Engine shutdown to avoid a redundant write.
func (c *LRUCache) SaveIfDirty() error {
	c.mu.Lock()
	dirty := c.dirty
	c.mu.Unlock()
	if !dirty {
		return nil
	}
	return c.Save()
}

// Load restores entries from the backing JSON file, if it exists.
// Loaded entries are pushed to the back of the LRU list in file order,
// exactly as the original engine's load does, so a file written by Save
// comes back with its most-recently-used entry at the front. Keys
// already in the cache are kept as they are; entries beyond capacity
// are dropped from the least-recently-used end.
func (c *LRUCache) Load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read cache: %w", err)
	}
	var entries []cacheEntryJSON
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("unmarshal cache: %w: %w", ErrCorruption, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range entries {
		if _, exists := c.items[e.Key]; exists {
			continue
		}
		el := c.ll.PushBack(&lruElem{key: e.Key, result: e.Result})
		c.items[e.Key] = el
	}
	for c.capacity > 0 && c.ll.Len() > c.capacity {
		back := c.ll.Back()
		if back == nil {
			break
		}
		c.ll.Remove(back)
		delete(c.items, back.Value.(*lruElem).key)
	}
	return nil
}

// Len reports the current number of cached entries.
func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}
