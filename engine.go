package cordsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Engine is the in-process search orchestrator: it owns the loaded
// segments, the autocomplete trie, the semantic expander, the
// metadata index, and the three query-result caches. A read/write mutex
// guards the loaded state: Reload builds the new state without holding
// it and swaps it in under the write lock, while Search and Suggest
// take a snapshot under the read lock and may run concurrently. Each
// cache has its own lock. AppendDocument and BuildSegment write segment
// files and the manifest without the engine lock, then call Reload.
type Engine struct {
	mu sync.RWMutex

	indexDir string
	cfg      Config
	log      *slog.Logger

	segments []*Segment
	segNames []string

	autocomplete *Autocomplete
	semantic     *SemanticExpander
	metadata     *MetadataIndex

	searchCache   *LRUCache
	overviewCache *LRUCache
	summaryCache  *LRUCache

	llm           LLMClient
	aiRateLimiter *aiLimiter
}

// NewEngine constructs an Engine bound to indexDir. Call Reload before
// serving any queries.
func NewEngine(cfg Config, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	e := &Engine{
		indexDir: cfg.IndexDir,
		cfg:      cfg,
		log:      WithComponent(log, "engine"),
		llm:      NopLLMClient{},
	}
	// Cache files live in the process CWD, not the index directory:
	// they are a run-local performance artifact, not part of the
	// versioned on-disk index.
	e.searchCache = NewLRUCache(cfg.Cache.SearchCapacity, "search_cache.json", cfg.Cache.SaveEveryNPuts)
	e.overviewCache = NewLRUCache(cfg.Cache.AIOverviewCapacity, "ai_overview_cache.json", cfg.Cache.SaveEveryNPuts)
	e.summaryCache = NewLRUCache(cfg.Cache.AISummaryCapacity, "ai_summary_cache.json", cfg.Cache.SaveEveryNPuts)
	return e
}

// SetLLMClient overrides the AI overview/summary backend, e.g. for
// tests or a real Azure-backed implementation.
func (e *Engine) SetLLMClient(c LLMClient) { e.llm = c }

// Reload re-reads the manifest, loads every segment fresh, rebuilds
// the autocomplete trie and metadata index, reloads the semantic
// expander, and restores the three caches. It replaces the Engine's
// entire in-memory state atomically once loading succeeds; a failure
// partway through leaves the previous state untouched.
func (e *Engine) Reload(ctx context.Context) error {
	start := time.Now()
	names, err := loadManifest(e.indexDir)
	if err != nil {
		return fmt.Errorf("reload: %w", err)
	}

	segs := make([]*Segment, len(names))
	g, _ := errgroup.WithContext(ctx)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			seg, err := loadSegment(filepath.Join(e.indexDir, name))
			if err != nil {
				return fmt.Errorf("load segment %s: %w", name, err)
			}
			segs[i] = seg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, s := range segs {
			if s != nil {
				s.Close()
			}
		}
		return fmt.Errorf("reload: %w", err)
	}

	dfSums := make(map[string]float64)
	needed := make(map[string]struct{})
	for _, seg := range segs {
		for term, entry := range seg.Lex {
			dfSums[term] += float64(entry.DF)
			needed[term] = struct{}{}
		}
	}
	ac := buildAutocomplete(dfSums)

	metaPath := filepath.Join(e.indexDir, "metadata.csv")
	meta, err := loadMetadataIndex(metaPath)
	if err != nil {
		for _, s := range segs {
			s.Close()
		}
		return fmt.Errorf("reload: %w", err)
	}

	var sem *SemanticExpander
	if e.cfg.Semantic.Enabled {
		if path := resolveEmbeddingsPath(e.indexDir); path != "" {
			sem, err = loadSemanticExpander(path, needed)
			if err != nil {
				e.log.Warn("failed to load embeddings, semantic expansion disabled", "path", path, "err", err)
				sem = nil
			}
		}
	}

	if err := e.searchCache.Load(); err != nil {
		e.log.Warn("failed to load search cache", "err", err)
	}
	if err := e.overviewCache.Load(); err != nil {
		e.log.Warn("failed to load ai_overview cache", "err", err)
	}
	if err := e.summaryCache.Load(); err != nil {
		e.log.Warn("failed to load ai_summary cache", "err", err)
	}

	e.mu.Lock()
	old := e.segments
	e.segments = segs
	e.segNames = names
	e.autocomplete = ac
	e.metadata = meta
	e.semantic = sem
	e.mu.Unlock()

	for _, s := range old {
		s.Close()
	}

	e.log.Info("reload complete", "segments", len(segs), "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// NumSegments reports how many segments are currently loaded.
func (e *Engine) NumSegments() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.segments)
}

// Search runs a query end to end: cache lookup, tokenize, stopword
// filter, optional semantic expansion, per-segment BM25 scoring,
// global top-k merge, and on-demand metadata enrichment. k is clamped
// to [1, 100].
func (e *Engine) Search(query string, k int) (SearchResult, []Metadata, error) {
	if k < 1 {
		k = 1
	}
	if k > 100 {
		k = 100
	}
	cacheKey := MakeCacheKey(query, k)

	if raw, ok := e.searchCache.Get(cacheKey); ok {
		var cached cachedSearchResult
		if err := json.Unmarshal(raw, &cached); err == nil {
			cached.Result.FromCache = true
			return cached.Result, cached.Metadata, nil
		}
	}

	e.mu.RLock()
	segs := e.segments
	sem := e.semantic
	meta := e.metadata
	e.mu.RUnlock()

	terms := queryTerms(query)
	if len(terms) == 0 || len(segs) == 0 {
		return SearchResult{}, nil, nil
	}

	var weighted []weightedTerm
	if sem != nil && sem.enabled {
		params := SemanticExpandParams{
			PerTerm:       e.cfg.Semantic.PerTerm,
			GlobalTopK:    e.cfg.Semantic.GlobalTopK,
			MinSim:        e.cfg.Semantic.MinSim,
			Alpha:         e.cfg.Semantic.Alpha,
			MaxTotalTerms: e.cfg.Semantic.MaxTotalTerms,
		}
		weighted = sem.Expand(terms, params)
	} else {
		weighted = make([]weightedTerm, len(terms))
		for i, t := range terms {
			weighted[i] = weightedTerm{Term: t, Weight: 1.0}
		}
	}
	if len(weighted) == 0 {
		return SearchResult{}, nil, nil
	}

	result, err := evaluateQuery(segs, weighted, k, e.cfg.BM25, e.log)
	if err != nil {
		return SearchResult{}, nil, fmt.Errorf("search: %w", err)
	}

	metas := make([]Metadata, 0, len(result.Hits))
	if meta != nil {
		for _, hit := range result.Hits {
			m, ok, err := meta.Fetch(hit.CordUID)
			if err == nil && ok {
				metas = append(metas, m)
			} else {
				metas = append(metas, Metadata{CordUID: hit.CordUID})
			}
		}
	}

	cachedBody, err := json.Marshal(cachedSearchResult{Result: result, Metadata: metas})
	if err == nil {
		e.searchCache.Put(cacheKey, cachedBody)
	}
	return result, metas, nil
}

type cachedSearchResult struct {
	Result   SearchResult `json:"result"`
	Metadata []Metadata   `json:"metadata"`
}

// Suggest delegates to the autocomplete trie, clamping limit to
// [1, 10].
func (e *Engine) Suggest(raw string, limit int) []string {
	e.mu.RLock()
	ac := e.autocomplete
	e.mu.RUnlock()
	if ac == nil {
		return nil
	}
	return ac.Suggest(raw, limit)
}

// AppendDocument builds a fresh single-document segment, atomically
// publishes it, and appends it to the manifest, then triggers a
// reload so the new segment becomes queryable. This is the only
// mutation path the index supports: append-only, no update or delete.
func (e *Engine) AppendDocument(ctx context.Context, doc TokenDoc) (string, error) {
	name, err := appendDocument(e.indexDir, doc, e.cfg.Barrels.Count)
	if err != nil {
		return "", err
	}
	if err := e.Reload(ctx); err != nil {
		return name, fmt.Errorf("append succeeded but reload failed: %w", err)
	}
	return name, nil
}

// BuildSegment builds a segment from a batch of documents via
// SegmentWriter, publishes it, appends the manifest, and reloads.
func (e *Engine) BuildSegment(ctx context.Context, docs []TokenDoc) (string, error) {
	w := NewSegmentWriter(e.cfg.Barrels.Count)
	for _, d := range docs {
		w.AddDocument(d)
	}
	name, err := w.WriteSegment(e.indexDir)
	if err != nil {
		return "", err
	}
	if err := appendManifest(e.indexDir, name); err != nil {
		return "", fmt.Errorf("append manifest: %w", err)
	}
	if err := e.Reload(ctx); err != nil {
		return name, fmt.Errorf("build succeeded but reload failed: %w", err)
	}
	return name, nil
}

// Close persists any dirty caches and drops the loaded segments.
// Each cache is saved only if it has changed since its last save; a
// clean cache is not rewritten.
func (e *Engine) Close() error {
	var firstErr error
	for _, c := range []*LRUCache{e.searchCache, e.overviewCache, e.summaryCache} {
		if c == nil {
			continue
		}
		if err := c.SaveIfDirty(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	e.mu.Lock()
	segs := e.segments
	e.segments = nil
	e.mu.Unlock()
	for _, s := range segs {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
