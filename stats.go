package cordsearch

import "sync/atomic"

// Stats holds atomic operational counters exposed at /api/stats. It
// is a thin utility with no invariants beyond "counts only increase".
type Stats struct {
	searches      atomic.Int64
	suggests      atomic.Int64
	appends       atomic.Int64
	cacheHits     atomic.Int64
	cacheMisses   atomic.Int64
	aiOverviewReq atomic.Int64
	aiSummaryReq  atomic.Int64
}

func (s *Stats) IncSearch()     { s.searches.Add(1) }
func (s *Stats) IncSuggest()    { s.suggests.Add(1) }
func (s *Stats) IncAppend()     { s.appends.Add(1) }
func (s *Stats) IncCacheHit()   { s.cacheHits.Add(1) }
func (s *Stats) IncCacheMiss()  { s.cacheMisses.Add(1) }
func (s *Stats) IncAIOverview() { s.aiOverviewReq.Add(1) }
func (s *Stats) IncAISummary()  { s.aiSummaryReq.Add(1) }

// Snapshot is a point-in-time copy of every counter, suitable for
// JSON encoding.
type Snapshot struct {
	Searches      int64 `json:"searches"`
	Suggests      int64 `json:"suggests"`
	Appends       int64 `json:"appends"`
	CacheHits     int64 `json:"cache_hits"`
	CacheMisses   int64 `json:"cache_misses"`
	AIOverviewReq int64 `json:"ai_overview_requests"`
	AISummaryReq  int64 `json:"ai_summary_requests"`
}

func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Searches:      s.searches.Load(),
		Suggests:      s.suggests.Load(),
		Appends:       s.appends.Load(),
		CacheHits:     s.cacheHits.Load(),
		CacheMisses:   s.cacheMisses.Load(),
		AIOverviewReq: s.aiOverviewReq.Load(),
		AISummaryReq:  s.aiSummaryReq.Load(),
	}
}
