package cordsearch

import (
	"container/heap"
	"log/slog"
)

// SearchHit is one scored result from a query, before metadata
// enrichment.
type SearchHit struct {
	CordUID string
	Score   float64
}

// SearchResult is the outcome of Engine.Search before JSON encoding.
type SearchResult struct {
	Hits       []SearchHit
	TotalFound int
	FromCache  bool
}

// weightedTerm is a query term with its expansion weight; unexpanded
// queries use weight 1.0 for every term.
type weightedTerm struct {
	Term   string
	Weight float64
}

// scoredDoc is one entry in the global top-k min-heap, tagged with
// its owning segment so postings can be re-resolved if ever needed
// and so cross-segment ties break deterministically.
type scoredDoc struct {
	Score   float64
	SegIdx  int
	CordUID string
}

// resultHeap is a bounded min-heap: the lowest-scoring element sits at
// the root so a new, higher-scoring hit can evict it in O(log k). This
// mirrors the teacher's resultHeap in bm25_index_search.go.
type resultHeap []scoredDoc

func (h resultHeap) Len() int { return len(h) }
func (h resultHeap) Less(i, j int) bool {
	if h[i].Score != h[j].Score {
		return h[i].Score < h[j].Score
	}
	// Deterministic tie-break: lower segment index, then UID, sorts first
	// into the min-heap (i.e. is evicted first), keeping merge output stable.
	if h[i].SegIdx != h[j].SegIdx {
		return h[i].SegIdx < h[j].SegIdx
	}
	return h[i].CordUID < h[j].CordUID
}
func (h resultHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *resultHeap) Push(x any)        { *h = append(*h, x.(scoredDoc)) }
func (h *resultHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// evaluateQuery scores weighted terms against every segment and
// returns the top k hits by descending score, plus the total number
// of segment-level matches (which may double-count a document present
// in more than one segment, matching the original engine's counting).
// A posting-stream read failure for one term (e.g. a truncated barrel)
// is logged and treated as zero contribution from that term rather
// than aborting the whole query.
func evaluateQuery(segs []*Segment, terms []weightedTerm, k int, bm25 BM25Config, log *slog.Logger) (SearchResult, error) {
	if log == nil {
		log = slog.Default()
	}
	k1, b := resolveBM25Params(bm25)
	h := &resultHeap{}
	heap.Init(h)
	totalFound := 0

	for segIdx, seg := range segs {
		scores := make(map[uint32]float64)
		for _, wt := range terms {
			entry, ok := seg.Lex[wt.Term]
			if !ok || entry.DF == 0 {
				continue
			}
			idf := bm25IDF(seg.N, entry.DF)
			postings, err := seg.readPostings(entry)
			if err != nil {
				log.Warn("posting read failed, skipping term", "term", wt.Term, "segment", seg.Dir, "err", err)
				continue
			}
			for _, p := range postings {
				var docLen uint32
				if int(p.DocID) < len(seg.Docs) {
					docLen = seg.Docs[p.DocID].DocLen
				}
				s := wt.Weight * bm25Score(idf, p.TF, docLen, seg.AvgDL, k1, b)
				scores[p.DocID] += s
			}
		}
		totalFound += len(scores)

		for docID, s := range scores {
			var uid string
			if int(docID) < len(seg.Docs) {
				uid = seg.Docs[docID].CordUID
			}
			cand := scoredDoc{Score: s, SegIdx: segIdx, CordUID: uid}
			if h.Len() < k {
				heap.Push(h, cand)
			} else if h.Len() > 0 && (resultHeap{(*h)[0], cand}).Less(0, 1) {
				heap.Pop(h)
				heap.Push(h, cand)
			}
		}
	}

	// Drain the heap into descending order.
	out := make([]SearchHit, h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		item := heap.Pop(h).(scoredDoc)
		out[i] = SearchHit{CordUID: item.CordUID, Score: item.Score}
	}
	return SearchResult{Hits: out, TotalFound: totalFound}, nil
}
