package cordsearch

import "math"

// Default BM25 tuning constants, matching both the teacher's
// bm25_index_search.go and the original engine's scorer. Config.BM25
// overrides these at runtime; they remain the fallback when a config
// carries a zero value.
const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

// bm25IDF computes the classic BM25 inverse document frequency:
// ln(((N-df+0.5)/(df+0.5)) + 1).
func bm25IDF(n, df uint32) float64 {
	return math.Log(((float64(n)-float64(df)+0.5)/(float64(df)+0.5))+1.0)
}

// bm25Score scores one (term, document) pair given its term frequency
// and document length, following the standard BM25 saturation curve.
// k1 and b are the tunable BM25 constants (see BM25Config).
func bm25Score(idf float64, tf, docLen uint32, avgdl float32, k1, b float64) float64 {
	if avgdl <= 0 {
		avgdl = 1
	}
	dl := float64(docLen)
	tff := float64(tf)
	denom := tff + k1*(1-b+b*(dl/float64(avgdl)))
	return idf * (tff * (k1 + 1)) / denom
}

// resolveBM25Params falls back to the package defaults for any zero
// field in cfg, so an empty BM25Config behaves exactly like the
// original hard-coded constants.
func resolveBM25Params(cfg BM25Config) (k1, b float64) {
	k1, b = cfg.K1, cfg.B
	if k1 == 0 {
		k1 = bm25K1
	}
	if b == 0 {
		b = bm25B
	}
	return k1, b
}
