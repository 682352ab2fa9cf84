package cordsearch

import (
	"bufio"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
)

// SemanticExpander performs word-embedding based query expansion: it
// loads a text word-vector file, L2-normalizes every row, and expands
// a query's term set with the nearest neighbors of each term and of
// the query's centroid vector.
type SemanticExpander struct {
	dim       int
	terms     []string
	termToRow map[string]int
	vecs      [][]float32 // one L2-normalized row per term
	enabled   bool
}

// candidateEmbeddingFiles are checked, in order, inside the index
// directory when EMBEDDINGS_PATH is not set.
var candidateEmbeddingFiles = []string{"embeddings.vec", "embeddings.txt", "glove.txt", "vectors.txt"}

// resolveEmbeddingsPath returns the embeddings file to load, or "" if
// none is configured or present.
func resolveEmbeddingsPath(indexDir string) string {
	if p := os.Getenv("EMBEDDINGS_PATH"); p != "" {
		return p
	}
	for _, name := range candidateEmbeddingFiles {
		p := indexDir + string(os.PathSeparator) + name
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// loadSemanticExpander parses a word-vector text file, optionally
// prefixed by a "rows dim" header line, filtering to neededTerms. A
// row is kept only if its dimensionality is at least 10 and matches
// every previously accepted row.
func loadSemanticExpander(path string, neededTerms map[string]struct{}) (*SemanticExpander, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	se := &SemanticExpander{termToRow: make(map[string]int)}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if first {
			first = false
			if looksLikeHeader(line) {
				continue
			}
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		word := fields[0]
		if len(neededTerms) > 0 {
			if _, ok := neededTerms[word]; !ok {
				continue
			}
		}
		values := fields[1:]
		if len(values) < 10 {
			continue
		}
		if se.dim == 0 {
			se.dim = len(values)
		}
		if len(values) != se.dim {
			continue
		}
		vec := make([]float32, se.dim)
		ok := true
		for i, s := range values {
			v, err := strconv.ParseFloat(s, 32)
			if err != nil {
				ok = false
				break
			}
			vec[i] = float32(v)
		}
		if !ok {
			continue
		}
		l2Normalize(vec)

		row := len(se.terms)
		se.terms = append(se.terms, word)
		se.termToRow[word] = row
		se.vecs = append(se.vecs, vec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	se.enabled = len(se.terms) > 0 && se.dim > 0
	return se, nil
}

// looksLikeHeader detects a GloVe/word2vec-style "rows dim" first
// line: two positive integers, the second under 5000, nothing else.
func looksLikeHeader(line string) bool {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return false
	}
	a, errA := strconv.Atoi(fields[0])
	b, errB := strconv.Atoi(fields[1])
	if errA != nil || errB != nil {
		return false
	}
	return a > 0 && b > 0 && b < 5000
}

func l2Normalize(v []float32) {
	var ss float64
	for _, x := range v {
		ss += float64(x) * float64(x)
	}
	n := math.Sqrt(ss)
	if n <= 0 {
		return
	}
	for i, x := range v {
		v[i] = float32(float64(x) / n)
	}
}

func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

type neighbor struct {
	Row int
	Sim float64
}

// mostSimilar does a brute-force scan for the topk nearest rows to
// qvec by cosine similarity (vectors are pre-normalized, so dot
// product suffices), excluding banned rows and anything below minSim.
func (se *SemanticExpander) mostSimilar(qvec []float32, topk int, minSim float64, banned map[int]struct{}) []neighbor {
	if !se.enabled || topk <= 0 {
		return nil
	}
	var out []neighbor
	for row, vec := range se.vecs {
		if _, skip := banned[row]; skip {
			continue
		}
		sim := dot(qvec, vec)
		if sim < minSim {
			continue
		}
		out = append(out, neighbor{Row: row, Sim: sim})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sim > out[j].Sim })
	if len(out) > topk {
		out = out[:topk]
	}
	return out
}

// SemanticExpandParams bundles the tuning knobs the original engine
// passes to Expand on every semantic query.
type SemanticExpandParams struct {
	PerTerm       int
	GlobalTopK    int
	MinSim        float64
	Alpha         float64
	MaxTotalTerms int
}

// DefaultSemanticExpandParams matches Engine::search()'s call in the
// original implementation.
var DefaultSemanticExpandParams = SemanticExpandParams{
	PerTerm: 3, GlobalTopK: 5, MinSim: 0.55, Alpha: 0.6, MaxTotalTerms: 40,
}

// Expand returns the weighted term set for a query: the original
// terms at weight 1.0, plus (if the expander is enabled) per-term
// nearest-neighbor terms at weight min(alpha, alpha*sim) and
// centroid-vector nearest neighbors at weight min(0.8*alpha,
// 0.8*alpha*sim), deduplicated by keeping the maximum weight, sorted
// descending, and truncated to MaxTotalTerms.
func (se *SemanticExpander) Expand(queryTerms []string, p SemanticExpandParams) []weightedTerm {
	w := make(map[string]float64, p.MaxTotalTerms*2)
	for _, t := range queryTerms {
		if t != "" {
			w[t] = 1.0
		}
	}
	if se == nil || !se.enabled || len(queryTerms) == 0 {
		return toWeightedTerms(w)
	}

	banned := make(map[int]struct{}, len(queryTerms)*2)
	for _, t := range queryTerms {
		if row, ok := se.termToRow[t]; ok {
			banned[row] = struct{}{}
		}
	}

	for _, t := range queryTerms {
		row, ok := se.termToRow[t]
		if !ok {
			continue
		}
		for _, nb := range se.mostSimilar(se.vecs[row], p.PerTerm, p.MinSim, banned) {
			cand := se.terms[nb.Row]
			weight := clamp01Scale(p.Alpha, nb.Sim)
			if cur, ok := w[cand]; !ok || weight > cur {
				w[cand] = weight
			}
		}
	}

	if p.GlobalTopK > 0 {
		centroid := make([]float32, se.dim)
		cnt := 0
		for _, t := range queryTerms {
			row, ok := se.termToRow[t]
			if !ok {
				continue
			}
			for i, v := range se.vecs[row] {
				centroid[i] += v
			}
			cnt++
		}
		if cnt > 0 {
			for i := range centroid {
				centroid[i] /= float32(cnt)
			}
			l2Normalize(centroid)
			for _, nb := range se.mostSimilar(centroid, p.GlobalTopK, p.MinSim, banned) {
				cand := se.terms[nb.Row]
				weight := clamp01Scale(0.8*p.Alpha, nb.Sim)
				if cur, ok := w[cand]; !ok || weight > cur {
					w[cand] = weight
				}
			}
		}
	}

	out := toWeightedTerms(w)
	if len(out) > p.MaxTotalTerms {
		out = out[:p.MaxTotalTerms]
	}
	return out
}

func clamp01Scale(alpha, sim float64) float64 {
	v := alpha * sim
	if v < 0 {
		v = 0
	}
	if v > alpha {
		v = alpha
	}
	return v
}

func toWeightedTerms(w map[string]float64) []weightedTerm {
	out := make([]weightedTerm, 0, len(w))
	for t, s := range w {
		out = append(out, weightedTerm{Term: t, Weight: s})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Weight > out[j].Weight })
	return out
}
