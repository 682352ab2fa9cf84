package cordsearch

import "sort"

// autocompleteMaxTop is the number of ranked suggestions kept at every
// trie node.
const autocompleteMaxTop = 10

type acCandidate struct {
	TermIndex int
	Score     float64
}

type acNode struct {
	next map[byte]*acNode
	top  []acCandidate
}

func newACNode() *acNode {
	return &acNode{next: make(map[byte]*acNode)}
}

// Autocomplete is a prefix trie over normalized terms; each node
// holds a capped, ranked list of the best-scoring terms sharing that
// prefix so a query can be answered by one trie walk plus a slice
// copy, with no per-request scan of the full vocabulary.
type Autocomplete struct {
	root  *acNode
	terms []string
}

// buildAutocomplete builds a trie from a term->score map (score being
// the summed document frequency across all segments' lexicons). Terms
// shorter than 2 characters are excluded. Term indices are assigned
// by a global (score desc, term asc) sort before insertion, so lookups
// are deterministic regardless of map iteration order.
func buildAutocomplete(scores map[string]float64) *Autocomplete {
	type kv struct {
		Term  string
		Score float64
	}
	var all []kv
	for t, s := range scores {
		if len(t) >= 2 {
			all = append(all, kv{t, s})
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Score != all[j].Score {
			return all[i].Score > all[j].Score
		}
		return all[i].Term < all[j].Term
	})

	ac := &Autocomplete{root: newACNode(), terms: make([]string, len(all))}
	for i, e := range all {
		ac.terms[i] = e.Term
		ac.insertTerm(i, e.Score)
	}
	return ac
}

func (ac *Autocomplete) insertTerm(termIndex int, score float64) {
	updateTop(&ac.root.top, termIndex, score)
	node := ac.root
	term := ac.terms[termIndex]
	for i := 0; i < len(term); i++ {
		c := term[i]
		next, ok := node.next[c]
		if !ok {
			next = newACNode()
			node.next[c] = next
		}
		updateTop(&next.top, termIndex, score)
		node = next
	}
}

// updateTop inserts/updates a (termIndex, score) candidate in a node's
// top list, deduplicating by termIndex (keeping the max score),
// re-sorting by (score desc, term index asc for a stable tie-break),
// and truncating to autocompleteMaxTop.
func updateTop(top *[]acCandidate, termIndex int, score float64) {
	found := false
	for i := range *top {
		if (*top)[i].TermIndex == termIndex {
			if score > (*top)[i].Score {
				(*top)[i].Score = score
			}
			found = true
			break
		}
	}
	if !found {
		*top = append(*top, acCandidate{TermIndex: termIndex, Score: score})
	}
	sort.SliceStable(*top, func(i, j int) bool {
		a, b := (*top)[i], (*top)[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.TermIndex < b.TermIndex
	})
	if len(*top) > autocompleteMaxTop {
		*top = (*top)[:autocompleteMaxTop]
	}
}

func (ac *Autocomplete) lookupNode(prefix string) (*acNode, bool) {
	node := ac.root
	for i := 0; i < len(prefix); i++ {
		next, ok := node.next[prefix[i]]
		if !ok {
			return nil, false
		}
		node = next
	}
	return node, true
}

// Suggest completes the last alnum-run token of raw, keeping any
// preceding text as a fixed prefix; non-alphanumeric characters after
// that run are dropped. If raw has no alnum run at all, or the run
// isn't found in the trie, no suggestions are returned.
func (ac *Autocomplete) Suggest(raw string, limit int) []string {
	if limit < 1 {
		limit = 1
	}
	if limit > 10 {
		limit = 10
	}

	end := len(raw)
	for end > 0 && !isAlnumByte(raw[end-1]) {
		end--
	}
	start := end
	for start > 0 && isAlnumByte(raw[start-1]) {
		start--
	}
	if start == end {
		return nil
	}
	base := raw[:start]
	last := normalizeToken(raw[start:end])

	node, ok := ac.lookupNode(last)
	if !ok {
		return nil
	}
	out := make([]string, 0, limit)
	for i := 0; i < len(node.top) && i < limit; i++ {
		out = append(out, base+ac.terms[node.top[i].TermIndex])
	}
	return out
}

func isAlnumByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func normalizeToken(s string) string {
	toks := tokenize(s)
	if len(toks) == 0 {
		return ""
	}
	return toks[0]
}
