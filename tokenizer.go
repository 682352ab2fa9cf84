package cordsearch

import "strings"

// tokenize splits text into lowercase runs of ASCII letters and
// digits. This is deliberately not Unicode word segmentation: query
// and document tokenization must agree byte-for-byte with what the
// index was built with, so the algorithm is fixed and simple rather
// than locale-aware.
func tokenize(text string) []string {
	var out []string
	var cur strings.Builder
	cur.Grow(32)

	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			cur.WriteByte(c)
		case c >= 'A' && c <= 'Z':
			cur.WriteByte(c + ('a' - 'A'))
		default:
			flush()
		}
	}
	flush()
	return out
}

var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "of": {}, "to": {},
	"in": {}, "for": {}, "on": {}, "with": {}, "by": {}, "as": {}, "is": {},
	"are": {}, "was": {}, "were": {}, "be": {}, "been": {}, "it": {},
	"this": {}, "that": {}, "from": {}, "at": {},
}

func isStopword(t string) bool {
	_, ok := stopwords[t]
	return ok
}

// Tokenize is the exported form of the fixed ASCII tokenizer, for
// callers building documents outside this package (e.g. the CLI's
// segment builder).
func Tokenize(text string) []string {
	return tokenize(text)
}

// queryTerms tokenizes and filters stopwords, the first stage of
// every query evaluation.
func queryTerms(text string) []string {
	toks := tokenize(text)
	out := toks[:0]
	for _, t := range toks {
		if !isStopword(t) {
			out = append(out, t)
		}
	}
	return out
}
