package cordsearch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
)

// TokenDoc is one document ready for indexing: its stable external
// identifier and its tokenized term stream. Tokenization and CSV/JSON
// parsing of the source corpus happen upstream of this package (they
// are out of scope per the module boundary); SegmentWriter only ever
// sees the resulting token stream.
type TokenDoc struct {
	CordUID string
	Title   string
	Tokens  []string
}

// SegmentWriter builds one immutable segment from a stream of
// documents. Terms are interned in first-seen order across the whole
// build so that term IDs are stable for the lifetime of the segment.
type SegmentWriter struct {
	termToID map[string]uint32
	idToTerm []string

	docs []DocInfo
	// forward[docIdx] is a sorted-by-termID list of (termID, tf) pairs
	// for that document, mirroring the original's per-document forward
	// list used to build inverted postings.
	forward [][]forwardEntry

	barrelCount uint32
}

type forwardEntry struct {
	TermID uint32
	TF     uint32
}

// NewSegmentWriter creates a writer that will barrelize its output
// across barrelCount shards (DefaultBarrelCount if zero).
func NewSegmentWriter(barrelCount uint32) *SegmentWriter {
	if barrelCount == 0 {
		barrelCount = DefaultBarrelCount
	}
	return &SegmentWriter{
		termToID:    make(map[string]uint32),
		barrelCount: barrelCount,
	}
}

func (w *SegmentWriter) internTerm(term string) uint32 {
	if id, ok := w.termToID[term]; ok {
		return id
	}
	id := uint32(len(w.idToTerm))
	w.termToID[term] = id
	w.idToTerm = append(w.idToTerm, term)
	return id
}

// AddDocument appends one document to the segment under construction.
// Term frequencies are accumulated per document, then the resulting
// (termID, tf) pairs are sorted by termID and stored as that
// document's forward list.
func (w *SegmentWriter) AddDocument(doc TokenDoc) {
	tf := make(map[uint32]uint32, len(doc.Tokens))
	for _, tok := range doc.Tokens {
		tf[w.internTerm(tok)]++
	}

	entries := make([]forwardEntry, 0, len(tf))
	for tid, count := range tf {
		entries = append(entries, forwardEntry{TermID: tid, TF: count})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].TermID < entries[j].TermID })

	w.docs = append(w.docs, DocInfo{CordUID: doc.CordUID, Title: doc.Title, DocLen: uint32(len(doc.Tokens))})
	w.forward = append(w.forward, entries)
}

// NumDocs reports the number of documents added so far.
func (w *SegmentWriter) NumDocs() int { return len(w.docs) }

// WriteSegment writes the accumulated documents to a fresh segment
// directory under indexDir, using a temporary staging directory and
// an atomic rename so a reader never observes a partially-written
// segment. It returns the final segment name (not the full path).
func (w *SegmentWriter) WriteSegment(indexDir string) (string, error) {
	if len(w.docs) == 0 {
		return "", fmt.Errorf("write segment: %w: no documents", ErrBadInput)
	}

	staging := filepath.Join(indexDir, ".staging-"+uuid.NewString())
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return "", fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	if err := w.writeStats(staging); err != nil {
		return "", err
	}
	if err := w.writeDocs(staging); err != nil {
		return "", err
	}
	if err := w.writeTerms(staging); err != nil {
		return "", err
	}
	if err := w.writeForward(staging); err != nil {
		return "", err
	}
	postings := w.buildInvertedLists()
	if err := w.writeBarrelized(staging, postings); err != nil {
		return "", err
	}

	// The next segment ID follows the highest one the manifest lists, or
	// the highest seg_ directory when there is no manifest file.
	nextID, err := nextSegmentID(indexDir)
	if err != nil {
		return "", err
	}
	name := segName(nextID)
	dst := filepath.Join(indexDir, name)
	if err := os.Rename(staging, dst); err != nil {
		return "", fmt.Errorf("publish segment: %w", err)
	}
	return name, nil
}

func (w *SegmentWriter) writeStats(dir string) error {
	f, err := os.Create(filepath.Join(dir, "stats.bin"))
	if err != nil {
		return err
	}
	defer f.Close()

	n := uint32(len(w.docs))
	var totalLen uint64
	for _, d := range w.docs {
		totalLen += uint64(d.DocLen)
	}
	var avgdl float32
	if n > 0 {
		avgdl = float32(totalLen) / float32(n)
	}
	if err := writeU32(f, n); err != nil {
		return err
	}
	return writeF32(f, avgdl)
}

func (w *SegmentWriter) writeDocs(dir string) error {
	f, err := os.Create(filepath.Join(dir, "docs.bin"))
	if err != nil {
		return err
	}
	defer f.Close()

	bw := newBufWriter(f)
	if err := writeU32(bw, uint32(len(w.docs))); err != nil {
		return err
	}
	for _, d := range w.docs {
		if err := writeString(bw, d.CordUID); err != nil {
			return err
		}
		if err := writeString(bw, d.Title); err != nil {
			return err
		}
		if err := writeString(bw, ""); err != nil { // json_relpath: unused, kept for format compatibility
			return err
		}
		if err := writeU32(bw, d.DocLen); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func (w *SegmentWriter) writeTerms(dir string) error {
	f, err := os.Create(filepath.Join(dir, "terms.bin"))
	if err != nil {
		return err
	}
	defer f.Close()
	bw := newBufWriter(f)
	if err := writeU32(bw, uint32(len(w.idToTerm))); err != nil {
		return err
	}
	for _, t := range w.idToTerm {
		if err := writeString(bw, t); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// writeForward persists the per-document forward lists built up by
// AddDocument: u32 N, then for each doc a u32 count followed by that
// many (termId, tf) pairs, already sorted by termId. This is the
// on-disk record of the exact per-document term data the barrelized
// postings were transposed from, required for round-trip verification
// independent of the barrel layout.
func (w *SegmentWriter) writeForward(dir string) error {
	f, err := os.Create(filepath.Join(dir, "forward.bin"))
	if err != nil {
		return err
	}
	defer f.Close()

	bw := newBufWriter(f)
	if err := writeU32(bw, uint32(len(w.forward))); err != nil {
		return err
	}
	for _, entries := range w.forward {
		if err := writeU32(bw, uint32(len(entries))); err != nil {
			return err
		}
		for _, e := range entries {
			if err := writeU32(bw, e.TermID); err != nil {
				return err
			}
			if err := writeU32(bw, e.TF); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// buildInvertedLists transposes the per-document forward lists into
// per-term posting lists sorted by docID, matching the writer's
// document-order-preserving append pattern.
func (w *SegmentWriter) buildInvertedLists() [][]Posting {
	lists := make([][]Posting, len(w.idToTerm))
	for docID, entries := range w.forward {
		for _, e := range entries {
			lists[e.TermID] = append(lists[e.TermID], Posting{DocID: uint32(docID), TF: e.TF})
		}
	}
	for _, l := range lists {
		sort.Slice(l, func(i, j int) bool { return l[i].DocID < l[j].DocID })
	}
	return lists
}

// writeBarrelized writes the lexicon and postings across
// w.barrelCount barrel files. Each lex barrel starts with a
// placeholder u32 term count that is patched with the true count once
// all records have been written, matching the original writer's
// two-pass approach (write records, then reopen to patch the header).
func (w *SegmentWriter) writeBarrelized(dir string, postings [][]Posting) error {
	bp := barrelParamsFor(uint32(len(w.idToTerm)), w.barrelCount)
	if err := writeBarrelsManifest(dir, bp); err != nil {
		return err
	}

	lexFiles := make([]*os.File, bp.BarrelCount)
	invFiles := make([]*os.File, bp.BarrelCount)
	offsets := make([]uint64, bp.BarrelCount)
	termCounts := make([]uint32, bp.BarrelCount)

	defer func() {
		for _, f := range lexFiles {
			if f != nil {
				f.Close()
			}
		}
		for _, f := range invFiles {
			if f != nil {
				f.Close()
			}
		}
	}()

	for b := uint32(0); b < bp.BarrelCount; b++ {
		lf, err := os.Create(lexBarrelPath(dir, b))
		if err != nil {
			return err
		}
		lexFiles[b] = lf
		if err := writeU32(lf, 0); err != nil { // placeholder, patched below
			return err
		}
		invf, err := os.Create(invBarrelPath(dir, b))
		if err != nil {
			return err
		}
		invFiles[b] = invf
	}

	for tid := uint32(0); tid < uint32(len(w.idToTerm)); tid++ {
		plist := postings[tid]
		if len(plist) == 0 {
			continue
		}
		b := barrelForTerm(tid, bp)
		termCounts[b]++

		lf := lexFiles[b]
		if err := writeString(lf, w.idToTerm[tid]); err != nil {
			return err
		}
		if err := writeU32(lf, tid); err != nil {
			return err
		}
		df := uint32(len(plist))
		if err := writeU32(lf, df); err != nil {
			return err
		}
		if err := writeU64(lf, offsets[b]); err != nil {
			return err
		}
		if err := writeU32(lf, df); err != nil { // count, duplicated by design (matches on-disk format)
			return err
		}

		invf := invFiles[b]
		for _, p := range plist {
			if err := writeU32(invf, p.DocID); err != nil {
				return err
			}
			if err := writeU32(invf, p.TF); err != nil {
				return err
			}
		}
		offsets[b] += uint64(df) * 8
	}

	for b := uint32(0); b < bp.BarrelCount; b++ {
		if err := lexFiles[b].Close(); err != nil {
			return err
		}
		patch, err := os.OpenFile(lexBarrelPath(dir, b), os.O_RDWR, 0o644)
		if err != nil {
			return err
		}
		if _, err := patch.Seek(0, 0); err != nil {
			patch.Close()
			return err
		}
		if err := writeU32(patch, termCounts[b]); err != nil {
			patch.Close()
			return err
		}
		if err := patch.Close(); err != nil {
			return err
		}
		lexFiles[b] = nil
	}
	for b := uint32(0); b < bp.BarrelCount; b++ {
		if err := invFiles[b].Close(); err != nil {
			return err
		}
		invFiles[b] = nil
	}
	return nil
}
