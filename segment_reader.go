package cordsearch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// loadSegment reads a segment directory's stats, documents, and
// lexicon, dispatching to the barrelized or legacy loader based on
// which files are present. The returned Segment records posting-file
// paths only; it opens no file handles for its lifetime, so Close is
// a no-op kept for interface symmetry.
func loadSegment(segDir string) (*Segment, error) {
	s := &Segment{Dir: segDir, Lex: make(map[string]LexEntry)}

	if err := loadStats(segDir, s); err != nil {
		return nil, err
	}
	if err := loadDocs(segDir, s); err != nil {
		return nil, err
	}

	if hasBarrels(segDir) {
		if err := loadSegmentBarrels(segDir, s); err != nil {
			return nil, err
		}
	} else {
		if err := loadSegmentLegacy(segDir, s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func loadStats(segDir string, s *Segment) error {
	f, err := os.Open(filepath.Join(segDir, "stats.bin"))
	if err != nil {
		return fmt.Errorf("open stats.bin: %w: %w", ErrCorruption, err)
	}
	defer f.Close()
	n, err := readU32(f)
	if err != nil {
		return fmt.Errorf("read N: %w: %w", ErrCorruption, err)
	}
	avgdl, err := readF32(f)
	if err != nil {
		return fmt.Errorf("read avgdl: %w: %w", ErrCorruption, err)
	}
	s.N, s.AvgDL = n, avgdl
	return nil
}

func loadDocs(segDir string, s *Segment) error {
	f, err := os.Open(filepath.Join(segDir, "docs.bin"))
	if err != nil {
		return fmt.Errorf("open docs.bin: %w: %w", ErrCorruption, err)
	}
	defer f.Close()
	br := newBufReader(f)

	n, err := readU32(br)
	if err != nil {
		return fmt.Errorf("read doc count: %w: %w", ErrCorruption, err)
	}
	docs := make([]DocInfo, n)
	for i := range docs {
		uid, err := readString(br)
		if err != nil {
			return fmt.Errorf("read cord_uid: %w: %w", ErrCorruption, err)
		}
		title, err := readString(br)
		if err != nil {
			return fmt.Errorf("read title: %w: %w", ErrCorruption, err)
		}
		if _, err := readString(br); err != nil { // json_relpath: unused here
			return fmt.Errorf("read json_relpath: %w: %w", ErrCorruption, err)
		}
		docLen, err := readU32(br)
		if err != nil {
			return fmt.Errorf("read doc_len: %w: %w", ErrCorruption, err)
		}
		docs[i] = DocInfo{CordUID: uid, Title: title, DocLen: docLen}
	}
	s.Docs = docs
	return nil
}

func loadLexRecord(r io.Reader) (string, LexEntry, error) {
	term, err := readString(r)
	if err != nil {
		return "", LexEntry{}, err
	}
	termID, err := readU32(r)
	if err != nil {
		return "", LexEntry{}, err
	}
	df, err := readU32(r)
	if err != nil {
		return "", LexEntry{}, err
	}
	offset, err := readU64(r)
	if err != nil {
		return "", LexEntry{}, err
	}
	count, err := readU32(r)
	if err != nil {
		return "", LexEntry{}, err
	}
	return term, LexEntry{TermID: termID, DF: df, Offset: offset, Count: count}, nil
}

func loadSegmentLegacy(segDir string, s *Segment) error {
	f, err := os.Open(filepath.Join(segDir, "lexicon.bin"))
	if err != nil {
		return fmt.Errorf("open lexicon.bin: %w: %w", ErrCorruption, err)
	}
	defer f.Close()
	br := newBufReader(f)

	tcount, err := readU32(br)
	if err != nil {
		return fmt.Errorf("read lexicon count: %w: %w", ErrCorruption, err)
	}
	for i := uint32(0); i < tcount; i++ {
		term, entry, err := loadLexRecord(br)
		if err != nil {
			return fmt.Errorf("read lexicon entry: %w: %w", ErrCorruption, err)
		}
		s.Lex[term] = entry
	}

	invPath := filepath.Join(segDir, "inverted.bin")
	if _, err := os.Stat(invPath); err != nil {
		return fmt.Errorf("stat inverted.bin: %w: %w", ErrCorruption, err)
	}
	s.invPath = invPath
	s.UseBarrels = false
	return nil
}

func loadSegmentBarrels(segDir string, s *Segment) error {
	bp, err := readBarrelsManifest(segDir)
	if err != nil {
		return fmt.Errorf("read barrels manifest: %w: %w", ErrCorruption, err)
	}
	s.UseBarrels = true
	s.BarrelParams = bp

	s.invBarrelPaths = make([]string, bp.BarrelCount)
	for b := uint32(0); b < bp.BarrelCount; b++ {
		path := invBarrelPath(segDir, b)
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("stat barrel %d postings: %w: %w", b, ErrCorruption, err)
		}
		s.invBarrelPaths[b] = path
	}

	for b := uint32(0); b < bp.BarrelCount; b++ {
		if err := loadLexBarrel(segDir, b, s); err != nil {
			return err
		}
	}
	return nil
}

func loadLexBarrel(segDir string, b uint32, s *Segment) error {
	f, err := os.Open(lexBarrelPath(segDir, b))
	if err != nil {
		return fmt.Errorf("open lex barrel %d: %w: %w", b, ErrCorruption, err)
	}
	defer f.Close()
	br := newBufReader(f)

	tcount, err := readU32(br)
	if err != nil {
		return fmt.Errorf("read lex barrel %d count: %w: %w", b, ErrCorruption, err)
	}
	for i := uint32(0); i < tcount; i++ {
		term, entry, err := loadLexRecord(br)
		if err != nil {
			return fmt.Errorf("read lex barrel %d entry: %w: %w", b, ErrCorruption, err)
		}
		entry.BarrelID = b
		s.Lex[term] = entry
	}
	return nil
}
