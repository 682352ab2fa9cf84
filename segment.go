package cordsearch

import (
	"bufio"
	"fmt"
	"os"
)

// LexEntry is one lexicon record: the on-disk location of a term's
// posting list plus its document frequency.
type LexEntry struct {
	TermID   uint32
	DF       uint32
	Offset   uint64
	Count    uint32
	BarrelID uint32 // only meaningful when the owning segment uses barrels
}

// DocInfo is the per-document record stored in a segment's docs.bin.
type DocInfo struct {
	CordUID string
	Title   string
	DocLen  uint32
}

// Posting is one (docID, termFrequency) pair read from a posting list.
type Posting struct {
	DocID uint32
	TF    uint32
}

// Segment is one immutable, self-contained shard of the index: a set
// of documents, their lexicon, and their posting lists, either stored
// as a single legacy lexicon/inverted file pair or barrelized across
// DefaultBarrelCount shards. A segment never holds a posting-stream
// file open across calls: readPostings opens its own handle per call
// against invPath/invBarrelPaths, so concurrent queries under the
// engine's read lock never share a seek offset.
type Segment struct {
	Dir   string
	N     uint32
	AvgDL float32
	Docs  []DocInfo
	Lex   map[string]LexEntry

	UseBarrels   bool
	BarrelParams BarrelParams

	// Legacy single-file posting stream path.
	invPath string

	// Barrelized posting stream paths, one per barrel.
	invBarrelPaths []string
}

// Close is a no-op: Segment holds no open file handles between calls.
// It is kept so callers (Engine.Reload, tests) don't need to change
// when a segment stops or starts caching descriptors.
func (s *Segment) Close() error {
	return nil
}

// readPostings opens the appropriate posting stream fresh, seeks to
// entry's offset, and reads entry.Count (docID, tf) pairs, then closes
// the handle. Opening per call (instead of sharing one long-lived
// *os.File per segment) means concurrent queries never race on a
// shared seek offset, so callers only need the engine's read lock.
func (s *Segment) readPostings(entry LexEntry) ([]Posting, error) {
	var path string
	if s.UseBarrels {
		if int(entry.BarrelID) >= len(s.invBarrelPaths) {
			return nil, ErrCorruption
		}
		path = s.invBarrelPaths[entry.BarrelID]
	} else {
		path = s.invPath
	}
	if path == "" {
		return nil, ErrCorruption
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open postings: %w", err)
	}
	defer f.Close()

	if _, err := f.Seek(int64(entry.Offset), 0); err != nil {
		return nil, err
	}
	br := bufio.NewReaderSize(f, 8*int(entry.Count)+64)
	out := make([]Posting, 0, entry.Count)
	for i := uint32(0); i < entry.Count; i++ {
		docID, err := readU32(br)
		if err != nil {
			return nil, err
		}
		tf, err := readU32(br)
		if err != nil {
			return nil, err
		}
		out = append(out, Posting{DocID: docID, TF: tf})
	}
	return out, nil
}

func segName(id uint32) string {
	return fmt.Sprintf("seg_%06d", id)
}
