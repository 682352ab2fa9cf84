package cordsearch

import (
	"os"
	"path/filepath"
	"testing"
)

// writeLegacySegment hand-writes a pre-barrel-era segment (a single
// lexicon.bin/inverted.bin pair, no barrels manifest) so loadSegment's
// legacy dispatch path can be exercised directly; SegmentWriter itself
// never produces this layout anymore.
func writeLegacySegment(t *testing.T, dir string) {
	t.Helper()

	statsF, err := os.Create(filepath.Join(dir, "stats.bin"))
	if err != nil {
		t.Fatalf("create stats.bin: %v", err)
	}
	writeU32(statsF, 1)
	writeF32(statsF, 2.0)
	statsF.Close()

	docsF, err := os.Create(filepath.Join(dir, "docs.bin"))
	if err != nil {
		t.Fatalf("create docs.bin: %v", err)
	}
	writeU32(docsF, 1)
	writeString(docsF, "uid1")
	writeString(docsF, "Title")
	writeString(docsF, "")
	writeU32(docsF, 2)
	docsF.Close()

	lexF, err := os.Create(filepath.Join(dir, "lexicon.bin"))
	if err != nil {
		t.Fatalf("create lexicon.bin: %v", err)
	}
	writeU32(lexF, 1) // one term
	writeString(lexF, "legacyterm")
	writeU32(lexF, 0) // termID
	writeU32(lexF, 1) // df
	writeU64(lexF, 0) // offset
	writeU32(lexF, 1) // count
	lexF.Close()

	invF, err := os.Create(filepath.Join(dir, "inverted.bin"))
	if err != nil {
		t.Fatalf("create inverted.bin: %v", err)
	}
	writeU32(invF, 0) // docID
	writeU32(invF, 2) // tf
	invF.Close()
}

func TestLoadSegmentLegacyDispatch(t *testing.T) {
	dir := t.TempDir()
	writeLegacySegment(t, dir)

	seg, err := loadSegment(dir)
	if err != nil {
		t.Fatalf("loadSegment: %v", err)
	}
	defer seg.Close()

	if seg.UseBarrels {
		t.Error("expected legacy segment to not be barrelized")
	}
	entry, ok := seg.Lex["legacyterm"]
	if !ok {
		t.Fatalf("expected lexicon to contain 'legacyterm'")
	}
	postings, err := seg.readPostings(entry)
	if err != nil {
		t.Fatalf("readPostings: %v", err)
	}
	if len(postings) != 1 || postings[0].DocID != 0 || postings[0].TF != 2 {
		t.Errorf("unexpected postings: %+v", postings)
	}
}

func TestLoadSegmentBarrelDispatch(t *testing.T) {
	dir := t.TempDir()
	w := NewSegmentWriter(4)
	w.AddDocument(TokenDoc{CordUID: "uid1", Tokens: []string{"barrelterm"}})
	name, err := w.WriteSegment(dir)
	if err != nil {
		t.Fatalf("WriteSegment: %v", err)
	}

	seg, err := loadSegment(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("loadSegment: %v", err)
	}
	defer seg.Close()

	if !seg.UseBarrels {
		t.Error("expected a writer-produced segment to be barrelized")
	}
}
