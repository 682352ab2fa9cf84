package cordsearch

import "testing"

func TestAppendDocumentPublishesSingleDocSegment(t *testing.T) {
	dir := t.TempDir()
	name, err := appendDocument(dir, TokenDoc{
		CordUID: "new-uid",
		Title:   "New Paper",
		Tokens:  []string{"novel", "coronavirus", "novel"},
	}, DefaultBarrelCount)
	if err != nil {
		t.Fatalf("appendDocument: %v", err)
	}

	segs, err := loadManifest(dir)
	if err != nil {
		t.Fatalf("loadManifest: %v", err)
	}
	if len(segs) != 1 || segs[0] != name {
		t.Fatalf("expected manifest to contain %s, got %v", name, segs)
	}

	seg, err := loadSegment(dir + "/" + name)
	if err != nil {
		t.Fatalf("loadSegment: %v", err)
	}
	defer seg.Close()

	entry, ok := seg.Lex["novel"]
	if !ok {
		t.Fatalf("expected lexicon to contain 'novel'")
	}
	if entry.DF != 1 {
		t.Errorf("expected df=1 for a single-document segment, got %d", entry.DF)
	}
	postings, err := seg.readPostings(entry)
	if err != nil {
		t.Fatalf("readPostings: %v", err)
	}
	if len(postings) != 1 || postings[0].TF != 2 {
		t.Errorf("expected single posting with tf=2, got %+v", postings)
	}
}

func TestAppendDocumentRejectsMissingCordUID(t *testing.T) {
	dir := t.TempDir()
	if _, err := appendDocument(dir, TokenDoc{Tokens: []string{"a"}}, DefaultBarrelCount); err == nil {
		t.Fatal("expected error for missing cord_uid")
	}
}

func TestAppendDocumentRejectsEmptyTokens(t *testing.T) {
	dir := t.TempDir()
	if _, err := appendDocument(dir, TokenDoc{CordUID: "uid"}, DefaultBarrelCount); err == nil {
		t.Fatal("expected error for a document with no tokens")
	}
}

func TestAppendDocumentTwiceProducesTwoSegments(t *testing.T) {
	dir := t.TempDir()
	if _, err := appendDocument(dir, TokenDoc{CordUID: "uid1", Tokens: []string{"a"}}, DefaultBarrelCount); err != nil {
		t.Fatalf("appendDocument #1: %v", err)
	}
	if _, err := appendDocument(dir, TokenDoc{CordUID: "uid2", Tokens: []string{"b"}}, DefaultBarrelCount); err != nil {
		t.Fatalf("appendDocument #2: %v", err)
	}
	segs, err := loadManifest(dir)
	if err != nil {
		t.Fatalf("loadManifest: %v", err)
	}
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segs))
	}
}
