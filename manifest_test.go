package cordsearch

import (
	"os"
	"testing"
)

func TestManifestAppendAndLoad(t *testing.T) {
	dir := t.TempDir()
	if err := appendManifest(dir, "seg_000000"); err != nil {
		t.Fatalf("appendManifest: %v", err)
	}
	if err := appendManifest(dir, "seg_000001"); err != nil {
		t.Fatalf("appendManifest: %v", err)
	}
	segs, err := loadManifest(dir)
	if err != nil {
		t.Fatalf("loadManifest: %v", err)
	}
	if len(segs) != 2 || segs[0] != "seg_000000" || segs[1] != "seg_000001" {
		t.Fatalf("unexpected manifest contents: %v", segs)
	}
}

func TestManifestDirectoryScanFallback(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"seg_000002", "seg_000000", "seg_000001"} {
		if err := os.Mkdir(dir+"/"+name, 0o755); err != nil {
			t.Fatalf("Mkdir: %v", err)
		}
	}
	segs, err := loadManifest(dir)
	if err != nil {
		t.Fatalf("loadManifest: %v", err)
	}
	want := []string{"seg_000000", "seg_000001", "seg_000002"}
	if len(segs) != len(want) {
		t.Fatalf("expected %v, got %v", want, segs)
	}
	for i := range want {
		if segs[i] != want[i] {
			t.Errorf("index %d: want %s, got %s", i, want[i], segs[i])
		}
	}
}

func TestNextSegmentIDEmptyIndex(t *testing.T) {
	dir := t.TempDir()
	id, err := nextSegmentID(dir)
	if err != nil {
		t.Fatalf("nextSegmentID: %v", err)
	}
	if id != 0 {
		t.Errorf("expected next segment id 0 for empty index, got %d", id)
	}
}

func TestNextSegmentIDContinuesFromManifest(t *testing.T) {
	dir := t.TempDir()
	if err := appendManifest(dir, "seg_000000"); err != nil {
		t.Fatalf("appendManifest: %v", err)
	}
	if err := appendManifest(dir, "seg_000003"); err != nil {
		t.Fatalf("appendManifest: %v", err)
	}
	id, err := nextSegmentID(dir)
	if err != nil {
		t.Fatalf("nextSegmentID: %v", err)
	}
	if id != 4 {
		t.Errorf("expected next segment id 4, got %d", id)
	}
}
