package cordsearch

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

func TestBackupIndexArchivesAllFiles(t *testing.T) {
	src := t.TempDir()
	if err := os.WriteFile(filepath.Join(src, "manifest.bin"), []byte("m"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(src, "seg_000000"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(src, "seg_000000", "stats.bin"), []byte("s"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	dst := filepath.Join(t.TempDir(), "backup.zip")
	if err := BackupIndex(src, dst); err != nil {
		t.Fatalf("BackupIndex: %v", err)
	}

	r, err := zip.OpenReader(dst)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer r.Close()

	names := map[string]bool{}
	for _, f := range r.File {
		names[f.Name] = true
	}
	if !names["manifest.bin"] {
		t.Error("expected manifest.bin in the backup")
	}
	if !names[filepath.Join("seg_000000", "stats.bin")] {
		t.Error("expected seg_000000/stats.bin in the backup")
	}
}
