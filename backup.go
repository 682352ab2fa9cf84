package cordsearch

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// BackupIndex writes a zip snapshot of every file under indexDir
// (manifest, segments, metadata.csv) to destZipPath. The LRU cache
// files are not included: the engine keeps them in the working
// directory, not in indexDir. It is a thin utility: no
// incremental/differential backup, no compression tuning beyond the
// zip package's defaults.
func BackupIndex(indexDir, destZipPath string) error {
	out, err := os.Create(destZipPath)
	if err != nil {
		return fmt.Errorf("create backup file: %w", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	defer zw.Close()

	return filepath.Walk(indexDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(indexDir, path)
		if err != nil {
			return err
		}
		w, err := zw.Create(rel)
		if err != nil {
			return fmt.Errorf("add %s to backup: %w", rel, err)
		}
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", rel, err)
		}
		defer f.Close()
		if _, err := io.Copy(w, f); err != nil {
			return fmt.Errorf("write %s to backup: %w", rel, err)
		}
		return nil
	})
}
