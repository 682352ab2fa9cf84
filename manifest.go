package cordsearch

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
)

const manifestFileName = "manifest.bin"

// loadManifest reads the ordered list of segment names from
// manifest.bin. A missing manifest is not an error: it falls back to
// a lexicographically sorted directory scan for seg_* entries, so an
// index built by hand or recovered without its manifest still loads.
func loadManifest(indexDir string) ([]string, error) {
	path := filepath.Join(indexDir, manifestFileName)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return scanSegmentDirs(indexDir)
		}
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	n, err := readU32(f)
	if err != nil {
		return nil, fmt.Errorf("read manifest count: %w: %w", ErrCorruption, err)
	}
	segs := make([]string, n)
	for i := range segs {
		s, err := readString(f)
		if err != nil {
			return nil, fmt.Errorf("read manifest entry: %w: %w", ErrCorruption, err)
		}
		segs[i] = s
	}
	return segs, nil
}

// saveManifest overwrites manifest.bin with the given segment list.
// Callers must write and fully flush new segment files before calling
// this: the manifest update is always the last step of a publish.
func saveManifest(indexDir string, segs []string) error {
	path := filepath.Join(indexDir, manifestFileName)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create manifest: %w", err)
	}
	defer f.Close()

	if err := writeU32(f, uint32(len(segs))); err != nil {
		return err
	}
	for _, s := range segs {
		if err := writeString(f, s); err != nil {
			return err
		}
	}
	return nil
}

// appendManifest reads the current manifest, appends name unless it is
// already listed, and rewrites it. Manifest growth is monotonic: names
// are never removed or reordered, since this index only supports append.
func appendManifest(indexDir, name string) error {
	segs, err := loadManifest(indexDir)
	if err != nil {
		return err
	}
	// With no manifest file yet, loadManifest falls back to a directory
	// scan, which already lists a segment published just before this
	// call; record it only once.
	for _, s := range segs {
		if s == name {
			return saveManifest(indexDir, segs)
		}
	}
	segs = append(segs, name)
	return saveManifest(indexDir, segs)
}

var segDirRe = regexp.MustCompile(`^seg_(\d{6})$`)

func scanSegmentDirs(indexDir string) ([]string, error) {
	entries, err := os.ReadDir(indexDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan index dir: %w", err)
	}
	var segs []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if segDirRe.MatchString(e.Name()) {
			segs = append(segs, e.Name())
		}
	}
	sort.Strings(segs)
	return segs, nil
}

// nextSegmentID scans the index directory for the highest existing
// seg_NNNNNN ID (via the manifest if present, else a directory scan)
// and returns the next free one.
func nextSegmentID(indexDir string) (uint32, error) {
	segs, err := loadManifest(indexDir)
	if err != nil {
		return 0, err
	}
	var max uint32
	found := false
	for _, s := range segs {
		m := segDirRe.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		var id uint32
		_, err := fmt.Sscanf(m[1], "%d", &id)
		if err != nil {
			continue
		}
		if !found || id > max {
			max = id
			found = true
		}
	}
	if !found {
		return 0, nil
	}
	return max + 1, nil
}
