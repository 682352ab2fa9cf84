package cordsearch

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultBarrelCount is the number of lexicon/postings shards a
// segment is split across when barrelizing is enabled.
const DefaultBarrelCount = 64

// BarrelParams controls how term IDs are distributed across barrel
// files within a segment.
type BarrelParams struct {
	BarrelCount    uint32
	TermsPerBarrel uint32
}

// barrelForTerm maps a term ID to its barrel index, matching the
// original engine's `min(termId/terms_per_barrel, barrel_count-1)`.
func barrelForTerm(termID uint32, p BarrelParams) uint32 {
	if p.TermsPerBarrel == 0 {
		return 0
	}
	b := termID / p.TermsPerBarrel
	if b >= p.BarrelCount {
		return p.BarrelCount - 1
	}
	return b
}

// barrelSuffix zero-pads a barrel index to three digits, e.g. "007".
func barrelSuffix(b uint32) string {
	return fmt.Sprintf("%03d", b)
}

func lexBarrelPath(segDir string, b uint32) string {
	return filepath.Join(segDir, "lexicon_b"+barrelSuffix(b)+".bin")
}

func invBarrelPath(segDir string, b uint32) string {
	return filepath.Join(segDir, "inverted_b"+barrelSuffix(b)+".bin")
}

func barrelsManifestPath(segDir string) string {
	return filepath.Join(segDir, "barrels.bin")
}

// hasBarrels reports whether a segment directory was written in
// barrelized form (barrels.bin plus at least barrel 0 present).
func hasBarrels(segDir string) bool {
	if _, err := os.Stat(barrelsManifestPath(segDir)); err != nil {
		return false
	}
	if _, err := os.Stat(lexBarrelPath(segDir, 0)); err != nil {
		return false
	}
	if _, err := os.Stat(invBarrelPath(segDir, 0)); err != nil {
		return false
	}
	return true
}

func writeBarrelsManifest(segDir string, p BarrelParams) error {
	f, err := os.Create(barrelsManifestPath(segDir))
	if err != nil {
		return err
	}
	defer f.Close()
	if err := writeU32(f, p.BarrelCount); err != nil {
		return err
	}
	return writeU32(f, p.TermsPerBarrel)
}

func readBarrelsManifest(segDir string) (BarrelParams, error) {
	f, err := os.Open(barrelsManifestPath(segDir))
	if err != nil {
		return BarrelParams{}, err
	}
	defer f.Close()
	count, err := readU32(f)
	if err != nil {
		return BarrelParams{}, err
	}
	perBarrel, err := readU32(f)
	if err != nil {
		return BarrelParams{}, err
	}
	return BarrelParams{BarrelCount: count, TermsPerBarrel: perBarrel}, nil
}

// barrelParamsFor computes the barrel layout for a segment with
// termCount distinct terms, matching the writer's
// `terms_per_barrel = ceil(termCount / barrelCount)`, minimum 1.
func barrelParamsFor(termCount uint32, barrelCount uint32) BarrelParams {
	if barrelCount == 0 {
		barrelCount = DefaultBarrelCount
	}
	perBarrel := (termCount + barrelCount - 1) / barrelCount
	if perBarrel == 0 {
		perBarrel = 1
	}
	return BarrelParams{BarrelCount: barrelCount, TermsPerBarrel: perBarrel}
}
