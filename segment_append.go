package cordsearch

import "fmt"

// appendDocument builds a fresh N=1 segment for a single document and
// appends it to the manifest. Every term in the document has df=1 and
// a single posting (docID=0, tf) — the same writer path used for bulk
// builds already produces exactly this shape for a one-document batch,
// so no separate single-document writer is needed. This is the only
// mutation path the index supports: there is no update or delete.
func appendDocument(indexDir string, doc TokenDoc, barrelCount uint32) (string, error) {
	if doc.CordUID == "" {
		return "", fmt.Errorf("append document: %w: cord_uid is required", ErrBadInput)
	}
	if len(doc.Tokens) == 0 {
		return "", fmt.Errorf("append document: %w: no tokens", ErrBadInput)
	}

	w := NewSegmentWriter(barrelCount)
	w.AddDocument(doc)

	name, err := w.WriteSegment(indexDir)
	if err != nil {
		return "", err
	}

	// Manifest update is always the last step of a publish.
	if err := appendManifest(indexDir, name); err != nil {
		return "", fmt.Errorf("append manifest: %w", err)
	}
	return name, nil
}
