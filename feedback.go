package cordsearch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FeedbackEntry is one line of the feedback log: a query, the result
// the user reacted to, and their signal.
type FeedbackEntry struct {
	Query   string `json:"query"`
	CordUID string `json:"cord_uid"`
	Signal  string `json:"signal"` // e.g. "helpful", "not_helpful"
}

// FeedbackLog is an append-only JSON-lines file. It is a thin utility:
// each entry is one O_APPEND write of a whole line, with no fsync, and
// there is no read/query API beyond the raw file.
type FeedbackLog struct {
	mu   sync.Mutex
	path string
}

// NewFeedbackLog returns a feedback log at indexDir/feedback.jsonl. It
// does not touch the file; Append creates it on first use.
func NewFeedbackLog(indexDir string) *FeedbackLog {
	return &FeedbackLog{path: filepath.Join(indexDir, "feedback.jsonl")}
}

// Append writes one feedback entry as a single JSON line.
func (fl *FeedbackLog) Append(entry FeedbackEntry) error {
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal feedback: %w", err)
	}
	fl.mu.Lock()
	defer fl.mu.Unlock()

	f, err := os.OpenFile(fl.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open feedback log: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write feedback: %w", err)
	}
	return nil
}
