package ttsupdate

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type Timestamp struct {
	Timestamp int64 `json:"timestamp"`
}

// WriteTimestamp records now as the completion time of the last run.
func WriteTimestamp(path string, now time.Time) (Timestamp, error) {
	ts := Timestamp{Timestamp: now.Unix()}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return ts, fmt.Errorf("failed to create timestamp directory: %w", err)
	}
	_, err := writeJSON(path, ts)
	return ts, err
}
