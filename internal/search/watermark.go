package search

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// WatermarkFilename is the name of the watermark file under the base dir.
const WatermarkFilename = "timestamp"

// Watermark persists the start time of the last index run as unix
// seconds. Incremental runs read it to bound the modified-after filter.
type Watermark struct {
	path string
}

// NewWatermark creates a watermark at the given path.
func NewWatermark(path string) *Watermark {
	return &Watermark{path: path}
}

// Load reads the watermark. A missing or corrupt file yields ok=false;
// the caller degrades to a full rebuild rather than failing.
func (w *Watermark) Load() (t time.Time, ok bool) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return time.Time{}, false
	}

	secs, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return time.Time{}, false
	}

	return time.Unix(secs, 0).UTC(), true
}

// Store overwrites the watermark atomically via a temp file and rename.
func (w *Watermark) Store(t time.Time) error {
	if err := os.MkdirAll(filepath.Dir(w.path), 0755); err != nil {
		return fmt.Errorf("create watermark directory: %w", err)
	}

	data := []byte(strconv.FormatInt(t.Unix(), 10))
	tempPath := w.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("write watermark temp file: %w", err)
	}

	if err := os.Rename(tempPath, w.path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("rename watermark file: %w", err)
	}

	return nil
}

// Path returns the path to the watermark file.
func (w *Watermark) Path() string {
	return w.path
}
