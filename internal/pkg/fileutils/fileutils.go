package fileutils

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"video-merger/pkg/file"
)

// StaleFiles lists regular scratch files in dir last modified before
// now-maxAge. Files that do not follow the scratch naming scheme are skipped.
func StaleFiles(dir string, maxAge time.Duration, now time.Time) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	cutoff := now.Add(-maxAge)
	var stale []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() || file.RequestIDOf(entry.Name()) == "" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		if info.ModTime().Before(cutoff) {
			stale = append(stale, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(stale)
	return stale, nil
}

