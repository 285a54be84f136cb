// Package discovery scans an input directory for playable videos and
// their optional thumbnails, producing the stable video_num index
// used throughout the control plane.
package discovery

import (
	"path/filepath"
	"strings"
)

// Entry is one discovered video: its source file, a human label
// derived from the filename, and the path to a matching thumbnail if
// one was found.
type Entry struct {
	Path          string
	Label         string
	ThumbnailPath string
}

// Scan walks dir/encoded for *.h264 files and dir/thumbnails for a
// same-stem image, returning entries sorted by filename so the
// resulting video_num index is stable across runs (required: it is
// the only handle OSC clients have for selecting a video).
func Scan(dir string) ([]Entry, error) {
	encodedDir := filepath.Join(dir, "encoded")
	thumbDir := filepath.Join(dir, "thumbnails")

	videoPaths, err := globSorted(encodedDir, ".h264")
	if err != nil {
		return nil, err
	}
	thumbsByStem, err := stemIndex(thumbDir)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(videoPaths))
	for _, p := range videoPaths {
		stem := stemOf(p)
		entries = append(entries, Entry{
			Path:          p,
			Label:         stem,
			ThumbnailPath: thumbsByStem[stem],
		})
	}
	return entries, nil
}

func stemOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
