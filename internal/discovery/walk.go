package discovery

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// globSorted returns every regular file directly under dir whose name
// has the given extension (case-insensitive), sorted by name.
func globSorted(dir, ext string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				// The directory itself is missing; treat as zero entries
				// rather than failing the whole scan.
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() {
			if path != dir {
				return fs.SkipDir // one level only, no nested categories
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ext) {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

// stemIndex maps filename stem (without extension) to full path for
// every file directly under dir, for matching thumbnails to videos by
// name.
func stemIndex(dir string) (map[string]string, error) {
	index := make(map[string]string)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() {
			if path != dir {
				return fs.SkipDir
			}
			return nil
		}
		index[stemOf(path)] = path
		return nil
	})
	if err != nil {
		return nil, err
	}
	return index, nil
}
