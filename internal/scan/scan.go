// Package scan discovers source images for a gallery build.
package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gallery-gen/internal/media"
)

// Discover returns the absolute paths of all supported images directly
// inside contentDir, sorted by filename. Hidden files are skipped. A
// missing or non-directory content path is a configuration error.
func Discover(contentDir string) ([]string, error) {
	info, err := os.Stat(contentDir)
	if err != nil {
		return nil, fmt.Errorf("content directory does not exist: %s", contentDir)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content path is not a directory: %s", contentDir)
	}

	entries, err := os.ReadDir(contentDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read content directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !media.ImageExtensions[ext] {
			continue
		}
		paths = append(paths, filepath.Join(contentDir, entry.Name()))
	}

	sort.Strings(paths)
	return paths, nil
}

// DetectDuplicates maps each basename that appears more than once to all
// paths carrying it. Duplicate basenames would collide in the thumbnail
// output directory.
func DetectDuplicates(paths []string) map[string][]string {
	byName := make(map[string][]string)
	for _, p := range paths {
		name := filepath.Base(p)
		byName[name] = append(byName[name], p)
	}

	dupes := make(map[string][]string)
	for name, ps := range byName {
		if len(ps) > 1 {
			dupes[name] = ps
		}
	}
	return dupes
}
