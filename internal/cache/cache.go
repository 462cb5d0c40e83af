package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gallery-gen/internal/logging"
	"gallery-gen/internal/media"
)

// Version identifies the cache format. A mismatch invalidates the whole
// cache; entries are regenerated rather than migrated.
const Version = "1.0"

// Entry records one processed source image. An entry is valid while the
// source's mtime does not exceed SourceMtime and both derived files still
// exist on disk.
type Entry struct {
	SourcePath  string  `json:"source_path"`
	SourceMtime float64 `json:"source_mtime"`
	ContentHash string  `json:"content_hash"`
	WebPPath    string  `json:"webp_path"`
	JPEGPath    string  `json:"jpeg_path"`

	GeneratedAt time.Time `json:"generated_at"`

	// Cached dimensions and sizes avoid reopening derivative files on
	// cache hits.
	Width           int   `json:"width"`
	Height          int   `json:"height"`
	WebPSizeBytes   int64 `json:"webp_size_bytes"`
	JPEGSizeBytes   int64 `json:"jpeg_size_bytes"`
	SourceSizeBytes int64 `json:"source_size_bytes"`

	PlaceholderDataURL string `json:"placeholder_data_url,omitempty"`
	PlaceholderWidth   int    `json:"placeholder_width,omitempty"`
	PlaceholderHeight  int    `json:"placeholder_height,omitempty"`
}

// Cache tracks processed images across builds. It is owned by a single
// sequential pipeline pass, so no locking is required.
type Cache struct {
	CacheVersion string           `json:"cache_version"`
	LastUpdated  time.Time        `json:"last_updated"`
	Entries      map[string]Entry `json:"entries"`

	path string
	log  *logging.Logger
}

// New returns an empty cache that will persist to path.
func New(path string, log *logging.Logger) *Cache {
	return &Cache{
		CacheVersion: Version,
		LastUpdated:  time.Now(),
		Entries:      make(map[string]Entry),
		path:         path,
		log:          log,
	}
}

// Load reads the cache file at path. A missing file, parse error, or
// version mismatch yields an empty cache and a warning; Load never fails.
func Load(path string, log *logging.Logger) *Cache {
	c := New(path, log)

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("build cache unreadable (%v), regenerating all thumbnails", err)
		} else {
			log.Debug("no cache file found at %s, starting fresh", path)
		}
		return c
	}

	var loaded Cache
	if err := json.Unmarshal(data, &loaded); err != nil {
		log.Warn("build cache corrupted (%v), regenerating all thumbnails", err)
		return c
	}

	if loaded.CacheVersion != Version {
		log.Warn("cache version mismatch (%q, want %q), regenerating all thumbnails",
			loaded.CacheVersion, Version)
		return c
	}

	if loaded.Entries == nil {
		loaded.Entries = make(map[string]Entry)
	}
	loaded.path = path
	loaded.log = log
	return &loaded
}

// ShouldRegenerate reports whether sourcePath needs a fresh thumbnail:
// true when no entry exists or the file's current mtime is strictly
// newer than the recorded one. The check is a single stat call, so
// unchanged builds stay near-zero cost regardless of image sizes.
func (c *Cache) ShouldRegenerate(sourcePath string) bool {
	entry, ok := c.Entries[sourcePath]
	if !ok {
		return true
	}

	info, err := os.Stat(sourcePath)
	if err != nil {
		return true
	}

	return mtimeOf(info) > entry.SourceMtime
}

// Lookup reconstructs a ThumbnailRecord from a valid cache entry. It
// returns false when the entry is absent or either derived file has
// disappeared from disk.
func (c *Cache) Lookup(sourcePath string) (*media.ThumbnailRecord, bool) {
	entry, ok := c.Entries[sourcePath]
	if !ok {
		return nil, false
	}

	if !fileExists(entry.WebPPath) || !fileExists(entry.JPEGPath) {
		c.log.Debug("cached derivatives missing for %s, regenerating", filepath.Base(sourcePath))
		return nil, false
	}

	rec := &media.ThumbnailRecord{
		SourceFilename:  filepath.Base(sourcePath),
		SourcePath:      sourcePath,
		WebPPath:        entry.WebPPath,
		JPEGPath:        entry.JPEGPath,
		Width:           entry.Width,
		Height:          entry.Height,
		WebPSizeBytes:   entry.WebPSizeBytes,
		JPEGSizeBytes:   entry.JPEGSizeBytes,
		SourceSizeBytes: entry.SourceSizeBytes,
		ContentHash:     entry.ContentHash,
		GeneratedAt:     entry.GeneratedAt,
	}

	if entry.PlaceholderDataURL != "" {
		rec.Placeholder = &media.BlurPlaceholder{
			DataURL:     entry.PlaceholderDataURL,
			SizeBytes:   len(entry.PlaceholderDataURL),
			Width:       entry.PlaceholderWidth,
			Height:      entry.PlaceholderHeight,
			GeneratedAt: entry.GeneratedAt,
		}
	}

	return rec, true
}

// Update upserts the entry for a freshly generated record, capturing the
// source's current mtime.
func (c *Cache) Update(sourcePath string, rec *media.ThumbnailRecord) error {
	info, err := os.Stat(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to stat source for cache update: %w", err)
	}

	entry := Entry{
		SourcePath:      sourcePath,
		SourceMtime:     mtimeOf(info),
		ContentHash:     rec.ContentHash,
		WebPPath:        rec.WebPPath,
		JPEGPath:        rec.JPEGPath,
		GeneratedAt:     rec.GeneratedAt,
		Width:           rec.Width,
		Height:          rec.Height,
		WebPSizeBytes:   rec.WebPSizeBytes,
		JPEGSizeBytes:   rec.JPEGSizeBytes,
		SourceSizeBytes: rec.SourceSizeBytes,
	}

	if rec.Placeholder != nil {
		entry.PlaceholderDataURL = rec.Placeholder.DataURL
		entry.PlaceholderWidth = rec.Placeholder.Width
		entry.PlaceholderHeight = rec.Placeholder.Height
	}

	c.Entries[sourcePath] = entry
	c.LastUpdated = time.Now()
	return nil
}

// Save writes the cache to its file, creating parent directories as
// needed. Called once per build, after the whole batch, so a crash
// mid-batch leaves the previous cache file intact.
func (c *Cache) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	c.LastUpdated = time.Now()
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize build cache: %w", err)
	}

	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write build cache %s: %w", c.path, err)
	}
	return nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return len(c.Entries)
}

func mtimeOf(info os.FileInfo) float64 {
	return float64(info.ModTime().UnixNano()) / float64(time.Second)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
