package build

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"gallery-gen/internal/cache"
	"gallery-gen/internal/config"
	"gallery-gen/internal/i18n"
	"gallery-gen/internal/logging"
	"gallery-gen/internal/manifest"
	"gallery-gen/internal/media"
	"gallery-gen/internal/metrics"
	"gallery-gen/internal/pipeline"
	"gallery-gen/internal/scan"
	"gallery-gen/internal/site"
)

// Builder assembles the full build flow. It is safe to call Run
// repeatedly (watch mode rebuilds with the same Builder).
type Builder struct {
	cfg *config.Config
	tr  *i18n.Translator
	log *logging.Logger
}

// Summary reports what a build produced.
type Summary struct {
	Images     int
	Failed     int
	Categories int
	IndexPath  string
	Duration   time.Duration
}

func New(cfg *config.Config, tr *i18n.Translator, log *logging.Logger) *Builder {
	return &Builder{cfg: cfg, tr: tr, log: log}
}

// Run executes one complete build and returns its summary.
func (b *Builder) Run() (*Summary, error) {
	start := time.Now()
	sum, err := b.run()
	metrics.BuildDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.BuildsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	sum.Duration = time.Since(start)
	metrics.BuildsTotal.WithLabelValues("success").Inc()
	return sum, nil
}

func (b *Builder) run() (*Summary, error) {
	b.log.Info("scanning images in %s", b.cfg.ContentDir)
	paths, err := scan.Discover(b.cfg.ContentDir)
	if err != nil {
		return nil, err
	}
	b.log.Info("found %d image files", len(paths))
	metrics.ImagesDiscovered.Set(float64(len(paths)))

	if dups := scan.DetectDuplicates(paths); len(dups) > 0 {
		for name, where := range dups {
			b.log.Error("duplicate filename %s: %s", name, strings.Join(where, ", "))
		}
		return nil, fmt.Errorf("cannot proceed with %d duplicate filenames", len(dups))
	}

	m, err := manifest.Load(b.cfg.GalleryYAMLPath, b.log)
	if err != nil {
		return nil, err
	}
	added, orphans := m.Sync(paths, b.cfg.DefaultCategory, b.log)
	for _, name := range orphans {
		b.log.Warn("manifest entry %s has no matching file", name)
	}
	if added > 0 {
		b.log.Info("added %d stub entries to %s", added, b.cfg.GalleryYAMLPath)
		if err := m.Save(b.cfg.GalleryYAMLPath); err != nil {
			return nil, err
		}
	}

	images := b.assembleImages(paths, m)

	var failed []string
	if b.cfg.Thumbnails.Enabled {
		failed, err = b.generateThumbnails(images)
		if err != nil {
			return nil, err
		}
	}

	categories := site.Organize(m.Categories, images, b.log)

	renderer, err := site.NewRenderer(b.cfg, b.tr, b.log)
	if err != nil {
		return nil, err
	}
	indexPath, err := renderer.Render(categories)
	if err != nil {
		return nil, err
	}

	return &Summary{
		Images:     len(images) - len(failed),
		Failed:     len(failed),
		Categories: len(categories),
		IndexPath:  indexPath,
	}, nil
}

// assembleImages merges discovered files with their manifest metadata and
// fresh dimensions.
func (b *Builder) assembleImages(paths []string, m *manifest.Manifest) []site.Image {
	images := make([]site.Image, 0, len(paths))
	for _, path := range paths {
		meta, err := media.ExtractMetadata(path)
		if err != nil {
			b.log.Warn("could not read dimensions for %s: %v", path, err)
			meta = &media.Metadata{}
		}

		img := site.Image{
			Filename:   meta.Filename,
			SourcePath: path,
			Category:   b.cfg.DefaultCategory,
			Width:      meta.Width,
			Height:     meta.Height,
		}
		if img.Filename == "" {
			img.Filename = filepath.Base(path)
		}
		if entry, ok := m.EntryFor(img.Filename); ok {
			img.Title = entry.Title
			img.Description = entry.Description
			if entry.Category != "" {
				img.Category = entry.Category
			}
		}
		images = append(images, img)
	}
	return images
}

// generateThumbnails runs the thumbnail pipeline and attaches the
// resulting records to the images in place. It returns the paths that
// failed.
func (b *Builder) generateThumbnails(images []site.Image) ([]string, error) {
	codec, err := media.NewCodec(b.cfg.Thumbnails, b.log)
	if err != nil {
		return nil, err
	}
	c := cache.Load(b.cfg.Thumbnails.CacheFile, b.log)

	paths := make([]string, len(images))
	for i := range images {
		paths[i] = images[i].SourcePath
	}

	p := pipeline.New(codec, c, b.cfg.Thumbnails, b.cfg.Placeholder, b.log)
	records, failed, err := p.ProcessBatch(paths)
	if err != nil {
		return nil, err
	}

	byPath := make(map[string]*media.ThumbnailRecord, len(records))
	for _, rec := range records {
		byPath[rec.SourcePath] = rec
	}
	for i := range images {
		images[i].Thumbnail = byPath[images[i].SourcePath]
	}
	return failed, nil
}
