package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"gallery-gen/internal/cache"
	"gallery-gen/internal/config"
	"gallery-gen/internal/logging"
	"gallery-gen/internal/media"
	"gallery-gen/internal/metrics"
)

// Generator produces a thumbnail pair for one source image. Satisfied by
// *media.Codec; tests substitute stubs.
type Generator interface {
	Generate(sourcePath string) (*media.ThumbnailRecord, error)
}

// Pipeline runs thumbnail generation over a batch of source images.
//
// Processing is deliberately sequential: each image is I/O- and CPU-bound
// with no shared state beyond the cache, which only this loop touches, so
// concurrency would complicate error isolation for marginal gain at
// typical gallery sizes.
type Pipeline struct {
	codec          Generator
	cache          *cache.Cache
	thumbCfg       config.ThumbnailConfig
	placeholderCfg config.PlaceholderConfig
	log            *logging.Logger

	progress      func(current, total int)
	placeholderFn func(string, config.PlaceholderConfig) (*media.BlurPlaceholder, error)
}

// New creates a pipeline. The cache may be empty but must not be nil.
func New(codec Generator, c *cache.Cache, thumbCfg config.ThumbnailConfig,
	placeholderCfg config.PlaceholderConfig, log *logging.Logger) *Pipeline {
	return &Pipeline{
		codec:          codec,
		cache:          c,
		thumbCfg:       thumbCfg,
		placeholderCfg: placeholderCfg,
		log:            log,
		placeholderFn:  media.GeneratePlaceholder,
	}
}

// WithProgress registers a callback invoked after each image, with the
// number processed so far and the batch total.
func (p *Pipeline) WithProgress(fn func(current, total int)) *Pipeline {
	p.progress = fn
	return p
}

// ProcessBatch generates (or reuses) thumbnails for every source path.
//
// It returns the successful records in input order and the paths that
// failed. Per-item failures are logged and skipped; a write failure or a
// cache persistence failure aborts with an error, since partial output is
// worse than stopping.
func (p *Pipeline) ProcessBatch(sourcePaths []string) ([]*media.ThumbnailRecord, []string, error) {
	var successes []*media.ThumbnailRecord
	var failed []string
	generated, cached := 0, 0
	total := len(sourcePaths)

	for i, sourcePath := range sourcePaths {
		rec, fromCache, err := p.processOne(sourcePath)
		switch {
		case err != nil:
			var werr *media.WriteError
			if errors.As(err, &werr) {
				return nil, nil, err
			}
			p.log.Warn("failed to generate thumbnail for %s: %v", filepath.Base(sourcePath), err)
			metrics.ThumbnailsProcessedTotal.WithLabelValues("failed").Inc()
			failed = append(failed, sourcePath)
		case fromCache:
			p.log.Debug("skipping %s (cached, unchanged)", filepath.Base(sourcePath))
			metrics.ThumbnailsProcessedTotal.WithLabelValues("cached").Inc()
			cached++
			successes = append(successes, rec)
		default:
			metrics.ThumbnailsProcessedTotal.WithLabelValues("generated").Inc()
			metrics.ThumbnailBytesWritten.WithLabelValues("webp").Add(float64(rec.WebPSizeBytes))
			metrics.ThumbnailBytesWritten.WithLabelValues("jpeg").Add(float64(rec.JPEGSizeBytes))
			p.logGeneration(rec)
			generated++
			successes = append(successes, rec)
		}

		if p.progress != nil {
			p.progress(i+1, total)
		}
	}

	// One write per build keeps a mid-batch crash from corrupting the
	// previous cache file.
	if err := p.cache.Save(); err != nil {
		return nil, nil, err
	}

	p.log.Info("thumbnails: %d generated, %d cached, %d failed", generated, cached, len(failed))
	return successes, failed, nil
}

// processOne handles a single image: cache hit, regeneration, or error.
func (p *Pipeline) processOne(sourcePath string) (*media.ThumbnailRecord, bool, error) {
	if !p.cache.ShouldRegenerate(sourcePath) {
		if rec, ok := p.cache.Lookup(sourcePath); ok {
			return rec, true, nil
		}
	}

	start := time.Now()
	rec, err := p.codec.Generate(sourcePath)
	if err != nil {
		return nil, false, err
	}
	metrics.ThumbnailGenerationDuration.Observe(time.Since(start).Seconds())

	if p.placeholderCfg.Enabled {
		ph, err := p.placeholderFn(sourcePath, p.placeholderCfg)
		if err != nil {
			p.log.Warn("failed to generate placeholder for %s: %v", filepath.Base(sourcePath), err)
		} else {
			rec.Placeholder = ph
		}
	}

	if err := p.cache.Update(sourcePath, rec); err != nil {
		return nil, false, fmt.Errorf("failed to update build cache: %w", err)
	}
	return rec, false, nil
}

func (p *Pipeline) logGeneration(rec *media.ThumbnailRecord) {
	p.log.Info("%s: %s -> %s (%.1f%% reduction)",
		rec.SourceFilename,
		formatSize(rec.SourceSizeBytes),
		formatSize(rec.WebPSizeBytes),
		rec.SizeReductionPercent())
}

// formatSize renders a byte count as a human-readable string.
func formatSize(n int64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fMB", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.0fKB", float64(n)/1_000)
	default:
		return fmt.Sprintf("%dB", n)
	}
}
