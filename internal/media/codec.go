package media

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gallery-gen/internal/config"
	"gallery-gen/internal/logging"

	"github.com/davidbyttow/govips/v2/vips"
)

// ContentHashLength is the number of hex characters of the SHA-256 digest
// used in derivative filenames.
const ContentHashLength = 8

// WriteError marks a thumbnail write failure (disk full, permissions).
// Unlike decode failures, these abort the build: partial output is worse
// than stopping.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write thumbnail %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Codec generates WebP and JPEG thumbnail pairs from source images.
type Codec struct {
	cfg config.ThumbnailConfig
	log *logging.Logger
}

// NewCodec creates a thumbnail codec writing into cfg.OutputDir, which is
// created if missing.
func NewCodec(cfg config.ThumbnailConfig, log *logging.Logger) (*Codec, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create thumbnail output directory %s: %w", cfg.OutputDir, err)
	}
	return &Codec{cfg: cfg, log: log}, nil
}

// Generate produces the WebP/JPEG derivative pair for one source image.
//
// The source bytes are read once; their SHA-256 prefix names both output
// files so a changed source always yields fresh cache-busting filenames.
// EXIF orientation is applied before resizing, alpha is flattened onto
// white for JPEG compatibility, and animated sources contribute only
// their first frame. The image is never upscaled.
//
// Decode failures return a plain error; callers log and skip the image.
// Write failures return a *WriteError and must abort the build.
func (c *Codec) Generate(sourcePath string) (*ThumbnailRecord, error) {
	if !IsVipsAvailable() {
		return nil, fmt.Errorf("thumbnail codec unavailable: libvips not initialized")
	}

	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read source image: %w", err)
	}
	contentHash := HashBytes(data)

	// govips decodes only the first page of animated formats by default,
	// which is exactly the behavior we want for grid thumbnails.
	ref, err := vips.LoadImageFromBuffer(data, vips.NewImportParams())
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", filepath.Base(sourcePath), err)
	}
	defer ref.Close()

	// No-op when the source carries no EXIF orientation tag.
	if err := ref.AutoRotate(); err != nil {
		return nil, fmt.Errorf("failed to apply orientation to %s: %w", filepath.Base(sourcePath), err)
	}

	if ref.HasAlpha() {
		// White background matches the rendered page background.
		if err := ref.Flatten(&vips.Color{R: 255, G: 255, B: 255}); err != nil {
			return nil, fmt.Errorf("failed to flatten alpha for %s: %w", filepath.Base(sourcePath), err)
		}
	}

	srcWidth, srcHeight := ref.Width(), ref.Height()
	targetWidth, targetHeight := ThumbnailDimensions(srcWidth, srcHeight, c.cfg.MaxDimension)

	if targetWidth < srcWidth || targetHeight < srcHeight {
		// Lanczos3 is vips' default reducer here; it keeps photographic
		// detail sharper than bilinear at thumbnail sizes.
		if err := ref.Thumbnail(targetWidth, targetHeight, vips.InterestingNone); err != nil {
			return nil, fmt.Errorf("failed to resize %s: %w", filepath.Base(sourcePath), err)
		}
	}

	webpBytes, _, err := ref.ExportWebp(&vips.WebpExportParams{
		Quality:         c.cfg.WebPQuality,
		ReductionEffort: 6,
		StripMetadata:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode WebP for %s: %w", filepath.Base(sourcePath), err)
	}

	jpegBytes, _, err := ref.ExportJpeg(&vips.JpegExportParams{
		Quality:        c.cfg.JPEGQuality,
		OptimizeCoding: true,
		StripMetadata:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode JPEG for %s: %w", filepath.Base(sourcePath), err)
	}

	stem := stemOf(sourcePath)
	webpPath := filepath.Join(c.cfg.OutputDir, fmt.Sprintf("%s-%s.webp", stem, contentHash))
	jpegPath := filepath.Join(c.cfg.OutputDir, fmt.Sprintf("%s-%s.jpg", stem, contentHash))

	c.cleanupOldThumbnails(stem, contentHash)

	if err := os.WriteFile(webpPath, webpBytes, 0644); err != nil {
		return nil, &WriteError{Path: webpPath, Err: err}
	}
	if err := os.WriteFile(jpegPath, jpegBytes, 0644); err != nil {
		return nil, &WriteError{Path: jpegPath, Err: err}
	}

	return &ThumbnailRecord{
		SourceFilename:  filepath.Base(sourcePath),
		SourcePath:      sourcePath,
		WebPPath:        webpPath,
		JPEGPath:        jpegPath,
		Width:           ref.Width(),
		Height:          ref.Height(),
		WebPSizeBytes:   int64(len(webpBytes)),
		JPEGSizeBytes:   int64(len(jpegBytes)),
		SourceSizeBytes: int64(len(data)),
		ContentHash:     contentHash,
		GeneratedAt:     nowFunc(),
	}, nil
}

// cleanupOldThumbnails removes stale derivatives of the same source that
// carry a different content hash.
func (c *Codec) cleanupOldThumbnails(stem, currentHash string) {
	for _, pattern := range []string{stem + "-*.webp", stem + "-*.jpg"} {
		matches, err := filepath.Glob(filepath.Join(c.cfg.OutputDir, pattern))
		if err != nil {
			continue
		}
		for _, old := range matches {
			if strings.Contains(filepath.Base(old), currentHash) {
				continue
			}
			if err := os.Remove(old); err != nil {
				c.log.Warn("failed to remove old thumbnail %s: %v", filepath.Base(old), err)
			} else {
				c.log.Debug("cleaned up old thumbnail: %s", filepath.Base(old))
			}
		}
	}
}

// HashBytes returns the first ContentHashLength hex characters of the
// SHA-256 digest of data. Identical bytes always yield identical hashes.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:ContentHashLength]
}

// ThumbnailDimensions computes the target size for a thumbnail so that
// the larger side equals maxDimension while preserving the exact source
// aspect ratio. Sources already within maxDimension keep their size;
// upscaling wastes bytes and adds no information.
func ThumbnailDimensions(sourceWidth, sourceHeight, maxDimension int) (int, int) {
	if sourceWidth <= 0 || sourceHeight <= 0 {
		return sourceWidth, sourceHeight
	}
	if sourceWidth <= maxDimension && sourceHeight <= maxDimension {
		return sourceWidth, sourceHeight
	}

	ratio := float64(sourceWidth) / float64(sourceHeight)
	if sourceWidth >= sourceHeight {
		return maxDimension, int(math.Round(float64(maxDimension) / ratio))
	}
	return int(math.Round(float64(maxDimension) * ratio)), maxDimension
}

func stemOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
