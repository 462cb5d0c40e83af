package media

import "time"

// nowFunc is swapped out in tests that need stable timestamps.
var nowFunc = time.Now

// ImageExtensions maps file extensions to whether they are supported
// source image formats.
var ImageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

// Metadata is an immutable snapshot of a source image. It is read fresh
// on every build where the cache is stale and never written back.
type Metadata struct {
	Filename        string
	Path            string
	Format          string
	Width           int
	Height          int
	FileSizeBytes   int64
	ColorMode       string
	HasTransparency bool
	// ExifOrientation is the EXIF orientation tag value (1-8), or 0 when
	// the tag is absent.
	ExifOrientation int
	IsAnimated      bool
	FrameCount      int
}

// AspectRatio returns width/height, or 0 when the height is unknown.
func (m *Metadata) AspectRatio() float64 {
	if m.Height <= 0 {
		return 0
	}
	return float64(m.Width) / float64(m.Height)
}

// ThumbnailRecord describes one generated WebP/JPEG derivative pair.
// Records are immutable once created; a changed source produces a new
// record rather than mutating the old one.
type ThumbnailRecord struct {
	SourceFilename  string
	SourcePath      string
	WebPPath        string
	JPEGPath        string
	Width           int
	Height          int
	WebPSizeBytes   int64
	JPEGSizeBytes   int64
	SourceSizeBytes int64
	ContentHash     string
	GeneratedAt     time.Time
	Placeholder     *BlurPlaceholder
}

// SizeReductionPercent reports how much smaller the WebP derivative is
// than the source, as a percentage.
func (r *ThumbnailRecord) SizeReductionPercent() float64 {
	if r.SourceSizeBytes <= 0 {
		return 0
	}
	return (1 - float64(r.WebPSizeBytes)/float64(r.SourceSizeBytes)) * 100
}

// BlurPlaceholder is an ultra-low-resolution inline preview rendered
// behind the real thumbnail while it loads.
type BlurPlaceholder struct {
	DataURL     string
	SizeBytes   int
	Width       int
	Height      int
	GeneratedAt time.Time
}
