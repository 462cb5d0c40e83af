package media

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	"gallery-gen/internal/config"

	"github.com/disintegration/imaging"
)

// minPlaceholderQuality is the floor for the quality backoff loop.
const minPlaceholderQuality = 10

// GeneratePlaceholder produces an ultra-low-resolution JPEG data URL for
// inline embedding. The real blur is applied client-side with a CSS
// filter, which keeps the data URL small and the blur GPU-accelerated.
//
// Failures are per-item recoverable: callers log a warning and render the
// image without a placeholder.
func GeneratePlaceholder(sourcePath string, cfg config.PlaceholderConfig) (*BlurPlaceholder, error) {
	img, err := imaging.Open(sourcePath, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open image for placeholder: %w", err)
	}

	// Fit never upscales, so tiny sources pass through unchanged.
	preview := imaging.Fit(img, cfg.TargetSize, cfg.TargetSize, imaging.Lanczos)

	dataURL, size, err := encodeDataURL(preview, cfg.JPEGQuality, cfg.MaxSizeBytes)
	if err != nil {
		return nil, err
	}

	return &BlurPlaceholder{
		DataURL:     dataURL,
		SizeBytes:   size,
		Width:       preview.Bounds().Dx(),
		Height:      preview.Bounds().Dy(),
		GeneratedAt: nowFunc(),
	}, nil
}

// encodeDataURL encodes the image as a JPEG data URL, stepping the
// quality down until the URL fits the byte budget. If even the lowest
// quality stays over budget the smallest attempt is returned anyway.
func encodeDataURL(img image.Image, quality, maxSizeBytes int) (string, int, error) {
	var dataURL string

	for q := quality; q >= minPlaceholderQuality; q -= 10 {
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(q)); err != nil {
			return "", 0, fmt.Errorf("failed to encode placeholder: %w", err)
		}

		dataURL = "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
		if len(dataURL) <= maxSizeBytes {
			return dataURL, len(dataURL), nil
		}
	}

	return dataURL, len(dataURL), nil
}
