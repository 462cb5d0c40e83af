package media

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"os"
	"path/filepath"

	// Image format decoders
	_ "image/jpeg"
	_ "image/png"

	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP format support
)

// ExtractMetadata reads intrinsic dimensions, format, color mode, EXIF
// orientation, and animation info from an image file without decoding
// full pixel data. The source file is never modified.
//
// Unreadable or unidentifiable files return an error; callers are
// expected to log a warning and skip the image rather than abort.
func ExtractMetadata(path string) (*Metadata, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("source image not accessible: %w", err)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	cfg, format, err := image.DecodeConfig(file)
	if err != nil {
		return nil, fmt.Errorf("failed to identify image %s: %w", filepath.Base(path), err)
	}

	mode, hasAlpha := colorMode(cfg.ColorModel)

	md := &Metadata{
		Filename:        filepath.Base(path),
		Path:            path,
		Format:          format,
		Width:           cfg.Width,
		Height:          cfg.Height,
		FileSizeBytes:   info.Size(),
		ColorMode:       mode,
		HasTransparency: hasAlpha,
		FrameCount:      1,
	}

	md.ExifOrientation = exifOrientation(path)

	if format == "gif" {
		frames, err := gifFrameCount(path)
		if err == nil && frames > 1 {
			md.IsAnimated = true
			md.FrameCount = frames
		}
	}

	return md, nil
}

// colorMode maps a decoded color model to a short mode name plus an
// alpha-channel flag.
func colorMode(model color.Model) (string, bool) {
	switch model {
	case color.RGBAModel, color.RGBA64Model, color.NRGBAModel, color.NRGBA64Model:
		return "RGBA", true
	case color.GrayModel, color.Gray16Model:
		return "L", false
	case color.YCbCrModel:
		return "RGB", false
	case color.CMYKModel:
		return "CMYK", false
	}
	if _, ok := model.(color.Palette); ok {
		return "P", true
	}
	return "RGB", false
}

// exifOrientation returns the EXIF orientation tag (1-8), or 0 when the
// file carries no usable EXIF data. EXIF parse failures are deliberately
// swallowed: a photo without EXIF is normal, not an error.
func exifOrientation(path string) int {
	file, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer file.Close()

	x, err := exif.Decode(file)
	if err != nil {
		return 0
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 0
	}

	orientation, err := tag.Int(0)
	if err != nil || orientation < 1 || orientation > 8 {
		return 0
	}
	return orientation
}

func gifFrameCount(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	g, err := gif.DecodeAll(file)
	if err != nil {
		return 0, err
	}
	return len(g.Image), nil
}
