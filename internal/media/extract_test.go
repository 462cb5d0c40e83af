package media

import (
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writeJPEG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img := image.NewYCbCr(image.Rect(0, 0, w, h), image.YCbCrSubsampleRatio420)
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 80}); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeTestPNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewNRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeGIF(t *testing.T, dir, name string, frames int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	palette := color.Palette{color.Black, color.White}
	g := &gif.GIF{}
	for i := 0; i < frames; i++ {
		g.Image = append(g.Image, image.NewPaletted(image.Rect(0, 0, 10, 10), palette))
		g.Delay = append(g.Delay, 10)
	}
	if err := gif.EncodeAll(f, g); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtractMetadataJPEG(t *testing.T) {
	path := writeJPEG(t, t.TempDir(), "photo.jpg", 320, 240)

	md, err := ExtractMetadata(path)
	if err != nil {
		t.Fatalf("ExtractMetadata() error = %v", err)
	}

	if md.Filename != "photo.jpg" {
		t.Errorf("Filename = %q", md.Filename)
	}
	if md.Format != "jpeg" {
		t.Errorf("Format = %q, want jpeg", md.Format)
	}
	if md.Width != 320 || md.Height != 240 {
		t.Errorf("dimensions = %dx%d, want 320x240", md.Width, md.Height)
	}
	if md.ColorMode != "RGB" || md.HasTransparency {
		t.Errorf("color mode = %q/%v, want RGB without alpha", md.ColorMode, md.HasTransparency)
	}
	if md.ExifOrientation != 0 {
		t.Errorf("ExifOrientation = %d, want 0 for a file without EXIF", md.ExifOrientation)
	}
	if md.IsAnimated || md.FrameCount != 1 {
		t.Errorf("animation flags = %v/%d, want still image", md.IsAnimated, md.FrameCount)
	}
	if md.FileSizeBytes <= 0 {
		t.Error("FileSizeBytes not populated")
	}
}

func TestExtractMetadataPNGHasAlpha(t *testing.T) {
	path := writeTestPNG(t, t.TempDir(), "logo.png", 64, 32)

	md, err := ExtractMetadata(path)
	if err != nil {
		t.Fatalf("ExtractMetadata() error = %v", err)
	}
	if md.Format != "png" {
		t.Errorf("Format = %q, want png", md.Format)
	}
	if md.ColorMode != "RGBA" || !md.HasTransparency {
		t.Errorf("color mode = %q/%v, want RGBA with alpha", md.ColorMode, md.HasTransparency)
	}
}

func TestExtractMetadataAnimatedGIF(t *testing.T) {
	dir := t.TempDir()

	still := writeGIF(t, dir, "still.gif", 1)
	md, err := ExtractMetadata(still)
	if err != nil {
		t.Fatalf("ExtractMetadata(still) error = %v", err)
	}
	if md.IsAnimated || md.FrameCount != 1 {
		t.Errorf("still gif flagged animated: %v/%d", md.IsAnimated, md.FrameCount)
	}

	animated := writeGIF(t, dir, "spinner.gif", 4)
	md, err = ExtractMetadata(animated)
	if err != nil {
		t.Fatalf("ExtractMetadata(animated) error = %v", err)
	}
	if !md.IsAnimated || md.FrameCount != 4 {
		t.Errorf("animated gif flags = %v/%d, want animated with 4 frames", md.IsAnimated, md.FrameCount)
	}
	if md.ColorMode != "P" {
		t.Errorf("ColorMode = %q, want P for paletted gif", md.ColorMode)
	}
}

func TestExtractMetadataErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := ExtractMetadata(filepath.Join(dir, "missing.jpg")); err == nil {
		t.Error("expected error for missing file")
	}

	garbage := filepath.Join(dir, "garbage.jpg")
	if err := os.WriteFile(garbage, []byte("not an image at all"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ExtractMetadata(garbage); err == nil {
		t.Error("expected error for non-image bytes")
	}
}

func TestAspectRatio(t *testing.T) {
	md := &Metadata{Width: 1600, Height: 900}
	if got := md.AspectRatio(); got < 1.77 || got > 1.78 {
		t.Errorf("AspectRatio() = %g, want ~1.778", got)
	}

	degenerate := &Metadata{Width: 100, Height: 0}
	if got := degenerate.AspectRatio(); got != 0 {
		t.Errorf("AspectRatio() with zero height = %g, want 0", got)
	}
}
