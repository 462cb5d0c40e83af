package media

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"gallery-gen/internal/config"
	"gallery-gen/internal/logging"
)

func TestMain(m *testing.M) {
	log := logging.New(io.Discard, logging.LevelError)
	vipsReady := InitVips(log) == nil
	code := m.Run()
	if vipsReady {
		ShutdownVips(log)
	}
	os.Exit(code)
}

func requireVips(t *testing.T) {
	t.Helper()
	if !IsVipsAvailable() {
		t.Skip("libvips not available")
	}
}

func TestThumbnailDimensions(t *testing.T) {
	tests := []struct {
		name      string
		w, h, max int
		wantW     int
		wantH     int
	}{
		{"landscape downscale", 4000, 3000, 800, 800, 600},
		{"portrait downscale", 3000, 4000, 800, 600, 800},
		{"already small", 600, 400, 800, 600, 400},
		{"exactly max", 800, 800, 800, 800, 800},
		{"square downscale", 1600, 1600, 800, 800, 800},
		{"extreme panorama", 10000, 1000, 800, 800, 80},
		{"one pixel tall", 5000, 1, 800, 800, 0},
		{"zero width", 0, 100, 800, 0, 100},
		{"rounding", 1000, 750, 800, 800, 600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotW, gotH := ThumbnailDimensions(tt.w, tt.h, tt.max)
			if gotW != tt.wantW || gotH != tt.wantH {
				t.Errorf("ThumbnailDimensions(%d, %d, %d) = (%d, %d), want (%d, %d)",
					tt.w, tt.h, tt.max, gotW, gotH, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestThumbnailDimensionsNeverUpscales(t *testing.T) {
	for _, dim := range [][2]int{{100, 50}, {799, 799}, {1, 1}, {400, 800}} {
		w, h := ThumbnailDimensions(dim[0], dim[1], 800)
		if w > dim[0] || h > dim[1] {
			t.Errorf("ThumbnailDimensions(%d, %d, 800) upscaled to (%d, %d)", dim[0], dim[1], w, h)
		}
	}
}

func TestHashBytes(t *testing.T) {
	a := HashBytes([]byte("same content"))
	b := HashBytes([]byte("same content"))
	c := HashBytes([]byte("different content"))

	if len(a) != ContentHashLength {
		t.Errorf("hash length = %d, want %d", len(a), ContentHashLength)
	}
	if a != b {
		t.Errorf("identical content hashed differently: %s vs %s", a, b)
	}
	if a == c {
		t.Error("different content produced the same hash")
	}
}

func TestStemOf(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/content/sunset.jpg", "sunset"},
		{"photo.with.dots.png", "photo.with.dots"},
		{"/a/b/noext", "noext"},
	}
	for _, tt := range tests {
		if got := stemOf(tt.path); got != tt.want {
			t.Errorf("stemOf(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func thumbnailConfig(t *testing.T) config.ThumbnailConfig {
	t.Helper()
	return config.ThumbnailConfig{
		Enabled:      true,
		MaxDimension: 800,
		WebPQuality:  85,
		JPEGQuality:  90,
		OutputDir:    t.TempDir(),
	}
}

func TestGenerateProducesDerivativePair(t *testing.T) {
	requireVips(t)

	src := writeTestPNG(t, t.TempDir(), "photo.png", 1000, 750)
	codec, err := NewCodec(thumbnailConfig(t), logging.New(io.Discard, logging.LevelError))
	if err != nil {
		t.Fatalf("NewCodec() error = %v", err)
	}

	rec, err := codec.Generate(src)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if rec.Width != 800 || rec.Height != 600 {
		t.Errorf("thumbnail dimensions = %dx%d, want 800x600", rec.Width, rec.Height)
	}
	if len(rec.ContentHash) != ContentHashLength {
		t.Errorf("ContentHash = %q", rec.ContentHash)
	}
	for _, p := range []string{rec.WebPPath, rec.JPEGPath} {
		info, err := os.Stat(p)
		if err != nil {
			t.Errorf("derivative missing: %v", err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("empty derivative %s", p)
		}
	}
	wantWebP := "photo-" + rec.ContentHash + ".webp"
	if filepath.Base(rec.WebPPath) != wantWebP {
		t.Errorf("WebP filename = %s, want %s", filepath.Base(rec.WebPPath), wantWebP)
	}
}

func TestGenerateCleansUpStaleDerivatives(t *testing.T) {
	requireVips(t)

	srcDir := t.TempDir()
	src := writeTestPNG(t, srcDir, "photo.png", 400, 300)
	cfg := thumbnailConfig(t)
	codec, err := NewCodec(cfg, logging.New(io.Discard, logging.LevelError))
	if err != nil {
		t.Fatal(err)
	}

	first, err := codec.Generate(src)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	// Change the source content so the hash changes.
	writeJPEG(t, srcDir, "replacement.jpg", 400, 300)
	data, _ := os.ReadFile(filepath.Join(srcDir, "replacement.jpg"))
	if err := os.WriteFile(src, data, 0644); err != nil {
		t.Fatal(err)
	}

	second, err := codec.Generate(src)
	if err != nil {
		t.Fatalf("Generate() after change error = %v", err)
	}
	if second.ContentHash == first.ContentHash {
		t.Fatal("content hash did not change with new source bytes")
	}

	if _, err := os.Stat(first.WebPPath); !os.IsNotExist(err) {
		t.Errorf("stale WebP %s not cleaned up", first.WebPPath)
	}
	if _, err := os.Stat(second.WebPPath); err != nil {
		t.Errorf("new WebP missing: %v", err)
	}
}

func TestGenerateCorruptSource(t *testing.T) {
	requireVips(t)

	dir := t.TempDir()
	src := filepath.Join(dir, "broken.jpg")
	if err := os.WriteFile(src, []byte("definitely not an image"), 0644); err != nil {
		t.Fatal(err)
	}

	codec, err := NewCodec(thumbnailConfig(t), logging.New(io.Discard, logging.LevelError))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := codec.Generate(src); err == nil {
		t.Error("Generate() expected decode error for corrupt source")
	} else {
		var werr *WriteError
		if errors.As(err, &werr) {
			t.Error("decode failure must not be a WriteError")
		}
	}
}

func TestWriteErrorUnwraps(t *testing.T) {
	inner := os.ErrPermission
	err := error(&WriteError{Path: "/dist/x.webp", Err: inner})

	var we *WriteError
	if !errors.As(err, &we) {
		t.Fatal("errors.As failed to match *WriteError")
	}
	if !errors.Is(err, os.ErrPermission) {
		t.Error("WriteError does not unwrap to its cause")
	}
}
