package pipeline

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gallery-gen/internal/cache"
	"gallery-gen/internal/config"
	"gallery-gen/internal/logging"
	"gallery-gen/internal/media"
)

// stubCodec fabricates records without touching libvips. It writes the
// derivative files so cache lookups validate.
type stubCodec struct {
	outputDir string
	calls     []string
	failOn    map[string]error
}

func (s *stubCodec) Generate(sourcePath string) (*media.ThumbnailRecord, error) {
	s.calls = append(s.calls, sourcePath)
	if err, ok := s.failOn[sourcePath]; ok {
		return nil, err
	}

	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, err
	}
	hash := media.HashBytes(data)

	stem := filepath.Base(sourcePath)
	stem = stem[:len(stem)-len(filepath.Ext(stem))]
	webp := filepath.Join(s.outputDir, fmt.Sprintf("%s-%s.webp", stem, hash))
	jpeg := filepath.Join(s.outputDir, fmt.Sprintf("%s-%s.jpg", stem, hash))
	for _, p := range []string{webp, jpeg} {
		if err := os.WriteFile(p, []byte("thumb"), 0644); err != nil {
			return nil, &media.WriteError{Path: p, Err: err}
		}
	}

	return &media.ThumbnailRecord{
		SourceFilename:  filepath.Base(sourcePath),
		SourcePath:      sourcePath,
		WebPPath:        webp,
		JPEGPath:        jpeg,
		Width:           800,
		Height:          600,
		WebPSizeBytes:   5,
		JPEGSizeBytes:   5,
		SourceSizeBytes: int64(len(data)),
		ContentHash:     hash,
		GeneratedAt:     time.Now(),
	}, nil
}

func testLogger() *logging.Logger {
	return logging.New(io.Discard, logging.LevelError)
}

func newTestPipeline(t *testing.T) (*Pipeline, *stubCodec, string) {
	t.Helper()
	dir := t.TempDir()
	outDir := filepath.Join(dir, "thumbs")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		t.Fatal(err)
	}

	codec := &stubCodec{outputDir: outDir, failOn: map[string]error{}}
	c := cache.New(filepath.Join(dir, "cache.json"), testLogger())
	thumbCfg := config.ThumbnailConfig{Enabled: true, MaxDimension: 800, OutputDir: outDir}
	phCfg := config.PlaceholderConfig{Enabled: false}

	p := New(codec, c, thumbCfg, phCfg, testLogger())
	return p, codec, dir
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProcessBatchGeneratesAll(t *testing.T) {
	p, codec, dir := newTestPipeline(t)

	paths := []string{
		writeSource(t, dir, "a.jpg", "image a"),
		writeSource(t, dir, "b.jpg", "image b"),
		writeSource(t, dir, "c.jpg", "image c"),
	}

	successes, failed, err := p.ProcessBatch(paths)
	if err != nil {
		t.Fatalf("ProcessBatch() error = %v", err)
	}
	if len(successes) != 3 || len(failed) != 0 {
		t.Errorf("got %d successes, %d failures; want 3, 0", len(successes), len(failed))
	}
	if len(codec.calls) != 3 {
		t.Errorf("codec invoked %d times, want 3", len(codec.calls))
	}
}

func TestProcessBatchCacheIdempotence(t *testing.T) {
	p, codec, dir := newTestPipeline(t)
	paths := []string{
		writeSource(t, dir, "a.jpg", "image a"),
		writeSource(t, dir, "b.jpg", "image b"),
	}

	if _, _, err := p.ProcessBatch(paths); err != nil {
		t.Fatalf("first ProcessBatch() error = %v", err)
	}
	firstCalls := len(codec.calls)

	successes, failed, err := p.ProcessBatch(paths)
	if err != nil {
		t.Fatalf("second ProcessBatch() error = %v", err)
	}
	if len(codec.calls) != firstCalls {
		t.Errorf("second run invoked codec %d more times, want 0 (all cached)",
			len(codec.calls)-firstCalls)
	}
	if len(successes) != 2 || len(failed) != 0 {
		t.Errorf("second run: %d successes, %d failures; want 2, 0", len(successes), len(failed))
	}
}

func TestProcessBatchInvalidation(t *testing.T) {
	p, codec, dir := newTestPipeline(t)
	a := writeSource(t, dir, "a.jpg", "image a")
	b := writeSource(t, dir, "b.jpg", "image b")

	if _, _, err := p.ProcessBatch([]string{a, b}); err != nil {
		t.Fatal(err)
	}
	codec.calls = nil

	// Touch only a: exactly that image regenerates.
	future := time.Now().Add(10 * time.Second)
	if err := os.Chtimes(a, future, future); err != nil {
		t.Fatal(err)
	}

	if _, _, err := p.ProcessBatch([]string{a, b}); err != nil {
		t.Fatal(err)
	}
	if len(codec.calls) != 1 || codec.calls[0] != a {
		t.Errorf("codec calls = %v, want just %s", codec.calls, a)
	}
}

func TestProcessBatchPartialFailure(t *testing.T) {
	p, codec, dir := newTestPipeline(t)
	good := writeSource(t, dir, "good.jpg", "fine")
	bad := writeSource(t, dir, "bad.jpg", "corrupt")
	codec.failOn[bad] = errors.New("failed to decode image")

	successes, failed, err := p.ProcessBatch([]string{good, bad})
	if err != nil {
		t.Fatalf("ProcessBatch() error = %v, want per-item failure only", err)
	}
	if len(successes) != 1 || successes[0].SourcePath != good {
		t.Errorf("successes = %v, want just the good image", successes)
	}
	if len(failed) != 1 || failed[0] != bad {
		t.Errorf("failed = %v, want just the bad image", failed)
	}
}

func TestProcessBatchWriteFailureIsFatal(t *testing.T) {
	p, codec, dir := newTestPipeline(t)
	a := writeSource(t, dir, "a.jpg", "image a")
	codec.failOn[a] = &media.WriteError{Path: "/out/a.webp", Err: errors.New("disk full")}

	_, _, err := p.ProcessBatch([]string{a})
	if err == nil {
		t.Fatal("ProcessBatch() succeeded, want fatal write error")
	}
	var werr *media.WriteError
	if !errors.As(err, &werr) {
		t.Errorf("error = %v, want *media.WriteError", err)
	}
}

func TestProcessBatchProgress(t *testing.T) {
	p, _, dir := newTestPipeline(t)
	paths := []string{
		writeSource(t, dir, "a.jpg", "image a"),
		writeSource(t, dir, "b.jpg", "image b"),
	}

	var seen []int
	p.WithProgress(func(current, total int) {
		if total != 2 {
			t.Errorf("progress total = %d, want 2", total)
		}
		seen = append(seen, current)
	})

	if _, _, err := p.ProcessBatch(paths); err != nil {
		t.Fatal(err)
	}
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Errorf("progress calls = %v, want [1 2]", seen)
	}
}

func TestProcessBatchAttachesPlaceholder(t *testing.T) {
	p, _, dir := newTestPipeline(t)
	p.placeholderCfg = config.PlaceholderConfig{Enabled: true, TargetSize: 20, JPEGQuality: 50, MaxSizeBytes: 1200}
	p.placeholderFn = func(path string, cfg config.PlaceholderConfig) (*media.BlurPlaceholder, error) {
		return &media.BlurPlaceholder{DataURL: "data:image/jpeg;base64,AAAA", Width: 20, Height: 15}, nil
	}

	a := writeSource(t, dir, "a.jpg", "image a")
	successes, _, err := p.ProcessBatch([]string{a})
	if err != nil {
		t.Fatal(err)
	}
	if successes[0].Placeholder == nil {
		t.Error("record missing placeholder")
	}
}

func TestProcessBatchPlaceholderFailureIsRecoverable(t *testing.T) {
	p, _, dir := newTestPipeline(t)
	p.placeholderCfg = config.PlaceholderConfig{Enabled: true, TargetSize: 20, JPEGQuality: 50, MaxSizeBytes: 1200}
	p.placeholderFn = func(path string, cfg config.PlaceholderConfig) (*media.BlurPlaceholder, error) {
		return nil, errors.New("decode failed")
	}

	a := writeSource(t, dir, "a.jpg", "image a")
	successes, failed, err := p.ProcessBatch([]string{a})
	if err != nil {
		t.Fatal(err)
	}
	if len(successes) != 1 || len(failed) != 0 {
		t.Errorf("got %d successes, %d failures; want thumbnail kept despite placeholder failure",
			len(successes), len(failed))
	}
	if successes[0].Placeholder != nil {
		t.Error("placeholder should be nil after generation failure")
	}
}

func TestProcessBatchEmpty(t *testing.T) {
	p, _, _ := newTestPipeline(t)
	successes, failed, err := p.ProcessBatch(nil)
	if err != nil {
		t.Fatalf("ProcessBatch(nil) error = %v", err)
	}
	if len(successes) != 0 || len(failed) != 0 {
		t.Errorf("empty batch produced %d successes, %d failures", len(successes), len(failed))
	}
}
