package site

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gallery-gen/internal/media"
)

// hashedFilename inserts a short content hash before the extension, so
// generated assets can be served with far-future cache headers.
func hashedFilename(filename string, content []byte) string {
	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)
	return fmt.Sprintf("%s.%s%s", stem, media.HashBytes(content), ext)
}

// writeHashed writes content into destDir under a content-hashed name
// and returns that name.
func writeHashed(content []byte, filename, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create asset directory: %w", err)
	}
	name := hashedFilename(filename, content)
	if err := os.WriteFile(filepath.Join(destDir, name), content, 0644); err != nil {
		return "", fmt.Errorf("failed to write asset %s: %w", name, err)
	}
	return name, nil
}

// copyHashed copies srcPath into destDir under a content-hashed name
// and returns that name. An up-to-date copy is left alone.
func copyHashed(srcPath, destDir string) (string, error) {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", srcPath, err)
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", destDir, err)
	}

	name := hashedFilename(filepath.Base(srcPath), data)
	dest := filepath.Join(destDir, name)
	if _, err := os.Stat(dest); err == nil {
		return name, nil
	}

	if err := os.WriteFile(dest, data, 0644); err != nil {
		return "", fmt.Errorf("failed to copy %s: %w", srcPath, err)
	}
	return name, nil
}
