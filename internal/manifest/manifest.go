// Package manifest reads and synchronizes the gallery.yaml metadata file
// that pairs source images with titles, descriptions, and categories.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gallery-gen/internal/logging"

	"gopkg.in/yaml.v3"
)

// Entry is the per-image metadata block in gallery.yaml. Title,
// description, and category are opaque pass-through strings as far as
// the build pipeline is concerned.
type Entry struct {
	Filename    string `yaml:"filename"`
	Title       string `yaml:"title,omitempty"`
	Description string `yaml:"description,omitempty"`
	Category    string `yaml:"category,omitempty"`
}

// Manifest is the parsed gallery.yaml.
type Manifest struct {
	Categories []string `yaml:"categories"`
	Images     []Entry  `yaml:"images"`
}

// Load parses the manifest file. A missing file yields an empty manifest
// (sync will populate it); malformed YAML or duplicate entries are errors
// since silently dropping metadata would lose user edits.
func Load(path string, log *logging.Logger) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug("no gallery manifest at %s, starting empty", path)
			return &Manifest{}, nil
		}
		return nil, fmt.Errorf("failed to read gallery manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse gallery manifest %s: %w", path, err)
	}

	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("invalid gallery manifest %s: %w", path, err)
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	seen := make(map[string]bool, len(m.Categories))
	for _, c := range m.Categories {
		if seen[c] {
			return fmt.Errorf("duplicate category %q", c)
		}
		seen[c] = true
	}

	names := make(map[string]bool, len(m.Images))
	for _, e := range m.Images {
		if e.Filename == "" {
			return fmt.Errorf("image entry missing filename")
		}
		if names[e.Filename] {
			return fmt.Errorf("duplicate filename %q", e.Filename)
		}
		names[e.Filename] = true
	}
	return nil
}

// EntryFor returns the metadata entry for a basename, if present.
func (m *Manifest) EntryFor(filename string) (Entry, bool) {
	for _, e := range m.Images {
		if e.Filename == filename {
			return e, true
		}
	}
	return Entry{}, false
}

// Sync reconciles the manifest with the discovered source paths: stub
// entries are appended for new files (using defaultCategory), and entries
// whose files have vanished are reported but kept, so user metadata
// survives a temporarily missing file. It returns the number of stubs
// added and the filenames of orphaned entries.
func (m *Manifest) Sync(sourcePaths []string, defaultCategory string, log *logging.Logger) (added int, orphans []string) {
	onDisk := make(map[string]bool, len(sourcePaths))
	for _, p := range sourcePaths {
		onDisk[filepath.Base(p)] = true
	}

	known := make(map[string]bool, len(m.Images))
	for _, e := range m.Images {
		known[e.Filename] = true
		if !onDisk[e.Filename] {
			orphans = append(orphans, e.Filename)
		}
	}
	sort.Strings(orphans)

	for _, p := range sourcePaths {
		name := filepath.Base(p)
		if known[name] {
			continue
		}
		m.Images = append(m.Images, Entry{
			Filename: name,
			Category: defaultCategory,
		})
		log.Info("added stub manifest entry for %s", name)
		added++
	}

	if m.Categories == nil && defaultCategory != "" {
		m.Categories = []string{defaultCategory}
	}
	return added, orphans
}

// Save writes the manifest back to path, creating parent directories as
// needed.
func (m *Manifest) Save(path string) error {
	if err := m.validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}

	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to serialize gallery manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write gallery manifest %s: %w", path, err)
	}
	return nil
}
