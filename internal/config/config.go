package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all generator settings. It maps to settings.yaml.
type Config struct {
	ContentDir      string `mapstructure:"content_dir"`
	OutputDir       string `mapstructure:"output_dir"`
	GalleryYAMLPath string `mapstructure:"gallery_yaml_path"`
	DefaultCategory string `mapstructure:"default_category"`
	Locale          string `mapstructure:"locale"`
	LocaleDir       string `mapstructure:"locale_dir"`

	Thumbnails  ThumbnailConfig   `mapstructure:"thumbnails"`
	Placeholder PlaceholderConfig `mapstructure:"placeholders"`
	Layout      LayoutConfig      `mapstructure:"layout"`
	Server      ServerConfig      `mapstructure:"server"`
}

// ThumbnailConfig controls derivative generation.
type ThumbnailConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	MaxDimension int    `mapstructure:"max_dimension"`
	WebPQuality  int    `mapstructure:"webp_quality"`
	JPEGQuality  int    `mapstructure:"jpeg_quality"`
	OutputDir    string `mapstructure:"output_dir"`
	CacheFile    string `mapstructure:"cache_file"`
}

// PlaceholderConfig controls blur placeholder generation.
type PlaceholderConfig struct {
	Enabled      bool `mapstructure:"enabled"`
	TargetSize   int  `mapstructure:"target_size"`
	JPEGQuality  int  `mapstructure:"jpeg_quality"`
	MaxSizeBytes int  `mapstructure:"max_size_bytes"`
}

// LayoutConfig holds the justified layout defaults baked into the page.
type LayoutConfig struct {
	TargetRowHeight float64 `mapstructure:"target_row_height"`
	MaxRowHeight    float64 `mapstructure:"max_row_height"`
	Spacing         float64 `mapstructure:"spacing"`
	MinAspectRatio  float64 `mapstructure:"min_aspect_ratio"`
	MaxAspectRatio  float64 `mapstructure:"max_aspect_ratio"`
}

// ServerConfig holds preview server settings.
type ServerConfig struct {
	Port           string `mapstructure:"port"`
	MetricsEnabled bool   `mapstructure:"metrics_enabled"`
}

// Load reads configuration from the given settings file (or the defaults
// when the file is absent) and validates it. Environment variables with a
// GALLERY_ prefix override file values, e.g. GALLERY_THUMBNAILS_MAX_DIMENSION.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("settings")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("GALLERY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// An explicit settings file that fails to parse is a
			// configuration error, not something to silently skip.
			if path != "" {
				return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
			}
			return nil, fmt.Errorf("failed to read settings: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.resolvePaths()
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("content_dir", "content")
	v.SetDefault("output_dir", "dist")
	v.SetDefault("gallery_yaml_path", "config/gallery.yaml")
	v.SetDefault("default_category", "Uncategorized")
	v.SetDefault("locale", "en")
	v.SetDefault("locale_dir", "")

	v.SetDefault("thumbnails.enabled", true)
	v.SetDefault("thumbnails.max_dimension", 800)
	v.SetDefault("thumbnails.webp_quality", 85)
	v.SetDefault("thumbnails.jpeg_quality", 90)
	v.SetDefault("thumbnails.output_dir", "dist/images/thumbnails")
	v.SetDefault("thumbnails.cache_file", "dist/.build-cache.json")

	v.SetDefault("placeholders.enabled", true)
	v.SetDefault("placeholders.target_size", 20)
	v.SetDefault("placeholders.jpeg_quality", 50)
	v.SetDefault("placeholders.max_size_bytes", 1200)

	v.SetDefault("layout.target_row_height", 320)
	v.SetDefault("layout.max_row_height", 480)
	v.SetDefault("layout.spacing", 8)
	v.SetDefault("layout.min_aspect_ratio", 0.25)
	v.SetDefault("layout.max_aspect_ratio", 4.0)

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.metrics_enabled", true)
}

func (c *Config) validate() error {
	if c.ContentDir == "" {
		return fmt.Errorf("content_dir must not be empty")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}

	t := c.Thumbnails
	if t.MaxDimension < 100 || t.MaxDimension > 4000 {
		return fmt.Errorf("thumbnails.max_dimension must be between 100 and 4000, got %d", t.MaxDimension)
	}
	if t.WebPQuality < 1 || t.WebPQuality > 100 {
		return fmt.Errorf("thumbnails.webp_quality must be between 1 and 100, got %d", t.WebPQuality)
	}
	if t.JPEGQuality < 1 || t.JPEGQuality > 100 {
		return fmt.Errorf("thumbnails.jpeg_quality must be between 1 and 100, got %d", t.JPEGQuality)
	}

	p := c.Placeholder
	if p.Enabled {
		if p.TargetSize < 4 || p.TargetSize > 64 {
			return fmt.Errorf("placeholders.target_size must be between 4 and 64, got %d", p.TargetSize)
		}
		if p.JPEGQuality < 1 || p.JPEGQuality > 100 {
			return fmt.Errorf("placeholders.jpeg_quality must be between 1 and 100, got %d", p.JPEGQuality)
		}
		if p.MaxSizeBytes <= 0 {
			return fmt.Errorf("placeholders.max_size_bytes must be positive, got %d", p.MaxSizeBytes)
		}
	}

	l := c.Layout
	if l.TargetRowHeight <= 0 {
		return fmt.Errorf("layout.target_row_height must be positive, got %g", l.TargetRowHeight)
	}
	if l.MaxRowHeight < l.TargetRowHeight {
		return fmt.Errorf("layout.max_row_height (%g) must not be below layout.target_row_height (%g)",
			l.MaxRowHeight, l.TargetRowHeight)
	}
	if l.Spacing < 0 {
		return fmt.Errorf("layout.spacing must not be negative, got %g", l.Spacing)
	}
	if l.MinAspectRatio <= 0 || l.MaxAspectRatio < l.MinAspectRatio {
		return fmt.Errorf("layout aspect ratio bounds invalid: min %g, max %g",
			l.MinAspectRatio, l.MaxAspectRatio)
	}

	return nil
}

// resolvePaths converts directory settings to absolute paths where possible.
func (c *Config) resolvePaths() {
	for _, p := range []*string{
		&c.ContentDir, &c.OutputDir, &c.GalleryYAMLPath,
		&c.Thumbnails.OutputDir, &c.Thumbnails.CacheFile,
	} {
		if abs, err := filepath.Abs(*p); err == nil {
			*p = abs
		}
	}
}
