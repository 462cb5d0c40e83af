// Package config loads and validates the gallery generator settings.
//
// Settings come from a settings.yaml file with GALLERY_-prefixed
// environment variable overrides. All validation happens in Load; the
// rest of the codebase receives an already-valid Config.
package config
