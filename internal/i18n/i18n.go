// Package i18n translates the user-facing strings of the generated site.
//
// English is the source language: message keys are the English strings
// themselves, and a locale catalog is a flat YAML map from those strings
// to their translations. Unknown locales and missing keys fall back to
// the English text so a partial catalog never breaks a build.
package i18n

import (
	"fmt"
	"os"
	"path/filepath"

	"gallery-gen/internal/logging"

	"gopkg.in/yaml.v3"
)

// Translator resolves messages for one configured locale.
type Translator struct {
	locale  string
	catalog map[string]string
}

// New loads the catalog for locale from localeDir (files are named
// <locale>.yaml). The "en" locale and any locale without a catalog file
// translate to the identity.
func New(locale, localeDir string, log *logging.Logger) (*Translator, error) {
	t := &Translator{locale: locale, catalog: map[string]string{}}
	if locale == "" || locale == "en" {
		return t, nil
	}

	path := filepath.Join(localeDir, locale+".yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn("no catalog for locale %q at %s, falling back to English", locale, path)
			return t, nil
		}
		return nil, fmt.Errorf("failed to read locale catalog %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &t.catalog); err != nil {
		return nil, fmt.Errorf("failed to parse locale catalog %s: %w", path, err)
	}
	log.Debug("loaded %d translations for locale %q", len(t.catalog), locale)
	return t, nil
}

// Locale returns the configured locale code.
func (t *Translator) Locale() string {
	if t.locale == "" {
		return "en"
	}
	return t.locale
}

// T returns the translation for message, or message itself when no
// translation exists.
func (t *Translator) T(message string) string {
	if translated, ok := t.catalog[message]; ok && translated != "" {
		return translated
	}
	return message
}

// Tf translates message and applies fmt-style arguments to the result.
func (t *Translator) Tf(message string, args ...any) string {
	return fmt.Sprintf(t.T(message), args...)
}

// Tn picks the singular or plural message by count. The plural form is
// formatted with the count as its only argument.
func (t *Translator) Tn(singular, plural string, n int) string {
	if n == 1 {
		return t.T(singular)
	}
	return fmt.Sprintf(t.T(plural), n)
}
