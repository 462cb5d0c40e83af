package site

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"gallery-gen/internal/logging"
	"gallery-gen/internal/media"
)

// Image is one gallery image with its manifest metadata and, once the
// thumbnail pipeline has run, its derived thumbnail record.
type Image struct {
	Filename    string
	SourcePath  string
	Category    string
	Title       string
	Description string
	Width       int
	Height      int
	Thumbnail   *media.ThumbnailRecord
}

// AltText returns the accessible description for the image: the title
// when one is set, otherwise a cleaned-up form of the filename.
func (img *Image) AltText() string {
	if img.Title != "" {
		return img.Title
	}
	stem := strings.TrimSuffix(img.Filename, filepath.Ext(img.Filename))
	stem = strings.ReplaceAll(stem, "_", " ")
	stem = strings.ReplaceAll(stem, "-", " ")
	return titleCase(stem)
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// Category groups images for display, in manifest order.
type Category struct {
	Name   string
	Images []Image
}

// Organize assigns images to categories in the order the manifest lists
// them. Images referencing an unknown category are logged and dropped;
// categories that end up empty are omitted from the result.
func Organize(categoryNames []string, images []Image, log *logging.Logger) []Category {
	index := make(map[string]int, len(categoryNames))
	cats := make([]Category, len(categoryNames))
	for i, name := range categoryNames {
		cats[i] = Category{Name: name}
		index[name] = i
	}

	for _, img := range images {
		i, ok := index[img.Category]
		if !ok {
			log.Warn("unknown category %q for %s, skipping", img.Category, img.Filename)
			continue
		}
		cats[i].Images = append(cats[i].Images, img)
	}

	var out []Category
	for _, c := range cats {
		if len(c.Images) > 0 {
			out = append(out, c)
		}
	}
	return out
}
