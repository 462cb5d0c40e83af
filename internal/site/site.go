package site

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"gallery-gen/internal/config"
	"gallery-gen/internal/i18n"
	"gallery-gen/internal/layout"
	"gallery-gen/internal/logging"
)

//go:embed templates/index.html.tmpl
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// initialLayoutWidth is the container width assumed when pre-computing
// section heights server-side. The client script recomputes positions
// for the real viewport on load.
const initialLayoutWidth = 1200.0

// Renderer generates the static site into the configured output
// directory.
type Renderer struct {
	cfg  *config.Config
	tr   *i18n.Translator
	log  *logging.Logger
	tmpl *template.Template
}

// NewRenderer parses the embedded page template with the translator's
// message function bound in.
func NewRenderer(cfg *config.Config, tr *i18n.Translator, log *logging.Logger) (*Renderer, error) {
	funcs := template.FuncMap{
		"t": tr.T,
	}
	tmpl, err := template.New("index.html.tmpl").Funcs(funcs).ParseFS(templateFS, "templates/index.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}
	return &Renderer{cfg: cfg, tr: tr, log: log, tmpl: tmpl}, nil
}

type pageData struct {
	Title      string
	Locale     string
	CSSHref    string
	JSHref     string
	Layout     config.LayoutConfig
	Categories []categoryView
}

type categoryView struct {
	Name          string
	InitialHeight int
	Images        []imageView
}

type imageView struct {
	Src         string
	Alt         string
	Title       string
	Description string
	Width       int
	Height      int
	ThumbWebP   string
	ThumbJPEG   string
	ThumbWidth  int
	ThumbHeight int
	// LayoutWidth and LayoutHeight are what the justified layout packs:
	// the rendered thumbnail's dimensions when one exists. EXIF-rotated
	// sources report their pre-rotation size, so the source dimensions
	// are only trusted in metadata-only mode.
	LayoutWidth  int
	LayoutHeight int
	Placeholder  template.URL
}

// Render writes the assets, copies the originals, and generates
// index.html for the given categories. It returns the path of the
// written page.
func (r *Renderer) Render(categories []Category) (string, error) {
	cssHref, jsHref, err := r.writeAssets()
	if err != nil {
		return "", err
	}

	data := pageData{
		Title:   r.tr.T("Image Gallery"),
		Locale:  r.tr.Locale(),
		CSSHref: cssHref,
		JSHref:  jsHref,
		Layout:  r.cfg.Layout,
	}

	for _, cat := range categories {
		view, err := r.categoryView(cat)
		if err != nil {
			return "", err
		}
		data.Categories = append(data.Categories, view)
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render page: %w", err)
	}

	indexPath := filepath.Join(r.cfg.OutputDir, "index.html")
	if err := os.MkdirAll(r.cfg.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(indexPath, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", indexPath, err)
	}
	r.log.Info("generated %s (%d bytes)", indexPath, buf.Len())
	return indexPath, nil
}

// writeAssets concatenates the embedded stylesheet and scripts and
// writes them content-hashed next to index.html.
func (r *Renderer) writeAssets() (cssHref, jsHref string, err error) {
	css, err := staticFS.ReadFile("static/gallery.css")
	if err != nil {
		return "", "", fmt.Errorf("failed to load embedded stylesheet: %w", err)
	}

	var js bytes.Buffer
	for _, name := range []string{"static/layout.js", "static/gallery.js"} {
		part, err := staticFS.ReadFile(name)
		if err != nil {
			return "", "", fmt.Errorf("failed to load embedded script %s: %w", name, err)
		}
		js.Write(part)
		js.WriteByte('\n')
	}

	cssHref, err = writeHashed(css, "gallery.css", r.cfg.OutputDir)
	if err != nil {
		return "", "", err
	}
	jsHref, err = writeHashed(js.Bytes(), "gallery.js", r.cfg.OutputDir)
	if err != nil {
		return "", "", err
	}
	return cssHref, jsHref, nil
}

func (r *Renderer) categoryView(cat Category) (categoryView, error) {
	view := categoryView{Name: cat.Name}

	originalsDir := filepath.Join(r.cfg.OutputDir, "images", "originals")
	var dims []layout.Dimensions

	for i := range cat.Images {
		img := &cat.Images[i]

		origName, err := copyHashed(img.SourcePath, originalsDir)
		if err != nil {
			return categoryView{}, err
		}

		iv := imageView{
			Src:          "images/originals/" + origName,
			Alt:          img.AltText(),
			Title:        img.Title,
			Description:  img.Description,
			Width:        img.Width,
			Height:       img.Height,
			LayoutWidth:  img.Width,
			LayoutHeight: img.Height,
		}

		if t := img.Thumbnail; t != nil {
			iv.ThumbWebP = r.relHref(t.WebPPath)
			iv.ThumbJPEG = r.relHref(t.JPEGPath)
			iv.ThumbWidth = t.Width
			iv.ThumbHeight = t.Height
			iv.LayoutWidth = t.Width
			iv.LayoutHeight = t.Height
			if t.Placeholder != nil {
				iv.Placeholder = template.URL(t.Placeholder.DataURL)
			}
		}

		view.Images = append(view.Images, iv)
		dims = append(dims, layout.Dimensions{Width: iv.LayoutWidth, Height: iv.LayoutHeight})
	}

	view.InitialHeight = r.initialHeight(dims)
	return view, nil
}

// relHref maps a derivative's absolute path to an href relative to the
// output directory. Paths outside the output directory fall back to the
// bare filename.
func (r *Renderer) relHref(path string) string {
	rel, err := filepath.Rel(r.cfg.OutputDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.Base(path)
	}
	return filepath.ToSlash(rel)
}

func (r *Renderer) initialHeight(dims []layout.Dimensions) int {
	opts := layout.Options{
		TargetRowHeight: r.cfg.Layout.TargetRowHeight,
		MaxRowHeight:    r.cfg.Layout.MaxRowHeight,
		Spacing:         r.cfg.Layout.Spacing,
		MinAspectRatio:  r.cfg.Layout.MinAspectRatio,
		MaxAspectRatio:  r.cfg.Layout.MaxAspectRatio,
	}
	res, err := layout.Calculate(dims, initialLayoutWidth, opts)
	if err != nil {
		r.log.Warn("layout pre-computation failed: %v", err)
		return 0
	}
	return int(res.ContainerHeight)
}
