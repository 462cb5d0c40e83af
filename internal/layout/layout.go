package layout

import (
	"fmt"
	"math"
)

// Dimensions is the intrinsic pixel size of one image.
type Dimensions struct {
	Width  int
	Height int
}

// Options controls the packing geometry.
type Options struct {
	// TargetRowHeight is the height rows aim for before justification.
	TargetRowHeight float64
	// MaxRowHeight caps solved row heights so sparse rows do not balloon.
	MaxRowHeight float64
	// Spacing is the gap between images and between rows, in pixels.
	Spacing float64
	// MinAspectRatio and MaxAspectRatio clamp each image's packing ratio
	// so one extreme panorama or portrait cannot dominate a row. Only the
	// packing math uses the clamped ratio; boxes keep the true ratio for
	// rendering.
	MinAspectRatio float64
	MaxAspectRatio float64
	// ForceLastRow stretches the final row to fill the container width.
	// Off by default: forcing a sparse final row produces unnaturally
	// large images.
	ForceLastRow bool
}

// DefaultOptions returns the packing defaults used by the generated page.
func DefaultOptions() Options {
	return Options{
		TargetRowHeight: 320,
		MaxRowHeight:    480,
		Spacing:         8,
		MinAspectRatio:  0.25,
		MaxAspectRatio:  4.0,
	}
}

// Box is one positioned image. Boxes sharing a RowIndex share identical
// Y and Height, and no two boxes overlap.
type Box struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
	// AspectRatio is the image's true ratio, retained for rendering even
	// when the clamped ratio drove the packing.
	AspectRatio float64
	RowIndex    int
	// ImageIndex is the position in the input slice, so callers can map
	// boxes back to images when some inputs were skipped.
	ImageIndex int
}

// Row describes one packed row.
type Row struct {
	Y      float64
	Height float64
	Count  int
}

// Result is a complete layout. It is recomputed wholesale on any input
// change, never patched incrementally.
type Result struct {
	Boxes []Box
	Rows  []Row
	// ContainerHeight is the total height of the packed layout, used to
	// pre-size the container and eliminate layout shift.
	ContainerHeight float64
	// Skipped lists input indices excluded for missing or invalid
	// dimensions; those images fall back to a static CSS layout.
	Skipped []int
}

func (o Options) validate() error {
	if o.TargetRowHeight <= 0 {
		return fmt.Errorf("layout: target row height must be positive, got %g", o.TargetRowHeight)
	}
	if o.MaxRowHeight < o.TargetRowHeight {
		return fmt.Errorf("layout: max row height %g below target row height %g",
			o.MaxRowHeight, o.TargetRowHeight)
	}
	if o.Spacing < 0 {
		return fmt.Errorf("layout: spacing must not be negative, got %g", o.Spacing)
	}
	if o.MinAspectRatio <= 0 || o.MaxAspectRatio < o.MinAspectRatio {
		return fmt.Errorf("layout: invalid aspect ratio clamp [%g, %g]",
			o.MinAspectRatio, o.MaxAspectRatio)
	}
	return nil
}

// pending is an image accepted into the row being assembled.
type pending struct {
	imageIndex   int
	trueRatio    float64
	clampedRatio float64
}

// Calculate packs images into justified rows within containerWidth.
//
// All arithmetic is in floating-point pixels with no rounding, so
// identical inputs always produce identical output. Zero images yield an
// empty result; images with zero or non-finite dimensions are excluded
// and reported in Result.Skipped.
func Calculate(images []Dimensions, containerWidth float64, opts Options) (*Result, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if containerWidth <= 0 {
		return nil, fmt.Errorf("layout: container width must be positive, got %g", containerWidth)
	}

	res := &Result{}
	if len(images) == 0 {
		return res, nil
	}

	var row []pending
	var rowRatioSum float64
	y := 0.0

	flush := func(last bool) {
		if len(row) == 0 {
			return
		}

		n := float64(len(row))
		available := containerWidth - (n-1)*opts.Spacing

		// A lone image in the whole gallery fills the container width (up
		// to the row height cap) even without ForceLastRow.
		soleImage := len(res.Rows) == 0 && len(row) == 1 && last

		var height float64
		if last && !opts.ForceLastRow && !soleImage {
			// Incomplete final row: natural size, left-aligned.
			height = opts.TargetRowHeight
		} else {
			height = available / rowRatioSum
		}
		height = math.Min(height, opts.MaxRowHeight)

		x := 0.0
		for _, p := range row {
			w := height * p.clampedRatio
			res.Boxes = append(res.Boxes, Box{
				X:           x,
				Y:           y,
				Width:       w,
				Height:      height,
				AspectRatio: p.trueRatio,
				RowIndex:    len(res.Rows),
				ImageIndex:  p.imageIndex,
			})
			x += w + opts.Spacing
		}

		res.Rows = append(res.Rows, Row{Y: y, Height: height, Count: len(row)})
		y += height + opts.Spacing
		row = row[:0]
		rowRatioSum = 0
	}

	for i, img := range images {
		ratio := aspectRatio(img)
		if ratio <= 0 || math.IsInf(ratio, 0) || math.IsNaN(ratio) {
			res.Skipped = append(res.Skipped, i)
			continue
		}

		clamped := math.Min(math.Max(ratio, opts.MinAspectRatio), opts.MaxAspectRatio)
		row = append(row, pending{imageIndex: i, trueRatio: ratio, clampedRatio: clamped})
		rowRatioSum += clamped

		// Width the row would occupy at target height, gaps included.
		rowWidth := rowRatioSum*opts.TargetRowHeight + float64(len(row)-1)*opts.Spacing
		if rowWidth >= containerWidth {
			flush(false)
		}
	}
	flush(true)

	if len(res.Rows) > 0 {
		res.ContainerHeight = y - opts.Spacing
	}
	return res, nil
}

func aspectRatio(d Dimensions) float64 {
	if d.Width <= 0 || d.Height <= 0 {
		return 0
	}
	return float64(d.Width) / float64(d.Height)
}
