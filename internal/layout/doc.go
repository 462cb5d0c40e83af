// Package layout implements the justified row-packing algorithm used to
// arrange gallery thumbnails. It is a pure geometry calculator: given
// image dimensions and a container width it returns pixel boxes, with no
// cropping, near-uniform row heights, and a pre-computable container
// height so the page can reserve space before any image loads.
//
// web/static/layout.js ships the same algorithm for the browser, where it
// re-runs on debounced viewport resizes. Keep the two in sync.
package layout
