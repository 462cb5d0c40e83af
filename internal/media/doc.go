// Package media implements the image processing core of the generator:
// metadata extraction, thumbnail encoding (WebP + JPEG), and blur
// placeholder generation. Source images are never modified.
package media
