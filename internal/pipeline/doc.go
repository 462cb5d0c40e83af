// Package pipeline orchestrates thumbnail generation for a build: it
// walks the image set in a single sequential pass, consults the build
// cache, invokes the codec only on cache misses, and persists the updated
// cache once at the end. One bad photo never aborts the whole build;
// write failures do.
package pipeline
