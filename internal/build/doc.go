// Package build runs a full gallery build: content discovery, manifest
// synchronization, thumbnail generation, and site rendering.
package build
