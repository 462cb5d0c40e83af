// Package cache implements the incremental build cache for thumbnail
// generation. The cache is a JSON side-file mapping absolute source paths
// to modification times, content hashes, and derived file paths, so
// unchanged sources skip re-encoding on subsequent builds.
//
// A missing, corrupt, or version-mismatched cache file is treated as an
// empty cache, never an error: the cost is one full rebuild, not a crash.
package cache
