// Package server hosts the local preview server for a built gallery and
// the file watcher that triggers rebuilds while editing content.
package server
