// Package site renders the static gallery: it assembles scanned images
// and their manifest metadata into categories, writes content-hashed
// assets, and generates index.html from an embedded template.
package site
