package gd

import (
	"os"
)

// OSFileSystem backs the exporter's write path with the real filesystem:
// creating the output directory, probing destinations for skip-existing,
// and writing the final FIT files.
type OSFileSystem struct{}

// NewOSFileSystem creates the production FileSystem
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

// WriteFile writes one exported activity payload to its destination path
func (fs *OSFileSystem) WriteFile(path string, data []byte, perm int) error {
	return os.WriteFile(path, data, os.FileMode(perm))
}

// Exists reports whether a destination was already written by a prior run
func (fs *OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// MkdirAll creates the output directory tree
func (fs *OSFileSystem) MkdirAll(path string, perm int) error {
	return os.MkdirAll(path, os.FileMode(perm))
}
