// Package uuidfile renames files to fresh, collision-free names.
//
// Build artifacts are renamed before upload so that two builds of the same
// package can never clobber each other in blob storage.
package uuidfile

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Rename moves the file at path to a freshly generated version-4 UUID name
// in the same directory, preserving the original extension (including the
// leading dot, if any), and returns the new path. Because source and
// destination share a directory the rename is a metadata-only operation.
//
// The source path is not validated up front; any error from the underlying
// rename is returned as-is.
func Rename(path string) (string, error) {
	ext := filepath.Ext(path)
	newPath := filepath.Join(filepath.Dir(path), uuid.New().String()+ext)

	if err := os.Rename(path, newPath); err != nil {
		return "", err
	}

	return newPath, nil
}
