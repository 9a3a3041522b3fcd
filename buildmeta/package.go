package buildmeta

import (
	"os"
	"path/filepath"
	"strings"
)

// Package describes one uploaded artifact. The job server takes it
// URL-encoded, hence the url tags.
type Package struct {
	ID     string `url:"id"`
	Mode   string `url:"packagemode,omitempty"`
	Name   string `url:"packagename"`
	Commit string `url:"commit,omitempty"`
	Format string `url:"packageformat,omitempty"`
	Size   int64  `url:"packagesize"`
}

// NewPackage describes the file at path, which carries its generated upload
// name, under its original name. Mode and Commit are up to the caller.
func NewPackage(name, path string) (*Package, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	base := filepath.Base(path)
	ext := filepath.Ext(base)

	return &Package{
		ID:     strings.TrimSuffix(base, ext),
		Name:   name,
		Format: ext,
		Size:   fi.Size(),
	}, nil
}
