package storage

import (
	"os"
	"path/filepath"
	"strings"
)

// AssetDir answers image-reference existence checks against a directory of
// asset files. A missing directory is a valid empty store: every lookup
// misses, which surfaces each image reference as a defect.
type AssetDir struct {
	root string
}

// NewAssetDir creates an asset store rooted at dir.
func NewAssetDir(dir string) *AssetDir {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	return &AssetDir{root: abs}
}

// Has reports whether an asset with the given name exists. Names are
// slash-separated relative paths; traversal out of the store is rejected.
func (a *AssetDir) Has(name string) bool {
	if name == "" {
		return false
	}
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) || strings.HasPrefix(cleaned, "..") {
		return false
	}
	info, err := os.Stat(filepath.Join(a.root, cleaned))
	return err == nil && !info.IsDir()
}
