// Package fsutil provides file system utility functions.
package fsutil

import (
	"io/fs"
	"path/filepath"
	"slices"
)

// FindFiles recursively searches root for files whose extension is one of
// exts. Paths are returned in lexical order. A root that is itself a matching
// file is returned as the only result.
func FindFiles(root string, exts ...string) ([]string, error) {
	if len(exts) == 0 {
		panic("at least one extension is required")
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && HasExtension(path, exts...) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// HasExtension reports whether path ends in one of exts.
func HasExtension(path string, exts ...string) bool {
	return slices.Contains(exts, filepath.Ext(path))
}
