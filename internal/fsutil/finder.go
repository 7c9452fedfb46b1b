// Package fsutil locates graph documents on disk.
package fsutil

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoExtension is returned when FindFilesByExtension is called without an
// extension to match.
var ErrNoExtension = errors.New("fsutil: extension must not be empty")

// FindFilesByExtension walks root and returns every regular file whose name
// ends with extension, sorted lexically. Hidden directories (".git",
// ".cache" and the like) are skipped; root itself is always walked.
func FindFilesByExtension(root, extension string) ([]string, error) {
	if extension == "" {
		return nil, ErrNoExtension
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && strings.HasSuffix(d.Name(), extension) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}
