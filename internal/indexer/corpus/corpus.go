// Package corpus enumerates the documents of an input directory in the order
// that fixes their ids.
package corpus

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/term-indexer/pkg/errors"
)

// File is one input document.
type File struct {
	ID   int
	Name string
	Path string
}

// List returns the regular, non-hidden files of dir sorted by name, with ids
// assigned in that order starting at 0. Symlinks count by their target.
func List(dir string) ([]File, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.New(apperrors.ErrInputNotFound, dir, "input folder does not exist")
		}
		return nil, fmt.Errorf("inspecting input folder %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, apperrors.New(apperrors.ErrInputNotFound, dir, "input path is not a folder")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading input folder %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		// hidden files are not documents; skipping them lowers N for every weight
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		regular, err := isRegular(dir, entry)
		if err != nil {
			return nil, err
		}
		if regular {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	files := make([]File, len(names))
	for i, name := range names {
		files[i] = File{ID: i, Name: name, Path: filepath.Join(dir, name)}
	}
	return files, nil
}

// isRegular reports whether entry is a regular file, following symlinks. A
// dangling link is an error, as reading it would be.
func isRegular(dir string, entry fs.DirEntry) (bool, error) {
	if entry.Type()&fs.ModeSymlink == 0 {
		return entry.Type().IsRegular(), nil
	}
	path := filepath.Join(dir, entry.Name())
	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("resolving symlink %s: %w", path, err)
	}
	return info.Mode().IsRegular(), nil
}

// Filenames returns the names of files indexed by id.
func Filenames(files []File) []string {
	names := make([]string, len(files))
	for _, f := range files {
		names[f.ID] = f.Name
	}
	return names
}
