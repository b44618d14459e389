// Package fsutil discovers spec files and watchable directories on disk.
package fsutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// FindSpecFiles returns the files under root matching the doublestar
// pattern (e.g. "**/*_test.go"), as paths joined onto root.
func FindSpecFiles(root, pattern string) ([]string, error) {
	if pattern == "" {
		panic("pattern must not be empty")
	}

	matches, err := doublestar.Glob(os.DirFS(root), pattern)
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(matches))
	for _, m := range matches {
		full := filepath.Join(root, filepath.FromSlash(m))
		info, err := os.Stat(full)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, full)
		}
	}
	sort.Strings(files)
	return files, nil
}

// PackageDirs reduces a file list to its unique parent directories, in
// sorted order. The CLI runs one `go test` invocation per directory.
func PackageDirs(files []string) []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, f := range files {
		dir := filepath.Dir(f)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	sort.Strings(dirs)
	return dirs
}

// Dirs returns every directory under root, skipping hidden directories
// and vendor trees. The watcher registers a watch per directory.
func Dirs(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != root && (name == "vendor" || (len(name) > 1 && name[0] == '.')) {
			return filepath.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	return dirs, err
}
