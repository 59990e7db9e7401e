package fsutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// MakeDataset lists every file under root whose name ends with ext. An
// empty ext matches all files. Symlinked directories are descended only when
// followLinks is set; symlinks to files are always listed.
func MakeDataset(root, ext string, followLinks bool) ([]string, error) {
	var files []string
	visited := make(map[string]bool)
	if err := walk(root, ext, followLinks, visited, &files); err != nil {
		return nil, err
	}
	return files, nil
}

func walk(root, ext string, followLinks bool, visited map[string]bool, files *[]string) error {
	if real, err := filepath.EvalSymlinks(root); err == nil {
		if visited[real] {
			return nil
		}
		visited[real] = true
	}
	// A trailing separator makes WalkDir resolve a symlinked root.
	if info, err := os.Lstat(root); err == nil && info.Mode()&fs.ModeSymlink != 0 {
		root += string(filepath.Separator)
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to scan %s: %w", path, err)
		}
		if d.IsDir() {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			info, err := os.Stat(path)
			if err != nil {
				// Dangling link.
				return nil
			}
			if info.IsDir() {
				if !followLinks {
					return nil
				}
				return walk(path, ext, followLinks, visited, files)
			}
		}

		if ext == "" || strings.HasSuffix(d.Name(), ext) {
			*files = append(*files, path)
		}
		return nil
	})
}
