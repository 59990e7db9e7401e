package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
)

// SyncOptions controls SyncRm.
type SyncOptions struct {
	// Strict requires the source counterpart to have the exact same relative
	// path. Otherwise any source entry with the same relative path minus
	// extension counts, e.g. images/a.jpg keeps labels/a.txt.
	Strict bool

	// DryRun reports the files that would be removed without touching them.
	DryRun bool
}

// SyncRm deletes every file under target that has no counterpart under
// source and returns the removed (or, with DryRun, removable) paths.
func SyncRm(source, target string, opts SyncOptions) ([]string, error) {
	for _, dir := range []string{source, target} {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("sync directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("sync directory %s: not a directory", dir)
		}
	}

	targets, err := MakeDataset(target, "", false)
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, file := range targets {
		rel, err := filepath.Rel(target, file)
		if err != nil {
			return removed, fmt.Errorf("failed to resolve %s: %w", file, err)
		}

		found, err := hasCounterpart(filepath.Join(source, rel), opts.Strict)
		if err != nil {
			return removed, err
		}
		if found {
			continue
		}

		fields := log.Fields{"path": file, "source": source}
		if opts.DryRun {
			log.WithFields(fields).Info("Would remove file without source counterpart")
			removed = append(removed, file)
			continue
		}
		if err := os.Remove(file); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", file, err)
		}
		log.WithFields(fields).Debug("Removed file without source counterpart")
		removed = append(removed, file)
	}

	return removed, nil
}

// hasCounterpart checks for candidate itself (strict) or any sibling named
// "<stem>.*". A dotfile such as ".gitignore" is all stem, so it only matches
// ".gitignore.*".
func hasCounterpart(candidate string, strict bool) (bool, error) {
	if strict {
		_, err := os.Lstat(candidate)
		if err == nil {
			return true, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	dir := filepath.Dir(candidate)
	base := filepath.Base(candidate)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = base
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), stem+".") {
			return true, nil
		}
	}
	return false, nil
}
