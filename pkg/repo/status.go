package repo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/odvcencio/mygit/pkg/object"
)

// StatusReport groups repo-relative paths by their state. Every list is
// sorted.
type StatusReport struct {
	Staged    []string // in the index
	Untracked []string // on disk, not in the index, not ignored
	Modified  []string // in the index, working content differs
	Missing   []string // in the index, gone from disk
}

// Clean reports whether the working tree matches the index exactly.
func (s *StatusReport) Clean() bool {
	return len(s.Untracked) == 0 && len(s.Modified) == 0 && len(s.Missing) == 0
}

// Status compares the working tree against the index.
//
//  1. Read the index.
//  2. Stat every index entry to find missing and modified files.
//  3. Walk the working directory, skipping .mygit/ and ignored paths, to
//     find untracked files.
func (r *Repo) Status() (*StatusReport, error) {
	stg, err := r.ReadStaging()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	workFiles, err := r.workingFiles()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	report := &StatusReport{Staged: stg.Paths()}
	for _, p := range report.Staged {
		// A staged path is tracked even when an ignore rule matches it.
		absPath := filepath.Join(r.RootDir, filepath.FromSlash(p))
		info, err := os.Lstat(absPath)
		if errors.Is(err, fs.ErrNotExist) || (err == nil && !info.Mode().IsRegular()) {
			report.Missing = append(report.Missing, p)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("status: stat %q: %w", p, err)
		}
		content, err := os.ReadFile(absPath)
		if err != nil {
			return nil, fmt.Errorf("status: read %q: %w", p, err)
		}
		if object.HashObject(object.TypeBlob, content) != stg.Entries[p].BlobHash {
			report.Modified = append(report.Modified, p)
		}
	}
	for p := range workFiles {
		if _, staged := stg.Entries[p]; !staged {
			report.Untracked = append(report.Untracked, p)
		}
	}
	sort.Strings(report.Untracked)
	return report, nil
}

// workingFiles returns the set of regular files under the root that are not
// ignored, keyed by slash-separated repo-relative path.
func (r *Repo) workingFiles() (map[string]bool, error) {
	ic := NewIgnoreChecker(r.RootDir)
	files := make(map[string]bool)
	err := filepath.WalkDir(r.RootDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(r.RootDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if ic.IsIgnored(rel, d.IsDir()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			files[rel] = true
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk: %w", err)
	}
	return files, nil
}
