package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/odvcencio/mygit/pkg/object"
)

// Checkout materializes the tree of commit h into the working directory.
//
//  1. Read the commit and flatten its tree, descending into subtrees.
//  2. Write every blob to its path, creating directories and overwriting
//     whatever is there.
//  3. Reset the index to exactly the tree's entries.
//
// Files that are not in the tree are left alone, and HEAD does not move.
// A missing or corrupt tree or blob fails with an error wrapping
// ErrHistoryCorrupt; files written before the failure stay written.
func (r *Repo) Checkout(h object.Hash) error {
	commit, err := r.Store.ReadCommit(h)
	if err != nil {
		return fmt.Errorf("checkout: cannot read commit %s: %w", h, err)
	}

	files, err := r.FlattenTree(commit.TreeHash)
	if err != nil {
		return fmt.Errorf("checkout %s: %w: %w", h.Short(), ErrHistoryCorrupt, err)
	}

	stg := &Staging{Entries: make(map[string]*StagingEntry, len(files))}
	for _, f := range files {
		if err := validateRepoPath(f.Path); err != nil {
			return fmt.Errorf("checkout %s: %q: %w: %w", h.Short(), f.Path, ErrHistoryCorrupt, err)
		}
		absPath := filepath.Join(r.RootDir, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
			return fmt.Errorf("checkout: mkdir for %q: %w", f.Path, err)
		}

		blob, err := r.Store.ReadBlob(f.BlobHash)
		if err != nil {
			return fmt.Errorf("checkout: blob for %q: %w: %w", f.Path, ErrHistoryCorrupt, err)
		}
		if err := os.WriteFile(absPath, blob.Data, 0o644); err != nil {
			return fmt.Errorf("checkout: write %q: %w", f.Path, err)
		}

		info, err := os.Stat(absPath)
		if err != nil {
			return fmt.Errorf("checkout: stat %q: %w", f.Path, err)
		}
		stg.Entries[f.Path] = &StagingEntry{
			Path:     f.Path,
			BlobHash: f.BlobHash,
			ModTime:  info.ModTime().Unix(),
			Size:     info.Size(),
		}
	}

	if err := r.WriteStaging(stg); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	r.Logger.WithField("hash", h).WithField("files", len(files)).Debug("checked out")
	return nil
}

// SwitchBranch checks out the tip of branch name and points HEAD at it. A
// branch with no commits fails with ErrBranchNotFound unless it is already
// the current branch, in which case nothing happens.
func (r *Repo) SwitchBranch(name string) error {
	if err := ValidateBranchName(name); err != nil {
		return fmt.Errorf("switch: %w", err)
	}
	target := branchRef(name)
	h, ok, err := r.ReadRef(target)
	if err != nil {
		return fmt.Errorf("switch: %w", err)
	}
	if !ok {
		if current, err := r.ResolveHead(); err == nil && current == target {
			return nil
		}
		return fmt.Errorf("switch %q: %w", name, ErrBranchNotFound)
	}

	if err := r.Checkout(h); err != nil {
		return fmt.Errorf("switch %q: %w", name, err)
	}
	if err := r.Refs.WriteHead(symbolicPrefix + target); err != nil {
		return fmt.Errorf("switch %q: %w", name, err)
	}
	r.Logger.WithField("ref", target).Debug("switched branch")
	return nil
}
