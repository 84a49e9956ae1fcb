package repo

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/renameio"

	"github.com/odvcencio/mygit/pkg/object"
)

// StagingEntry records the staged state of a single file.
type StagingEntry struct {
	Path     string      `json:"path"`
	BlobHash object.Hash `json:"blob_hash"`
	ModTime  int64       `json:"mod_time"`
	Size     int64       `json:"size"`
}

// Staging holds the full staging area (index) for a repository.
type Staging struct {
	Entries map[string]*StagingEntry `json:"entries"`
}

// NewStaging returns an empty staging area.
func NewStaging() *Staging {
	return &Staging{Entries: make(map[string]*StagingEntry)}
}

// Paths returns the staged paths in sorted order.
func (s *Staging) Paths() []string {
	paths := make([]string, 0, len(s.Entries))
	for p := range s.Entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// IndexStore persists the staging area. Load reports ok=false when no index
// has ever been written.
type IndexStore interface {
	Load() (stg *Staging, ok bool, err error)
	Save(stg *Staging) error
}

// FileIndexStore keeps the index as JSON in .mygit/index.
type FileIndexStore struct {
	path string
}

// NewFileIndexStore returns an IndexStore for the given metadata directory.
func NewFileIndexStore(dir string) *FileIndexStore {
	return &FileIndexStore{path: filepath.Join(dir, "index")}
}

func (f *FileIndexStore) Load() (*Staging, bool, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewStaging(), false, nil
		}
		return nil, false, fmt.Errorf("read staging: %w", err)
	}

	var stg Staging
	if err := json.Unmarshal(data, &stg); err != nil {
		return nil, false, fmt.Errorf("read staging: unmarshal: %w", err)
	}
	if stg.Entries == nil {
		stg.Entries = make(map[string]*StagingEntry)
	}
	return &stg, true, nil
}

// Save atomically replaces the index file.
func (f *FileIndexStore) Save(stg *Staging) error {
	data, err := json.MarshalIndent(stg, "", "  ")
	if err != nil {
		return fmt.Errorf("write staging: marshal: %w", err)
	}
	if err := renameio.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("write staging: %w", err)
	}
	return nil
}

// MemoryIndexStore keeps the index in memory. Saved values are copied so
// callers cannot mutate the stored index.
type MemoryIndexStore struct {
	mu    sync.Mutex
	stg   *Staging
	saves int
}

// NewMemoryIndexStore returns a store that has never been saved to.
func NewMemoryIndexStore() *MemoryIndexStore {
	return &MemoryIndexStore{}
}

func (m *MemoryIndexStore) Load() (*Staging, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stg == nil {
		return NewStaging(), false, nil
	}
	return cloneStaging(m.stg), true, nil
}

func (m *MemoryIndexStore) Save(stg *Staging) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stg = cloneStaging(stg)
	m.saves++
	return nil
}

// Saves returns how many times the index has been written.
func (m *MemoryIndexStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func cloneStaging(s *Staging) *Staging {
	out := &Staging{Entries: make(map[string]*StagingEntry, len(s.Entries))}
	for p, e := range s.Entries {
		cp := *e
		out.Entries[p] = &cp
	}
	return out
}

// ReadStaging loads the staging area. A repository that has never staged
// anything yields an empty Staging.
func (r *Repo) ReadStaging() (*Staging, error) {
	stg, _, err := r.Index.Load()
	return stg, err
}

// WriteStaging persists the staging area.
func (r *Repo) WriteStaging(s *Staging) error {
	return r.Index.Save(s)
}

// Stage records the current content of each path in the index. For each
// file the content is written as a blob and the entry for its
// repo-relative path is created or replaced. A missing path, or one that is
// not a regular file, fails with ErrFileNotFound and leaves the index
// untouched.
func (r *Repo) Stage(paths ...string) error {
	stg, err := r.ReadStaging()
	if err != nil {
		return fmt.Errorf("stage: %w", err)
	}

	for _, p := range paths {
		relPath, err := r.repoRelPath(p)
		if err != nil {
			return fmt.Errorf("stage: %w", err)
		}

		absPath := filepath.Join(r.RootDir, filepath.FromSlash(relPath))
		info, err := os.Stat(absPath)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("stage %q: %w", relPath, ErrFileNotFound)
			}
			return fmt.Errorf("stage: stat %q: %w", relPath, err)
		}
		if !info.Mode().IsRegular() {
			return fmt.Errorf("stage %q: not a regular file: %w", relPath, ErrFileNotFound)
		}
		content, err := os.ReadFile(absPath)
		if err != nil {
			return fmt.Errorf("stage: read %q: %w", relPath, err)
		}

		blobHash, err := r.Store.WriteBlob(&object.Blob{Data: content})
		if err != nil {
			return fmt.Errorf("stage: write blob %q: %w", relPath, err)
		}

		stg.Entries[relPath] = &StagingEntry{
			Path:     relPath,
			BlobHash: blobHash,
			ModTime:  info.ModTime().Unix(),
			Size:     info.Size(),
		}
		r.Logger.WithField("path", relPath).WithField("hash", blobHash).Debug("staged")
	}

	if err := r.WriteStaging(stg); err != nil {
		return fmt.Errorf("stage: %w", err)
	}
	return nil
}

// Unstage removes paths from the index. Paths that are not staged are
// ignored; when nothing changes the index is not rewritten.
func (r *Repo) Unstage(paths ...string) error {
	stg, err := r.ReadStaging()
	if err != nil {
		return fmt.Errorf("unstage: %w", err)
	}

	changed := false
	for _, p := range paths {
		relPath, err := r.repoRelPath(p)
		if err != nil {
			return fmt.Errorf("unstage: %w", err)
		}
		if _, ok := stg.Entries[relPath]; ok {
			delete(stg.Entries, relPath)
			changed = true
			r.Logger.WithField("path", relPath).Debug("unstaged")
		}
	}
	if !changed {
		return nil
	}

	if err := r.WriteStaging(stg); err != nil {
		return fmt.Errorf("unstage: %w", err)
	}
	return nil
}

// repoRelPath converts a path (absolute, or relative to the working
// directory) into a slash-separated path relative to the repository root.
// A relative path that does not resolve inside the root from the working
// directory is taken as already repo-relative.
func (r *Repo) repoRelPath(p string) (string, error) {
	var rel string
	if filepath.IsAbs(p) {
		var err error
		rel, err = filepath.Rel(r.RootDir, p)
		if err != nil {
			return "", fmt.Errorf("cannot make %q relative to %q: %w", p, r.RootDir, err)
		}
	} else {
		rel = filepath.Clean(p)
		if cwd, err := os.Getwd(); err == nil {
			if fromCwd, err := filepath.Rel(r.RootDir, filepath.Join(cwd, p)); err == nil && !escapesRoot(fromCwd) {
				rel = fromCwd
			}
		}
	}
	rel = filepath.ToSlash(rel)
	if err := validateRepoPath(rel); err != nil {
		return "", fmt.Errorf("path %q: %w", p, err)
	}
	return rel, nil
}

func escapesRoot(rel string) bool {
	rel = filepath.ToSlash(rel)
	return rel == ".." || strings.HasPrefix(rel, "../")
}

// validateRepoPath checks every component of a slash-separated repo path
// and keeps the metadata directory out of the index.
func validateRepoPath(rel string) error {
	if rel == "." || escapesRoot(rel) || strings.HasPrefix(rel, "/") {
		return fmt.Errorf("outside repository")
	}
	parts := strings.Split(rel, "/")
	if parts[0] == MetaDirName {
		return fmt.Errorf("inside %s", MetaDirName)
	}
	for _, part := range parts {
		if err := object.ValidateEntryName(part); err != nil {
			return err
		}
	}
	return nil
}
