package repo

import (
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

const (
	headsPrefix    = "refs/heads/"
	symbolicPrefix = "ref: "
	defaultBranch  = "main"
)

// RefStore persists HEAD and named refs. Ref names are full paths such as
// "refs/heads/main". Implementations replace values whole, so a reader sees
// either the old or the new value.
type RefStore interface {
	// ReadHead returns the raw HEAD content without the trailing newline.
	ReadHead() (string, error)
	WriteHead(content string) error
	// ReadRef reports ok=false for a ref that has never been written.
	ReadRef(name string) (h object.Hash, ok bool, err error)
	WriteRef(name string, h object.Hash) error
	// ListRefs returns every ref whose name starts with prefix.
	ListRefs(prefix string) (map[string]object.Hash, error)
}

// ---------------------------------------------------------------------------
// On-disk refs
// ---------------------------------------------------------------------------

// FileRefStore keeps HEAD and refs as plain files under the metadata
// directory.
type FileRefStore struct {
	dir string
}

// NewFileRefStore returns a RefStore rooted at the metadata directory.
func NewFileRefStore(dir string) *FileRefStore {
	return &FileRefStore{dir: dir}
}

func (s *FileRefStore) ReadHead() (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, "HEAD"))
	if err != nil {
		return "", fmt.Errorf("head: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

func (s *FileRefStore) WriteHead(content string) error {
	if err := renameio.WriteFile(filepath.Join(s.dir, "HEAD"), []byte(content+"\n"), 0o644); err != nil {
		return fmt.Errorf("write HEAD: %w", err)
	}
	return nil
}

func (s *FileRefStore) ReadRef(name string) (object.Hash, bool, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, filepath.FromSlash(name)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read ref %q: %w", name, err)
	}
	h := object.Hash(strings.TrimSpace(string(data)))
	if err := object.ValidateHash(h); err != nil {
		return "", false, fmt.Errorf("read ref %q: %w", name, err)
	}
	return h, true, nil
}

// WriteRef creates parent directories as needed and replaces the ref file
// through a temp file and rename.
func (s *FileRefStore) WriteRef(name string, h object.Hash) error {
	refPath := filepath.Join(s.dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(refPath), 0o755); err != nil {
		return fmt.Errorf("update ref %q: mkdir: %w", name, err)
	}
	if err := renameio.WriteFile(refPath, []byte(string(h)+"\n"), 0o644); err != nil {
		return fmt.Errorf("update ref %q: %w", name, err)
	}
	return nil
}

func (s *FileRefStore) ListRefs(prefix string) (map[string]object.Hash, error) {
	refs := make(map[string]object.Hash)
	root := filepath.Join(s.dir, "refs")
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.dir, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if !strings.HasPrefix(name, prefix) {
			return nil
		}
		h, ok, err := s.ReadRef(name)
		if err != nil {
			return err
		}
		if ok {
			refs[name] = h
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return refs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list refs: %w", err)
	}
	return refs, nil
}

// ---------------------------------------------------------------------------
// In-memory refs
// ---------------------------------------------------------------------------

// MemoryRefStore keeps refs in a map.
type MemoryRefStore struct {
	mu   sync.RWMutex
	head string
	refs map[string]object.Hash
}

// NewMemoryRefStore returns a store whose HEAD points at the default branch.
func NewMemoryRefStore() *MemoryRefStore {
	return &MemoryRefStore{
		head: symbolicPrefix + headsPrefix + defaultBranch,
		refs: make(map[string]object.Hash),
	}
}

func (m *MemoryRefStore) ReadHead() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.head, nil
}

func (m *MemoryRefStore) WriteHead(content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.head = content
	return nil
}

func (m *MemoryRefStore) ReadRef(name string) (object.Hash, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.refs[name]
	return h, ok, nil
}

func (m *MemoryRefStore) WriteRef(name string, h object.Hash) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refs[name] = h
	return nil
}

func (m *MemoryRefStore) ListRefs(prefix string) (map[string]object.Hash, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]object.Hash)
	for name, h := range m.refs {
		if strings.HasPrefix(name, prefix) {
			out[name] = h
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Repo-level ref operations
// ---------------------------------------------------------------------------

// Head returns the raw HEAD content, e.g. "ref: refs/heads/main".
func (r *Repo) Head() (string, error) {
	return r.Refs.ReadHead()
}

// ResolveHead returns the ref path HEAD points at, e.g. "refs/heads/main".
// A detached HEAD fails with ErrUnsupportedHeadState.
func (r *Repo) ResolveHead() (string, error) {
	head, err := r.Refs.ReadHead()
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(head, symbolicPrefix) {
		return "", fmt.Errorf("resolve HEAD %q: %w", head, ErrUnsupportedHeadState)
	}
	refPath := strings.TrimSpace(strings.TrimPrefix(head, symbolicPrefix))
	if err := ValidateRefPath(refPath); err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	return refPath, nil
}

// ReadRef returns the digest stored at refPath. ok is false when the ref
// does not exist yet (a branch with no commits).
func (r *Repo) ReadRef(refPath string) (object.Hash, bool, error) {
	if err := ValidateRefPath(refPath); err != nil {
		return "", false, err
	}
	return r.Refs.ReadRef(refPath)
}

// WriteRef replaces the value stored at refPath. This is the only way
// branch pointers move.
func (r *Repo) WriteRef(refPath string, h object.Hash) error {
	if err := ValidateRefPath(refPath); err != nil {
		return err
	}
	if err := object.ValidateHash(h); err != nil {
		return fmt.Errorf("update ref %q: %w", refPath, err)
	}
	if err := r.Refs.WriteRef(refPath, h); err != nil {
		return err
	}
	r.Logger.WithField("ref", refPath).WithField("hash", h).Debug("ref updated")
	return nil
}

// HeadCommit returns the digest of the current branch. ok is false when the
// branch has no commits.
func (r *Repo) HeadCommit() (object.Hash, bool, error) {
	refPath, err := r.ResolveHead()
	if err != nil {
		return "", false, err
	}
	return r.ReadRef(refPath)
}

// ListRefs returns all refs under prefix sorted by name.
func (r *Repo) ListRefs(prefix string) ([]string, map[string]object.Hash, error) {
	refs, err := r.Refs.ListRefs(prefix)
	if err != nil {
		return nil, nil, err
	}
	names := make([]string, 0, len(refs))
	for name := range refs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, refs, nil
}

// ValidateRefPath checks a full ref path such as "refs/heads/main".
func ValidateRefPath(refPath string) error {
	rest, ok := strings.CutPrefix(refPath, "refs/")
	if !ok {
		return fmt.Errorf("%w: %q must start with refs/", ErrInvalidRefName, refPath)
	}
	if err := validateRefComponents(rest); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidRefName, refPath, err)
	}
	return nil
}

// ValidateBranchName checks a short branch name such as "feature/login".
func ValidateBranchName(name string) error {
	if err := validateRefComponents(name); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidRefName, name, err)
	}
	return nil
}

func validateRefComponents(name string) error {
	if name == "" {
		return errors.New("empty name")
	}
	if strings.HasSuffix(name, ".lock") {
		return errors.New("must not end with .lock")
	}
	for _, part := range strings.Split(name, "/") {
		if part == "" {
			return errors.New("empty path component")
		}
		if strings.HasPrefix(part, ".") {
			return errors.New("component starts with '.'")
		}
	}
	for _, c := range name {
		if c <= ' ' || c == 0x7f || strings.ContainsRune(`~^:?*[\`, c) {
			return fmt.Errorf("contains %q", c)
		}
	}
	return nil
}

func branchRef(name string) string {
	return headsPrefix + name
}
