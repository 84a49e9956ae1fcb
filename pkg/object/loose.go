package object

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// LooseBackend stores one file per object with a 2-character fan-out
// directory layout: objects/ab/cdef0123...
type LooseBackend struct {
	root string
}

// NewLooseBackend creates a LooseBackend rooted at the given directory. The
// objects/ subdirectory is created lazily on first write.
func NewLooseBackend(root string) *LooseBackend {
	return &LooseBackend{root: root}
}

// objectPath returns the filesystem path for a given hash.
func (l *LooseBackend) objectPath(h Hash) string {
	return filepath.Join(l.root, "objects", string(h[:2]), string(h[2:]))
}

func (l *LooseBackend) Has(h Hash) (bool, error) {
	_, err := os.Stat(l.objectPath(h))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (l *LooseBackend) Get(h Hash) ([]byte, error) {
	data, err := os.ReadFile(l.objectPath(h))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loose read: %w", ErrObjectNotFound)
		}
		return nil, fmt.Errorf("loose read: %w", err)
	}
	return data, nil
}

// Put writes data atomically: it goes to a temp file in the fan-out
// directory and is then renamed into place. An existing object is left
// untouched.
func (l *LooseBackend) Put(h Hash, data []byte) error {
	if ok, err := l.Has(h); err != nil {
		return fmt.Errorf("loose write stat: %w", err)
	} else if ok {
		return nil
	}

	dir := filepath.Join(l.root, "objects", string(h[:2]))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("loose write mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("loose write tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("loose write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("loose write close: %w", err)
	}

	if err := os.Rename(tmpName, l.objectPath(h)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("loose write rename: %w", err)
	}
	return nil
}

func (l *LooseBackend) Close() error { return nil }
