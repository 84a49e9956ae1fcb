package repo

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/odvcencio/mygit/pkg/diff"
	"github.com/odvcencio/mygit/pkg/object"
)

// Diff returns a unified diff of one file from its recorded content to its
// working copy. The recorded side is the staged blob, else the blob in the
// current commit, else empty. A missing working file fails with
// ErrFileNotFound. Identical content yields nil.
func (r *Repo) Diff(p string) ([]byte, error) {
	relPath, err := r.repoRelPath(p)
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}
	work, err := os.ReadFile(filepath.Join(r.RootDir, filepath.FromSlash(relPath)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("diff %q: %w", relPath, ErrFileNotFound)
		}
		return nil, fmt.Errorf("diff: read %q: %w", relPath, err)
	}

	base, err := r.recordedContent(relPath)
	if err != nil {
		return nil, fmt.Errorf("diff %q: %w", relPath, err)
	}
	return diff.Unified("a/"+relPath, "b/"+relPath, base, work, diff.DefaultContext)
}

// DiffAll concatenates the diffs of every modified staged file.
func (r *Repo) DiffAll() ([]byte, error) {
	st, err := r.Status()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	for _, p := range st.Modified {
		out, err := r.Diff(p)
		if err != nil {
			return nil, err
		}
		buf.Write(out)
	}
	return buf.Bytes(), nil
}

func (r *Repo) recordedContent(relPath string) ([]byte, error) {
	stg, err := r.ReadStaging()
	if err != nil {
		return nil, err
	}
	if e, ok := stg.Entries[relPath]; ok {
		blob, err := r.Store.ReadBlob(e.BlobHash)
		if err != nil {
			return nil, err
		}
		return blob.Data, nil
	}

	head, ok, err := r.HeadCommit()
	if err != nil || !ok {
		return nil, err
	}
	c, err := r.Store.ReadCommit(head)
	if err != nil {
		return nil, err
	}
	h, found, err := r.lookupTreePath(c.TreeHash, relPath)
	if err != nil || !found {
		return nil, err
	}
	blob, err := r.Store.ReadBlob(h)
	if err != nil {
		return nil, err
	}
	return blob.Data, nil
}

// lookupTreePath finds the blob at a slash-separated path below tree h.
func (r *Repo) lookupTreePath(h object.Hash, relPath string) (object.Hash, bool, error) {
	parts := strings.Split(relPath, "/")
	for i, part := range parts {
		tree, err := r.Store.ReadTree(h)
		if err != nil {
			return "", false, err
		}
		var next *object.TreeEntry
		for j := range tree.Entries {
			if tree.Entries[j].Name == part {
				next = &tree.Entries[j]
				break
			}
		}
		if next == nil {
			return "", false, nil
		}
		// Only the final component may name a blob.
		if next.IsDir() == (i == len(parts)-1) {
			return "", false, nil
		}
		h = next.Hash
	}
	return h, true, nil
}
