package repo

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/odvcencio/mygit/pkg/object"
)

// maxTreeDepth bounds how deep FlattenTree descends before treating the
// tree as corrupt.
const maxTreeDepth = 1024

// TreeFileEntry represents a single file in a flattened tree.
type TreeFileEntry struct {
	Path     string
	BlobHash object.Hash
}

// BuildTree snapshots the directory root into the object store and returns
// the root tree hash. Regular files become blobs and subdirectories become
// subtrees; an empty directory yields the empty tree. The metadata
// directory and ignored paths are skipped, as is anything that is neither a
// regular file nor a directory.
//
// Directories are discovered with an explicit stack rather than recursion.
func (r *Repo) BuildTree(root string) (object.Hash, error) {
	ic := NewIgnoreChecker(root)

	// order lists directories parent-first, so walking it backwards writes
	// every subtree before the tree that refers to it.
	order := []string{"."}
	listings := make(map[string][]fs.DirEntry)
	for stack := []string{"."}; len(stack) > 0; {
		rel := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			return "", fmt.Errorf("build tree: read dir %q: %w", rel, err)
		}
		listings[rel] = entries
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			child := joinRel(rel, e.Name())
			if ic.IsIgnored(child, true) {
				continue
			}
			order = append(order, child)
			stack = append(stack, child)
		}
	}

	subtrees := make(map[string]object.Hash, len(order))
	for i := len(order) - 1; i >= 0; i-- {
		rel := order[i]
		var entries []object.TreeEntry
		for _, e := range listings[rel] {
			child := joinRel(rel, e.Name())
			switch {
			case e.IsDir():
				h, ok := subtrees[child]
				if !ok {
					continue // ignored
				}
				entries = append(entries, object.TreeEntry{Type: object.TypeTree, Hash: h, Name: e.Name()})
			case e.Type().IsRegular():
				if ic.IsIgnored(child, false) {
					continue
				}
				data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(child)))
				if err != nil {
					return "", fmt.Errorf("build tree: read %q: %w", child, err)
				}
				h, err := r.Store.WriteBlob(&object.Blob{Data: data})
				if err != nil {
					return "", fmt.Errorf("build tree: write blob %q: %w", child, err)
				}
				entries = append(entries, object.TreeEntry{Type: object.TypeBlob, Hash: h, Name: e.Name()})
			}
		}
		h, err := r.Store.WriteTree(&object.TreeObj{Entries: entries})
		if err != nil {
			return "", fmt.Errorf("build tree %q: %w", rel, err)
		}
		subtrees[rel] = h
	}
	return subtrees["."], nil
}

func joinRel(dir, name string) string {
	if dir == "." {
		return name
	}
	return dir + "/" + name
}

// indexNode is one directory while grouping staged paths into trees.
type indexNode struct {
	files map[string]object.Hash
	dirs  map[string]*indexNode
}

func newIndexNode() *indexNode {
	return &indexNode{files: make(map[string]object.Hash), dirs: make(map[string]*indexNode)}
}

// BuildTreeFromIndex converts the flat staging entries into nested tree
// objects and returns the root hash. Blob hashes are taken from the index
// and the working tree is not read. A staging area with no entries yields
// the empty tree. A path that is staged both as a file and as a directory
// is an error.
func (r *Repo) BuildTreeFromIndex(s *Staging) (object.Hash, error) {
	root := newIndexNode()
	for _, p := range s.Paths() {
		parts := strings.Split(p, "/")
		node := root
		for i, part := range parts[:len(parts)-1] {
			if _, isFile := node.files[part]; isFile {
				return "", fmt.Errorf("build tree: %q is both a file and a directory", strings.Join(parts[:i+1], "/"))
			}
			child, ok := node.dirs[part]
			if !ok {
				child = newIndexNode()
				node.dirs[part] = child
			}
			node = child
		}
		name := parts[len(parts)-1]
		if _, isDir := node.dirs[name]; isDir {
			return "", fmt.Errorf("build tree: %q is both a file and a directory", p)
		}
		node.files[name] = s.Entries[p].BlobHash
	}
	return r.writeIndexNode(root, "")
}

func (r *Repo) writeIndexNode(n *indexNode, prefix string) (object.Hash, error) {
	entries := make([]object.TreeEntry, 0, len(n.files)+len(n.dirs))
	for name, h := range n.files {
		entries = append(entries, object.TreeEntry{Type: object.TypeBlob, Hash: h, Name: name})
	}
	for name, child := range n.dirs {
		childPrefix := name
		if prefix != "" {
			childPrefix = prefix + "/" + name
		}
		h, err := r.writeIndexNode(child, childPrefix)
		if err != nil {
			return "", err
		}
		entries = append(entries, object.TreeEntry{Type: object.TypeTree, Hash: h, Name: name})
	}
	h, err := r.Store.WriteTree(&object.TreeObj{Entries: entries})
	if err != nil {
		return "", fmt.Errorf("write tree (prefix=%q): %w", prefix, err)
	}
	return h, nil
}

// FlattenTree walks a tree object recursively, returning all file entries
// with their full slash-separated paths in sorted order.
func (r *Repo) FlattenTree(h object.Hash) ([]TreeFileEntry, error) {
	var result []TreeFileEntry
	if err := r.flattenTreeRec(h, "", 0, &result); err != nil {
		return nil, err
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Path < result[j].Path })
	return result, nil
}

func (r *Repo) flattenTreeRec(h object.Hash, prefix string, depth int, out *[]TreeFileEntry) error {
	if depth > maxTreeDepth {
		return fmt.Errorf("flatten tree: %q nested deeper than %d: %w", prefix, maxTreeDepth, object.ErrObjectCorrupt)
	}
	treeObj, err := r.Store.ReadTree(h)
	if err != nil {
		return fmt.Errorf("flatten tree: read %s: %w", h, err)
	}

	for _, entry := range treeObj.Entries {
		fullPath := entry.Name
		if prefix != "" {
			fullPath = path.Join(prefix, entry.Name)
		}
		if entry.IsDir() {
			if err := r.flattenTreeRec(entry.Hash, fullPath, depth+1, out); err != nil {
				return err
			}
			continue
		}
		*out = append(*out, TreeFileEntry{Path: fullPath, BlobHash: entry.Hash})
	}
	return nil
}

// LsTree returns the direct entries of one tree object.
func (r *Repo) LsTree(h object.Hash) ([]object.TreeEntry, error) {
	treeObj, err := r.Store.ReadTree(h)
	if err != nil {
		return nil, fmt.Errorf("ls-tree: %w", err)
	}
	return treeObj.Entries, nil
}
