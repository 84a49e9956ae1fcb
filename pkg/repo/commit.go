package repo

import (
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/odvcencio/mygit/pkg/object"
)

// maxHistoryLength bounds a history walk. A longer chain is reported as
// corrupt rather than walked forever.
const maxHistoryLength = 1 << 20

// Commit records the staged tree as a new commit on the current branch.
//
//  1. Read the index; no index or an empty one commits the empty tree
//  2. Build the tree from the index
//  3. Read the current branch to get the parent (absent for the first commit)
//  4. Write the commit object
//  5. Move the branch to the new commit
//
// The parent is not required to exist in the store. An author with no name
// is replaced by DefaultAuthor, and a zero timestamp by the current time.
func (r *Repo) Commit(message string, author object.Signature) (object.Hash, error) {
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("commit: %w", ErrEmptyMessage)
	}
	refPath, err := r.ResolveHead()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	stg, indexed, err := r.Index.Load()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	if !indexed || len(stg.Entries) == 0 {
		r.Logger.WithField("ref", refPath).Warn("nothing staged, committing empty tree")
	}

	treeHash, err := r.BuildTreeFromIndex(stg)
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	parent, hasParent, err := r.ReadRef(refPath)
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	if hasParent {
		if pc, err := r.Store.ReadCommit(parent); err == nil && pc.TreeHash == treeHash {
			r.Logger.WithField("ref", refPath).WithField("tree", treeHash).Warn("tree unchanged since parent commit")
		}
	}

	commitObj := &object.CommitObj{
		TreeHash: treeHash,
		Parent:   parent,
		Author:   r.fillAuthor(author),
		Message:  message,
	}
	commitHash, err := r.Store.WriteCommit(commitObj)
	if err != nil {
		return "", fmt.Errorf("commit: write commit: %w", err)
	}

	if err := r.WriteRef(refPath, commitHash); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	r.Logger.WithField("ref", refPath).WithField("hash", commitHash).Debug("committed")
	return commitHash, nil
}

func (r *Repo) fillAuthor(sig object.Signature) object.Signature {
	if sig.Name == "" {
		def := r.DefaultAuthor()
		sig.Name = def.Name
		if sig.Email == "" {
			sig.Email = def.Email
		}
	}
	if sig.When == 0 {
		now := time.Now()
		sig.When = now.Unix()
		if sig.Timezone == "" {
			sig.Timezone = now.Format("-0700")
		}
	}
	return sig
}

// LogEntry is one commit produced by a history walk.
type LogEntry struct {
	Hash   object.Hash
	Commit *object.CommitObj
}

// CommitReader reads commit objects. *object.Store satisfies it.
type CommitReader interface {
	ReadCommit(h object.Hash) (*object.CommitObj, error)
}

// Log walks history from start, newest first, following parent links.
func (r *Repo) Log(start object.Hash) iter.Seq2[LogEntry, error] {
	return WalkHistory(r.Store, start)
}

// WalkHistory walks parent links from start, newest first. The sequence is
// lazy: each commit is read when the consumer asks for it, so stopping
// early reads nothing further.
//
// A start commit that cannot be read yields the reader's error. Any later
// failure, a revisited commit or a chain longer than maxHistoryLength
// yields an error wrapping ErrHistoryCorrupt. The sequence ends after the
// first error.
func WalkHistory(cr CommitReader, start object.Hash) iter.Seq2[LogEntry, error] {
	return func(yield func(LogEntry, error) bool) {
		seen := make(map[object.Hash]struct{})
		current := start
		for n := 0; current != ""; n++ {
			if _, dup := seen[current]; dup {
				yield(LogEntry{}, fmt.Errorf("log: commit %s reached twice: %w", current, ErrHistoryCorrupt))
				return
			}
			if n >= maxHistoryLength {
				yield(LogEntry{}, fmt.Errorf("log: more than %d commits: %w", maxHistoryLength, ErrHistoryCorrupt))
				return
			}
			seen[current] = struct{}{}

			c, err := cr.ReadCommit(current)
			if err != nil {
				if n == 0 {
					yield(LogEntry{}, fmt.Errorf("log: read commit %s: %w", current, err))
				} else {
					yield(LogEntry{}, fmt.Errorf("log: parent %s: %w: %w", current, ErrHistoryCorrupt, err))
				}
				return
			}
			if !yield(LogEntry{Hash: current, Commit: c}, nil) {
				return
			}
			current = c.Parent
		}
	}
}

// LogRef walks history from the commit refPath points at. A ref with no
// commits yields an empty sequence.
func (r *Repo) LogRef(refPath string) iter.Seq2[LogEntry, error] {
	return func(yield func(LogEntry, error) bool) {
		h, ok, err := r.ReadRef(refPath)
		if err != nil {
			yield(LogEntry{}, fmt.Errorf("log: %w", err))
			return
		}
		if !ok {
			return
		}
		for entry, err := range r.Log(h) {
			if !yield(entry, err) || err != nil {
				return
			}
		}
	}
}

// LogHead walks history from the current branch.
func (r *Repo) LogHead() iter.Seq2[LogEntry, error] {
	return func(yield func(LogEntry, error) bool) {
		refPath, err := r.ResolveHead()
		if err != nil {
			yield(LogEntry{}, fmt.Errorf("log: %w", err))
			return
		}
		for entry, err := range r.LogRef(refPath) {
			if !yield(entry, err) || err != nil {
				return
			}
		}
	}
}
