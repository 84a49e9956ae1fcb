package repo

import (
	"fmt"
	"strings"

	"github.com/odvcencio/mygit/pkg/object"
)

// CreateBranch creates refs/heads/<name> pointing at the current branch's
// commit and returns that commit. HEAD does not move.
func (r *Repo) CreateBranch(name string) (object.Hash, error) {
	if err := ValidateBranchName(name); err != nil {
		return "", fmt.Errorf("create branch: %w", err)
	}
	current, err := r.ResolveHead()
	if err != nil {
		return "", fmt.Errorf("create branch: %w", err)
	}
	h, ok, err := r.ReadRef(current)
	if err != nil {
		return "", fmt.Errorf("create branch: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("create branch %q: %w on %s", name, ErrNoCommitsYet, current)
	}

	target := branchRef(name)
	if _, exists, err := r.ReadRef(target); err != nil {
		return "", fmt.Errorf("create branch: %w", err)
	} else if exists {
		return "", fmt.Errorf("create branch %q: %w", name, ErrBranchExists)
	}

	if err := r.WriteRef(target, h); err != nil {
		return "", fmt.Errorf("create branch %q: %w", name, err)
	}
	r.Logger.WithField("ref", target).WithField("hash", h).Debug("branch created")
	return h, nil
}

// Branch pairs a branch name with its tip commit.
type Branch struct {
	Name string
	Hash object.Hash
}

// ListBranches returns all branches sorted by name. Nested names such as
// "feature/login" are returned in full.
func (r *Repo) ListBranches() ([]Branch, error) {
	names, refs, err := r.ListRefs(headsPrefix)
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	branches := make([]Branch, 0, len(names))
	for _, ref := range names {
		branches = append(branches, Branch{
			Name: strings.TrimPrefix(ref, headsPrefix),
			Hash: refs[ref],
		})
	}
	return branches, nil
}

// CurrentBranch returns the short name of the branch HEAD points at.
func (r *Repo) CurrentBranch() (string, error) {
	refPath, err := r.ResolveHead()
	if err != nil {
		return "", err
	}
	name, ok := strings.CutPrefix(refPath, headsPrefix)
	if !ok {
		return "", fmt.Errorf("current branch: HEAD points at %q: %w", refPath, ErrUnsupportedHeadState)
	}
	return name, nil
}
