package repo

import (
	"fmt"
	"sort"

	"github.com/odvcencio/mygit/pkg/object"
)

// VerifyReport summarizes an integrity walk over everything the refs reach.
type VerifyReport struct {
	Refs    int
	Objects map[object.ObjectType]int
	Missing []object.Hash
}

// Verify reads every object reachable from any ref and checks that it
// decodes and hashes correctly. Referenced objects that are absent are
// listed in the report; when any are, the returned error wraps
// ErrHistoryCorrupt. A corrupt object fails the walk outright.
func (r *Repo) Verify() (*VerifyReport, error) {
	names, refs, err := r.ListRefs("refs/")
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}

	roots := make([]object.Hash, 0, len(names))
	for _, name := range names {
		roots = append(roots, refs[name])
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })

	seen, missing, err := r.Store.ReachableSet(roots)
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}
	report := &VerifyReport{
		Refs:    len(names),
		Objects: make(map[object.ObjectType]int),
		Missing: missing,
	}
	for _, typ := range seen {
		report.Objects[typ]++
	}
	if len(missing) > 0 {
		return report, fmt.Errorf("verify: %d missing object(s): %w", len(missing), ErrHistoryCorrupt)
	}
	return report, nil
}
