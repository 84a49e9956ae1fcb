package object

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ReachableSet walks every object reachable from roots by following tree
// entries and commit tree/parent links. It returns the type of each object
// it could read, plus the sorted hashes that are referenced but absent. A
// corrupt object stops the walk with an error.
func (s *Store) ReachableSet(roots []Hash) (map[Hash]ObjectType, []Hash, error) {
	roots = uniqueNormalizedHashes(roots)
	out := make(map[Hash]ObjectType, len(roots))
	missingSet := make(map[Hash]struct{})

	stack := make([]Hash, 0, len(roots))
	stack = append(stack, roots...)
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := out[h]; ok {
			continue
		}
		if _, ok := missingSet[h]; ok {
			continue
		}

		objType, data, err := s.Read(h)
		if err != nil {
			if errors.Is(err, ErrObjectNotFound) {
				missingSet[h] = struct{}{}
				continue
			}
			return nil, nil, fmt.Errorf("reachable set read %s: %w", h, err)
		}
		out[h] = objType

		refs, err := referencedHashes(objType, data)
		if err != nil {
			return nil, nil, corrupt("reachable", h, "parse %s: %v", objType, err)
		}
		stack = append(stack, refs...)
	}

	missing := make([]Hash, 0, len(missingSet))
	for h := range missingSet {
		missing = append(missing, h)
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return out, missing, nil
}

func referencedHashes(objType ObjectType, data []byte) ([]Hash, error) {
	switch objType {
	case TypeBlob:
		return nil, nil
	case TypeCommit:
		commit, err := UnmarshalCommit(data)
		if err != nil {
			return nil, err
		}
		refs := []Hash{commit.TreeHash}
		if commit.Parent != "" {
			refs = append(refs, commit.Parent)
		}
		return refs, nil
	case TypeTree:
		tree, err := UnmarshalTree(data)
		if err != nil {
			return nil, err
		}
		refs := make([]Hash, 0, len(tree.Entries))
		for _, e := range tree.Entries {
			refs = append(refs, e.Hash)
		}
		return refs, nil
	default:
		return nil, fmt.Errorf("unsupported object type %q", objType)
	}
}

func uniqueNormalizedHashes(in []Hash) []Hash {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[Hash]struct{}, len(in))
	out := make([]Hash, 0, len(in))
	for _, h := range in {
		h = Hash(strings.TrimSpace(string(h)))
		if h == "" {
			continue
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
