package object

import (
	"errors"
	"testing"
)

func TestReachableSet(t *testing.T) {
	s := newMemStore(t)
	blob, err := s.WriteBlob(&Blob{Data: []byte("hello")})
	if err != nil {
		t.Fatalf("WriteBlob: %v", err)
	}
	sub, err := s.WriteTree(&TreeObj{Entries: []TreeEntry{{Type: TypeBlob, Hash: blob, Name: "a.txt"}}})
	if err != nil {
		t.Fatalf("WriteTree: %v", err)
	}
	lost := HashBytes([]byte("lost"))
	root, err := s.WriteTree(&TreeObj{Entries: []TreeEntry{
		{Type: TypeTree, Hash: sub, Name: "dir"},
		{Type: TypeBlob, Hash: lost, Name: "lost.txt"},
	}})
	if err != nil {
		t.Fatalf("WriteTree: %v", err)
	}
	c, err := s.WriteCommit(&CommitObj{TreeHash: root, Author: Signature{Name: "a", Email: "a@b"}, Message: "m"})
	if err != nil {
		t.Fatalf("WriteCommit: %v", err)
	}

	seen, missing, err := s.ReachableSet([]Hash{c, c})
	if err != nil {
		t.Fatalf("ReachableSet: %v", err)
	}
	want := map[Hash]ObjectType{c: TypeCommit, root: TypeTree, sub: TypeTree, blob: TypeBlob}
	if len(seen) != len(want) {
		t.Fatalf("reachable = %v, want %v", seen, want)
	}
	for h, typ := range want {
		if seen[h] != typ {
			t.Errorf("reachable[%s] = %q, want %q", h.Short(), seen[h], typ)
		}
	}
	if len(missing) != 1 || missing[0] != lost {
		t.Errorf("missing = %v, want [%s]", missing, lost)
	}
}

func TestReachableSet_Corrupt(t *testing.T) {
	mem := NewMemoryBackend()
	s, err := NewStoreWithBackend(mem, StoreOptions{})
	if err != nil {
		t.Fatalf("NewStoreWithBackend: %v", err)
	}
	h := HashBytes([]byte("garbage"))
	if err := mem.Put(h, []byte("not compressed")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, _, err := s.ReachableSet([]Hash{h}); !errors.Is(err, ErrObjectCorrupt) {
		t.Fatalf("ReachableSet: got %v, want ErrObjectCorrupt", err)
	}
}

func newMemStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStoreWithBackend(NewMemoryBackend(), StoreOptions{})
	if err != nil {
		t.Fatalf("NewStoreWithBackend: %v", err)
	}
	return s
}
