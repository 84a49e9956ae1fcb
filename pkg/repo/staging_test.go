package repo

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/odvcencio/mygit/pkg/object"
)

func TestStage_RecordsBlob(t *testing.T) {
	r := initRepoWithFile(t, "a.txt", []byte("hello"))

	stg, err := r.ReadStaging()
	if err != nil {
		t.Fatalf("ReadStaging: %v", err)
	}
	e, ok := stg.Entries["a.txt"]
	if !ok {
		t.Fatalf("a.txt not staged: %v", stg.Paths())
	}
	if want := object.HashBytes([]byte("blob 5\x00hello")); e.BlobHash != want {
		t.Errorf("BlobHash = %s, want %s", e.BlobHash, want)
	}
	if e.Size != 5 {
		t.Errorf("Size = %d, want 5", e.Size)
	}
	if !r.Store.Has(e.BlobHash) {
		t.Error("blob not written to the store")
	}
}

func TestStage_Restage(t *testing.T) {
	r := initRepoWithFile(t, "a.txt", []byte("one"))
	writeFile(t, filepath.Join(r.RootDir, "a.txt"), []byte("two"))
	if err := r.Stage("a.txt"); err != nil {
		t.Fatalf("Stage: %v", err)
	}
	stg, err := r.ReadStaging()
	if err != nil {
		t.Fatalf("ReadStaging: %v", err)
	}
	if len(stg.Entries) != 1 {
		t.Fatalf("restage produced %d entries", len(stg.Entries))
	}
	if want := object.HashObject(object.TypeBlob, []byte("two")); stg.Entries["a.txt"].BlobHash != want {
		t.Errorf("restaged hash = %s, want %s", stg.Entries["a.txt"].BlobHash, want)
	}
}

func TestStage_MissingFile(t *testing.T) {
	r := initRepoWithFile(t, "a.txt", []byte("a"))
	before := readFile(t, filepath.Join(r.Dir, "index"))

	err := r.Stage("nope.txt")
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("Stage: got %v, want ErrFileNotFound", err)
	}
	if after := readFile(t, filepath.Join(r.Dir, "index")); after != before {
		t.Error("failed Stage rewrote the index")
	}
}

func TestStage_Directory(t *testing.T) {
	r := initRepoWithFile(t, "a.txt", []byte("a"))
	if err := os.MkdirAll(filepath.Join(r.RootDir, "dir"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := r.Stage("dir"); !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("Stage(dir): got %v, want ErrFileNotFound", err)
	}
}

func TestStage_AbsolutePath(t *testing.T) {
	r := initRepoWithFile(t, "a.txt", []byte("a"))
	writeFile(t, filepath.Join(r.RootDir, "sub", "b.txt"), []byte("b"))
	if err := r.Stage(filepath.Join(r.RootDir, "sub", "b.txt")); err != nil {
		t.Fatalf("Stage: %v", err)
	}
	stg, _ := r.ReadStaging()
	if _, ok := stg.Entries["sub/b.txt"]; !ok {
		t.Errorf("staged paths = %v, want sub/b.txt", stg.Paths())
	}
}

func TestStage_RejectsMetadataAndOutside(t *testing.T) {
	r := initRepoWithFile(t, "a.txt", []byte("a"))
	for _, p := range []string{".mygit/HEAD", filepath.Join(filepath.Dir(r.RootDir), "elsewhere.txt")} {
		if err := r.Stage(p); err == nil {
			t.Errorf("Stage(%q) succeeded", p)
		}
	}
}

func TestUnstage_RemovesEntry(t *testing.T) {
	r := initRepoWithFile(t, "a.txt", []byte("a"))
	if err := r.Unstage("a.txt"); err != nil {
		t.Fatalf("Unstage: %v", err)
	}
	stg, _ := r.ReadStaging()
	if len(stg.Entries) != 0 {
		t.Errorf("index after unstage = %v", stg.Paths())
	}
}

// Unstaging a path that was never staged changes nothing and does not
// rewrite the index.
func TestUnstage_NeverStagedIsNoop(t *testing.T) {
	r := memRepo(t)
	writeFile(t, filepath.Join(r.RootDir, "a.txt"), []byte("a"))
	if err := r.Stage("a.txt"); err != nil {
		t.Fatalf("Stage: %v", err)
	}
	idx := r.Index.(*MemoryIndexStore)
	saves := idx.Saves()
	before, _ := r.ReadStaging()

	if err := r.Unstage("never.txt"); err != nil {
		t.Fatalf("Unstage: %v", err)
	}
	if idx.Saves() != saves {
		t.Error("no-op Unstage rewrote the index")
	}
	after, _ := r.ReadStaging()
	if len(after.Entries) != len(before.Entries) || after.Entries["a.txt"].BlobHash != before.Entries["a.txt"].BlobHash {
		t.Errorf("index changed: %v -> %v", before.Paths(), after.Paths())
	}
}

func TestUnstage_NoIndexFile(t *testing.T) {
	r, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer r.Close()
	if err := r.Unstage("x.txt"); err != nil {
		t.Fatalf("Unstage: %v", err)
	}
	if _, err := os.Stat(filepath.Join(r.Dir, "index")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Unstage created an index file: %v", err)
	}
}

func TestFileIndexStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := NewFileIndexStore(dir)
	if _, ok, err := s.Load(); ok || err != nil {
		t.Fatalf("Load before Save: ok=%v err=%v", ok, err)
	}
	stg := NewStaging()
	stg.Entries["x/y.txt"] = &StagingEntry{Path: "x/y.txt", BlobHash: object.HashBytes([]byte("y")), Size: 1}
	if err := s.Save(stg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, ok, err := s.Load()
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if *got.Entries["x/y.txt"] != *stg.Entries["x/y.txt"] {
		t.Errorf("Load = %+v, want %+v", got.Entries["x/y.txt"], stg.Entries["x/y.txt"])
	}
}
