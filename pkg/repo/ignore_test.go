package repo

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIgnore_MetadataDirAlwaysIgnored(t *testing.T) {
	ic := NewIgnoreChecker(t.TempDir())

	if !ic.IsIgnored(".mygit", true) {
		t.Error("expected .mygit to be ignored")
	}
	if !ic.IsIgnored(".mygit/objects/ab/cdef", false) {
		t.Error("expected .mygit/objects/ab/cdef to be ignored")
	}
	if ic.IsIgnored(".mygitignore", false) {
		t.Error("the ignore file itself must not be ignored")
	}
}

func TestIgnore_Patterns(t *testing.T) {
	dir := t.TempDir()
	writeIgnoreFile(t, dir, "# build output\n*.log\n!keep.log\nbuild/\ndocs/*.html\n**/gen/*.go\n\n")
	ic := NewIgnoreChecker(dir)

	cases := []struct {
		path  string
		isDir bool
		want  bool
	}{
		{"debug.log", false, true},
		{"sub/debug.log", false, true},
		{"keep.log", false, false},
		{"debug.txt", false, false},
		{"build", true, true},
		{"build/out.o", false, true},
		{"build", false, false}, // directory-only pattern
		{"docs/index.html", false, true},
		{"docs/api/index.html", false, false},
		{"gen/x.go", false, true},
		{"a/b/gen/x.go", false, true},
		{"a/b/gen/x.txt", false, false},
	}
	for _, tc := range cases {
		if got := ic.IsIgnored(tc.path, tc.isDir); got != tc.want {
			t.Errorf("IsIgnored(%q, dir=%v) = %v, want %v", tc.path, tc.isDir, got, tc.want)
		}
	}
}

func TestIgnore_NoIgnoreFile(t *testing.T) {
	ic := NewIgnoreChecker(t.TempDir())
	for _, p := range []string{"main.go", "a/b.txt", "x.log"} {
		if ic.IsIgnored(p, false) {
			t.Errorf("%q ignored without an ignore file", p)
		}
	}
}

func writeIgnoreFile(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, IgnoreFileName), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", IgnoreFileName, err)
	}
}
