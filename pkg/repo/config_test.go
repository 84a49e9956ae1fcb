package repo

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	r, err := Init(dir)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	cfg := *r.Config
	if err := cfg.Set("user.name", "Ada"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := cfg.Set("user.email", "ada@example.com"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := cfg.Set("core.cache_size", "64"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := r.WriteConfig(&cfg); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	r.Close()

	r, err = Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()
	for key, want := range map[string]string{
		"user.name":        "Ada",
		"user.email":       "ada@example.com",
		"core.compression": "zlib",
		"core.backend":     "loose",
		"core.cache_size":  "64",
	} {
		got, err := r.Config.Get(key)
		if err != nil {
			t.Fatalf("Get(%q): %v", key, err)
		}
		if got != want {
			t.Errorf("Get(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestConfig_SetRejects(t *testing.T) {
	cfg := DefaultConfig()
	for key, value := range map[string]string{
		"core.compression": "lz4",
		"core.backend":     "tape",
		"core.cache_size":  "-1",
		"user.nickname":    "x",
	} {
		if err := cfg.Set(key, value); err == nil {
			t.Errorf("Set(%q, %q) accepted", key, value)
		}
	}
}

func TestReadConfig_Missing(t *testing.T) {
	cfg, err := readConfig(t.TempDir())
	if err != nil {
		t.Fatalf("readConfig: %v", err)
	}
	if *cfg != *DefaultConfig() {
		t.Errorf("readConfig = %+v, want defaults", cfg)
	}
}

func TestReadConfig_UnknownKey(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[core]\nbogus = 1\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := readConfig(dir)
	if err == nil || !strings.Contains(err.Error(), "bogus") {
		t.Fatalf("readConfig: got %v, want unknown key error", err)
	}
}

func TestDefaultAuthor(t *testing.T) {
	r := memRepo(t)
	t.Setenv("MYGIT_AUTHOR_NAME", "")
	t.Setenv("MYGIT_AUTHOR_EMAIL", "")
	t.Setenv("USER", "")
	r.Config.User.Name = "Cfg"
	if got := r.DefaultAuthor(); got.Name != "Cfg" || got.Email != "Cfg@localhost" {
		t.Errorf("DefaultAuthor from config = %+v", got)
	}

	t.Setenv("MYGIT_AUTHOR_NAME", "Env")
	t.Setenv("MYGIT_AUTHOR_EMAIL", "env@example.com")
	if got := r.DefaultAuthor(); got.Name != "Env" || got.Email != "env@example.com" {
		t.Errorf("DefaultAuthor from env = %+v", got)
	}

	t.Setenv("MYGIT_AUTHOR_NAME", "")
	r.Config.User.Name = ""
	if got := r.DefaultAuthor(); got.Name != "unknown" {
		t.Errorf("DefaultAuthor fallback = %+v", got)
	}
}

func TestConfig_BackendFixedAfterInit(t *testing.T) {
	r := initRepoWithFile(t, "a.txt", []byte("a"))
	head, err := r.Commit("first", testAuthor)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	cfg := *r.Config
	if err := cfg.Set("core.backend", BackendBadger); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := r.WriteConfig(&cfg); !errors.Is(err, ErrBackendChange) {
		t.Fatalf("WriteConfig = %v, want ErrBackendChange", err)
	}
	if r.Config.Core.Backend != BackendLoose {
		t.Errorf("active backend = %q after rejected write", r.Config.Core.Backend)
	}

	// Compression may change; old objects stay readable.
	cfg = *r.Config
	if err := cfg.Set("core.compression", "zstd"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := r.WriteConfig(&cfg); err != nil {
		t.Fatalf("WriteConfig(zstd): %v", err)
	}
	r.Close()

	reopened, err := Open(r.RootDir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reopened.Close()
	if got := reopened.Config.Core.Backend; got != BackendLoose {
		t.Errorf("backend on disk = %q, want %q", got, BackendLoose)
	}
	var seen []string
	for entry, err := range reopened.LogHead() {
		if err != nil {
			t.Fatalf("LogHead: %v", err)
		}
		seen = append(seen, string(entry.Hash))
	}
	if len(seen) != 1 || seen[0] != string(head) {
		t.Fatalf("LogHead = %v, want [%s]", seen, head)
	}
}
