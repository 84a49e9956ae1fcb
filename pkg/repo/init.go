package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/odvcencio/mygit/pkg/object"
)

// Init creates a new repository at path with the default config.
func Init(path string) (*Repo, error) {
	return InitWithConfig(path, DefaultConfig())
}

// InitWithConfig creates the .mygit/ directory structure: HEAD, config.toml,
// objects/ and refs/heads/. It fails with ErrRepositoryExists if a .mygit/
// directory is already present.
func InitWithConfig(path string, cfg *Config) (*Repo, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("init: abs path: %w", err)
	}
	dir := filepath.Join(abs, MetaDirName)

	if _, err := os.Stat(dir); err == nil {
		return nil, fmt.Errorf("init: %w at %s", ErrRepositoryExists, dir)
	}

	dirs := []string{
		filepath.Join(dir, "objects"),
		filepath.Join(dir, "refs", "heads"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("init: mkdir %s: %w", d, err)
		}
	}

	refs := NewFileRefStore(dir)
	if err := refs.WriteHead(symbolicPrefix + branchRef(defaultBranch)); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	if err := writeConfig(dir, cfg); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}

	r, err := openAt(abs, dir)
	if err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	r.Logger.WithField("path", dir).Debug("initialized repository")
	return r, nil
}

// Open searches upward from path for a .mygit/ directory and opens the
// repository. It fails with ErrNotARepository if none is found.
func Open(path string) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}

	cur := abs
	for {
		dir := filepath.Join(cur, MetaDirName)
		info, err := os.Stat(dir)
		if err == nil && info.IsDir() {
			r, err := openAt(cur, dir)
			if err != nil {
				return nil, fmt.Errorf("open: %w", err)
			}
			return r, nil
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, fmt.Errorf("open: %w", ErrNotARepository)
		}
		cur = parent
	}
}

func openAt(root, dir string) (*Repo, error) {
	cfg, err := readConfig(dir)
	if err != nil {
		return nil, err
	}
	store, err := openStore(dir, cfg)
	if err != nil {
		return nil, err
	}
	return &Repo{
		RootDir: root,
		Dir:     dir,
		Store:   store,
		Refs:    NewFileRefStore(dir),
		Index:   NewFileIndexStore(dir),
		Config:  cfg,
		Logger:  NewLogger(),
	}, nil
}

// openStore builds the object store selected by core.backend.
func openStore(dir string, cfg *Config) (*object.Store, error) {
	var backend object.Backend
	switch cfg.Core.Backend {
	case BackendBadger:
		b, err := object.OpenBadgerBackend(filepath.Join(dir, "objects.badger"))
		if err != nil {
			return nil, err
		}
		backend = b
	default:
		backend = object.NewLooseBackend(dir)
	}
	store, err := object.NewStoreWithBackend(backend, object.StoreOptions{
		Codec:     object.Codec(cfg.Core.Compression),
		CacheSize: cfg.Core.CacheSize,
	})
	if err != nil {
		backend.Close()
		return nil, err
	}
	return store, nil
}
