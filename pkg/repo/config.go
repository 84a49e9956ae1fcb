package repo

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/renameio"

	"github.com/odvcencio/mygit/pkg/object"
)

const (
	BackendLoose  = "loose"
	BackendBadger = "badger"
)

// Config stores repository-local settings in .mygit/config.toml.
type Config struct {
	User UserConfig `toml:"user"`
	Core CoreConfig `toml:"core"`
}

// UserConfig identifies the default commit author.
type UserConfig struct {
	Name  string `toml:"name,omitempty"`
	Email string `toml:"email,omitempty"`
}

// CoreConfig selects how objects are stored.
type CoreConfig struct {
	Compression string `toml:"compression"`
	Backend     string `toml:"backend"`
	CacheSize   int64  `toml:"cache_size"`
}

// DefaultConfig returns the configuration written by Init.
func DefaultConfig() *Config {
	return &Config{
		Core: CoreConfig{
			Compression: string(object.CodecZlib),
			Backend:     BackendLoose,
		},
	}
}

// Validate checks that enumerated settings hold known values.
func (c *Config) Validate() error {
	if _, err := object.ParseCodec(c.Core.Compression); err != nil {
		return fmt.Errorf("config core.compression: %w", err)
	}
	switch c.Core.Backend {
	case "", BackendLoose, BackendBadger:
	default:
		return fmt.Errorf("config core.backend: unknown backend %q (want %s or %s)", c.Core.Backend, BackendLoose, BackendBadger)
	}
	if c.Core.CacheSize < 0 {
		return fmt.Errorf("config core.cache_size: must not be negative")
	}
	return nil
}

func configPath(dir string) string {
	return filepath.Join(dir, "config.toml")
}

// readConfig reads config.toml from the metadata directory. A missing file
// yields DefaultConfig.
func readConfig(dir string) (*Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(configPath(dir), cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("read config: unknown keys %v", undecoded)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return cfg, nil
}

// writeConfig atomically replaces config.toml.
func writeConfig(dir string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("write config: encode: %w", err)
	}
	if err := renameio.WriteFile(configPath(dir), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// WriteConfig persists cfg and makes it the repository's active config.
// Compression and cache settings take effect the next time the repository
// is opened. core.backend is fixed at init: existing objects live in the
// original backend, so a change fails with ErrBackendChange. A repository
// without a metadata directory only keeps cfg in memory.
func (r *Repo) WriteConfig(cfg *Config) error {
	if from, to := backendName(r.Config), backendName(cfg); from != to {
		return fmt.Errorf("write config: core.backend %s -> %s: %w", from, to, ErrBackendChange)
	}
	if r.Dir != "" {
		if err := writeConfig(r.Dir, cfg); err != nil {
			return err
		}
	} else if err := cfg.Validate(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	r.Config = cfg
	return nil
}

func backendName(c *Config) string {
	if c == nil || c.Core.Backend == "" {
		return BackendLoose
	}
	return c.Core.Backend
}

// Get returns the value of a "section.key" setting.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "user.name":
		return c.User.Name, nil
	case "user.email":
		return c.User.Email, nil
	case "core.compression":
		return c.Core.Compression, nil
	case "core.backend":
		return c.Core.Backend, nil
	case "core.cache_size":
		return strconv.FormatInt(c.Core.CacheSize, 10), nil
	}
	return "", fmt.Errorf("unknown config key %q", key)
}

// Set assigns a "section.key" setting. The value is validated.
func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "user.name":
		c.User.Name = value
	case "user.email":
		c.User.Email = value
	case "core.compression":
		c.Core.Compression = value
	case "core.backend":
		c.Core.Backend = value
	case "core.cache_size":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("config %s: %w", key, err)
		}
		c.Core.CacheSize = n
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return c.Validate()
}

// DefaultAuthor returns the author identity for new commits. The
// MYGIT_AUTHOR_NAME and MYGIT_AUTHOR_EMAIL environment variables override
// the config; $USER is the last resort for the name.
func (r *Repo) DefaultAuthor() object.Signature {
	name := os.Getenv("MYGIT_AUTHOR_NAME")
	if name == "" {
		name = r.Config.User.Name
	}
	if name == "" {
		name = os.Getenv("USER")
	}
	if name == "" {
		name = "unknown"
	}
	email := os.Getenv("MYGIT_AUTHOR_EMAIL")
	if email == "" {
		email = r.Config.User.Email
	}
	if email == "" {
		email = name + "@localhost"
	}
	return object.Signature{Name: name, Email: email}
}
