package repo

import (
	"errors"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/odvcencio/mygit/pkg/object"
)

// MetaDirName is the name of the metadata directory at the repository root.
const MetaDirName = ".mygit"

// Repo represents an opened repository. All state an operation touches is
// reachable from the handle, so an in-memory repository behaves like an
// on-disk one.
type Repo struct {
	RootDir string        // working directory root
	Dir     string        // .mygit/ directory; empty for in-memory repos
	Store   *object.Store // content-addressed object store
	Refs    RefStore
	Index   IndexStore
	Config  *Config
	Logger  logrus.FieldLogger
}

// NewLogger returns the default logger: text to stderr at warn level.
func NewLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.WarnLevel)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return log
}

// SetLogger replaces the repository logger. A nil logger restores the
// default.
func (r *Repo) SetLogger(l logrus.FieldLogger) {
	if l == nil {
		l = NewLogger()
	}
	r.Logger = l
}

// Close releases the object store.
func (r *Repo) Close() error {
	if r.Store == nil {
		return nil
	}
	return r.Store.Close()
}

// NewMemory returns a repository whose objects, refs and index live in
// memory. Working-tree operations still use root on disk, which may be
// empty when only plumbing is exercised.
func NewMemory(root string) (*Repo, error) {
	store, err := object.NewStoreWithBackend(object.NewMemoryBackend(), object.StoreOptions{})
	if err != nil {
		return nil, err
	}
	return newMemoryRepo(root, store), nil
}

// NewMemoryWithBackend is NewMemory over a caller-supplied backend.
func NewMemoryWithBackend(root string, b object.Backend) (*Repo, error) {
	if b == nil {
		return nil, errors.New("nil backend")
	}
	store, err := object.NewStoreWithBackend(b, object.StoreOptions{})
	if err != nil {
		return nil, err
	}
	return newMemoryRepo(root, store), nil
}

func newMemoryRepo(root string, store *object.Store) *Repo {
	return &Repo{
		RootDir: root,
		Store:   store,
		Refs:    NewMemoryRefStore(),
		Index:   NewMemoryIndexStore(),
		Config:  DefaultConfig(),
		Logger:  NewLogger(),
	}
}
