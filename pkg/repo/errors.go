package repo

import "errors"

var (
	ErrNotARepository       = errors.New("not a mygit repository (or any parent up to /)")
	ErrRepositoryExists     = errors.New("repository already exists")
	ErrHistoryCorrupt       = errors.New("history corrupt")
	ErrFileNotFound         = errors.New("file not found")
	ErrNoCommitsYet         = errors.New("no commits yet")
	ErrUnsupportedHeadState = errors.New("unsupported HEAD state (detached HEAD)")
	ErrBranchExists         = errors.New("branch already exists")
	ErrBranchNotFound       = errors.New("branch not found")
	ErrInvalidRefName       = errors.New("invalid ref name")
	ErrEmptyMessage         = errors.New("commit message is empty")
	ErrBackendChange        = errors.New("storage backend cannot change after init")
)
