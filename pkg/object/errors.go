package object

import (
	"errors"
	"fmt"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrObjectCorrupt  = errors.New("object corrupt")
	ErrInvalidHash    = errors.New("invalid object hash")
	ErrTypeMismatch   = errors.New("object type mismatch")
)

// Error records a failed store operation on a single object.
type Error struct {
	Op   string
	Hash Hash
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("object %s %s: %v", e.Op, e.Hash, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func corrupt(op string, h Hash, format string, args ...any) error {
	return &Error{
		Op:   op,
		Hash: h,
		Err:  fmt.Errorf("%w: %s", ErrObjectCorrupt, fmt.Sprintf(format, args...)),
	}
}
