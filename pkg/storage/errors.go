package storage

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrUnknownBackend is returned by NewBackend for a name no factory
	// has been registered under.
	ErrUnknownBackend = errors.New("basalt: unknown storage backend")

	// ErrInvalidLocation is returned by ReadBlock for a zero-sized or
	// otherwise unreadable block location.
	ErrInvalidLocation = errors.New("basalt: invalid block location")
)

// Error wraps an underlying OS error with the storage operation and the
// logical path it failed on. It is the single opaque error type the
// backend surfaces; callers classify it with errors.Is against fs
// sentinels (fs.ErrNotExist and friends pass through Unwrap).
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WrapError builds an *Error unless err is nil.
func WrapError(op string, path Path, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Path: path.String(), Err: err}
}

// IsNotExist reports whether err stems from a missing path.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
