// Package posixfs implements the storage backend on a local filesystem
// using POSIX I/O: files are written under a provisional suffix, flushed
// with vectored writes, fsynced, and atomically renamed into place, so a
// crash can never leave a half-written file wearing a durable name.
package posixfs

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/ncw/directio"
	"golang.org/x/sys/unix"

	"basalt/internal/metrics"
	"basalt/pkg/storage"
)

// PartialSuffix marks a file still being written. Anything wearing it
// after a crash is known not-yet-durable and safe to reclaim.
const PartialSuffix = ".partial"

const (
	filePerm = 0o644
	dirPerm  = 0o755
)

// Backend stores files beneath a single base directory.
type Backend struct {
	base  string
	cache storage.CacheMode
	usage *storage.UsageTracker
}

var _ storage.Backend = (*Backend)(nil)

// Option configures a Backend at construction.
type Option func(*Backend)

// WithCacheMode sets the page-cache behavior applied to every open and
// create call.
func WithCacheMode(mode storage.CacheMode) Option {
	return func(b *Backend) {
		b.cache = mode
	}
}

// New creates a backend rooted at base. The directory itself is created
// lazily by the first Create that needs it.
func New(base string, options ...Option) *Backend {
	b := &Backend{
		base:  base,
		usage: &storage.UsageTracker{},
	}
	for _, option := range options {
		option(b)
	}
	return b
}

// Path returns the base directory the backend creates files under.
func (b *Backend) Path() string {
	return b.base
}

func (b *Backend) fsPath(name storage.Path) string {
	return name.Filesystem(b.base)
}

// openWithCache translates the configured cache mode into open flags.
func openWithCache(path string, flag int, cache storage.CacheMode) (*os.File, error) {
	if cache == storage.CacheDirect {
		return directio.OpenFile(path, flag, filePerm)
	}
	return os.OpenFile(path, flag, filePerm)
}

// Create opens a provisional file for name and returns its writer. If
// the open fails because a parent directory is missing, the ancestors
// are created and the open retried exactly once; any other failure
// propagates.
func (b *Backend) Create(name storage.Path) (storage.FileWriter, error) {
	path := b.fsPath(name) + PartialSuffix
	const flag = os.O_CREATE | os.O_TRUNC | os.O_RDWR

	file, err := openWithCache(path, flag, b.cache)
	if errors.Is(err, fs.ErrNotExist) {
		if err = os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
			return nil, storage.WrapError("create", name, err)
		}
		file, err = openWithCache(path, flag, b.cache)
	}
	if err != nil {
		return nil, storage.WrapError("create", name, err)
	}

	metrics.FileCreated()
	return newWriter(file, name, path, b.usage), nil
}

// Open opens a pre-existing, finalized file for reading.
func (b *Backend) Open(name storage.Path) (storage.FileReader, error) {
	return openReader(b.fsPath(name), b.cache, b.usage, name)
}

// List enumerates the direct children of parent in filesystem order and
// classifies each as file, directory, or other. An entry that becomes
// unreadable mid-enumeration is skipped; the remaining entries are still
// visited and the collected failures (first one included) are reported
// afterwards.
func (b *Backend) List(parent storage.Path, visit storage.VisitFunc) error {
	dir, err := os.Open(b.fsPath(parent))
	if err != nil {
		return storage.WrapError("list", parent, err)
	}
	defer dir.Close()

	// ReadDir on the handle keeps raw directory order; os.ReadDir would
	// sort and hide the "never assume sorted" contract from tests.
	entries, readErr := dir.ReadDir(-1)

	var failed *multierror.Error
	if readErr != nil {
		failed = multierror.Append(failed, readErr)
	}
	for _, entry := range entries {
		kind := storage.EntryKind{Type: storage.TypeOther}
		switch {
		case entry.Type().IsRegular():
			info, err := entry.Info()
			if err != nil {
				failed = multierror.Append(failed, err)
				continue
			}
			kind = storage.EntryKind{Type: storage.TypeFile, Size: uint64(info.Size())}
		case entry.IsDir():
			kind = storage.EntryKind{Type: storage.TypeDirectory}
		}
		visit(parent.Child(entry.Name()), kind)
	}
	return storage.WrapError("list", parent, failed.ErrorOrNil())
}

// Delete removes a single file, decrementing usage by its size if it was
// a regular file. Missing paths are an error; callers that want
// tolerance use DeleteRecursive.
func (b *Backend) Delete(name storage.Path) error {
	path := b.fsPath(name)
	info, err := os.Stat(path)
	if err != nil {
		return storage.WrapError("delete", name, err)
	}
	if err := os.Remove(path); err != nil {
		return storage.WrapError("delete", name, err)
	}
	if info.Mode().IsRegular() {
		b.usage.Decrement(uint64(info.Size()))
	}
	return nil
}

// DeleteRecursive removes name and everything beneath it. A symlink is
// removed without following it. "Not found" anywhere in the traversal is
// already-achieved goal state: checkpoint garbage collection runs
// concurrently with other deleters and must tolerate losing races. A
// plain file falls back to Delete.
func (b *Backend) DeleteRecursive(name storage.Path) error {
	err := b.removeAll(b.fsPath(name))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case errors.Is(err, unix.ENOTDIR):
		return b.Delete(name)
	default:
		return storage.WrapError("delete_recursive", name, err)
	}
}

func (b *Backend) removeAll(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return err
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return os.Remove(path)
	}
	return b.removeTree(path)
}

func (b *Backend) removeTree(path string) error {
	ignoreNotFound := func(err error) error {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	dir, err := os.Open(path)
	if err != nil {
		return err
	}
	entries, readErr := dir.ReadDir(-1)
	dir.Close()

	for _, entry := range entries {
		child := filepath.Join(path, entry.Name())
		var err error
		switch {
		case entry.IsDir():
			err = b.removeTree(child)
		case entry.Type().IsRegular():
			var size uint64
			if info, err := entry.Info(); err == nil {
				size = uint64(info.Size())
			}
			if err = os.Remove(child); err == nil {
				b.usage.Decrement(size)
			}
		default:
			err = os.Remove(child)
		}
		if err := ignoreNotFound(err); err != nil {
			return err
		}
	}
	if err := ignoreNotFound(readErr); err != nil {
		return err
	}
	return ignoreNotFound(os.Remove(path))
}

// Usage returns the byte-usage tracker shared by every handle this
// backend has produced.
func (b *Backend) Usage() *storage.UsageTracker {
	return b.usage
}
