package posixfs

import (
	"os"
	"sync"

	"basalt/pkg/storage"
)

// Reader serves positional block reads from one open file. The
// underlying descriptor is shared, not duplicated: any number of
// goroutines may call ReadBlock concurrently because pread-style reads
// mutate no shared cursor.
type Reader struct {
	id    storage.FileID
	file  *os.File
	guard *guard
	once  sync.Once
}

var _ storage.FileReader = (*Reader)(nil)

func newReader(file *os.File, id storage.FileID, g *guard) *Reader {
	return &Reader{id: id, file: file, guard: g}
}

// openReader opens a pre-existing, finalized file. Its guard starts
// kept: opening existing data must never delete it merely by closing.
func openReader(path string, cache storage.CacheMode, usage *storage.UsageTracker, name storage.Path) (*Reader, error) {
	file, err := openWithCache(path, os.O_RDONLY, cache)
	if err != nil {
		return nil, storage.WrapError("open", name, err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, storage.WrapError("open", name, err)
	}
	size := uint64(info.Size())
	return newReader(file, storage.NewFileID(), newGuard(path, true, size, usage)), nil
}

// FileID returns the handle's process-local identity.
func (r *Reader) FileID() storage.FileID {
	return r.id
}

// ReadBlock reads exactly location.Size bytes at location.Offset. A
// short read surfaces as an error (io.EOF wrapped in a storage error),
// never as a truncated buffer.
func (r *Reader) ReadBlock(location storage.BlockLocation) (*storage.Buffer, error) {
	if !location.Valid() {
		return nil, storage.ErrInvalidLocation
	}
	buf := storage.NewBuffer(location.Size)
	if _, err := r.file.ReadAt(buf.Bytes(), int64(location.Offset)); err != nil {
		return nil, &storage.Error{Op: "read", Path: r.guard.path, Err: err}
	}
	return buf, nil
}

// Size returns the committed size of the file.
func (r *Reader) Size() uint64 {
	return r.guard.size
}

// MarkForCheckpoint promotes the file to durable state so closing the
// reader no longer deletes it.
func (r *Reader) MarkForCheckpoint() {
	r.guard.markKeep()
}

// Close releases the guard (deleting the file unless kept) and closes
// the descriptor. Safe to call more than once.
func (r *Reader) Close() error {
	var err error
	r.once.Do(func() {
		r.guard.Release()
		err = r.file.Close()
	})
	return err
}
