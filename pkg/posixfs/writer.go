package posixfs

import (
	"os"
	"strings"
	"time"

	"github.com/natefinch/atomic"

	"basalt/internal/metrics"
	"basalt/internal/vectorio"
	"basalt/pkg/storage"
)

// flushBytes is the pending-byte threshold that forces a batched write
// before another block is accepted.
const flushBytes = 1 << 20

// Writer accumulates blocks for one new file and flushes them with
// batched vectored writes. It is an exclusive producer: exactly one
// goroutine drives it, and nothing inside is synchronized.
type Writer struct {
	id    storage.FileID
	file  *os.File
	guard *guard
	name  storage.Path

	// pending is the ordered queue of unflushed blocks; length is the
	// sum of their sizes. Both reset together when a flush completes.
	pending []*storage.Buffer
	length  uint64

	completed bool
	closed    bool
}

var _ storage.FileWriter = (*Writer)(nil)

func newWriter(file *os.File, name storage.Path, path string, usage *storage.UsageTracker) *Writer {
	return &Writer{
		id:    storage.NewFileID(),
		file:  file,
		guard: newGuard(path, false, 0, usage),
		name:  name,
	}
}

// FileID returns the handle's process-local identity.
func (w *Writer) FileID() storage.FileID {
	return w.id
}

// WriteBlock queues data for writing and returns the same buffer to the
// caller, who may keep using the bytes (e.g. as a cache entry). If the
// queue has reached the flush threshold in bytes or in block count, the
// queued blocks are flushed before data is accepted.
func (w *Writer) WriteBlock(data *storage.Buffer) (*storage.Buffer, error) {
	start := time.Now()
	if w.length >= flushBytes || len(w.pending) >= vectorio.MaxVectors {
		if err := w.flush(); err != nil {
			return nil, err
		}
	}
	w.pending = append(w.pending, data)
	w.length += uint64(data.Len())

	metrics.BlockWritten(data.Len(), time.Since(start))
	return data, nil
}

// flush issues one batched vectored write covering every pending block.
// The kernel may consume fewer bytes than requested, so the loop
// advances a cursor over the unwritten remainder until the queue is
// fully on disk. Each increment of actually-written bytes moves into the
// guard's committed size and the usage tracker; the queue is cleared
// only after full completion.
func (w *Writer) flush() error {
	iov := make([][]byte, len(w.pending))
	for i, buf := range w.pending {
		iov[i] = buf.Bytes()
	}
	for len(iov) > 0 {
		n, err := vectorio.Writev(int(w.file.Fd()), iov)
		if err != nil {
			return &storage.Error{Op: "flush", Path: w.guard.path, Err: err}
		}
		w.guard.size += uint64(n)
		w.guard.usage.Increment(uint64(n))
		iov = vectorio.Advance(iov, n)
	}
	w.pending = w.pending[:0]
	w.length = 0
	return nil
}

// Complete flushes the remainder, forces the file to disk, and
// atomically renames the provisional path to the logical name. On
// success it returns a reader over the finalized file (sharing this
// writer's descriptor) plus the logical name; the file remains
// deletable-on-close until the reader is marked for checkpoint.
//
// On failure the provisional file stays behind under its suffix, still
// owned by this writer's guard, so an abandoning Close reclaims it.
func (w *Writer) Complete() (storage.FileReader, storage.Path, error) {
	if len(w.pending) > 0 {
		if err := w.flush(); err != nil {
			return nil, storage.Path{}, err
		}
	}
	if err := w.file.Sync(); err != nil {
		return nil, storage.Path{}, &storage.Error{Op: "sync", Path: w.guard.path, Err: err}
	}

	final := strings.TrimSuffix(w.guard.path, PartialSuffix)
	if err := atomic.ReplaceFile(w.guard.path, final); err != nil {
		return nil, storage.Path{}, &storage.Error{Op: "finalize", Path: w.guard.path, Err: err}
	}
	w.guard.rebind(final)
	w.completed = true

	return newReader(w.file, w.id, w.guard), w.name, nil
}

// Close abandons the writer: the guard deletes the provisional file and
// returns its flushed bytes to the usage tracker. After a successful
// Complete the descriptor and guard belong to the returned reader and
// Close does nothing.
func (w *Writer) Close() error {
	if w.completed || w.closed {
		return nil
	}
	w.closed = true
	w.guard.Release()
	return w.file.Close()
}
