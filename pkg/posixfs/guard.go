package posixfs

import (
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"basalt/internal/metrics"
	"basalt/pkg/storage"
)

// guard ties a file's lifetime on disk to the lifetime of the handle
// that owns it. Unless the guard has been marked keep, releasing it
// deletes the backing file and gives its committed bytes back to the
// usage tracker. This is what garbage-collects provisional files whose
// writer was abandoned without Complete, on every exit path.
type guard struct {
	// path is the concrete filesystem location the guard owns. Rebound
	// exactly once, when Complete renames provisional to final.
	path string
	// keep flips false→true only; once kept, release never deletes.
	keep atomic.Bool
	// size is the bytes known resident at path: flushed bytes for a
	// writer, the stat size for an opened file.
	size uint64

	usage   *storage.UsageTracker
	release sync.Once
}

func newGuard(path string, keep bool, size uint64, usage *storage.UsageTracker) *guard {
	g := &guard{path: path, size: size, usage: usage}
	g.keep.Store(keep)
	return g
}

// markKeep promotes the file to durable state. Idempotent.
func (g *guard) markKeep() {
	g.keep.Store(true)
}

// rebind moves the guard onto the finalized path after an atomic rename.
// Keep state and size are unchanged.
func (g *guard) rebind(path string) {
	g.path = path
}

// Release deletes the file unless kept, decrementing usage by the
// committed size exactly once. A deletion failure is logged and
// swallowed: release runs on cleanup paths where propagating would be
// unsafe.
func (g *guard) Release() {
	g.release.Do(func() {
		if g.keep.Load() {
			return
		}
		if err := os.Remove(g.path); err != nil {
			slog.Warn("failed to delete abandoned storage file",
				"path", g.path, "error", err)
			return
		}
		g.usage.Decrement(g.size)
		metrics.FileDeleted()
	})
}
