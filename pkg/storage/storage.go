// Package storage defines the backend-agnostic surface for durable file
// storage: a hierarchical namespace of immutable files, written once
// through a buffered writer and finalized atomically, then served through
// shared positional readers.
package storage

// FileType classifies a directory entry reported by Backend.List.
type FileType int

const (
	// TypeFile is a regular file. Size carries its byte length.
	TypeFile FileType = iota
	// TypeDirectory is a directory that may be listed further.
	TypeDirectory
	// TypeOther is anything else (symlink, device, socket, ...).
	TypeOther
)

// EntryKind describes one entry seen during Backend.List: its type and,
// for regular files, its size in bytes.
type EntryKind struct {
	Type FileType
	Size uint64
}

// VisitFunc is invoked by Backend.List once per successfully-read child
// entry, in filesystem enumeration order. Callers must not assume the
// order is sorted.
type VisitFunc func(name Path, kind EntryKind)

// Backend creates, opens, lists, and deletes files beneath a single base
// location. Implementations are safe for concurrent use from multiple
// goroutines; the only shared mutable state is the usage tracker, which
// is updated atomically.
type Backend interface {
	// Create starts a new file under name. The file is written under a
	// provisional name and does not become visible at its logical name
	// until the writer's Complete succeeds. Missing parent directories
	// are created on demand.
	Create(name Path) (FileWriter, error)

	// Open opens a pre-existing, finalized file for reading. Files opened
	// this way are never deleted merely by closing the reader.
	Open(name Path) (FileReader, error)

	// List enumerates the direct children of parent. Entries that become
	// unreadable mid-enumeration are skipped; if any entry failed, the
	// first such failure is reported after the rest have been visited.
	List(parent Path, visit VisitFunc) error

	// Delete removes a single file, adjusting usage if it was a regular
	// file. It fails if the path does not exist.
	Delete(name Path) error

	// DeleteRecursive removes a subtree depth-first. A missing path, or a
	// concurrent deletion of any child, is treated as already done. A
	// plain file behaves as Delete; a symlink is removed without
	// following it.
	DeleteRecursive(name Path) error

	// Usage returns the tracker shared by every handle this backend has
	// produced.
	Usage() *UsageTracker
}

// FileWriter is an exclusive, append-only producer for one new file.
// It buffers blocks and flushes them with batched vectored writes.
// A FileWriter must be driven by a single goroutine; it carries no
// internal synchronization.
type FileWriter interface {
	// FileID returns the process-local identity of this handle.
	FileID() FileID

	// WriteBlock appends data to the file, flushing buffered blocks first
	// if the pending bytes or pending block count have hit the flush
	// threshold. The returned buffer shares the written bytes with the
	// caller, so they can be reused (for example as a cache entry)
	// without a re-read.
	WriteBlock(data *Buffer) (*Buffer, error)

	// Complete flushes the remainder, syncs the file to disk, atomically
	// renames it to its logical name, and returns a reader over the
	// finalized file along with that name. The returned reader is still
	// deletable-on-close until marked for checkpoint.
	Complete() (FileReader, Path, error)

	// Close abandons the writer. If Complete has not succeeded, the
	// provisional file is deleted and its flushed bytes are subtracted
	// from usage. After a successful Complete, Close is a no-op.
	Close() error
}

// FileReader is a shared read-only view of an open file. Multiple
// goroutines may call ReadBlock concurrently on one reader: reads are
// positional and mutate no shared cursor.
type FileReader interface {
	// FileID returns the process-local identity of this handle.
	FileID() FileID

	// ReadBlock reads exactly location.Size bytes at location.Offset.
	// A short read is an error, never a truncated success.
	ReadBlock(location BlockLocation) (*Buffer, error)

	// Size returns the committed size of the file in bytes.
	Size() uint64

	// MarkForCheckpoint promotes the file to durable state: it will no
	// longer be deleted when the reader is closed. The promotion is
	// idempotent and irreversible.
	MarkForCheckpoint()

	// Close releases the handle. Unless the file was opened from a
	// pre-existing path or marked for checkpoint, its backing file is
	// deleted and usage adjusted. Deletion failures are logged, never
	// returned.
	Close() error
}

// BlockLocation addresses one block inside a file for ReadBlock.
type BlockLocation struct {
	// Offset is the byte offset of the block start.
	Offset uint64
	// Size is the exact number of bytes to read.
	Size int
}

// Valid reports whether the location describes a readable block.
func (l BlockLocation) Valid() bool {
	return l.Size > 0
}
