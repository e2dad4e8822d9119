package storage

import "sync/atomic"

// FileID identifies one open or created file handle within this process.
// IDs are minted monotonically and are independent of filesystem
// identity; they exist for instrumentation and map keying, never for
// correctness decisions.
type FileID uint64

var nextFileID atomic.Uint64

// NewFileID mints a fresh process-local identifier.
func NewFileID() FileID {
	return FileID(nextFileID.Add(1))
}

// HasFileID is implemented by every handle that carries a FileID.
type HasFileID interface {
	FileID() FileID
}
