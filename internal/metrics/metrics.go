// Package metrics holds the process-lifetime counters the storage layer
// emits. All updates are atomic so hot write paths never contend on a
// lock. The counters are published through expvar once, so an embedding
// process can scrape them without this package growing an HTTP surface.
package metrics

import (
	"expvar"
	"sync/atomic"
	"time"
)

// Storage counts storage-layer events.
type Storage struct {
	FilesCreated atomic.Int64 // files opened for writing
	FilesDeleted atomic.Int64 // files removed by cleanup guards
	BytesWritten atomic.Int64 // bytes accepted by WriteBlock
	WritesTotal  atomic.Int64 // WriteBlock calls that succeeded
	WriteNanos   atomic.Int64 // cumulative WriteBlock latency
}

var storage Storage

func init() {
	expvar.Publish("basalt.storage", expvar.Func(func() any {
		return Snapshot()
	}))
}

// FileCreated records one file creation.
func FileCreated() { storage.FilesCreated.Add(1) }

// FileDeleted records one guard-driven file deletion.
func FileDeleted() { storage.FilesDeleted.Add(1) }

// BlockWritten records one successful WriteBlock of n bytes taking d.
func BlockWritten(n int, d time.Duration) {
	storage.BytesWritten.Add(int64(n))
	storage.WritesTotal.Add(1)
	storage.WriteNanos.Add(int64(d))
}

// View is a point-in-time copy of the counters.
type View struct {
	FilesCreated int64 `json:"files_created"`
	FilesDeleted int64 `json:"files_deleted"`
	BytesWritten int64 `json:"bytes_written"`
	WritesTotal  int64 `json:"writes_total"`
	WriteNanos   int64 `json:"write_nanos"`
}

// Snapshot returns the current counter values.
func Snapshot() View {
	return View{
		FilesCreated: storage.FilesCreated.Load(),
		FilesDeleted: storage.FilesDeleted.Load(),
		BytesWritten: storage.BytesWritten.Load(),
		WritesTotal:  storage.WritesTotal.Load(),
		WriteNanos:   storage.WriteNanos.Load(),
	}
}
