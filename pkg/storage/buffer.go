package storage

import "github.com/ncw/directio"

// Buffer is an owned, length-known byte container passed across the
// storage boundary. WriteBlock hands the same buffer back to the caller,
// so written bytes can be reused (cached, re-served) without a re-read.
type Buffer struct {
	data []byte
}

// NewBuffer allocates a zeroed buffer of n bytes.
func NewBuffer(n int) *Buffer {
	return &Buffer{data: make([]byte, n)}
}

// NewAlignedBuffer allocates a buffer aligned for direct I/O. Required
// for reads and writes against a backend opened with CacheDirect; the
// kernel rejects unaligned O_DIRECT transfers.
func NewAlignedBuffer(n int) *Buffer {
	blocks := (n + directio.BlockSize - 1) / directio.BlockSize
	if blocks == 0 {
		blocks = 1
	}
	return &Buffer{data: directio.AlignedBlock(blocks * directio.BlockSize)[:n]}
}

// BufferOf wraps b without copying. The buffer takes ownership; the
// caller must not modify b afterwards.
func BufferOf(b []byte) *Buffer {
	return &Buffer{data: b}
}

// Bytes returns the underlying slice.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Len returns the byte length.
func (b *Buffer) Len() int {
	return len(b.data)
}
