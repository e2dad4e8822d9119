// Package vectorio wraps the writev syscall for batched writes of many
// small buffers in one kernel crossing, with the cursor arithmetic needed
// to resume after a partial write.
package vectorio

import (
	"golang.org/x/sys/unix"
)

// Writev writes the vectors in iov to fd in order, returning the number
// of bytes consumed. The kernel may consume fewer bytes than requested;
// callers loop with Advance until nothing remains. EINTR is retried.
func Writev(fd int, iov [][]byte) (int, error) {
	for {
		n, err := unix.Writev(fd, iov)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, err
		}
		return n, nil
	}
}

// Advance skips n written bytes in iov: fully-written vectors are
// dropped and a partially-written head vector is re-sliced. The input
// slice is not modified beyond the returned window.
func Advance(iov [][]byte, n int) [][]byte {
	for len(iov) > 0 && n >= len(iov[0]) {
		n -= len(iov[0])
		iov = iov[1:]
	}
	if len(iov) > 0 && n > 0 {
		// Copy-on-write for the partial head so the caller's backing
		// buffers stay intact.
		rest := make([][]byte, len(iov))
		copy(rest, iov)
		rest[0] = rest[0][n:]
		return rest
	}
	return iov
}
