//go:build linux

package vectorio

// MaxVectors is the largest number of buffers one writev call accepts.
// It matches the kernel's UIO_MAXIOV, which x/sys/unix does not export.
const MaxVectors = 1024
