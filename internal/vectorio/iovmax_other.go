//go:build !linux

package vectorio

// MaxVectors matches the IOV_MAX default shared by the BSDs and macOS,
// used where the constant is not exported.
const MaxVectors = 1024
