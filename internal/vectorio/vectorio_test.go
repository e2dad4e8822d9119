package vectorio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvance(t *testing.T) {
	iov := [][]byte{[]byte("abc"), []byte("defg"), []byte("hi")}

	out := Advance(iov, 0)
	assert.Len(t, out, 3)

	// Exactly one vector consumed.
	out = Advance(iov, 3)
	require.Len(t, out, 2)
	assert.Equal(t, []byte("defg"), out[0])

	// Partial head: first dropped, second re-sliced.
	out = Advance(iov, 5)
	require.Len(t, out, 2)
	assert.Equal(t, []byte("fg"), out[0])
	assert.Equal(t, []byte("hi"), out[1])

	// Everything consumed.
	out = Advance(iov, 9)
	assert.Empty(t, out)

	// The caller's vectors must be left intact after a partial advance.
	assert.Equal(t, []byte("defg"), iov[1])
}

func TestWritevRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out")
	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()

	iov := [][]byte{[]byte("hello "), []byte("vectored "), []byte("world")}
	total := 0
	for len(iov) > 0 {
		n, err := Writev(int(file.Fd()), iov)
		require.NoError(t, err)
		require.Greater(t, n, 0)
		total += n
		iov = Advance(iov, n)
	}
	assert.Equal(t, len("hello vectored world"), total)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello vectored world", string(data))
}
