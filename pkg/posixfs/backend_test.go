package posixfs

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"basalt/pkg/storage"
)

// writeFile creates name, writes data as one block, finalizes it, and
// marks it for checkpoint so it survives the handle being closed.
func writeFile(t *testing.T, b *Backend, name string, data []byte) {
	t.Helper()
	w, err := b.Create(storage.MustParsePath(name))
	require.NoError(t, err)
	_, err = w.WriteBlock(storage.BufferOf(data))
	require.NoError(t, err)
	r, _, err := w.Complete()
	require.NoError(t, err)
	r.MarkForCheckpoint()
	require.NoError(t, r.Close())
	require.NoError(t, w.Close())
}

func TestWriteReadRoundTrip(t *testing.T) {
	base := t.TempDir()
	b := New(base)

	w, err := b.Create(storage.MustParsePath("a/b/f"))
	require.NoError(t, err)
	_, err = w.WriteBlock(storage.BufferOf(bytes.Repeat([]byte{0x41}, 1000)))
	require.NoError(t, err)
	_, err = w.WriteBlock(storage.BufferOf(bytes.Repeat([]byte{0x42}, 2000)))
	require.NoError(t, err)

	r, name, err := w.Complete()
	require.NoError(t, err)
	assert.Equal(t, "a/b/f", name.String())
	assert.Equal(t, uint64(3000), r.Size())
	r.MarkForCheckpoint()
	require.NoError(t, r.Close())
	require.NoError(t, w.Close())

	// The finalized file sits at its bare logical name.
	info, err := os.Stat(filepath.Join(base, "a", "b", "f"))
	require.NoError(t, err)
	assert.Equal(t, int64(3000), info.Size())

	r2, err := b.Open(storage.MustParsePath("a/b/f"))
	require.NoError(t, err)
	defer r2.Close()

	buf, err := r2.ReadBlock(storage.BlockLocation{Offset: 0, Size: 1000})
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{0x41}, 1000), buf.Bytes())

	buf, err = r2.ReadBlock(storage.BlockLocation{Offset: 1000, Size: 2000})
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{0x42}, 2000), buf.Bytes())

	assert.Equal(t, uint64(3000), r2.Size())
}

func TestCreateMakesMissingParents(t *testing.T) {
	b := New(filepath.Join(t.TempDir(), "not-yet-created"))
	writeFile(t, b, "deep/tree/of/dirs/f", []byte("payload"))

	r, err := b.Open(storage.MustParsePath("deep/tree/of/dirs/f"))
	require.NoError(t, err)
	assert.Equal(t, uint64(7), r.Size())
	require.NoError(t, r.Close())
}

func TestOpenMissingFile(t *testing.T) {
	b := New(t.TempDir())
	_, err := b.Open(storage.MustParsePath("nope"))
	require.Error(t, err)
	assert.True(t, storage.IsNotExist(err))
}

func TestOpenedFileSurvivesClose(t *testing.T) {
	base := t.TempDir()
	b := New(base)
	writeFile(t, b, "f", []byte("keep me"))

	// Opening pre-existing data never deletes it merely by being closed.
	r, err := b.Open(storage.MustParsePath("f"))
	require.NoError(t, err)
	require.NoError(t, r.Close())

	_, err = os.Stat(filepath.Join(base, "f"))
	assert.NoError(t, err)
}

func TestUsageAccounting(t *testing.T) {
	b := New(t.TempDir())
	require.Zero(t, b.Usage().Read())

	writeFile(t, b, "one", bytes.Repeat([]byte{1}, 1000))
	writeFile(t, b, "two", bytes.Repeat([]byte{2}, 2500))
	assert.Equal(t, int64(3500), b.Usage().Read())

	require.NoError(t, b.Delete(storage.MustParsePath("one")))
	assert.Equal(t, int64(2500), b.Usage().Read())

	require.NoError(t, b.Delete(storage.MustParsePath("two")))
	assert.Zero(t, b.Usage().Read())
}

func TestDeleteMissingFile(t *testing.T) {
	b := New(t.TempDir())
	err := b.Delete(storage.MustParsePath("ghost"))
	require.Error(t, err)
	assert.True(t, storage.IsNotExist(err))
}

func TestDeleteRecursiveMissingIsNoOp(t *testing.T) {
	b := New(t.TempDir())
	// Idempotent: repeatable silent success on a non-existent path.
	require.NoError(t, b.DeleteRecursive(storage.MustParsePath("ghost")))
	require.NoError(t, b.DeleteRecursive(storage.MustParsePath("ghost")))
}

func TestDeleteRecursivePlainFile(t *testing.T) {
	b := New(t.TempDir())
	writeFile(t, b, "plain", bytes.Repeat([]byte{9}, 100))
	require.Equal(t, int64(100), b.Usage().Read())

	// Behaves exactly like Delete on a regular file.
	require.NoError(t, b.DeleteRecursive(storage.MustParsePath("plain")))
	assert.Zero(t, b.Usage().Read())
	_, err := b.Open(storage.MustParsePath("plain"))
	assert.True(t, storage.IsNotExist(err))
}

func TestDeleteRecursiveTree(t *testing.T) {
	base := t.TempDir()
	b := New(base)
	writeFile(t, b, "a/f1", bytes.Repeat([]byte{1}, 300))
	writeFile(t, b, "a/sub/f2", bytes.Repeat([]byte{2}, 700))
	writeFile(t, b, "other", bytes.Repeat([]byte{3}, 50))

	require.NoError(t, b.DeleteRecursive(storage.MustParsePath("a")))
	assert.Equal(t, int64(50), b.Usage().Read())

	_, err := os.Stat(filepath.Join(base, "a"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(base, "other"))
	assert.NoError(t, err)
}

func TestDeleteRecursiveSymlink(t *testing.T) {
	base := t.TempDir()
	b := New(base)
	writeFile(t, b, "target/f", []byte("payload"))
	require.NoError(t, os.Symlink(filepath.Join(base, "target"), filepath.Join(base, "link")))

	// Only the link goes; the subtree it points at is untouched.
	require.NoError(t, b.DeleteRecursive(storage.MustParsePath("link")))
	_, err := os.Lstat(filepath.Join(base, "link"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(base, "target", "f"))
	assert.NoError(t, err)
}

func TestList(t *testing.T) {
	base := t.TempDir()
	b := New(base)
	writeFile(t, b, "dir/f1", bytes.Repeat([]byte{1}, 10))
	writeFile(t, b, "dir/sub/f2", []byte("x"))
	require.NoError(t, os.Symlink(filepath.Join(base, "dir", "f1"), filepath.Join(base, "dir", "ln")))

	seen := make(map[string]storage.EntryKind)
	err := b.List(storage.MustParsePath("dir"), func(name storage.Path, kind storage.EntryKind) {
		seen[name.String()] = kind
	})
	require.NoError(t, err)

	require.Len(t, seen, 3)
	assert.Equal(t, storage.EntryKind{Type: storage.TypeFile, Size: 10}, seen["dir/f1"])
	assert.Equal(t, storage.EntryKind{Type: storage.TypeDirectory}, seen["dir/sub"])
	assert.Equal(t, storage.EntryKind{Type: storage.TypeOther}, seen["dir/ln"])
}

func TestListMissingDirectory(t *testing.T) {
	b := New(t.TempDir())
	err := b.List(storage.MustParsePath("ghost"), func(storage.Path, storage.EntryKind) {
		t.Fatal("visit must not run for a missing directory")
	})
	require.Error(t, err)
	assert.True(t, storage.IsNotExist(err))
}

func TestRegistry(t *testing.T) {
	Register()

	b, err := storage.NewBackend(BackendName, storage.Config{Base: t.TempDir()})
	require.NoError(t, err)

	w, err := b.Create(storage.MustParsePath("f"))
	require.NoError(t, err)
	_, err = w.WriteBlock(storage.BufferOf([]byte("registered")))
	require.NoError(t, err)
	r, _, err := w.Complete()
	require.NoError(t, err)
	r.MarkForCheckpoint()
	require.NoError(t, r.Close())
}
