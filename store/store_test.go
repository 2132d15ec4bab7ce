package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antgroup/treestore/objhash"
	"github.com/antgroup/treestore/repopath"
	"github.com/antgroup/treestore/store"
	"github.com/antgroup/treestore/treeval"
)

func open(t *testing.T) *store.FileStore {
	t.Helper()
	fs, err := store.Open(t.TempDir(), store.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { fs.Close() })
	return fs
}

func TestWriteReadFileRoundTrip(t *testing.T) {
	fs := open(t)
	ctx := context.Background()

	id, err := fs.WriteFile(ctx, repopath.FromString("a"), []byte("hello world"))
	require.NoError(t, err)
	assert.Equal(t, objhash.Sum([]byte("hello world")), id)

	rc, err := fs.ReadFile(ctx, repopath.FromString("a"), id)
	require.NoError(t, err)
	defer rc.Close()

	buf := make([]byte, 32)
	n, _ := rc.Read(buf)
	assert.Equal(t, "hello world", string(buf[:n]))
}

func TestWriteReadTreeRoundTrip(t *testing.T) {
	fs := open(t)
	ctx := context.Background()

	fileID, err := fs.WriteFile(ctx, repopath.Root(), []byte("x"))
	require.NoError(t, err)

	entries := []treeval.Entry{
		{Name: "b", Value: treeval.File(fileID, true)},
		{Name: "a", Value: treeval.Symlink(fileID)},
	}
	id, err := fs.WriteTree(ctx, repopath.Root(), treeval.NewStoredTree(entries))
	require.NoError(t, err)

	data, err := fs.GetTree(ctx, repopath.Root(), id)
	require.NoError(t, err)
	require.Equal(t, 2, data.Len())

	got, ok := data.Get("a")
	require.True(t, ok)
	assert.Equal(t, treeval.Symlink(fileID), got)

	got, ok = data.Get("b")
	require.True(t, ok)
	assert.Equal(t, treeval.File(fileID, true), got)
}

func TestWriteReadConflictRoundTrip(t *testing.T) {
	fs := open(t)
	ctx := context.Background()

	fileID, err := fs.WriteFile(ctx, repopath.Root(), []byte("x"))
	require.NoError(t, err)

	c := treeval.NewConflict(
		[]treeval.TreeValue{treeval.File(fileID, false)},
		[]treeval.TreeValue{treeval.File(fileID, true), treeval.Symlink(fileID)},
	)
	id, err := fs.WriteConflict(ctx, c)
	require.NoError(t, err)

	got, err := fs.ReadConflict(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, c.Removes, got.Removes)
	assert.Equal(t, c.Adds, got.Adds)
}

func TestEmptyTreeNeverTouchesDisk(t *testing.T) {
	fs := open(t)
	ctx := context.Background()

	id, err := fs.WriteTree(ctx, repopath.Root(), treeval.EmptyStoredTree())
	require.NoError(t, err)
	assert.Equal(t, fs.EmptyTreeID(), id)

	data, err := fs.GetTree(ctx, repopath.Root(), id)
	require.NoError(t, err)
	assert.Equal(t, 0, data.Len())
}

func TestReadMissingObjectIsNotFound(t *testing.T) {
	fs := open(t)
	ctx := context.Background()

	_, err := fs.ReadFile(ctx, repopath.Root(), objhash.Sum([]byte("never written")))
	require.Error(t, err)
	assert.True(t, treeval.IsNotFound(err))
}

func TestWriteFileIsIdempotent(t *testing.T) {
	fs := open(t)
	ctx := context.Background()

	id1, err := fs.WriteFile(ctx, repopath.Root(), []byte("same content"))
	require.NoError(t, err)
	id2, err := fs.WriteFile(ctx, repopath.Root(), []byte("same content"))
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
}

func TestWriteReadFileRoundTripWithCompressionNone(t *testing.T) {
	fs, err := store.Open(t.TempDir(), store.Options{Compression: "none"})
	require.NoError(t, err)
	defer fs.Close()
	ctx := context.Background()

	id, err := fs.WriteFile(ctx, repopath.Root(), []byte("hello world"))
	require.NoError(t, err)

	rc, err := fs.ReadFile(ctx, repopath.Root(), id)
	require.NoError(t, err)
	defer rc.Close()

	buf := make([]byte, 32)
	n, _ := rc.Read(buf)
	assert.Equal(t, "hello world", string(buf[:n]))
}

func TestOpenRejectsUnknownCompressionMethod(t *testing.T) {
	_, err := store.Open(t.TempDir(), store.Options{Compression: "lz4"})
	require.Error(t, err)
}

func TestOpenRespectsCustomCacheMaxCost(t *testing.T) {
	fs, err := store.Open(t.TempDir(), store.Options{CacheMaxCost: 4})
	require.NoError(t, err)
	defer fs.Close()
	ctx := context.Background()

	fileID, err := fs.WriteFile(ctx, repopath.Root(), []byte("x"))
	require.NoError(t, err)
	entries := []treeval.Entry{{Name: "a", Value: treeval.Symlink(fileID)}}
	id, err := fs.WriteTree(ctx, repopath.Root(), treeval.NewStoredTree(entries))
	require.NoError(t, err)

	data, err := fs.GetTree(ctx, repopath.Root(), id)
	require.NoError(t, err)
	assert.Equal(t, 1, data.Len())
}
