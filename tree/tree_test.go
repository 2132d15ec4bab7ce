package tree_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antgroup/treestore/matcher"
	"github.com/antgroup/treestore/repopath"
	"github.com/antgroup/treestore/store"
	"github.com/antgroup/treestore/tree"
	"github.com/antgroup/treestore/treeval"
)

func openStore(t *testing.T) *store.FileStore {
	t.Helper()
	fs, err := store.Open(t.TempDir(), store.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { fs.Close() })
	return fs
}

func writeFile(t *testing.T, fs *store.FileStore, content string) treeval.FileId {
	t.Helper()
	id, err := fs.WriteFile(context.Background(), repopath.Root(), []byte(content))
	require.NoError(t, err)
	return id
}

func writeTree(t *testing.T, fs *store.FileStore, entries ...treeval.Entry) treeval.TreeId {
	t.Helper()
	id, err := fs.WriteTree(context.Background(), repopath.Root(), treeval.NewStoredTree(entries))
	require.NoError(t, err)
	return id
}

// S1: pure addition.
func TestDiffPureAddition(t *testing.T) {
	fs := openStore(t)
	ctx := context.Background()

	aID := writeFile(t, fs, "x")
	t1 := tree.Empty(fs, repopath.Root())
	t2ID := writeTree(t, fs, treeval.Entry{Name: "a", Value: treeval.File(aID, false)})
	t2, err := tree.Load(ctx, fs, repopath.Root(), t2ID)
	require.NoError(t, err)

	w := t1.Diff(t2, matcher.Everything())
	e, ok, err := w.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, repopath.FromString("a"), e.Path)
	assert.Equal(t, tree.DiffAdded, e.Diff.Kind)
	assert.Equal(t, aID, e.Diff.After.FileID)

	_, ok, err = w.Next(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

// S2: modification.
func TestDiffModification(t *testing.T) {
	fs := openStore(t)
	ctx := context.Background()

	xID := writeFile(t, fs, "x")
	yID := writeFile(t, fs, "y")
	t1ID := writeTree(t, fs, treeval.Entry{Name: "a", Value: treeval.File(xID, false)})
	t2ID := writeTree(t, fs, treeval.Entry{Name: "a", Value: treeval.File(yID, false)})
	t1, err := tree.Load(ctx, fs, repopath.Root(), t1ID)
	require.NoError(t, err)
	t2, err := tree.Load(ctx, fs, repopath.Root(), t2ID)
	require.NoError(t, err)

	w := t1.Diff(t2, matcher.Everything())
	e, ok, err := w.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, tree.DiffModified, e.Diff.Kind)
	assert.Equal(t, xID, e.Diff.Before.FileID)
	assert.Equal(t, yID, e.Diff.After.FileID)
}

// S3: directory replaced by file — every removal under the replaced
// directory must precede the single replacing Added event.
func TestDiffDirectoryReplacedByFile(t *testing.T) {
	fs := openStore(t)
	ctx := context.Background()

	fID := writeFile(t, fs, "1")
	subID := writeTree(t, fs, treeval.Entry{Name: "f", Value: treeval.File(fID, false)})
	t1ID := writeTree(t, fs, treeval.Entry{Name: "d", Value: treeval.Tree(subID)})

	xID := writeFile(t, fs, "X")
	t2ID := writeTree(t, fs, treeval.Entry{Name: "d", Value: treeval.File(xID, false)})

	t1, err := tree.Load(ctx, fs, repopath.Root(), t1ID)
	require.NoError(t, err)
	t2, err := tree.Load(ctx, fs, repopath.Root(), t2ID)
	require.NoError(t, err)

	w := t1.Diff(t2, matcher.Everything())

	e1, ok, err := w.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, repopath.FromString("d/f"), e1.Path)
	assert.Equal(t, tree.DiffRemoved, e1.Diff.Kind)

	e2, ok, err := w.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, repopath.FromString("d"), e2.Path)
	assert.Equal(t, tree.DiffAdded, e2.Diff.Kind)
	assert.Equal(t, xID, e2.Diff.After.FileID)

	_, ok, err = w.Next(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

// Invariant 3: diff(t, t, m) yields no entries for any matcher.
func TestDiffEmptyIffEqual(t *testing.T) {
	fs := openStore(t)
	ctx := context.Background()

	xID := writeFile(t, fs, "x")
	id := writeTree(t, fs,
		treeval.Entry{Name: "a", Value: treeval.File(xID, false)},
		treeval.Entry{Name: "b", Value: treeval.File(xID, true)},
	)
	a, err := tree.Load(ctx, fs, repopath.Root(), id)
	require.NoError(t, err)
	b, err := tree.Load(ctx, fs, repopath.Root(), id)
	require.NoError(t, err)

	summary, err := a.DiffSummary(ctx, b, matcher.Everything())
	require.NoError(t, err)
	assert.True(t, summary.IsEmpty())
}

// Invariant 2: reversing the tree arguments maps Added<->Removed, keeps
// Modified (with swapped sides), and leaves the path set unchanged.
func TestDiffSymmetry(t *testing.T) {
	fs := openStore(t)
	ctx := context.Background()

	xID := writeFile(t, fs, "x")
	yID := writeFile(t, fs, "y")
	zID := writeFile(t, fs, "z")

	t1ID := writeTree(t, fs,
		treeval.Entry{Name: "a", Value: treeval.File(xID, false)},
		treeval.Entry{Name: "b", Value: treeval.File(yID, false)},
	)
	t2ID := writeTree(t, fs,
		treeval.Entry{Name: "a", Value: treeval.File(zID, false)},
		treeval.Entry{Name: "c", Value: treeval.File(yID, false)},
	)
	t1, err := tree.Load(ctx, fs, repopath.Root(), t1ID)
	require.NoError(t, err)
	t2, err := tree.Load(ctx, fs, repopath.Root(), t2ID)
	require.NoError(t, err)

	forward, err := t1.DiffSummary(ctx, t2, matcher.Everything())
	require.NoError(t, err)
	backward, err := t2.DiffSummary(ctx, t1, matcher.Everything())
	require.NoError(t, err)

	assert.ElementsMatch(t, forward.Added, backward.Removed)
	assert.ElementsMatch(t, forward.Removed, backward.Added)
	assert.ElementsMatch(t, forward.Modified, backward.Modified)
}

// Invariant 9: a leaf diff event at path p is emitted only if matcher
// matches p.
func TestDiffMatcherFiltering(t *testing.T) {
	fs := openStore(t)
	ctx := context.Background()

	xID := writeFile(t, fs, "x")
	yID := writeFile(t, fs, "y")
	t1 := tree.Empty(fs, repopath.Root())
	t2ID := writeTree(t, fs,
		treeval.Entry{Name: "a", Value: treeval.File(xID, false)},
		treeval.Entry{Name: "b", Value: treeval.File(yID, false)},
	)
	t2, err := tree.Load(ctx, fs, repopath.Root(), t2ID)
	require.NoError(t, err)

	only := matcher.PrefixMatcher(repopath.FromString("a"))
	summary, err := t1.DiffSummary(ctx, t2, only)
	require.NoError(t, err)
	assert.Equal(t, []repopath.Path{repopath.FromString("a")}, summary.Added)
}

// Invariant 1: entries walker yields strictly ascending, non-duplicate
// paths, one per leaf.
func TestEntriesWalkerOrder(t *testing.T) {
	fs := openStore(t)
	ctx := context.Background()

	xID := writeFile(t, fs, "x")
	subID := writeTree(t, fs, treeval.Entry{Name: "z", Value: treeval.File(xID, false)})
	rootID := writeTree(t, fs,
		treeval.Entry{Name: "a", Value: treeval.File(xID, false)},
		treeval.Entry{Name: "m", Value: treeval.Tree(subID)},
	)
	root, err := tree.Load(ctx, fs, repopath.Root(), rootID)
	require.NoError(t, err)

	w := tree.NewEntriesWalker(root)
	var paths []string
	for {
		res, ok, err := w.Next(ctx)
		require.NoError(t, err)
		if !ok {
			break
		}
		paths = append(paths, res.Path.String())
	}
	assert.Equal(t, []string{"a", "m/z"}, paths)
}

func TestEmptyTreeHasZeroEntries(t *testing.T) {
	fs := openStore(t)
	empty := tree.Empty(fs, repopath.Root())
	assert.Equal(t, 0, empty.Data().Len())
	assert.Equal(t, fs.EmptyTreeID(), empty.ID())
}

func TestPairNonRecursiveOnlyYieldsDivergentEqualNames(t *testing.T) {
	xID := writeFile(t, openStore(t), "x")
	before := []treeval.Entry{
		{Name: "a", Value: treeval.File(xID, false)},
		{Name: "b", Value: treeval.File(xID, false)},
	}
	after := []treeval.Entry{
		{Name: "a", Value: treeval.File(xID, false)},
		{Name: "c", Value: treeval.File(xID, false)},
	}
	pairs := tree.PairNonRecursive(before, after)
	// "a" holds the same value on both sides, so it is not yielded.
	require.Len(t, pairs, 2)
	assert.NotEqual(t, repopath.Component("a"), pairs[0].Name)
	assert.NotEqual(t, repopath.Component("a"), pairs[1].Name)
	assert.Equal(t, repopath.Component("b"), pairs[0].Name)
	assert.NotNil(t, pairs[0].Before)
	assert.Nil(t, pairs[0].After)
	assert.Equal(t, repopath.Component("c"), pairs[1].Name)
	assert.Nil(t, pairs[1].Before)
	assert.NotNil(t, pairs[1].After)
}
