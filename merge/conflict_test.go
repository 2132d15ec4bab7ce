package merge_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antgroup/treestore/merge"
	"github.com/antgroup/treestore/repopath"
	"github.com/antgroup/treestore/treeval"
)

func fileValue(t *testing.T, fs interface {
	WriteFile(ctx context.Context, path repopath.Path, data []byte) (treeval.FileId, error)
}, content string) treeval.TreeValue {
	id, err := fs.WriteFile(context.Background(), repopath.Root(), []byte(content))
	require.NoError(t, err)
	return treeval.File(id, false)
}

// Invariant 6 / S5-ish: {+A -B +{+B -A +C}} simplifies to the plain value C.
func TestSimplifyRebaseRoundTripCancels(t *testing.T) {
	fs := openStore(t)
	ctx := context.Background()

	a := fileValue(t, fs, "A")
	b := fileValue(t, fs, "B")
	c := fileValue(t, fs, "C")

	innerID, err := fs.WriteConflict(ctx, treeval.NewConflict([]treeval.TreeValue{a}, []treeval.TreeValue{b, c}))
	require.NoError(t, err)
	inner := treeval.AsConflict(innerID)

	outer := treeval.NewConflict([]treeval.TreeValue{b}, []treeval.TreeValue{a, inner})

	result, err := merge.Simplify(ctx, fs, outer)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsFile())
	assert.Equal(t, c.FileID, result.FileID)
}

// S5: Conflict{removes=[B], adds=[Conflict{removes=[A], adds=[B, C]}]}
// flattens to {removes=[B, A], adds=[B, C]}, cancels (B, B), leaving both
// sides non-empty, so it is stored and returned as Conflict(id).
func TestSimplifyConflictCancellationStoresSurvivor(t *testing.T) {
	fs := openStore(t)
	ctx := context.Background()

	a := fileValue(t, fs, "A")
	b := fileValue(t, fs, "B")
	c := fileValue(t, fs, "C")

	innerID, err := fs.WriteConflict(ctx, treeval.NewConflict([]treeval.TreeValue{a}, []treeval.TreeValue{b, c}))
	require.NoError(t, err)
	inner := treeval.AsConflict(innerID)

	outer := treeval.NewConflict([]treeval.TreeValue{b}, []treeval.TreeValue{inner})

	result, err := merge.Simplify(ctx, fs, outer)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsConflict())

	stored, err := fs.ReadConflict(ctx, result.ConflictID)
	require.NoError(t, err)
	require.Len(t, stored.Removes, 1)
	require.Len(t, stored.Adds, 1)
	assert.Equal(t, a, stored.Removes[0].Value)
	assert.Equal(t, c, stored.Adds[0].Value)
}

// S6: Conflict{removes=[], adds=[X]} simplifies to the plain value X.
func TestSimplifyEmptyRemovesSingleAddCollapsesToValue(t *testing.T) {
	fs := openStore(t)
	ctx := context.Background()

	x := fileValue(t, fs, "X")
	c := treeval.NewConflict(nil, []treeval.TreeValue{x})

	result, err := merge.Simplify(ctx, fs, c)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, x, *result)
}

// A conflict with no adds at all ("path does not exist") simplifies to nil.
func TestSimplifyEmptyAddsCollapsesToAbsent(t *testing.T) {
	fs := openStore(t)
	ctx := context.Background()

	a := fileValue(t, fs, "A")
	c := treeval.NewConflict([]treeval.TreeValue{a}, nil)

	result, err := merge.Simplify(ctx, fs, c)
	require.NoError(t, err)
	assert.Nil(t, result)
}

// Invariant 7: simplifying a conflict twice yields the same result as once.
func TestSimplifyIdempotent(t *testing.T) {
	fs := openStore(t)
	ctx := context.Background()

	a := fileValue(t, fs, "A")
	b := fileValue(t, fs, "B")
	c := fileValue(t, fs, "C")
	c2 := treeval.NewConflict([]treeval.TreeValue{a}, []treeval.TreeValue{b, c})

	once, err := merge.Simplify(ctx, fs, c2)
	require.NoError(t, err)
	require.NotNil(t, once)
	require.True(t, once.IsConflict())

	reloaded, err := fs.ReadConflict(ctx, once.ConflictID)
	require.NoError(t, err)
	twice, err := merge.Simplify(ctx, fs, reloaded)
	require.NoError(t, err)
	require.NotNil(t, twice)
	assert.Equal(t, *once, *twice)
}

// Duplicate parts within adds alone are deliberately not collapsed.
func TestSimplifyDoesNotDeduplicateUnmatchedAdds(t *testing.T) {
	fs := openStore(t)
	ctx := context.Background()

	a := fileValue(t, fs, "A")
	c := treeval.NewConflict(nil, []treeval.TreeValue{a, a})

	result, err := merge.Simplify(ctx, fs, c)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.True(t, result.IsConflict())

	stored, err := fs.ReadConflict(ctx, result.ConflictID)
	require.NoError(t, err)
	assert.Len(t, stored.Adds, 2)
}
