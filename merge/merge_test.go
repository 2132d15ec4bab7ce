package merge_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antgroup/treestore/merge"
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

func loadTree(t *testing.T, fs *store.FileStore, entries ...treeval.Entry) *tree.Tree {
	t.Helper()
	ctx := context.Background()
	id, err := fs.WriteTree(ctx, repopath.Root(), treeval.NewStoredTree(entries))
	require.NoError(t, err)
	tr, err := tree.Load(ctx, fs, repopath.Root(), id)
	require.NoError(t, err)
	return tr
}

func writeFile(t *testing.T, fs *store.FileStore, content string) treeval.FileId {
	t.Helper()
	id, err := fs.WriteFile(context.Background(), repopath.Root(), []byte(content))
	require.NoError(t, err)
	return id
}

// fixedMerger always resolves to a fixed result, modeling the "external
// text merger returning Resolved(...)" of S4.
type fixedMerger struct {
	content []byte
}

func (f fixedMerger) Merge(ctx context.Context, base, side1, side2 []byte) (merge.ContentResult, error) {
	return merge.ContentResult{Resolved: true, Content: f.content}, nil
}

// Invariant 4: merge_trees(t, t, t) == t.id.
func TestMergeIdentity(t *testing.T) {
	fs := openStore(t)
	xID := writeFile(t, fs, "x")
	tr := loadTree(t, fs, treeval.Entry{Name: "a", Value: treeval.File(xID, false)})

	id, err := merge.MergeTrees(context.Background(), fs, fixedMerger{}, tr, tr, tr)
	require.NoError(t, err)
	assert.Equal(t, tr.ID(), id)
}

// Invariant 5: base-equals-side shortcut, both directions.
func TestMergeBaseEqualsSideShortcut(t *testing.T) {
	fs := openStore(t)
	xID := writeFile(t, fs, "x")
	yID := writeFile(t, fs, "y")
	t1 := loadTree(t, fs, treeval.Entry{Name: "a", Value: treeval.File(xID, false)})
	t2 := loadTree(t, fs, treeval.Entry{Name: "a", Value: treeval.File(yID, false)})

	id, err := merge.MergeTrees(context.Background(), fs, fixedMerger{}, t1, t1, t2)
	require.NoError(t, err)
	assert.Equal(t, t2.ID(), id)

	id, err = merge.MergeTrees(context.Background(), fs, fixedMerger{}, t1, t2, t2)
	require.NoError(t, err)
	assert.Equal(t, t1.ID(), id)
}

// S4: clean three-way text merge, executable bit carried from the side
// that diverges from base when the other agrees with it.
func TestMergeCleanTextMerge(t *testing.T) {
	fs := openStore(t)
	ctx := context.Background()

	baseID := writeFile(t, fs, "A\nB\nC\n")
	side1ID := writeFile(t, fs, "A\nB1\nC\n")
	side2ID := writeFile(t, fs, "A\nB\nC2\n")

	base := loadTree(t, fs, treeval.Entry{Name: "f", Value: treeval.File(baseID, false)})
	side1 := loadTree(t, fs, treeval.Entry{Name: "f", Value: treeval.File(side1ID, true)})
	side2 := loadTree(t, fs, treeval.Entry{Name: "f", Value: treeval.File(side2ID, false)})

	resolved := "A\nB1\nC2\n"
	id, err := merge.MergeTrees(ctx, fs, fixedMerger{content: []byte(resolved)}, side1, base, side2)
	require.NoError(t, err)

	merged, err := tree.Load(ctx, fs, repopath.Root(), id)
	require.NoError(t, err)
	v, ok := merged.Value("f")
	require.True(t, ok)
	require.True(t, v.IsFile())

	content, err := fs.ReadFile(ctx, repopath.FromString("f"), v.FileID)
	require.NoError(t, err)
	defer content.Close()
	buf := make([]byte, len(resolved))
	n, _ := content.Read(buf)
	assert.Equal(t, resolved, string(buf[:n]))
	// side2 agrees with base on the executable bit, so side1's bit wins.
	assert.True(t, v.Executable)
}

// A genuine content conflict (merger reports unresolved) falls through to
// conflict construction rather than being silently dropped.
func TestMergeFileConflictFallsThroughToConflict(t *testing.T) {
	fs := openStore(t)
	ctx := context.Background()

	baseID := writeFile(t, fs, "base")
	side1ID := writeFile(t, fs, "one")
	side2ID := writeFile(t, fs, "two")

	base := loadTree(t, fs, treeval.Entry{Name: "f", Value: treeval.File(baseID, false)})
	side1 := loadTree(t, fs, treeval.Entry{Name: "f", Value: treeval.File(side1ID, false)})
	side2 := loadTree(t, fs, treeval.Entry{Name: "f", Value: treeval.File(side2ID, false)})

	conflicting := failingMerger{}
	id, err := merge.MergeTrees(ctx, fs, conflicting, side1, base, side2)
	require.NoError(t, err)

	merged, err := tree.Load(ctx, fs, repopath.Root(), id)
	require.NoError(t, err)
	has, err := merged.HasConflict(ctx)
	require.NoError(t, err)
	assert.True(t, has)
}

type failingMerger struct{}

func (failingMerger) Merge(ctx context.Context, base, side1, side2 []byte) (merge.ContentResult, error) {
	return merge.ContentResult{Resolved: false}, nil
}
