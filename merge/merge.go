// Package merge implements the three-way merge of stored trees (C4):
// structural merge over the paired primitive shared with the diff walker,
// per-cell resolution with file-content merge delegation, and the
// conflict-simplification algebra.
package merge

import (
	"context"
	"io"

	"github.com/antgroup/treestore/internal/xlog"
	"github.com/antgroup/treestore/repopath"
	"github.com/antgroup/treestore/tree"
	"github.com/antgroup/treestore/treeval"
)

func valueEqual(a, b *treeval.TreeValue) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// MergeTrees performs a structural three-way merge of side1 and side2
// against base, all three rooted at the same directory, and returns the
// resulting TreeId. File-content conflicts are delegated to cm; structural
// conflicts are built and reduced via Simplify.
func MergeTrees(ctx context.Context, store tree.Store, cm ContentMerger, side1, base, side2 *tree.Tree) (treeval.TreeId, error) {
	dir := base.Dir()
	if !side1.Dir().Equal(dir) || !side2.Dir().Equal(dir) {
		xlog.Errorw("invariant violation", xlog.Fields{
			"op": "MergeTrees", "base_dir": dir.String(), "side1_dir": side1.Dir().String(), "side2_dir": side2.Dir().String(),
		})
		return treeval.TreeId{}, treeval.NewError(treeval.InvariantViolation, "MergeTrees called with trees rooted at different directories", nil)
	}

	if base.ID() == side1.ID() {
		return side2.ID(), nil
	}
	if base.ID() == side2.ID() || side1.ID() == side2.ID() {
		return side1.ID(), nil
	}

	working := make(map[repopath.Component]treeval.TreeValue, side1.Data().Len())
	for _, e := range side1.EntriesNonRecursive() {
		working[e.Name] = e.Value
	}

	pairs := tree.PairNonRecursive(base.EntriesNonRecursive(), side2.EntriesNonRecursive())
	for _, pair := range pairs {
		maybeBase := pair.Before
		maybeSide2 := pair.After

		var maybeSide1 *treeval.TreeValue
		if v, ok := side1.Value(pair.Name); ok {
			maybeSide1 = &v
		}

		switch {
		case valueEqual(maybeSide1, maybeBase):
			// side1 unchanged at this name: adopt side2's value.
			if maybeSide2 == nil {
				delete(working, pair.Name)
			} else {
				working[pair.Name] = *maybeSide2
			}
		case valueEqual(maybeSide1, maybeSide2):
			// both sides converged: side1's value (already in working) wins.
		default:
			resolved, err := mergeTreeValue(ctx, store, cm, dir.Join(pair.Name), maybeBase, maybeSide1, maybeSide2)
			if err != nil {
				return treeval.TreeId{}, err
			}
			if resolved == nil {
				delete(working, pair.Name)
			} else {
				working[pair.Name] = *resolved
			}
		}
	}

	entries := make([]treeval.Entry, 0, len(working))
	for name, v := range working {
		entries = append(entries, treeval.Entry{Name: name, Value: v})
	}
	data := treeval.NewStoredTree(entries)
	return store.WriteTree(ctx, dir, data)
}

// mergeTreeValue resolves one diverged cell: all-trees recurses, all-files
// delegates to the content merger, everything else falls through to
// conflict construction.
func mergeTreeValue(ctx context.Context, store tree.Store, cm ContentMerger, path repopath.Path, base, side1, side2 *treeval.TreeValue) (*treeval.TreeValue, error) {
	switch {
	case isTree(base) && isTree(side1) && isTree(side2):
		return mergeAllTrees(ctx, store, cm, path, base, side1, side2)
	case isFile(base) && isFile(side1) && isFile(side2):
		resolved, ok, err := mergeAllFiles(ctx, store, cm, path, base, side1, side2)
		if err != nil {
			return nil, err
		}
		if ok {
			return resolved, nil
		}
	}
	return buildConflict(ctx, store, base, side1, side2)
}

func isTree(v *treeval.TreeValue) bool { return v != nil && v.IsTree() }
func isFile(v *treeval.TreeValue) bool { return v != nil && v.IsFile() }

func mergeAllTrees(ctx context.Context, store tree.Store, cm ContentMerger, path repopath.Path, base, side1, side2 *treeval.TreeValue) (*treeval.TreeValue, error) {
	baseTree, err := tree.Load(ctx, store, path, base.TreeID)
	if err != nil {
		return nil, err
	}
	side1Tree, err := tree.Load(ctx, store, path, side1.TreeID)
	if err != nil {
		return nil, err
	}
	side2Tree, err := tree.Load(ctx, store, path, side2.TreeID)
	if err != nil {
		return nil, err
	}
	id, err := MergeTrees(ctx, store, cm, side1Tree, baseTree, side2Tree)
	if err != nil {
		return nil, err
	}
	if id == store.EmptyTreeID() {
		return nil, nil
	}
	v := treeval.Tree(id)
	return &v, nil
}

// mergeAllFiles returns ok=false when the content merger reports a
// conflict, signalling the caller to fall through to conflict construction.
func mergeAllFiles(ctx context.Context, store tree.Store, cm ContentMerger, path repopath.Path, base, side1, side2 *treeval.TreeValue) (*treeval.TreeValue, bool, error) {
	executable, err := resolveExecutable(base, side1, side2)
	if err != nil {
		return nil, false, err
	}

	baseBytes, err := readAll(ctx, store, path, base.FileID)
	if err != nil {
		return nil, false, err
	}
	side1Bytes, err := readAll(ctx, store, path, side1.FileID)
	if err != nil {
		return nil, false, err
	}
	side2Bytes, err := readAll(ctx, store, path, side2.FileID)
	if err != nil {
		return nil, false, err
	}

	result, err := cm.Merge(ctx, baseBytes, side1Bytes, side2Bytes)
	if err != nil {
		return nil, false, err
	}
	if !result.Resolved {
		return nil, false, nil
	}
	id, err := store.WriteFile(ctx, path, result.Content)
	if err != nil {
		return nil, false, err
	}
	v := treeval.File(id, executable)
	return &v, true, nil
}

func resolveExecutable(base, side1, side2 *treeval.TreeValue) (bool, error) {
	switch {
	case base.Executable == side1.Executable:
		return side2.Executable, nil
	case base.Executable == side2.Executable:
		return side1.Executable, nil
	default:
		if side1.Executable != side2.Executable {
			xlog.Errorw("invariant violation", xlog.Fields{"op": "resolveExecutable"})
			return false, treeval.NewError(treeval.InvariantViolation, "executable bit diverged on both sides without base agreement", nil)
		}
		return side1.Executable, nil
	}
}

func readAll(ctx context.Context, store tree.Store, path repopath.Path, id treeval.FileId) ([]byte, error) {
	rc, err := store.ReadFile(ctx, path, id)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
