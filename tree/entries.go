package tree

import (
	"context"

	"github.com/antgroup/treestore/repopath"
	"github.com/antgroup/treestore/treeval"
)

// EntryResult is one item yielded by EntriesWalker: a full repository path
// and the non-tree value stored there.
type EntryResult struct {
	Path  repopath.Path
	Value treeval.TreeValue
}

type entriesFrame struct {
	tree    *Tree
	entries []treeval.Entry
	idx     int
}

// EntriesWalker performs a lazy pre-order traversal yielding every
// non-tree leaf under a root Tree view. Sub-trees are descended but never
// yielded as values themselves. Memory is O(depth): the walker keeps an
// explicit stack of frames rather than recursing on the Go call stack. A
// walker is not restartable; create a new one for a new traversal.
type EntriesWalker struct {
	stack []entriesFrame
	err   error
}

// NewEntriesWalker creates a walker rooted at t.
func NewEntriesWalker(t *Tree) *EntriesWalker {
	return &EntriesWalker{
		stack: []entriesFrame{{tree: t, entries: t.EntriesNonRecursive()}},
	}
}

// Next returns the next (path, value) pair in ascending path order, or
// ok=false when the walk is exhausted. Once an error is returned, the
// walker is exhausted and every subsequent call returns the same error.
func (w *EntriesWalker) Next(ctx context.Context) (EntryResult, bool, error) {
	if w.err != nil {
		return EntryResult{}, false, w.err
	}
	for len(w.stack) > 0 {
		top := &w.stack[len(w.stack)-1]
		if top.idx >= len(top.entries) {
			w.stack = w.stack[:len(w.stack)-1]
			continue
		}
		e := top.entries[top.idx]
		top.idx++
		path := top.tree.Dir().Join(e.Name)
		if e.Value.IsTree() {
			sub, err := top.tree.KnownSubTree(ctx, e.Name, e.Value.TreeID)
			if err != nil {
				w.err = err
				return EntryResult{}, false, err
			}
			w.stack = append(w.stack, entriesFrame{tree: sub, entries: sub.EntriesNonRecursive()})
			continue
		}
		return EntryResult{Path: path, Value: e.Value}, true, nil
	}
	return EntryResult{}, false, nil
}
