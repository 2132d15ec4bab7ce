package tree

import (
	"context"

	"github.com/antgroup/treestore/internal/xlog"
	"github.com/antgroup/treestore/repopath"
	"github.com/antgroup/treestore/treeval"
)

// DiffKind discriminates the variants of Diff.
type DiffKind int

const (
	DiffAdded DiffKind = iota
	DiffRemoved
	DiffModified
)

// Diff is the tagged union yielded by the diff walker for one path:
// Added carries only After, Removed carries only Before, Modified carries
// both.
type Diff struct {
	Kind   DiffKind
	Before treeval.TreeValue
	After  treeval.TreeValue
}

// DiffEntry pairs a full repository path with the Diff observed there.
type DiffEntry struct {
	Path repopath.Path
	Diff Diff
}

// DiffSummary fully materializes a diff walk into three path lists, each
// in ascending order.
type DiffSummary struct {
	Modified []repopath.Path
	Added    []repopath.Path
	Removed  []repopath.Path
}

// IsEmpty reports whether the summary has no entries in any list.
func (s *DiffSummary) IsEmpty() bool {
	return len(s.Modified) == 0 && len(s.Added) == 0 && len(s.Removed) == 0
}

// pendingDescend records a paired entry whose processing requires
// descending into a child directory, deferred by one loop turn so that any
// leading emission (the not-tree/tree Removed case) can be returned first.
type pendingDescend struct {
	name     repopath.Component
	before   *treeval.TreeValue
	after    *treeval.TreeValue
	trailing *DiffEntry
}

type diffFrame struct {
	dir    repopath.Path
	before *Tree
	after  *Tree

	pairs []PairedEntry
	idx   int

	pendingDescend *pendingDescend
	afterChildEmit *DiffEntry
}

// DiffWalker performs the lazy, ordered recursive diff of two Tree views
// rooted at the same directory, filtered by a Matcher. Emissions follow
// depth-first pre-order on the directory tree; a directory replaced by a
// file emits every event under the directory before the file's Added event,
// and a file replaced by a directory emits the file's Removed event before
// every event under the directory, per the replacement table.
type DiffWalker struct {
	store   Store
	matcher Matcher
	stack   []diffFrame
	err     error
}

// Diff returns the recursive diff walker between t and other, filtered by
// matcher. t and other must be rooted at the same directory.
func (t *Tree) Diff(other *Tree, matcher Matcher) *DiffWalker {
	pairs := PairNonRecursive(t.EntriesNonRecursive(), other.EntriesNonRecursive())
	return &DiffWalker{
		store:   t.store,
		matcher: matcher,
		stack: []diffFrame{{
			dir:    t.dir,
			before: t,
			after:  other,
			pairs:  pairs,
		}},
	}
}

// DiffSummary fully materializes t.Diff(other, matcher).
func (t *Tree) DiffSummary(ctx context.Context, other *Tree, matcher Matcher) (*DiffSummary, error) {
	w := t.Diff(other, matcher)
	summary := &DiffSummary{}
	for {
		e, ok, err := w.Next(ctx)
		if err != nil {
			return summary, err
		}
		if !ok {
			return summary, nil
		}
		switch e.Diff.Kind {
		case DiffModified:
			summary.Modified = append(summary.Modified, e.Path)
		case DiffAdded:
			summary.Added = append(summary.Added, e.Path)
		case DiffRemoved:
			summary.Removed = append(summary.Removed, e.Path)
		}
	}
}

func (w *DiffWalker) childTree(ctx context.Context, dir repopath.Path, v *treeval.TreeValue) (*Tree, error) {
	if v != nil && v.IsTree() {
		return Load(ctx, w.store, dir, v.TreeID)
	}
	return Empty(w.store, dir), nil
}

// Next returns the next diff entry in walk order, or ok=false when
// exhausted. Once an error is returned, the walker is exhausted and every
// subsequent call returns the same error; partial output already returned
// remains valid.
func (w *DiffWalker) Next(ctx context.Context) (DiffEntry, bool, error) {
	if w.err != nil {
		return DiffEntry{}, false, w.err
	}
	for len(w.stack) > 0 {
		top := &w.stack[len(w.stack)-1]

		if top.afterChildEmit != nil {
			e := *top.afterChildEmit
			top.afterChildEmit = nil
			return e, true, nil
		}

		if top.pendingDescend != nil {
			pd := top.pendingDescend
			top.pendingDescend = nil
			childDir := top.dir.Join(pd.name)
			childBefore, err := w.childTree(ctx, childDir, pd.before)
			if err != nil {
				w.err = err
				return DiffEntry{}, false, err
			}
			childAfter, err := w.childTree(ctx, childDir, pd.after)
			if err != nil {
				w.err = err
				return DiffEntry{}, false, err
			}
			if pd.trailing != nil {
				top.afterChildEmit = pd.trailing
			}
			w.stack = append(w.stack, diffFrame{
				dir:    childDir,
				before: childBefore,
				after:  childAfter,
				pairs:  PairNonRecursive(childBefore.EntriesNonRecursive(), childAfter.EntriesNonRecursive()),
			})
			continue
		}

		if top.idx >= len(top.pairs) {
			w.stack = w.stack[:len(w.stack)-1]
			continue
		}

		pair := top.pairs[top.idx]
		top.idx++

		beforeIsTree := pair.Before != nil && pair.Before.IsTree()
		afterIsTree := pair.After != nil && pair.After.IsTree()
		path := top.dir.Join(pair.Name)

		switch {
		case !beforeIsTree && !afterIsTree:
			if !w.matcher.Matches(path) {
				continue
			}
			switch {
			case pair.Before != nil && pair.After != nil:
				return DiffEntry{Path: path, Diff: Diff{Kind: DiffModified, Before: *pair.Before, After: *pair.After}}, true, nil
			case pair.After != nil:
				return DiffEntry{Path: path, Diff: Diff{Kind: DiffAdded, After: *pair.After}}, true, nil
			case pair.Before != nil:
				return DiffEntry{Path: path, Diff: Diff{Kind: DiffRemoved, Before: *pair.Before}}, true, nil
			default:
				xlog.Errorw("invariant violation", xlog.Fields{"op": "DiffWalker.Next", "path": path.String()})
				w.err = treeval.NewError(treeval.InvariantViolation, "paired primitive yielded an equal-equal entry", nil)
				return DiffEntry{}, false, w.err
			}

		case beforeIsTree && afterIsTree:
			top.pendingDescend = &pendingDescend{name: pair.Name, before: pair.Before, after: pair.After}
			continue

		case !beforeIsTree && afterIsTree:
			// not-tree -> tree: Removed(before) first, then the sub-walker
			// surfaces the new tree's contents as additions.
			top.pendingDescend = &pendingDescend{name: pair.Name, before: pair.Before, after: pair.After}
			if pair.Before != nil && w.matcher.Matches(path) {
				return DiffEntry{Path: path, Diff: Diff{Kind: DiffRemoved, Before: *pair.Before}}, true, nil
			}
			continue

		default: // beforeIsTree && !afterIsTree
			// tree -> not-tree: sub-walker surfaces the old tree's contents
			// as removals first, then Added(after).
			var trailing *DiffEntry
			if pair.After != nil && w.matcher.Matches(path) {
				trailing = &DiffEntry{Path: path, Diff: Diff{Kind: DiffAdded, After: *pair.After}}
			}
			top.pendingDescend = &pendingDescend{name: pair.Name, before: pair.Before, after: pair.After, trailing: trailing}
			continue
		}
	}
	return DiffEntry{}, false, nil
}
