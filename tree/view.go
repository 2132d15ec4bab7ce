package tree

import (
	"context"

	"github.com/antgroup/treestore/internal/xlog"
	"github.com/antgroup/treestore/repopath"
	"github.com/antgroup/treestore/treeval"
)

// Tree is an immutable handle to a stored tree rooted at dir: a shared
// store reference, the directory it is relative to, its content id, and a
// shared pointer to the decoded StoredTree data. Tree views are cheap to
// copy; the underlying data is never mutated.
type Tree struct {
	store Store
	dir   repopath.Path
	id    treeval.TreeId
	data  *treeval.StoredTree
}

// New wraps already-hydrated tree data in a view. Most callers should use
// Load or Empty instead.
func New(store Store, dir repopath.Path, id treeval.TreeId, data *treeval.StoredTree) *Tree {
	return &Tree{store: store, dir: dir, id: id, data: data}
}

// Load hydrates the tree identified by id, rooted at dir, from store.
func Load(ctx context.Context, store Store, dir repopath.Path, id treeval.TreeId) (*Tree, error) {
	if id == store.EmptyTreeID() {
		return Empty(store, dir), nil
	}
	data, err := store.GetTree(ctx, dir, id)
	if err != nil {
		return nil, err
	}
	return New(store, dir, id, data), nil
}

// Empty constructs the (non-hydrated) null tree rooted at dir.
func Empty(store Store, dir repopath.Path) *Tree {
	return New(store, dir, store.EmptyTreeID(), treeval.EmptyStoredTree())
}

// Store returns the backing store this view hydrates against.
func (t *Tree) Store() Store { return t.store }

// Dir returns the directory this view's entries are relative to.
func (t *Tree) Dir() repopath.Path { return t.dir }

// ID returns this view's content identifier.
func (t *Tree) ID() treeval.TreeId { return t.id }

// Data returns the underlying decoded StoredTree.
func (t *Tree) Data() *treeval.StoredTree { return t.data }

// EntriesNonRecursive returns this directory's entries, in ascending
// component order.
func (t *Tree) EntriesNonRecursive() []treeval.Entry {
	return t.data.Entries()
}

// Entry looks up a direct child by basename.
func (t *Tree) Entry(basename repopath.Component) (treeval.Entry, bool) {
	v, ok := t.data.Get(basename)
	if !ok {
		return treeval.Entry{}, false
	}
	return treeval.Entry{Name: basename, Value: v}, true
}

// Value looks up a direct child's value by basename.
func (t *Tree) Value(basename repopath.Component) (treeval.TreeValue, bool) {
	return t.data.Get(basename)
}

// SubTree hydrates and returns the Tree view rooted at dir.Join(name), if
// the child named name is a Tree variant. Returns (nil, nil) if the child
// is absent or is not a tree.
func (t *Tree) SubTree(ctx context.Context, name repopath.Component) (*Tree, error) {
	v, ok := t.Value(name)
	if !ok || !v.IsTree() {
		return nil, nil
	}
	return t.KnownSubTree(ctx, name, v.TreeID)
}

// KnownSubTree hydrates the sub-tree named name whose id is already known,
// skipping the lookup in this tree's data.
func (t *Tree) KnownSubTree(ctx context.Context, name repopath.Component, id treeval.TreeId) (*Tree, error) {
	return Load(ctx, t.store, t.dir.Join(name), id)
}

// PathValue resolves path against a tree known to be rooted at the
// repository root, returning the TreeValue found there, a TreeValue naming
// this tree itself when path is the root, or (nil, nil) when any
// intermediate component is missing or not a tree. It is an
// InvariantViolation to call PathValue on a non-root tree.
func (t *Tree) PathValue(ctx context.Context, path repopath.Path) (*treeval.TreeValue, error) {
	if !t.dir.IsRoot() {
		xlog.Errorw("invariant violation", xlog.Fields{"op": "PathValue", "dir": t.dir.String()})
		return nil, treeval.NewError(treeval.InvariantViolation, "PathValue called on a non-root tree", nil)
	}
	if path.IsRoot() {
		v := treeval.Tree(t.id)
		return &v, nil
	}
	cur := t
	comps := path.Components()
	for i, c := range comps {
		v, ok := cur.Value(c)
		if !ok {
			return nil, nil
		}
		if i == len(comps)-1 {
			return &v, nil
		}
		if !v.IsTree() {
			return nil, nil
		}
		next, err := cur.KnownSubTree(ctx, c, v.TreeID)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return nil, nil
}

// ConflictEntry pairs a path with the ConflictId stored there.
type ConflictEntry struct {
	Path repopath.Path
	ID   treeval.ConflictId
}

// Conflicts enumerates every leaf under t whose value is a Conflict
// reference, in walker order.
func (t *Tree) Conflicts(ctx context.Context) ([]ConflictEntry, error) {
	w := NewEntriesWalker(t)
	var out []ConflictEntry
	for {
		res, ok, err := w.Next(ctx)
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		if res.Value.IsConflict() {
			out = append(out, ConflictEntry{Path: res.Path, ID: res.Value.ConflictID})
		}
	}
}

// HasConflict reports whether Conflicts would return any entries.
func (t *Tree) HasConflict(ctx context.Context) (bool, error) {
	w := NewEntriesWalker(t)
	for {
		res, ok, err := w.Next(ctx)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
		if res.Value.IsConflict() {
			return true, nil
		}
	}
}
