// Package treeval holds the content-addressed data model shared by the
// tree, merge, and store packages: tree identifiers, the tagged TreeValue
// union, the ordered StoredTree map, and the Conflict type (simplified by
// merge.Simplify).
package treeval

import (
	"sort"

	"github.com/antgroup/treestore/objhash"
	"github.com/antgroup/treestore/repopath"
)

// TreeId, FileId, SymlinkId and ConflictId are opaque content identifiers
// of their respective stored objects.
type (
	TreeId     = objhash.Hash
	FileId     = objhash.Hash
	SymlinkId  = objhash.Hash
	ConflictId = objhash.Hash
)

// Kind discriminates the variants of TreeValue.
type Kind int

const (
	KindFile Kind = iota
	KindSymlink
	KindTree
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindSymlink:
		return "symlink"
	case KindTree:
		return "tree"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// TreeValue is the tagged union stored at one name within a StoredTree:
// a regular file (with an executable flag), a symlink, a sub-tree, or an
// unresolved conflict marker. Only the fields relevant to Kind are
// meaningful; TreeValue is a plain comparable value so that "==" implements
// the structural equality the merge algorithm and conflict cancellation
// require.
type TreeValue struct {
	Kind       Kind
	FileID     FileId
	Executable bool
	SymlinkID  SymlinkId
	TreeID     TreeId
	ConflictID ConflictId
}

// File constructs a regular-file TreeValue.
func File(id FileId, executable bool) TreeValue {
	return TreeValue{Kind: KindFile, FileID: id, Executable: executable}
}

// Symlink constructs a symlink TreeValue.
func Symlink(id SymlinkId) TreeValue {
	return TreeValue{Kind: KindSymlink, SymlinkID: id}
}

// Tree constructs a sub-tree TreeValue.
func Tree(id TreeId) TreeValue {
	return TreeValue{Kind: KindTree, TreeID: id}
}

// AsConflict constructs a conflict-reference TreeValue.
func AsConflict(id ConflictId) TreeValue {
	return TreeValue{Kind: KindConflict, ConflictID: id}
}

// IsTree reports whether v names a sub-tree.
func (v TreeValue) IsTree() bool { return v.Kind == KindTree }

// IsFile reports whether v names a regular file.
func (v TreeValue) IsFile() bool { return v.Kind == KindFile }

// IsConflict reports whether v names an unresolved conflict.
func (v TreeValue) IsConflict() bool { return v.Kind == KindConflict }

// Equal reports structural equality, the notion used throughout the merge
// algorithm ("maybe_side1 == maybe_base", conflict-part cancellation, ...).
func (v TreeValue) Equal(other TreeValue) bool {
	return v == other
}

// Entry is one (name, value) pair of a StoredTree.
type Entry struct {
	Name  repopath.Component
	Value TreeValue
}

// StoredTree is an immutable mapping from RepoPathComponent to TreeValue,
// always iterated in ascending component order.
type StoredTree struct {
	entries []Entry
}

// NewStoredTree builds a StoredTree from entries, sorting them by name.
// The input slice is copied; the caller's slice is not retained.
func NewStoredTree(entries []Entry) *StoredTree {
	cp := make([]Entry, len(entries))
	copy(cp, entries)
	sort.Slice(cp, func(i, j int) bool {
		return cp[i].Name.Compare(cp[j].Name) < 0
	})
	return &StoredTree{entries: cp}
}

// EmptyStoredTree returns a StoredTree with no entries.
func EmptyStoredTree() *StoredTree {
	return &StoredTree{}
}

// Entries returns the tree's entries in ascending component order. The
// returned slice must not be mutated.
func (t *StoredTree) Entries() []Entry {
	if t == nil {
		return nil
	}
	return t.entries
}

// Len returns the number of entries.
func (t *StoredTree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Get looks up basename, returning its value and whether it was present.
func (t *StoredTree) Get(basename repopath.Component) (TreeValue, bool) {
	if t == nil {
		return TreeValue{}, false
	}
	i := sort.Search(len(t.entries), func(i int) bool {
		return t.entries[i].Name.Compare(basename) >= 0
	})
	if i < len(t.entries) && t.entries[i].Name == basename {
		return t.entries[i].Value, true
	}
	return TreeValue{}, false
}

// ConflictPart wraps a single TreeValue, which may itself be a Conflict
// reference — nested conflicts are legal only as intermediate state, prior
// to simplification.
type ConflictPart struct {
	Value TreeValue
}

// Conflict is a pair (removes, adds) of ConflictPart lists. Semantically it
// represents the symbolic sum "sum(adds) - sum(removes)".
//
// An empty Adds list denotes "path does not exist". An empty Removes list
// with exactly one Add denotes a plain value, not an actual conflict — that
// shape only ever appears transiently during simplification (see
// merge.Simplify), since a fully simplified Conflict always has a nonempty
// Removes or more than one Add.
type Conflict struct {
	Removes []ConflictPart
	Adds    []ConflictPart
}

// NewConflict builds a Conflict from TreeValue slices, wrapping each in a
// ConflictPart. nil/empty removes or adds are both legal.
func NewConflict(removes, adds []TreeValue) *Conflict {
	c := &Conflict{
		Removes: make([]ConflictPart, len(removes)),
		Adds:    make([]ConflictPart, len(adds)),
	}
	for i, v := range removes {
		c.Removes[i] = ConflictPart{Value: v}
	}
	for i, v := range adds {
		c.Adds[i] = ConflictPart{Value: v}
	}
	return c
}
