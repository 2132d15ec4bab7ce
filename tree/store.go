// Package tree implements the immutable Tree view (C1), the recursive
// entries walker (C2), and the recursive diff walker (C3) over
// content-addressed StoredTree data.
package tree

import (
	"context"
	"io"

	"github.com/antgroup/treestore/repopath"
	"github.com/antgroup/treestore/treeval"
)

// Store is the content-addressed backing store a Tree view hydrates
// against. It is implemented concretely by the store package; this package
// never imports that implementation, only this interface.
type Store interface {
	GetTree(ctx context.Context, dir repopath.Path, id treeval.TreeId) (*treeval.StoredTree, error)
	ReadFile(ctx context.Context, path repopath.Path, id treeval.FileId) (io.ReadCloser, error)
	WriteFile(ctx context.Context, path repopath.Path, data []byte) (treeval.FileId, error)
	ReadConflict(ctx context.Context, id treeval.ConflictId) (*treeval.Conflict, error)
	WriteConflict(ctx context.Context, c *treeval.Conflict) (treeval.ConflictId, error)
	WriteTree(ctx context.Context, dir repopath.Path, data *treeval.StoredTree) (treeval.TreeId, error)
	EmptyTreeID() treeval.TreeId
}

// VisitDecision is the result of a Matcher's directory-level Visit check.
// It is declared for forward compatibility with prefix-pruning (see §9 of
// the design notes) but is not yet consulted by the diff walker.
type VisitDecision int

const (
	// VisitDescend means the matcher may match something under dir; the
	// walker should descend normally.
	VisitDescend VisitDecision = iota
	// VisitSkip means nothing under dir can match; a walker that consulted
	// this decision could skip the whole subtree. Unused today.
	VisitSkip
)

// Matcher restricts which leaf diff events are emitted by the diff walker.
// Implemented concretely by the matcher package.
type Matcher interface {
	Matches(path repopath.Path) bool
	// Visit exists for future prefix-pruning; the diff walker descends
	// unconditionally and filters at leaves regardless of its result.
	Visit(dir repopath.Path) VisitDecision
}
