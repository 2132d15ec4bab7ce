package merge

import "context"

// ContentResult is the outcome of a file content three-way merge: either a
// resolved byte stream, or an unresolved conflict (the text merge's own
// hunk representation is internal to the collaborator and not part of this
// package's contract).
type ContentResult struct {
	Resolved bool
	Content  []byte
}

// ContentMerger is the abstract file content three-way merge collaborator.
// Implemented concretely by the textmerge package, adapted from
// modules/diferenco.
type ContentMerger interface {
	Merge(ctx context.Context, base, side1, side2 []byte) (ContentResult, error)
}
