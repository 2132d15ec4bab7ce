// Package textmerge adapts modules/diferenco's diff3-style text merge into
// the merge package's ContentMerger contract.
package textmerge

import (
	"context"

	"github.com/antgroup/treestore/merge"
	"github.com/antgroup/treestore/modules/diferenco"
)

// Diferenco is a merge.ContentMerger backed by diferenco.Merge with the
// diff3 conflict style.
type Diferenco struct {
	// Algo selects the line-diff engine; the zero value is
	// diferenco.Histogram, and diferenco.Unspecified also falls back to it.
	Algo diferenco.Algorithm
}

// New returns a Diferenco content merger using the Histogram algorithm.
func New() *Diferenco {
	return &Diferenco{Algo: diferenco.Histogram}
}

func (d *Diferenco) Merge(ctx context.Context, base, side1, side2 []byte) (merge.ContentResult, error) {
	merged, hasConflict, err := diferenco.Merge(ctx, &diferenco.MergeOptions{
		TextO: string(base),
		TextA: string(side1),
		TextB: string(side2),
		A:     d.Algo,
		Style: diferenco.STYLE_DIFF3,
	})
	if err != nil {
		return merge.ContentResult{}, err
	}
	if hasConflict {
		return merge.ContentResult{Resolved: false}, nil
	}
	return merge.ContentResult{Resolved: true, Content: []byte(merged)}, nil
}
