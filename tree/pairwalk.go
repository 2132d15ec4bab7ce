package tree

import (
	"github.com/antgroup/treestore/repopath"
	"github.com/antgroup/treestore/treeval"
)

// PairedEntry is one item of the paired non-recursive diff primitive:
// Before and/or After is nil depending on which side(s) have an entry
// named Name.
type PairedEntry struct {
	Name   repopath.Component
	Before *treeval.TreeValue
	After  *treeval.TreeValue
}

// PairNonRecursive walks the two sorted, non-recursive entry lists of two
// trees at the same directory and produces the paired sequence described
// by the design's "paired non-recursive diff primitive": entries unique to
// one side are yielded single-sided; entries present on both sides are
// yielded only when their values differ. This is the shared workhorse of
// both the diff walker (C3) and the structural merge pass (C4).
func PairNonRecursive(before, after []treeval.Entry) []PairedEntry {
	var out []PairedEntry
	i, j := 0, 0
	for i < len(before) && j < len(after) {
		a, b := before[i], after[j]
		switch a.Name.Compare(b.Name) {
		case -1:
			v := a.Value
			out = append(out, PairedEntry{Name: a.Name, Before: &v})
			i++
		case 1:
			v := b.Value
			out = append(out, PairedEntry{Name: b.Name, After: &v})
			j++
		default:
			i++
			j++
			if a.Value != b.Value {
				bv, av := a.Value, b.Value
				out = append(out, PairedEntry{Name: a.Name, Before: &bv, After: &av})
			}
		}
	}
	for ; i < len(before); i++ {
		v := before[i].Value
		out = append(out, PairedEntry{Name: before[i].Name, Before: &v})
	}
	for ; j < len(after); j++ {
		v := after[j].Value
		out = append(out, PairedEntry{Name: after[j].Name, After: &v})
	}
	return out
}
