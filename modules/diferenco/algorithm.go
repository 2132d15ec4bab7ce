package diferenco

import "context"

// Algorithm selects the line-diff engine used by Diff3Merge, NewMerge and
// DoUnified before the diff3 hunk-merge pass runs. NewHasConflict takes no
// Algorithm and always diffs with Histogram.
type Algorithm int

const (
	// Unspecified lets ValidateOptions fall back to Histogram.
	Unspecified Algorithm = iota - 1
	// Histogram is the default: fast, and tends to produce diffs closer to
	// what a human would write for source code.
	Histogram
	Myers
	ONP
	Patience
)

func (a Algorithm) String() string {
	switch a {
	case Unspecified:
		return "unspecified"
	case Histogram:
		return "histogram"
	case Myers:
		return "myers"
	case ONP:
		return "onp"
	case Patience:
		return "patience"
	default:
		return "unknown"
	}
}

// diffInternal dispatches to the selected algorithm, honoring ctx
// cancellation the way the rest of this package's entry points do.
// PatienceDiff returns []Dfio[E], not []Change, so its result is converted
// through dfioToChanges. Any other value (including Unspecified) falls back
// to Histogram.
func diffInternal[E comparable](ctx context.Context, o, a []E, algo Algorithm) ([]Change, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	switch algo {
	case Myers:
		return MyersDiff(o, a), nil
	case ONP:
		return OnpDiff(o, a), nil
	case Patience:
		return dfioToChanges(PatienceDiff(o, a)), nil
	default:
		return HistogramDiff(o, a), nil
	}
}

// dfioToChanges flattens a patience-style edit script (grouped runs of
// Equal/Delete/Insert) into the Change shape the diff3 merge and unified
// encoders expect, pairing an adjacent Delete run with a following Insert
// run into a single replace Change.
func dfioToChanges[E comparable](dfios []Dfio[E]) []Change {
	var out []Change
	p1, p2 := 0, 0
	for i := 0; i < len(dfios); i++ {
		d := dfios[i]
		switch d.T {
		case Equal:
			p1 += len(d.E)
			p2 += len(d.E)
		case Delete:
			delLen := len(d.E)
			insLen := 0
			if i+1 < len(dfios) && dfios[i+1].T == Insert {
				i++
				insLen = len(dfios[i].E)
			}
			out = append(out, Change{P1: p1, P2: p2, Del: delLen, Ins: insLen})
			p1 += delLen
			p2 += insLen
		case Insert:
			out = append(out, Change{P1: p1, P2: p2, Ins: len(d.E)})
			p2 += len(d.E)
		}
	}
	return out
}

// DiffRunes diffs two strings rune-by-rune using the selected algorithm and
// returns the result as a sequence of equal/insert/delete text runs.
func DiffRunes(ctx context.Context, a, b string, algo Algorithm) ([]StringDiff, error) {
	ra, rb := []rune(a), []rune(b)
	changes, err := diffInternal(ctx, ra, rb, algo)
	if err != nil {
		return nil, err
	}
	var out []StringDiff
	p1 := 0
	for _, c := range changes {
		if c.P1 > p1 {
			out = append(out, StringDiff{Type: Equal, Text: string(ra[p1:c.P1])})
		}
		if c.Del > 0 {
			out = append(out, StringDiff{Type: Delete, Text: string(ra[c.P1 : c.P1+c.Del])})
		}
		if c.Ins > 0 {
			out = append(out, StringDiff{Type: Insert, Text: string(rb[c.P2 : c.P2+c.Ins])})
		}
		p1 = c.P1 + c.Del
	}
	if p1 < len(ra) {
		out = append(out, StringDiff{Type: Equal, Text: string(ra[p1:])})
	}
	return out, nil
}
