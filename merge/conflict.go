package merge

import (
	"context"

	"github.com/antgroup/treestore/tree"
	"github.com/antgroup/treestore/treeval"
)

// buildConflict constructs a Conflict from an irreducible cell — one
// remove part for base if present, one add part for each of side1, side2
// that is present, in that order — and reduces it via Simplify.
func buildConflict(ctx context.Context, store tree.Store, base, side1, side2 *treeval.TreeValue) (*treeval.TreeValue, error) {
	var removes, adds []treeval.ConflictPart
	if base != nil {
		removes = append(removes, treeval.ConflictPart{Value: *base})
	}
	if side1 != nil {
		adds = append(adds, treeval.ConflictPart{Value: *side1})
	}
	if side2 != nil {
		adds = append(adds, treeval.ConflictPart{Value: *side2})
	}
	return Simplify(ctx, store, &treeval.Conflict{Removes: removes, Adds: adds})
}

// Simplify reduces a Conflict through the three-phase algebra: flatten
// nested conflicts, cancel matched add/remove pairs, then collapse trivial
// shapes. It returns nil when the conflict collapses to "path absent", a
// plain TreeValue when it collapses to a single surviving add, or a
// Conflict-kind TreeValue referencing a freshly written, fully simplified
// Conflict.
//
// Simplification is idempotent: re-simplifying a Conflict read back via its
// ConflictId yields the same plain-value-or-Conflict-kind result, since
// flatten is a no-op on a conflict with no nested Conflict parts and cancel
// is a no-op on a conflict with no matching add/remove pair — both hold for
// any already-simplified Conflict.
func Simplify(ctx context.Context, store tree.Store, c *treeval.Conflict) (*treeval.TreeValue, error) {
	removes, adds, err := flatten(ctx, store, c)
	if err != nil {
		return nil, err
	}
	removes, adds = cancel(removes, adds)

	switch {
	case len(adds) == 0:
		return nil, nil
	case len(removes) == 0 && len(adds) == 1:
		v := adds[0].Value
		return &v, nil
	default:
		id, err := store.WriteConflict(ctx, &treeval.Conflict{Removes: removes, Adds: adds})
		if err != nil {
			return nil, err
		}
		v := treeval.AsConflict(id)
		return &v, nil
	}
}

func flatten(ctx context.Context, store tree.Store, c *treeval.Conflict) (removes, adds []treeval.ConflictPart, err error) {
	if err := flattenParts(ctx, store, c.Removes, -1, &removes, &adds); err != nil {
		return nil, nil, err
	}
	if err := flattenParts(ctx, store, c.Adds, 1, &removes, &adds); err != nil {
		return nil, nil, err
	}
	return removes, adds, nil
}

// flattenParts splices parts into removes/adds according to sign: sign=+1
// treats parts as an "adds" list (a non-conflict part lands in adds; a
// nested Conflict's own adds/removes land in adds/removes respectively).
// sign=-1 treats parts as a "removes" list, which inverts a nested
// Conflict's adds/removes when splicing.
func flattenParts(ctx context.Context, store tree.Store, parts []treeval.ConflictPart, sign int, removes, adds *[]treeval.ConflictPart) error {
	for _, part := range parts {
		if !part.Value.IsConflict() {
			if sign > 0 {
				*adds = append(*adds, part)
			} else {
				*removes = append(*removes, part)
			}
			continue
		}
		inner, err := store.ReadConflict(ctx, part.Value.ConflictID)
		if err != nil {
			return err
		}
		if sign > 0 {
			if err := flattenParts(ctx, store, inner.Adds, 1, removes, adds); err != nil {
				return err
			}
			if err := flattenParts(ctx, store, inner.Removes, -1, removes, adds); err != nil {
				return err
			}
		} else {
			if err := flattenParts(ctx, store, inner.Adds, -1, removes, adds); err != nil {
				return err
			}
			if err := flattenParts(ctx, store, inner.Removes, 1, removes, adds); err != nil {
				return err
			}
		}
	}
	return nil
}

// cancel performs one sweep pairing each add with the first not-yet-used
// structurally equal remove, deleting exactly one occurrence from each
// matched pair. Duplicate parts within adds alone (or removes alone) are
// deliberately not collapsed.
func cancel(removes, adds []treeval.ConflictPart) (survivingRemoves, survivingAdds []treeval.ConflictPart) {
	used := make([]bool, len(removes))
	for _, a := range adds {
		matched := -1
		for i, r := range removes {
			if used[i] {
				continue
			}
			if r.Value.Equal(a.Value) {
				matched = i
				break
			}
		}
		if matched >= 0 {
			used[matched] = true
			continue
		}
		survivingAdds = append(survivingAdds, a)
	}
	for i, r := range removes {
		if !used[i] {
			survivingRemoves = append(survivingRemoves, r)
		}
	}
	return survivingRemoves, survivingAdds
}
