package combo

import (
	"fmt"
	"sort"
)

// RequiredBundles generates the bundles formed by the required layers.
// When more than one required layer exists, partial bundles are discarded:
// only bundles covering every required layer can be merged.
func RequiredBundles(required []Layer) []Combo {
	bundles := Generate(required)
	if len(required) <= 1 {
		return bundles
	}

	full := bundles[:0]
	for _, b := range bundles {
		if len(b) == len(required) {
			full = append(full, b)
		}
	}
	return full
}

// InsertOrdered returns a copy of c with the assignments inserted at the
// positions that keep the combo strictly ascending by LayerID.
//
// Precondition: c is sorted by LayerID. A violation returns ErrUnsorted.
// Inserting a layer that is already present returns ErrDuplicateLayer.
func InsertOrdered(c Combo, assignments ...Assignment) (Combo, error) {
	if !c.Sorted() {
		return nil, fmt.Errorf("%w: %s", ErrUnsorted, c)
	}

	out := c.Clone(len(assignments))
	for _, a := range assignments {
		idx := sort.Search(len(out), func(i int) bool {
			return out[i].Layer >= a.Layer
		})
		if idx < len(out) && out[idx].Layer == a.Layer {
			return nil, fmt.Errorf("%w: layer %d", ErrDuplicateLayer, a.Layer)
		}
		out = append(out, Assignment{})
		copy(out[idx+1:], out[idx:])
		out[idx] = a
	}
	return out, nil
}

// MergeRequired splices every required bundle into every combo.
//
// Bundle assignments are inserted with rarity forced to 1, so required
// elements are never rarity-constrained. A merged combo whose fingerprint is
// reported by seen is dropped. A source combo left with no merged combos is
// removed; otherwise it becomes a group holding its merged combos, in bundle
// order. Groups keep the order of their source combos.
//
// With no bundles every source combo is left empty, so the Set is empty.
func MergeRequired(combos []Combo, bundles []Combo, seen func(Fingerprint) bool) (Set, error) {
	if seen == nil {
		seen = func(Fingerprint) bool { return false }
	}

	set := make(Set, len(combos))
	for j := len(combos) - 1; j >= 0; j-- {
		c := combos[j]

		var merged []Combo
		for _, bundle := range bundles {
			forced := make([]Assignment, len(bundle))
			for i, a := range bundle {
				forced[i] = Assignment{Layer: a.Layer, Rarity: 1, Element: a.Element}
			}

			out, err := InsertOrdered(c, forced...)
			if err != nil {
				return nil, fmt.Errorf("merging required bundle into combo %d: %w", j, err)
			}
			if seen(out.Fingerprint()) {
				continue
			}
			merged = append(merged, out)
		}
		set[j] = merged
	}

	// Drop sources that produced nothing.
	compact := set[:0]
	for _, group := range set {
		if len(group) > 0 {
			compact = append(compact, group)
		}
	}
	return compact, nil
}
