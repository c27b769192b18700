package combo

import "sort"

// SortLayers returns a copy of layers ordered by ascending ID.
func SortLayers(layers []Layer) []Layer {
	sorted := make([]Layer, len(layers))
	copy(sorted, layers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}

// Generate expands layers into every combination in which each layer is
// either absent or contributes exactly one element.
//
// Expansion is progressive over layers in ascending ID order. The first layer
// seeds one singleton per element. Every later layer appends, in this order:
// each existing combo extended by each of its elements, then one fresh
// singleton per element. Combos lacking a layer stay in the result, so the
// output holds ∏(1+kᵢ) − 1 combos for layers with kᵢ elements.
func Generate(layers []Layer) []Combo {
	var combos []Combo

	for _, layer := range SortLayers(layers) {
		if len(combos) == 0 {
			for _, el := range layer.Elements {
				combos = append(combos, Combo{layer.assign(el)})
			}
			continue
		}

		next := make([]Combo, 0, len(combos)*len(layer.Elements)+len(layer.Elements))
		for _, c := range combos {
			for _, el := range layer.Elements {
				extended := c.Clone(1)
				next = append(next, append(extended, layer.assign(el)))
			}
		}
		for _, el := range layer.Elements {
			next = append(next, Combo{layer.assign(el)})
		}

		combos = append(combos, next...)
	}

	return combos
}

// Count returns the number of combos Generate would produce, without
// materializing them.
func Count(layers []Layer) int {
	if len(layers) == 0 {
		return 0
	}
	n := 1
	for _, layer := range layers {
		n *= 1 + len(layer.Elements)
	}
	return n - 1
}

func (l Layer) assign(element string) Assignment {
	return Assignment{Layer: l.ID, Rarity: l.Rarity, Element: element}
}
