package render

import (
	"fmt"

	"github.com/opmodel/combogen/internal/cache"
	"github.com/opmodel/combogen/internal/catalog"
	"github.com/opmodel/combogen/internal/combo"
	"github.com/opmodel/combogen/internal/quota"
)

// LayerPlan describes one layer's quota in a plan.
type LayerPlan struct {
	Layer    combo.Layer
	Required bool

	// Limit is floor(maxCombos × rarity). It is -1 for unconstrained layers.
	Limit int
}

// Plan holds the figures of a pass without rendering it.
type Plan struct {
	OptionalCombos int
	Bundles        int
	Groups         int
	Combos         int
	RequiredGroups int
	MaxCombos      int
	Cached         int
	Layers         []LayerPlan
}

// BuildPlan runs generation and merge against the cache and derives the
// quota of every layer.
func BuildPlan(cat *catalog.Catalog, c cache.Store) (*Plan, error) {
	combos := combo.Generate(cat.OptionalLayers())
	bundles := combo.RequiredBundles(cat.RequiredLayers())
	set, err := combo.MergeRequired(combos, bundles, c.Exists)
	if err != nil {
		return nil, fmt.Errorf("merging required layers: %w", err)
	}

	maxCombos := quota.MaxCombos(len(set), len(cat.Required))
	plan := &Plan{
		OptionalCombos: len(combos),
		Bundles:        len(bundles),
		Groups:         len(set),
		Combos:         set.Len(),
		RequiredGroups: len(cat.Required),
		MaxCombos:      maxCombos,
		Cached:         c.Len(),
	}

	for _, l := range combo.SortLayers(cat.OptionalLayers()) {
		plan.Layers = append(plan.Layers, layerPlan(l, false, maxCombos))
	}
	for _, l := range combo.SortLayers(cat.RequiredLayers()) {
		plan.Layers = append(plan.Layers, layerPlan(l, true, maxCombos))
	}
	return plan, nil
}

func layerPlan(l combo.Layer, required bool, maxCombos int) LayerPlan {
	limit := -1
	// Required elements are merged with rarity 1 and never constrained.
	if !required && l.Rarity < 1 {
		limit = quota.Limit(maxCombos, l.Rarity)
	}
	return LayerPlan{Layer: l, Required: required, Limit: limit}
}
