package combo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertOrdered(t *testing.T) {
	base := Combo{
		{Layer: 1, Rarity: 1, Element: "a"},
		{Layer: 3, Rarity: 0.5, Element: "c"},
	}

	t.Run("splices between existing layers", func(t *testing.T) {
		out, err := InsertOrdered(base, Assignment{Layer: 2, Rarity: 1, Element: "b"})
		require.NoError(t, err)
		assert.Equal(t, "1:a 2:b 3:c", out.String())
		assert.Len(t, base, 2, "input must not be mutated")
	})

	t.Run("appends past the last layer", func(t *testing.T) {
		out, err := InsertOrdered(base, Assignment{Layer: 9, Element: "z"})
		require.NoError(t, err)
		assert.Equal(t, "1:a 3:c 9:z", out.String())
	})

	t.Run("prepends before the first layer", func(t *testing.T) {
		out, err := InsertOrdered(base, Assignment{Layer: 0, Element: "bg"})
		require.NoError(t, err)
		assert.Equal(t, "0:bg 1:a 3:c", out.String())
	})

	t.Run("interleaves a multi-layer bundle", func(t *testing.T) {
		out, err := InsertOrdered(base,
			Assignment{Layer: 2, Element: "b"},
			Assignment{Layer: 4, Element: "d"},
		)
		require.NoError(t, err)
		assert.Equal(t, "1:a 2:b 3:c 4:d", out.String())
		assert.True(t, out.Sorted())
	})

	t.Run("rejects duplicate layer", func(t *testing.T) {
		_, err := InsertOrdered(base, Assignment{Layer: 3, Element: "other"})
		assert.ErrorIs(t, err, ErrDuplicateLayer)
	})

	t.Run("rejects unsorted input", func(t *testing.T) {
		unsorted := Combo{{Layer: 3, Element: "c"}, {Layer: 1, Element: "a"}}
		_, err := InsertOrdered(unsorted, Assignment{Layer: 2, Element: "b"})
		assert.ErrorIs(t, err, ErrUnsorted)
	})
}

func TestRequiredBundles(t *testing.T) {
	t.Run("single required layer keeps every element", func(t *testing.T) {
		bundles := RequiredBundles([]Layer{layer(5, 1, "x", "y")})
		require.Len(t, bundles, 2)
		assert.Equal(t, "5:x", bundles[0].String())
		assert.Equal(t, "5:y", bundles[1].String())
	})

	t.Run("multiple required layers keep only full bundles", func(t *testing.T) {
		bundles := RequiredBundles([]Layer{layer(5, 1, "x", "y"), layer(6, 1, "p")})
		require.Len(t, bundles, 2)
		for _, b := range bundles {
			assert.Len(t, b, 2)
			assert.True(t, b.Has(5))
			assert.True(t, b.Has(6))
		}
	})

	t.Run("no required layers", func(t *testing.T) {
		assert.Empty(t, RequiredBundles(nil))
	})
}

func TestMergeRequired_OrdersAroundBundle(t *testing.T) {
	combos := []Combo{{
		{Layer: 1, Rarity: 0.5, Element: "a"},
		{Layer: 3, Rarity: 0.5, Element: "c"},
	}}
	bundles := []Combo{{{Layer: 2, Rarity: 0.3, Element: "b"}}}

	set, err := MergeRequired(combos, bundles, nil)
	require.NoError(t, err)
	require.Len(t, set, 1)
	require.Len(t, set[0], 1)

	merged := set[0][0]
	assert.Equal(t, "1:a 2:b 3:c", merged.String())
	assert.Equal(t, 1.0, merged[1].Rarity, "required elements are never rarity-constrained")
	assert.Equal(t, 0.5, merged[0].Rarity)
}

func TestMergeRequired_SingleRequiredExample(t *testing.T) {
	optional := Generate([]Layer{layer(1, 1, "A", "B")})
	bundles := RequiredBundles([]Layer{layer(2, 1, "X")})

	set, err := MergeRequired(optional, bundles, nil)
	require.NoError(t, err)

	flat := set.Flatten()
	require.Len(t, flat, 2)
	assert.Equal(t, "1:A 2:X", flat[0].String())
	assert.Equal(t, "1:B 2:X", flat[1].String())
}

func TestMergeRequired_GroupsPerSourceCombo(t *testing.T) {
	optional := Generate([]Layer{layer(1, 1, "a", "b"), layer(3, 1, "c")})
	bundles := RequiredBundles([]Layer{layer(2, 1, "x", "y")})

	set, err := MergeRequired(optional, bundles, nil)
	require.NoError(t, err)

	require.Len(t, set, len(optional))
	assert.Equal(t, len(optional)*len(bundles), set.Len())
	for i, group := range set {
		require.Len(t, group, 2)
		assert.Equal(t, "x", group[0][indexOf(group[0], 2)].Element)
		assert.Equal(t, "y", group[1][indexOf(group[1], 2)].Element)
		for _, c := range group {
			assert.True(t, c.Sorted(), "group %d combo %s", i, c)
		}
	}
}

func TestMergeRequired_DropsSeenAndEmptyGroups(t *testing.T) {
	optional := Generate([]Layer{layer(1, 1, "A", "B")})
	bundles := RequiredBundles([]Layer{layer(2, 1, "X", "Y")})

	cached := map[Fingerprint]bool{
		// Both merges of A are already rendered, one merge of B is.
		Combo{{Layer: 1, Element: "A"}, {Layer: 2, Element: "X"}}.Fingerprint(): true,
		Combo{{Layer: 1, Element: "A"}, {Layer: 2, Element: "Y"}}.Fingerprint(): true,
		Combo{{Layer: 1, Element: "B"}, {Layer: 2, Element: "X"}}.Fingerprint(): true,
	}

	set, err := MergeRequired(optional, bundles, func(fp Fingerprint) bool { return cached[fp] })
	require.NoError(t, err)

	require.Len(t, set, 1, "the A group has no survivors and is removed")
	require.Len(t, set[0], 1)
	assert.Equal(t, "1:B 2:Y", set[0][0].String())
}

func TestMergeRequired_NoBundlesLeavesNothing(t *testing.T) {
	optional := Generate([]Layer{layer(1, 0.5, "A", "B")})
	require.Len(t, optional, 2)

	set, err := MergeRequired(optional, RequiredBundles(nil), nil)
	require.NoError(t, err)
	assert.Empty(t, set)
	assert.Zero(t, set.Len())
}

func TestMergeRequired_DuplicateLayerFails(t *testing.T) {
	optional := []Combo{{{Layer: 2, Element: "a"}}}
	bundles := []Combo{{{Layer: 2, Element: "x"}}}

	_, err := MergeRequired(optional, bundles, nil)
	assert.ErrorIs(t, err, ErrDuplicateLayer)
}

func indexOf(c Combo, id LayerID) int {
	for i, a := range c {
		if a.Layer == id {
			return i
		}
	}
	return -1
}
