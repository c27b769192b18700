package render

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/combogen/internal/cache"
	"github.com/opmodel/combogen/internal/combo"
	"github.com/opmodel/combogen/internal/composite"
	"github.com/opmodel/combogen/internal/quota"
)

func rareCombos(n int) []combo.Combo {
	out := make([]combo.Combo, n)
	for i := range out {
		out[i] = combo.Combo{
			{Layer: 1, Rarity: 1, Element: fmt.Sprintf("base-%d", i)},
			{Layer: 2, Rarity: 0.1, Element: "crown"},
		}
	}
	return out
}

func TestScheduler_QuotaFromRarity(t *testing.T) {
	// maxCombos 50, rarity 0.1: at most 5 accepted, the 6th rejected.
	s := NewScheduler(cache.NewMemory(), quota.NewTracker(50, 1), composite.FormatPNG)
	attempts := s.Decide(rareCombos(8), 1)

	for i, a := range attempts {
		if i < 5 {
			assert.Equal(t, OutcomePlanned, a.Outcome, "attempt %d", i)
			assert.InDelta(t, 0.1, a.Decision.Rarity, 1e-9)
			continue
		}
		assert.Equal(t, OutcomeQuota, a.Outcome, "attempt %d", i)
		assert.Equal(t, combo.LayerID(2), a.Decision.Layer)
		assert.Equal(t, 5, a.Decision.Limit)
	}
}

func TestScheduler_NumbersEveryAttempt(t *testing.T) {
	c := cache.NewMemory()
	combos := rareCombos(3)
	require.NoError(t, c.Put(context.Background(), combos[1].Fingerprint(), 0.1))

	s := NewScheduler(c, quota.NewTracker(100, 1), composite.FormatJPEG)
	attempts := s.Decide(combos, 7)

	require.Len(t, attempts, 3)
	assert.Equal(t, []int{7, 8, 9}, []int{attempts[0].Num, attempts[1].Num, attempts[2].Num})
	assert.Equal(t, OutcomeCached, attempts[1].Outcome)
	assert.Equal(t, "9.jpg", attempts[2].Key)
}

func TestScheduler_DuplicateInPassCountsOnce(t *testing.T) {
	c := combo.Combo{{Layer: 1, Rarity: 0.5, Element: "a"}}
	tracker := quota.NewTracker(10, 1)
	s := NewScheduler(cache.NewMemory(), tracker, "")

	attempts := s.Decide([]combo.Combo{c, c}, 1)
	assert.Equal(t, OutcomePlanned, attempts[0].Outcome)
	assert.Equal(t, OutcomeCached, attempts[1].Outcome)
	assert.Equal(t, 1, tracker.Count(1))
	assert.Equal(t, "1.png", attempts[0].Key)
}

func TestBuildPlan(t *testing.T) {
	cat := exampleCatalog()
	cat.Layers = append(cat.Layers, layer(3, "hat", rarity(0.5), "H"))

	plan, err := BuildPlan(cat, cache.NewMemory())
	require.NoError(t, err)
	// body{A,B} x hat{H}: 5 optional combos, one bundle.
	assert.Equal(t, 5, plan.OptionalCombos)
	assert.Equal(t, 1, plan.Bundles)
	assert.Equal(t, 5, plan.Groups)
	assert.Equal(t, 5, plan.MaxCombos)

	require.Len(t, plan.Layers, 3)
	assert.Equal(t, -1, plan.Layers[0].Limit)
	assert.Equal(t, "hat", plan.Layers[1].Layer.Name)
	assert.Equal(t, 2, plan.Layers[1].Limit)
	assert.True(t, plan.Layers[2].Required)
}

func TestPhaseDetails(t *testing.T) {
	rec := PhaseRecord{Details: "3 jobs", Steps: []PhaseStep{{Name: "Generate"}, {Name: "Merge"}, {Name: "Extra"}}}
	got := phaseDetails(rec)
	assert.Contains(t, got, "3 jobs | Generate")
	assert.NotContains(t, got, "Extra")
}
