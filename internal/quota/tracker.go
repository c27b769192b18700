// Package quota enforces per-layer rarity caps during a render pass.
package quota

import (
	"math"
	"sync"

	"github.com/opmodel/combogen/internal/combo"
)

// Tracker counts, per layer, how many accepted combos used a
// rarity-constrained assignment of that layer. It is safe for concurrent use.
type Tracker struct {
	mu        sync.Mutex
	maxCombos int
	counts    map[combo.LayerID]int
}

// Decision is the outcome of a reservation attempt.
type Decision struct {
	// Accepted is true when every constrained assignment fit its quota.
	Accepted bool

	// Rarity is the product of the constrained assignments' rarities.
	// It is 1 for a combo without constrained assignments.
	Rarity float64

	// Layer is the layer that exceeded its quota when Accepted is false.
	Layer combo.LayerID

	// Limit is the quota of Layer when Accepted is false.
	Limit int
}

// NewTracker creates a tracker for a pass whose global budget is
// totalCombos × requiredGroups.
func NewTracker(totalCombos, requiredGroups int) *Tracker {
	return &Tracker{
		maxCombos: MaxCombos(totalCombos, requiredGroups),
		counts:    make(map[combo.LayerID]int),
	}
}

// MaxCombos computes the ceiling budget used to turn rarity fractions into
// absolute quotas.
func MaxCombos(totalCombos, requiredGroups int) int {
	return totalCombos * requiredGroups
}

// Limit returns the absolute quota for a rarity: floor(maxCombos × rarity).
func Limit(maxCombos int, rarity float64) int {
	return int(math.Floor(float64(maxCombos) * rarity))
}

// MaxCombos returns the budget this tracker was created with.
func (t *Tracker) MaxCombos() int {
	return t.maxCombos
}

// Reserve checks every assignment with rarity < 1 against its layer quota.
// The reservation is all-or-nothing: if any assignment is over quota, no
// count changes. Otherwise every constrained layer count is incremented.
func (t *Tracker) Reserve(c combo.Combo) Decision {
	t.mu.Lock()
	defer t.mu.Unlock()

	rarity := 1.0
	for _, a := range c {
		if a.Rarity >= 1 {
			continue
		}
		limit := Limit(t.maxCombos, a.Rarity)
		if limit == 0 || t.counts[a.Layer]+1 > limit {
			return Decision{Layer: a.Layer, Limit: limit}
		}
		rarity *= a.Rarity
	}

	for _, a := range c {
		if a.Rarity < 1 {
			t.counts[a.Layer]++
		}
	}
	return Decision{Accepted: true, Rarity: rarity}
}

// Count returns how many accepted combos used the layer under quota.
func (t *Tracker) Count(id combo.LayerID) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[id]
}

// Snapshot returns a copy of all layer counts.
func (t *Tracker) Snapshot() map[combo.LayerID]int {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[combo.LayerID]int, len(t.counts))
	for id, n := range t.counts {
		out[id] = n
	}
	return out
}
