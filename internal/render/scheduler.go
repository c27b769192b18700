package render

import (
	"fmt"

	"github.com/opmodel/combogen/internal/cache"
	"github.com/opmodel/combogen/internal/combo"
	"github.com/opmodel/combogen/internal/composite"
	"github.com/opmodel/combogen/internal/quota"
)

// Scheduler makes the per-combo render decisions of a pass. Decisions are
// taken serially in enumeration order, so quota outcomes are deterministic.
type Scheduler struct {
	cache   cache.Store
	tracker *quota.Tracker
	format  composite.Format

	// pending holds fingerprints accepted earlier in this pass.
	pending map[combo.Fingerprint]bool
}

// NewScheduler creates a scheduler over a cache and a quota tracker.
func NewScheduler(c cache.Store, t *quota.Tracker, format composite.Format) *Scheduler {
	if format == "" {
		format = composite.FormatPNG
	}
	return &Scheduler{cache: c, tracker: t, format: format, pending: make(map[combo.Fingerprint]bool)}
}

// Decide assigns sequence numbers starting at first and returns one attempt
// per combo. Accepted combos get OutcomePlanned; the caller turns them into
// rendered or failed attempts.
//
// The sequence number advances for every combo, including skipped ones.
func (s *Scheduler) Decide(combos []combo.Combo, first int) []Attempt {
	attempts := make([]Attempt, len(combos))
	num := first
	for i, c := range combos {
		fp := c.Fingerprint()
		a := Attempt{
			Num:         num,
			Combo:       c,
			Fingerprint: fp,
			Key:         fmt.Sprintf("%d.%s", num, s.format.Ext()),
		}
		num++

		if s.cache.Exists(fp) || s.pending[fp] {
			a.Outcome = OutcomeCached
			attempts[i] = a
			continue
		}

		a.Decision = s.tracker.Reserve(c)
		if !a.Decision.Accepted {
			a.Outcome = OutcomeQuota
			attempts[i] = a
			continue
		}

		s.pending[fp] = true
		a.Outcome = OutcomePlanned
		attempts[i] = a
	}
	return attempts
}
