// Package render runs the rarity-constrained, cache-aware render pass.
package render

import (
	"io"
	"time"

	"github.com/opmodel/combogen/internal/artifact"
	"github.com/opmodel/combogen/internal/cache"
	"github.com/opmodel/combogen/internal/catalog"
	"github.com/opmodel/combogen/internal/combo"
	"github.com/opmodel/combogen/internal/composite"
	"github.com/opmodel/combogen/internal/metrics"
	"github.com/opmodel/combogen/internal/quota"
)

// Options configures a render pass.
type Options struct {
	Catalog   *catalog.Catalog
	Source    composite.Source
	Backend   composite.Backend
	Artifacts artifact.Store
	Cache     cache.Store

	Format      composite.Format
	Concurrency int // 0 means runtime.NumCPU()

	// DryRun decides every combo but loads, renders and writes nothing.
	DryRun bool

	// Metrics is optional.
	Metrics *metrics.Recorder

	// Verbose prints the phase timing summary to Out.
	Verbose bool
	Out     io.Writer
}

// Outcome is what happened to one combo of the pass.
type Outcome string

const (
	OutcomeRendered Outcome = "rendered"
	OutcomeCached   Outcome = "cached"
	OutcomeQuota    Outcome = "quota"
	OutcomeFailed   Outcome = "failed"
	OutcomePlanned  Outcome = "planned"
)

// Attempt is one combo of the pass with its sequence number and outcome.
type Attempt struct {
	Num         int
	Combo       combo.Combo
	Fingerprint combo.Fingerprint
	Outcome     Outcome
	Decision    quota.Decision

	// Key is the artifact key the combo is written to.
	Key string

	// Err is set when Outcome is OutcomeFailed.
	Err error
}

// PhaseStep represents a timed sub-step within a phase.
type PhaseStep struct {
	Name     string
	Duration time.Duration
}

// PhaseRecord captures timing for an entire pipeline phase.
type PhaseRecord struct {
	Name     string
	Duration time.Duration
	Steps    []PhaseStep
	Details  string // Human-readable summary (e.g., "12 accepted, 3 over quota")
}

// Result summarizes a render pass.
type Result struct {
	// Groups is the number of surviving optional combos after the merge.
	Groups int

	// RequiredGroups is len(required).
	RequiredGroups int

	// MaxCombos is Groups × RequiredGroups, the quota budget.
	MaxCombos int

	// ShortCircuit is true when nothing was left to render and no image
	// was loaded.
	ShortCircuit bool

	Attempts []Attempt

	Rendered int
	Cached   int
	Rejected int
	Failed   int
	Planned  int

	// Quota holds per-layer accepted counts of constrained layers.
	Quota map[combo.LayerID]int

	// FlushErr records a failed cache flush. It never fails the pass.
	FlushErr error

	Phases  []PhaseRecord
	Elapsed time.Duration
}

// Possible returns the headline combination count, Groups × RequiredGroups.
func (r *Result) Possible() int {
	return r.MaxCombos
}
