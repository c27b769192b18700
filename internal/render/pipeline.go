package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/opmodel/combogen/internal/combo"
	"github.com/opmodel/combogen/internal/composite"
	"github.com/opmodel/combogen/internal/metrics"
	"github.com/opmodel/combogen/internal/output"
	"github.com/opmodel/combogen/internal/quota"
)

// Pipeline orchestrates one render pass.
type Pipeline struct {
	Options *Options
	log     *log.Logger
}

// NewPipeline creates a render pipeline with the given options.
func NewPipeline(opts *Options) *Pipeline {
	if opts.Format == "" {
		opts.Format = composite.FormatPNG
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	return &Pipeline{Options: opts, log: output.PassLogger(passName(opts))}
}

func passName(opts *Options) string {
	if opts.Catalog == nil || opts.Catalog.Source == "" {
		return "catalog"
	}
	base := filepath.Base(opts.Catalog.Source)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Render executes the pass:
//
//	Phase 1: Combination generation and required merge (cache-deduplicated)
//	Phase 2: Image preload (skipped when nothing is left to render)
//	Phase 3: Serial render decisions (cache check, quota reservation)
//	Phase 4: Concurrent compositing and writes
//	Phase 5: Cache flush
//
// Only a FatalConfigError (or a setup failure) is returned as an error.
// Per-combo write failures are reported in the result.
func (p *Pipeline) Render(ctx context.Context) (*Result, error) {
	opts := p.Options
	if opts.Catalog == nil || opts.Cache == nil {
		return nil, fmt.Errorf("render pipeline requires a catalog and a cache")
	}
	if !opts.DryRun && (opts.Source == nil || opts.Backend == nil || opts.Artifacts == nil) {
		return nil, fmt.Errorf("render pipeline requires an image source, a backend and an artifact store")
	}

	passStart := time.Now()
	var phases []PhaseRecord

	// PHASE 1: Generation & merge
	set, phase1Record, err := p.generate()
	if err != nil {
		return nil, fmt.Errorf("phase 1 (generation) failed: %w", err)
	}
	phases = append(phases, phase1Record)

	required := len(opts.Catalog.Required)
	tracker := quota.NewTracker(len(set), required)
	result := &Result{
		Groups:         len(set),
		RequiredGroups: required,
		MaxCombos:      tracker.MaxCombos(),
	}
	p.log.Info(fmt.Sprintf("found %d possible combinations", result.Possible()),
		"groups", result.Groups, "cached", opts.Cache.Len())

	if set.Len() == 0 {
		p.log.Info("there are no unique combinations to process")
		result.ShortCircuit = true
		result.Phases = phases
		result.Elapsed = time.Since(passStart)
		p.finish(result)
		return result, nil
	}

	// PHASE 2: Image preload
	var rnd *renderer
	if !opts.DryRun {
		preloadStart := time.Now()
		images, err := composite.Preload(ctx, opts.Source, opts.Catalog.All(), opts.Concurrency)
		if err != nil {
			return nil, &FatalConfigError{Err: fmt.Errorf("failed to load images: %w", err)}
		}
		phases = append(phases, PhaseRecord{
			Name:     "Image Preload",
			Duration: time.Since(preloadStart),
			Details:  fmt.Sprintf("%d images from %d layers", images.Len(), len(opts.Catalog.All())),
		})
		rnd = &renderer{opts: opts, layers: opts.Catalog.Index(), images: images, log: p.log}
	}

	// PHASE 3: Decisions
	decideStart := time.Now()
	scheduler := NewScheduler(opts.Cache, tracker, opts.Format)
	attempts := scheduler.Decide(set.Flatten(), opts.Cache.Len()+1)
	result.Attempts = attempts
	for _, a := range attempts {
		switch a.Outcome {
		case OutcomeQuota:
			p.log.Debug("over quota", "combo", a.Num, "layer", a.Decision.Layer, "limit", a.Decision.Limit)
		case OutcomeCached:
			p.log.Debug("already rendered", "combo", a.Num)
		}
	}
	result.Quota = tracker.Snapshot()
	phases = append(phases, PhaseRecord{
		Name:     "Decide",
		Duration: time.Since(decideStart),
		Details:  decisionDetails(attempts),
	})

	// PHASE 4: Render
	if rnd != nil {
		record, err := rnd.executeRenders(ctx, attempts)
		phases = append(phases, record)
		if err != nil {
			result.Phases = phases
			result.Elapsed = time.Since(passStart)
			p.tally(result)
			return result, err
		}

		// PHASE 5: Flush
		flushStart := time.Now()
		if err := opts.Cache.Flush(ctx); err != nil {
			result.FlushErr = err
			p.log.Error("failed to update metadata", "err", err)
		}
		phases = append(phases, PhaseRecord{
			Name:     "Cache Flush",
			Duration: time.Since(flushStart),
			Details:  fmt.Sprintf("%d entries", opts.Cache.Len()),
		})
	}

	result.Phases = phases
	result.Elapsed = time.Since(passStart)
	p.tally(result)
	p.finish(result)
	return result, nil
}

// generate performs Phase 1: optional combos, required bundles and the merge.
func (p *Pipeline) generate() (combo.Set, PhaseRecord, error) {
	start := time.Now()
	var steps []PhaseStep

	cat := p.Options.Catalog
	genStart := time.Now()
	combos := combo.Generate(cat.OptionalLayers())
	bundles := combo.RequiredBundles(cat.RequiredLayers())
	steps = append(steps, PhaseStep{Name: "Generate", Duration: time.Since(genStart)})

	mergeStart := time.Now()
	set, err := combo.MergeRequired(combos, bundles, p.Options.Cache.Exists)
	if err != nil {
		return nil, PhaseRecord{}, err
	}
	steps = append(steps, PhaseStep{Name: "Merge", Duration: time.Since(mergeStart)})

	return set, PhaseRecord{
		Name:     "Generate & Merge",
		Duration: time.Since(start),
		Steps:    steps,
		Details:  fmt.Sprintf("%d combos x %d bundles -> %d new", len(combos), len(bundles), set.Len()),
	}, nil
}

func (p *Pipeline) tally(r *Result) {
	r.Rendered, r.Cached, r.Rejected, r.Failed, r.Planned = 0, 0, 0, 0, 0
	for _, a := range r.Attempts {
		switch a.Outcome {
		case OutcomeRendered:
			r.Rendered++
		case OutcomeCached:
			r.Cached++
		case OutcomeQuota:
			r.Rejected++
		case OutcomeFailed:
			r.Failed++
		case OutcomePlanned:
			r.Planned++
		}
	}
}

// finish logs the pass summary, records metrics and prints timings.
func (p *Pipeline) finish(r *Result) {
	opts := p.Options
	if !r.ShortCircuit {
		if opts.DryRun {
			p.log.Info(fmt.Sprintf("dry run: %d combos would be rendered", r.Planned),
				"over_quota", r.Rejected, "cached", r.Cached)
		} else {
			p.log.Info(fmt.Sprintf("successfully processed %d combos", r.Rendered),
				"failed", r.Failed, "over_quota", r.Rejected, "cached", r.Cached,
				"elapsed", formatDuration(r.Elapsed))
		}
	}

	if m := opts.Metrics; m != nil {
		recordMetrics(m, r, opts)
	}

	if opts.Verbose && len(r.Phases) > 0 {
		printTimingSummary(opts.Out, r.Phases)
	}
}

func recordMetrics(m *metrics.Recorder, r *Result, opts *Options) {
	for _, a := range r.Attempts {
		switch a.Outcome {
		case OutcomeRendered:
			m.Rendered()
		case OutcomeCached:
			m.Skipped(metrics.ReasonCached)
		case OutcomeQuota:
			m.Skipped(metrics.ReasonQuota)
		case OutcomeFailed:
			m.Failed()
		}
	}
	idx := opts.Catalog.Index()
	for id, n := range r.Quota {
		m.QuotaUsed(idx[id].Name, n)
	}
	for _, ph := range r.Phases {
		m.ObservePhase(strings.ToLower(ph.Name), ph.Duration)
	}
	m.CacheSize(opts.Cache.Len())
}

func decisionDetails(attempts []Attempt) string {
	var accepted, quotaHit, cached int
	for _, a := range attempts {
		switch a.Outcome {
		case OutcomePlanned:
			accepted++
		case OutcomeQuota:
			quotaHit++
		case OutcomeCached:
			cached++
		}
	}
	return fmt.Sprintf("%d accepted, %d over quota, %d cached", accepted, quotaHit, cached)
}

// IsFatal reports whether err aborted the pass.
func IsFatal(err error) bool {
	var fatal *FatalConfigError
	return errors.As(err, &fatal)
}
