package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/opmodel/combogen/internal/artifact"
	"github.com/opmodel/combogen/internal/combo"
	"github.com/opmodel/combogen/internal/composite"
)

// renderer composites and writes accepted attempts.
type renderer struct {
	opts   *Options
	layers map[combo.LayerID]combo.Layer
	images *composite.Table
	log    *log.Logger
}

// executeRenders performs the render phase: every planned attempt is
// composited and written concurrently. Attempts are updated in place.
// A FatalConfigError cancels the remaining work and is returned; write
// failures only mark their own attempt as failed.
func (r *renderer) executeRenders(ctx context.Context, attempts []Attempt) (PhaseRecord, error) {
	start := time.Now()

	limit := r.opts.Concurrency
	if limit <= 0 {
		limit = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	var jobs int
	var slowest atomic.Int64
	for i := range attempts {
		if attempts[i].Outcome != OutcomePlanned {
			continue
		}
		jobs++
		a := &attempts[i]
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			workerStart := time.Now()
			defer func() {
				d := int64(time.Since(workerStart))
				for {
					cur := slowest.Load()
					if d <= cur || slowest.CompareAndSwap(cur, d) {
						return
					}
				}
			}()

			err := r.renderOne(gctx, a)
			var fatal *FatalConfigError
			if errors.As(err, &fatal) {
				return err
			}
			if err != nil {
				a.Outcome = OutcomeFailed
				a.Err = err
				r.log.Warn("render failed, continuing", "combo", a.Num, "err", err)
				return nil
			}
			a.Outcome = OutcomeRendered
			r.log.Debug("rendered", "combo", a.Num, "key", a.Key, "rarity", a.Decision.Rarity)
			return nil
		})
	}

	err := g.Wait()
	record := PhaseRecord{
		Name:     "Render",
		Duration: time.Since(start),
		Details:  fmt.Sprintf("%d jobs, %d workers (max: %s)", jobs, limit, formatDuration(time.Duration(slowest.Load()))),
	}
	return record, err
}

// renderOne composites one attempt, writes it and records it in the cache.
func (r *renderer) renderOne(ctx context.Context, a *Attempt) error {
	draws := make([]composite.Draw, 0, len(a.Combo))
	for _, asg := range a.Combo {
		layer, ok := r.layers[asg.Layer]
		if !ok {
			return &FatalConfigError{Element: asg.Element, Err: fmt.Errorf("layer id %d is not in the catalog", asg.Layer)}
		}
		img, ok := r.images.Lookup(asg.Layer, asg.Element)
		if !ok {
			return &FatalConfigError{Layer: layer.Name, Element: asg.Element, Err: composite.ErrImageNotFound}
		}
		draws = append(draws, composite.Draw{Image: img, Rect: layer.Placement})
	}

	cat := r.opts.Catalog
	raster, err := r.opts.Backend.Composite(ctx, cat.Width, cat.Height, draws)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &FatalConfigError{Err: fmt.Errorf("compositing combo %d: %w", a.Num, err)}
	}

	var buf bytes.Buffer
	if err := raster.Encode(&buf, r.opts.Format); err != nil {
		return &RenderAttemptError{Num: a.Num, Key: a.Key, Err: fmt.Errorf("encoding: %w", err)}
	}

	if _, err := r.opts.Artifacts.Put(ctx, a.Key, &buf, artifact.PutOptions{
		ContentType: r.opts.Format.ContentType(),
		Metadata:    map[string]string{"fingerprint": a.Fingerprint.String()},
		Overwrite:   true,
	}); err != nil {
		return &RenderAttemptError{Num: a.Num, Key: a.Key, Err: fmt.Errorf("writing output: %w", err)}
	}

	if err := r.opts.Cache.Put(ctx, a.Fingerprint, a.Decision.Rarity); err != nil {
		return &RenderAttemptError{Num: a.Num, Key: a.Key, Err: fmt.Errorf("recording in cache: %w", err)}
	}
	return nil
}
