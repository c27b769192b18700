package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/opmodel/combogen/internal/catalog"
	"github.com/opmodel/combogen/internal/composite"
	oerrors "github.com/opmodel/combogen/internal/errors"
	"github.com/opmodel/combogen/internal/metrics"
	"github.com/opmodel/combogen/internal/output"
	"github.com/opmodel/combogen/internal/render"
)

type generateOptions struct {
	passFlags
	dryRun bool
	output string
	list   bool
}

// NewGenerateCmd creates the generate command.
func NewGenerateCmd() *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate [catalog]",
		Short: "Render every new combination of the catalog",
		Long: `Render every new combination of a layer catalog.

The pass enumerates all combinations of the optional layers, merges the
required layer bundles into each, skips combos whose fingerprint is already
in the cache, enforces rarity quotas and writes each accepted combo as
<number>.<ext> to the artifact store.

Arguments:
  catalog    Path to the catalog (default: config.json, env: COMBOGEN_CATALOG)

Examples:
  # Render with defaults (./config.json, ./Assets, ./Builds)
  combogen generate

  # Render a YAML catalog as JPEG with an SQLite cache
  combogen generate layers.yaml --format jpeg --cache-driver sqlite

  # Show what would be rendered without writing anything
  combogen generate --dry-run --list`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args, opts)
		},
	}

	opts.bindStorage(cmd)
	opts.bindRender(cmd)
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Decide every combo without loading images or writing anything")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "text", "Report format: text, json, yaml")
	cmd.Flags().BoolVar(&opts.list, "list", false, "List every combo in the text report")

	return cmd
}

func runGenerate(cmd *cobra.Command, args []string, opts *generateOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	reportFormat, ok := output.ParseOutputFormat(opts.output)
	if !ok {
		return &ExitError{Code: ExitValidationError, Err: fmt.Errorf("invalid output format %q (valid: %s)", opts.output, strings.Join(output.ValidFormats(), ", "))}
	}

	var catalogArg string
	if len(args) > 0 {
		catalogArg = args[0]
	}
	s, err := resolveSettings(cmd, &opts.passFlags, catalogArg)
	if err != nil {
		return fail("invalid settings", err)
	}

	cat, err := catalog.Load(s.Catalog)
	if err != nil {
		return fail("could not load catalog", err)
	}

	format, err := composite.ParseFormat(s.Format)
	if err != nil {
		return fail("invalid output format", err)
	}
	backend, err := composite.NewBackend(s.Backend, composite.BackendOptions{JPEGQuality: s.JPEGQuality})
	if err != nil {
		return fail("invalid backend", err)
	}

	artifacts, store, err := openStores(ctx, s)
	if err != nil {
		return fail("could not open stores", err)
	}
	defer store.Close()

	var recorder *metrics.Recorder
	if s.MetricsFile != "" {
		recorder = metrics.NewRecorder()
	}

	renderOpts := &render.Options{
		Catalog:     cat,
		Source:      composite.NewDirSource(s.AssetsDir),
		Backend:     backend,
		Artifacts:   artifacts,
		Cache:       store,
		Format:      format,
		Concurrency: s.Concurrency,
		DryRun:      opts.dryRun,
		Metrics:     recorder,
		Verbose:     verboseFlag,
		Out:         cmd.OutOrStdout(),
	}

	var result *render.Result
	err = output.RunWithSpinner(ctx, func(ctx context.Context) error {
		var renderErr error
		result, renderErr = render.NewPipeline(renderOpts).Render(ctx)
		return renderErr
	},
		output.WithTitle("Rendering combos"),
		output.WithoutSpinner(verboseFlag || reportFormat != output.FormatText),
	)
	if err != nil {
		var fatal *render.FatalConfigError
		if errors.As(err, &fatal) {
			location := s.AssetsDir
			if fatal.Layer != "" {
				location = filepath.Join(s.AssetsDir, fatal.Layer, fatal.Element)
			}
			return fail("render pass aborted", oerrors.NewConfigError(fatal.Error(), location,
				"Add the missing image or remove the element from the catalog.", err))
		}
		return fail("render pass failed", err)
	}

	if recorder != nil {
		if err := recorder.WriteTextfile(s.MetricsFile); err != nil {
			output.Warn("could not write metrics textfile", "path", s.MetricsFile, "err", err)
		}
	}

	report := passReport(cat, result, opts.dryRun)
	if err := output.WritePassReport(report, output.VerboseOptions{
		Format: reportFormat,
		Combos: opts.list,
		Writer: cmd.OutOrStdout(),
	}); err != nil {
		return &ExitError{Code: ExitGeneralError, Err: err}
	}

	switch {
	case result.FlushErr != nil:
		return &ExitError{Code: ExitGeneralError, Err: fmt.Errorf("metadata not saved: %w", result.FlushErr), Printed: true}
	case result.Failed > 0:
		return &ExitError{Code: ExitGeneralError, Err: fmt.Errorf("%d combo(s) failed to render", result.Failed), Printed: true}
	}
	return nil
}

// passReport converts a render result into the report printed by generate.
func passReport(cat *catalog.Catalog, r *render.Result, dryRun bool) *output.PassReport {
	name := "catalog"
	if cat.Source != "" {
		name = filepath.Base(cat.Source)
	}
	report := &output.PassReport{
		Catalog:      name,
		DryRun:       dryRun,
		Possible:     r.Possible(),
		MaxCombos:    r.MaxCombos,
		ShortCircuit: r.ShortCircuit,
		Rendered:     r.Rendered,
		Planned:      r.Planned,
		Cached:       r.Cached,
		OverQuota:    r.Rejected,
		Failed:       r.Failed,
		Elapsed:      r.Elapsed.Round(time.Millisecond).String(),
	}

	if len(r.Quota) > 0 {
		idx := cat.Index()
		report.Quota = make(map[string]int, len(r.Quota))
		for id, n := range r.Quota {
			report.Quota[idx[id].Name] = n
		}
	}

	for _, a := range r.Attempts {
		c := output.ComboReport{
			Num:         a.Num,
			Combo:       a.Combo.String(),
			Fingerprint: a.Fingerprint.String(),
			Status:      statusFor(a.Outcome),
		}
		if a.Outcome == render.OutcomeRendered || a.Outcome == render.OutcomePlanned || a.Outcome == render.OutcomeFailed {
			c.Key = a.Key
			c.Rarity = a.Decision.Rarity
		}
		if a.Err != nil {
			c.Error = a.Err.Error()
		}
		report.Combos = append(report.Combos, c)
	}
	if r.FlushErr != nil {
		report.Warnings = append(report.Warnings, "metadata not saved: "+r.FlushErr.Error())
	}
	return report
}

func statusFor(o render.Outcome) string {
	switch o {
	case render.OutcomeRendered:
		return output.StatusRendered
	case render.OutcomeCached:
		return output.StatusCached
	case render.OutcomeQuota:
		return output.StatusOverQuota
	case render.OutcomeFailed:
		return output.StatusFailed
	default:
		return output.StatusPlanned
	}
}
