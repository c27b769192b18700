package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opmodel/combogen/internal/catalog"
	"github.com/opmodel/combogen/internal/output"
	"github.com/opmodel/combogen/internal/render"
)

type planOptions struct {
	passFlags
	output string
}

// planLayer is the structured form of one row of the plan table.
type planLayer struct {
	ID       int     `json:"id" yaml:"id"`
	Name     string  `json:"name" yaml:"name"`
	Kind     string  `json:"kind" yaml:"kind"`
	Elements int     `json:"elements" yaml:"elements"`
	Rarity   float64 `json:"rarity" yaml:"rarity"`
	Quota    *int    `json:"quota,omitempty" yaml:"quota,omitempty"`
}

type planReport struct {
	Catalog        string      `json:"catalog" yaml:"catalog"`
	OptionalCombos int         `json:"optionalCombos" yaml:"optionalCombos"`
	Bundles        int         `json:"bundles" yaml:"bundles"`
	Groups         int         `json:"groups" yaml:"groups"`
	NewCombos      int         `json:"newCombos" yaml:"newCombos"`
	MaxCombos      int         `json:"maxCombos" yaml:"maxCombos"`
	Cached         int         `json:"cached" yaml:"cached"`
	Layers         []planLayer `json:"layers" yaml:"layers"`
}

// NewPlanCmd creates the plan command.
func NewPlanCmd() *cobra.Command {
	opts := &planOptions{}

	cmd := &cobra.Command{
		Use:   "plan [catalog]",
		Short: "Show combination counts and layer quotas",
		Long: `Show what a render pass over the catalog would work with.

Prints how many optional combos and required bundles the catalog yields,
how many merged combos are not yet in the cache, the maxCombos estimate and
the quota of every rarity-constrained layer. Nothing is rendered or written.

Examples:
  combogen plan
  combogen plan layers.yaml -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, args, opts)
		},
	}

	opts.bindStorage(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "text", "Output format: text, json, yaml")
	return cmd
}

func runPlan(cmd *cobra.Command, args []string, opts *planOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	format, ok := output.ParseOutputFormat(opts.output)
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

	_, store, err := openStores(ctx, s)
	if err != nil {
		return fail("could not open stores", err)
	}
	defer store.Close()

	plan, err := render.BuildPlan(cat, store)
	if err != nil {
		return fail("could not build plan", err)
	}

	report := newPlanReport(s.Catalog, plan)
	if format != output.FormatText {
		return output.WriteStructured(cmd.OutOrStdout(), format, report)
	}

	tbl := output.NewTable("ID", "LAYER", "KIND", "ELEMENTS", "RARITY", "QUOTA")
	for _, l := range report.Layers {
		quota := "-"
		if l.Quota != nil {
			quota = strconv.Itoa(*l.Quota)
		}
		tbl.Row(strconv.Itoa(l.ID), l.Name, l.Kind, strconv.Itoa(l.Elements),
			strconv.FormatFloat(l.Rarity, 'g', -1, 64), quota)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, tbl.String())
	fmt.Fprintf(w, "%d optional combos x %d required bundles\n", report.OptionalCombos, report.Bundles)
	fmt.Fprintf(w, "%d new combos, %d already cached, maxCombos %d\n", report.NewCombos, report.Cached, report.MaxCombos)
	return nil
}

func newPlanReport(catalogPath string, plan *render.Plan) *planReport {
	r := &planReport{
		Catalog:        catalogPath,
		OptionalCombos: plan.OptionalCombos,
		Bundles:        plan.Bundles,
		Groups:         plan.Groups,
		NewCombos:      plan.Combos,
		MaxCombos:      plan.MaxCombos,
		Cached:         plan.Cached,
	}
	for _, lp := range plan.Layers {
		pl := planLayer{
			ID:       int(lp.Layer.ID),
			Name:     lp.Layer.Name,
			Kind:     "optional",
			Elements: len(lp.Layer.Elements),
			Rarity:   lp.Layer.Rarity,
		}
		if lp.Required {
			pl.Kind = "required"
		}
		if lp.Limit >= 0 {
			limit := lp.Limit
			pl.Quota = &limit
		}
		r.Layers = append(r.Layers, pl)
	}
	return r
}
