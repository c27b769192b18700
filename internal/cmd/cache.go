package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opmodel/combogen/internal/cache"
	oerrors "github.com/opmodel/combogen/internal/errors"
	"github.com/opmodel/combogen/internal/output"
)

// NewCacheCmd creates the cache command group.
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the combo fingerprint cache",
	}

	cmd.AddCommand(newCacheStatsCmd())
	cmd.AddCommand(newCacheDiffCmd())
	return cmd
}

type cacheStatsOptions struct {
	passFlags
	output string
}

type cacheStatsReport struct {
	Driver      string  `json:"driver" yaml:"driver"`
	Entries     int     `json:"entries" yaml:"entries"`
	Constrained int     `json:"constrained" yaml:"constrained"`
	Min         float64 `json:"min" yaml:"min"`
	Max         float64 `json:"max" yaml:"max"`
	Mean        float64 `json:"mean" yaml:"mean"`
}

func newCacheStatsCmd() *cobra.Command {
	opts := &cacheStatsOptions{}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the recorded combos",
		Long: `Summarize the fingerprint cache of a build directory.

Reports how many combos were rendered so far, how many of them use a
rarity-constrained layer, and the spread of the recorded rarity products.

Examples:
  combogen cache stats
  combogen cache stats --cache-driver sqlite -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheStats(cmd, opts)
		},
	}

	opts.bindStorage(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "text", "Output format: text, json, yaml")
	return cmd
}

func runCacheStats(cmd *cobra.Command, opts *cacheStatsOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	format, ok := output.ParseOutputFormat(opts.output)
	if !ok {
		return &ExitError{Code: ExitValidationError, Err: fmt.Errorf("invalid output format %q (valid: %s)", opts.output, strings.Join(output.ValidFormats(), ", "))}
	}

	s, err := resolveSettings(cmd, &opts.passFlags, "")
	if err != nil {
		return fail("invalid settings", err)
	}
	_, store, err := openStores(ctx, s)
	if err != nil {
		return fail("could not open stores", err)
	}
	defer store.Close()

	st := cache.Summarize(store)
	report := cacheStatsReport{
		Driver:      s.CacheDriver,
		Entries:     st.Entries,
		Constrained: st.Constrained,
		Min:         st.Min,
		Max:         st.Max,
		Mean:        st.Mean,
	}
	if format != output.FormatText {
		return output.WriteStructured(cmd.OutOrStdout(), format, report)
	}

	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 4, 64) }
	tbl := output.NewTable("DRIVER", "ENTRIES", "CONSTRAINED", "MIN", "MAX", "MEAN").
		Row(report.Driver, strconv.Itoa(report.Entries), strconv.Itoa(report.Constrained),
			f(report.Min), f(report.Max), f(report.Mean))
	fmt.Fprintln(cmd.OutOrStdout(), tbl.String())
	return nil
}

func newCacheDiffCmd() *cobra.Command {
	var detail bool

	cmd := &cobra.Command{
		Use:   "diff <old> <new>",
		Short: "Compare two metadata documents",
		Long: `Compare two metadata documents written by the json cache driver.

Lists fingerprints that were added, removed or recorded with a different
rarity. With --detail the full structural report is printed as well.

Examples:
  combogen cache diff backup/_metadata.json Builds/_metadata.json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheDiff(cmd, args[0], args[1], detail)
		},
	}

	cmd.Flags().BoolVar(&detail, "detail", false, "Print the full structural report")
	return cmd
}

func runCacheDiff(cmd *cobra.Command, oldPath, newPath string, detail bool) error {
	oldData, err := readMetadata(oldPath)
	if err != nil {
		return fail("could not read metadata", err)
	}
	newData, err := readMetadata(newPath)
	if err != nil {
		return fail("could not read metadata", err)
	}

	useColor := output.IsTTY()
	diff, err := output.DiffMetadata(oldPath, oldData, newPath, newData, useColor)
	if err != nil {
		return fail("could not compare metadata", err)
	}

	styles := output.NoColorStyles()
	if useColor {
		styles = output.GetStyles()
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, diff.Render(styles))
	if detail && diff.Report != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, output.IndentDiff(diff.Report, "  "))
	}
	return nil
}

func readMetadata(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, oerrors.NewNotFoundError("metadata document not found", path, "")
	}
	return data, err
}
