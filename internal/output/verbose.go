package output

import (
	"fmt"
	"io"
	"strings"
)

// VerboseOptions controls pass report output.
type VerboseOptions struct {
	// Format selects text, JSON or YAML.
	Format OutputFormat
	// Combos lists every attempt in text mode, not just the failures.
	Combos bool
	// Writer is the output destination
	Writer io.Writer
}

// PassReport is the structured summary of a render pass.
type PassReport struct {
	Catalog      string         `json:"catalog" yaml:"catalog"`
	DryRun       bool           `json:"dryRun,omitempty" yaml:"dryRun,omitempty"`
	Possible     int            `json:"possible" yaml:"possible"`
	MaxCombos    int            `json:"maxCombos" yaml:"maxCombos"`
	ShortCircuit bool           `json:"shortCircuit,omitempty" yaml:"shortCircuit,omitempty"`
	Rendered     int            `json:"rendered" yaml:"rendered"`
	Planned      int            `json:"planned,omitempty" yaml:"planned,omitempty"`
	Cached       int            `json:"cached" yaml:"cached"`
	OverQuota    int            `json:"overQuota" yaml:"overQuota"`
	Failed       int            `json:"failed" yaml:"failed"`
	Quota        map[string]int `json:"quota,omitempty" yaml:"quota,omitempty"`
	Combos       []ComboReport  `json:"combos,omitempty" yaml:"combos,omitempty"`
	Warnings     []string       `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Elapsed      string         `json:"elapsed" yaml:"elapsed"`
}

// ComboReport is one attempt of a pass.
type ComboReport struct {
	Num         int     `json:"num" yaml:"num"`
	Combo       string  `json:"combo" yaml:"combo"`
	Fingerprint string  `json:"fingerprint" yaml:"fingerprint"`
	Status      string  `json:"status" yaml:"status"`
	Rarity      float64 `json:"rarity,omitempty" yaml:"rarity,omitempty"`
	Key         string  `json:"key,omitempty" yaml:"key,omitempty"`
	Error       string  `json:"error,omitempty" yaml:"error,omitempty"`
}

// WritePassReport writes a pass report in the requested format.
func WritePassReport(report *PassReport, opts VerboseOptions) error {
	if opts.Format == FormatJSON || opts.Format == FormatYAML {
		return WriteStructured(opts.Writer, opts.Format, report)
	}
	return writePassReportHuman(report, opts)
}

func writePassReportHuman(report *PassReport, opts VerboseOptions) error {
	var sb strings.Builder

	title := "Render pass"
	if report.DryRun {
		title = "Dry run"
	}
	sb.WriteString(StyleSummary.Render(title) + " " + StyleNoun.Render(report.Catalog) + "\n")
	sb.WriteString(fmt.Sprintf("  Possible:   %d (budget %d)\n", report.Possible, report.MaxCombos))
	if report.ShortCircuit {
		sb.WriteString("  Nothing new to render.\n")
	}

	if opts.Combos {
		for _, c := range report.Combos {
			sb.WriteString("  " + FormatComboLine(c.Num, c.Combo, c.Status) + "\n")
		}
	} else {
		for _, c := range report.Combos {
			if c.Status == StatusFailed {
				sb.WriteString("  " + FormatComboLine(c.Num, c.Combo, c.Status) + "\n")
				sb.WriteString("    " + StyleDim.Render(c.Error) + "\n")
			}
		}
	}

	if len(report.Warnings) > 0 {
		sb.WriteString("Warnings:\n")
		for _, w := range report.Warnings {
			sb.WriteString(fmt.Sprintf("  ⚠ %s\n", w))
		}
	}

	done := report.Rendered
	verb := "rendered"
	if report.DryRun {
		done, verb = report.Planned, "planned"
	}
	sb.WriteString(FormatCheckmark(fmt.Sprintf("%d %s, %d cached, %d over quota, %d failed in %s",
		done, verb, report.Cached, report.OverQuota, report.Failed, report.Elapsed)) + "\n")

	_, err := io.WriteString(opts.Writer, sb.String())
	return err
}
