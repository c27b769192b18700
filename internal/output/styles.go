package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette: named constants for all ANSI 256 colors used in the CLI.
// Never use inline lipgloss.Color literals elsewhere.
var (
	// ColorCyan is used for identifiable nouns: layer names, combo numbers, paths.
	ColorCyan = lipgloss.Color("14")

	// ColorGreen is used for the "rendered" combo status.
	ColorGreen = lipgloss.Color("82")

	// ColorYellow is used for the "over quota" combo status.
	ColorYellow = lipgloss.Color("220")

	// ColorBoldRed is used for the "failed" combo status (matches ERROR level).
	ColorBoldRed = lipgloss.Color("204")

	// ColorGreenCheck is used for the completion checkmark (✔).
	ColorGreenCheck = lipgloss.Color("10")

	// ColorDimGray is used for borders and other structural chrome.
	ColorDimGray = lipgloss.Color("240")

	// ColorBlue is used for table headers.
	ColorBlue = lipgloss.Color("12")
)

// Semantic styles map domain concepts to visual presentation.
var (
	// StyleNoun styles identifiable nouns (layer names, combo numbers, paths).
	StyleNoun = lipgloss.NewStyle().Foreground(ColorCyan)

	// StyleAction styles action verbs (rendering, flushing).
	StyleAction = lipgloss.NewStyle().Bold(true)

	// StyleDim styles structural chrome (scope prefixes, separators, timestamps).
	StyleDim = lipgloss.NewStyle().Faint(true)

	// StyleSummary styles completion and summary lines.
	StyleSummary = lipgloss.NewStyle().Bold(true)
)

// Combo status constants, one per render outcome.
const (
	StatusRendered  = "rendered"
	StatusCached    = "cached"
	StatusOverQuota = "over quota"
	StatusFailed    = "failed"
	StatusPlanned   = "planned"
)

// StatusStyle returns the lipgloss style for a combo status.
// Unknown statuses return an unstyled default.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case StatusRendered, StatusPlanned:
		return lipgloss.NewStyle().Foreground(ColorGreen)
	case StatusOverQuota:
		return lipgloss.NewStyle().Foreground(ColorYellow)
	case StatusCached:
		return lipgloss.NewStyle().Faint(true)
	case StatusFailed:
		return lipgloss.NewStyle().Bold(true).Foreground(ColorBoldRed)
	default:
		return lipgloss.NewStyle()
	}
}

// minComboColumnWidth keeps status words aligned across combo lines.
const minComboColumnWidth = 40

// FormatComboLine renders a combo with a right-aligned, color-coded status.
//
// Format: c:<num> <assignments>  <status>
func FormatComboLine(num int, assignments, status string) string {
	body := fmt.Sprintf("%d %s", num, assignments)

	padding := minComboColumnWidth - len(body)
	if padding < 2 {
		padding = 2
	}

	return StyleDim.Render("c:") + StyleNoun.Render(body) + strings.Repeat(" ", padding) + StatusStyle(status).Render(status)
}

// FormatCheckmark renders a green checkmark with a message for stdout output.
func FormatCheckmark(msg string) string {
	check := lipgloss.NewStyle().Foreground(ColorGreenCheck).Render("✔")
	return check + " " + msg
}

// FormatVetCheck renders a validation line: a checkmark, the label and a
// dim detail column.
func FormatVetCheck(label, detail string) string {
	line := FormatCheckmark(label)
	if detail == "" {
		return line
	}
	padding := 34 - len(label)
	if padding < 2 {
		padding = 2
	}
	return line + strings.Repeat(" ", padding) + StyleDim.Render(detail)
}

// Styles groups the styles used by diff rendering.
type Styles struct {
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Noun    lipgloss.Style
	Dim     lipgloss.Style
}

// GetStyles returns the colored style set.
func GetStyles() *Styles {
	return &Styles{
		Success: lipgloss.NewStyle().Foreground(ColorGreen),
		Warning: lipgloss.NewStyle().Foreground(ColorYellow),
		Error:   lipgloss.NewStyle().Foreground(ColorBoldRed),
		Noun:    StyleNoun,
		Dim:     StyleDim,
	}
}

// NoColorStyles returns a style set that renders text unchanged.
func NoColorStyles() *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{Success: plain, Warning: plain, Error: plain, Noun: plain, Dim: plain}
}
