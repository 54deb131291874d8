// Package output provides styled terminal rendering helpers for laborwatch.
package output

import (
	"os"

	"github.com/blackwell-systems/laborwatch/internal/insight"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Color constants for consistent styling across the CLI.
var (
	// ColorPrimary is used for headers and emphasis.
	ColorPrimary = lipgloss.Color("#64b5f6")

	// ColorSuccess is used for strong confidence.
	ColorSuccess = lipgloss.Color("#66bb6a")

	// ColorError is used for failures.
	ColorError = lipgloss.Color("#ef5350")

	// ColorWarning is used for caution indicators.
	ColorWarning = lipgloss.Color("#fff59d")

	// ColorMuted is used for secondary text and borders.
	ColorMuted = lipgloss.Color("#888888")

	// ColorWhite is used for primary text.
	ColorWhite = lipgloss.Color("#ffffff")
)

// categoryColors gives each insight category a distinct accent.
var categoryColors = map[insight.Category]lipgloss.Color{
	insight.CategoryExecutiveTalent: lipgloss.Color("#ba68c8"),
	insight.CategoryWagePressure:    lipgloss.Color("#ffb74d"),
	insight.CategoryMacroEconomic:   lipgloss.Color("#4fc3f7"),
	insight.CategoryTalentSupply:    lipgloss.Color("#81c784"),
}

// Styles provides reusable lipgloss styles.
var (
	StyleHeader  lipgloss.Style
	StyleSuccess lipgloss.Style
	StyleError   lipgloss.Style
	StyleWarning lipgloss.Style
	StyleMuted   lipgloss.Style
	StyleBold    lipgloss.Style
	StyleLabel   lipgloss.Style
	StyleValue   lipgloss.Style
)

func init() {
	applyStyles(false)
}

func applyStyles(plain bool) {
	if plain {
		p := lipgloss.NewStyle()
		StyleHeader = p
		StyleSuccess = p
		StyleError = p
		StyleWarning = p
		StyleMuted = p
		StyleBold = p
		StyleLabel = p.Width(24)
		StyleValue = p.Width(12)
		return
	}
	StyleHeader = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleError = lipgloss.NewStyle().Foreground(ColorError)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)
	StyleMuted = lipgloss.NewStyle().Foreground(ColorMuted)
	StyleBold = lipgloss.NewStyle().Bold(true)
	StyleLabel = lipgloss.NewStyle().Width(24)
	StyleValue = lipgloss.NewStyle().Bold(true).Width(12)
}

// noColor tracks whether color output is disabled.
var noColor bool

// SetNoColor disables or enables color output globally.
func SetNoColor(disabled bool) {
	noColor = disabled
	applyStyles(disabled)
}

// IsNoColor returns whether color output is currently disabled.
func IsNoColor() bool {
	return noColor
}

// ConfigureColor disables color when requested, when NO_COLOR is set, or
// when stdout is not a terminal.
func ConfigureColor(disabled bool) {
	if disabled || os.Getenv("NO_COLOR") != "" || !isTerminal(os.Stdout) {
		SetNoColor(true)
	}
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// CategoryStyle returns the accent style for an insight category.
func CategoryStyle(c insight.Category) lipgloss.Style {
	if noColor {
		return lipgloss.NewStyle()
	}
	if col, ok := categoryColors[c]; ok {
		return lipgloss.NewStyle().Foreground(col).Bold(true)
	}
	return StyleBold
}
