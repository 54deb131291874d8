package output

import (
	"fmt"
	"strings"
)

// ConfidenceBar renders a bar for a 0-1 confidence value.
// Example: "████████░░ 85%"
func ConfidenceBar(confidence float64, width int) string {
	if width <= 0 {
		width = 10
	}
	filled := int(confidence*float64(width) + 0.5)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	var style func(string) string
	switch {
	case confidence >= 0.9:
		style = func(s string) string { return StyleSuccess.Render(s) }
	case confidence >= 0.75:
		style = func(s string) string { return StyleWarning.Render(s) }
	default:
		style = func(s string) string { return StyleMuted.Render(s) }
	}

	return fmt.Sprintf("%s %s", style(bar), StyleMuted.Render(fmt.Sprintf("%.0f%%", confidence*100)))
}

// Section prints a styled section header with a horizontal rule.
func Section(title string) string {
	header := StyleHeader.Render(title)
	rule := StyleMuted.Render(strings.Repeat("─", 66))
	return fmt.Sprintf("\n %s\n %s", header, rule)
}
