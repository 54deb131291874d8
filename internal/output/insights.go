package output

import (
	"fmt"
	"strings"

	"github.com/blackwell-systems/laborwatch/internal/insight"
)

const dateLayout = "2006-01-02"

// InsightTable summarizes insights one per row.
func InsightTable(insights []insight.Insight) *Table {
	tbl := NewTable("Date", "Category", "Region", "Function", "Confidence", "Signal")
	for _, in := range insights {
		tbl.AddRow(
			in.CreatedAt.Format(dateLayout),
			CategoryStyle(in.Category).Render(string(in.Category)),
			in.Region,
			in.Function,
			fmt.Sprintf("%.0f%%", in.Confidence*100),
			truncate(in.Signal, 60),
		)
	}
	return tbl
}

// RenderInsight renders one insight as a labeled card.
func RenderInsight(in insight.Insight) string {
	var sb strings.Builder

	sb.WriteString(" ")
	sb.WriteString(CategoryStyle(in.Category).Render(in.Category.Label()))
	sb.WriteString("  ")
	sb.WriteString(StyleMuted.Render(fmt.Sprintf("%s · %s · %s", in.Company, in.Region, in.Function)))
	if in.Initiative != "" {
		sb.WriteString(StyleMuted.Render(" · " + in.Initiative))
	}
	sb.WriteString("\n")

	writeField(&sb, "Signal", in.Signal)
	writeField(&sb, "Interpretation", in.Interpretation)
	writeField(&sb, "Recommendation", in.Recommendation)
	writeField(&sb, "Confidence", ConfidenceBar(in.Confidence, 10))
	writeField(&sb, "Sources", strings.Join(in.Sources, ", "))
	if in.RuleID != "" {
		writeField(&sb, "Rule", in.RuleID)
	}
	writeField(&sb, "Created", in.CreatedAt.Format("2006-01-02 15:04 MST"))
	return sb.String()
}

func writeField(sb *strings.Builder, label, value string) {
	sb.WriteString("   ")
	sb.WriteString(StyleMuted.Render(fmt.Sprintf("%-15s", label)))
	sb.WriteString(value)
	sb.WriteString("\n")
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
