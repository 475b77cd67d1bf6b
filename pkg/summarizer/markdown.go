package summarizer

import (
	"fmt"
	"strings"
)

// NewMarkdownFormatter returns a Formatter producing a Markdown report
// suitable for CI job summaries.
func NewMarkdownFormatter() Formatter {
	return FormatFunc(func(summary *Summary) string {
		var b strings.Builder

		b.WriteString("## Comparison Result\n\n")

		if summary.Error != "" {
			fmt.Fprintf(&b, "**Error:** %s\n", summary.Error)
			return b.String()
		}

		b.WriteString("| Metric | Value |\n")
		b.WriteString("|--------|-------|\n")
		fmt.Fprintf(&b, "| Differing pixels | %d |\n", summary.DiffCount)
		fmt.Fprintf(&b, "| Difference | %.4f%% |\n", summary.DiffPercentage)
		fmt.Fprintf(&b, "| Identical | %t |\n", summary.Identical)

		return b.String()
	})
}
