package summarizer

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Formatter defines the interface for formatting a Summary.
type Formatter interface {
	// Format converts a Summary to a formatted string.
	Format(summary *Summary) string
}

// FormatFunc is a function adapter for the Formatter interface.
type FormatFunc func(summary *Summary) string

// Format implements the Formatter interface.
func (f FormatFunc) Format(summary *Summary) string {
	return f(summary)
}

// NewJSONFormatter returns a Formatter producing a single-line JSON
// object.
func NewJSONFormatter() Formatter {
	return FormatFunc(func(summary *Summary) string {
		data, err := json.Marshal(summary)
		if err != nil {
			return fmt.Sprintf(`{"error":%q}`, err.Error())
		}
		return string(data)
	})
}

// NewTextFormatter returns a Formatter producing a human-readable
// multi-line report.
func NewTextFormatter() Formatter {
	return FormatFunc(func(summary *Summary) string {
		if summary.Error != "" {
			return fmt.Sprintf("Error: %s", summary.Error)
		}
		var b strings.Builder
		fmt.Fprintf(&b, "Diff count: %d\n", summary.DiffCount)
		fmt.Fprintf(&b, "Diff percentage: %.4f%%\n", summary.DiffPercentage)
		fmt.Fprintf(&b, "Identical: %t", summary.Identical)
		return b.String()
	})
}
