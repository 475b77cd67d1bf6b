// Package summarizer provides result summaries for comparison runs.
package summarizer

import "github.com/user/pixdiff/pkg/orchestrator"

// Summary is the machine-readable outcome of a comparison.
// The field names are part of the output contract.
type Summary struct {
	DiffCount      uint64  `json:"diffCount"`
	DiffPercentage float64 `json:"diffPercentage"`
	Identical      bool    `json:"identical"`
	Error          string  `json:"error,omitempty"`
}

// FromRunResult builds a Summary from a pipeline run.
func FromRunResult(result orchestrator.RunResult) *Summary {
	return &Summary{
		DiffCount:      result.DiffCount,
		DiffPercentage: result.DiffPercentage,
		Identical:      result.Identical,
	}
}

// FromError builds a Summary describing a failed run.
func FromError(err error) *Summary {
	return &Summary{
		Error: err.Error(),
	}
}
