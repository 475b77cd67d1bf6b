package summarizer

import (
	"errors"
	"strings"
	"testing"

	"github.com/user/pixdiff/pkg/mocks"
	"github.com/user/pixdiff/pkg/orchestrator"
)

func TestFromRunResult(t *testing.T) {
	summary := FromRunResult(orchestrator.RunResult{
		DiffCount:      42,
		DiffPercentage: 1.5,
		Identical:      false,
	})
	if summary.DiffCount != 42 || summary.DiffPercentage != 1.5 || summary.Identical {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if summary.Error != "" {
		t.Errorf("expected no error, got %q", summary.Error)
	}
}

func TestFromError(t *testing.T) {
	summary := FromError(errors.New("boom"))
	if summary.Error != "boom" {
		t.Errorf("expected boom, got %q", summary.Error)
	}
}

func TestJSONFormatter(t *testing.T) {
	f := NewJSONFormatter()

	got := f.Format(&Summary{DiffCount: 3, DiffPercentage: 0.75, Identical: false})
	want := `{"diffCount":3,"diffPercentage":0.75,"identical":false}`
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}

	// The error field only appears on failure.
	got = f.Format(&Summary{Error: "bad input"})
	want = `{"diffCount":0,"diffPercentage":0,"identical":false,"error":"bad input"}`
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
	if strings.Contains(got, "\n") {
		t.Error("expected single-line JSON")
	}
}

func TestTextFormatter(t *testing.T) {
	f := NewTextFormatter()

	got := f.Format(&Summary{DiffCount: 7, DiffPercentage: 12.3456, Identical: false})
	if !strings.Contains(got, "Diff count: 7") {
		t.Errorf("missing diff count in %q", got)
	}
	if !strings.Contains(got, "Diff percentage: 12.3456%") {
		t.Errorf("missing percentage in %q", got)
	}
	if !strings.Contains(got, "Identical: false") {
		t.Errorf("missing identical flag in %q", got)
	}

	if got := f.Format(&Summary{Error: "boom"}); got != "Error: boom" {
		t.Errorf("expected Error: boom, got %q", got)
	}
}

func TestMarkdownFormatter(t *testing.T) {
	f := NewMarkdownFormatter()

	got := f.Format(&Summary{DiffCount: 9, DiffPercentage: 0.5, Identical: false})
	if !strings.HasPrefix(got, "## Comparison Result") {
		t.Errorf("missing heading in %q", got)
	}
	if !strings.Contains(got, "| Differing pixels | 9 |") {
		t.Errorf("missing pixel row in %q", got)
	}

	got = f.Format(&Summary{Error: "boom"})
	if !strings.Contains(got, "**Error:** boom") {
		t.Errorf("missing error in %q", got)
	}
}

func TestWriter(t *testing.T) {
	fs := mocks.NewFileSystem()
	w := NewWriter(fs, NewJSONFormatter())

	if err := w.Write("out/summary.json", &Summary{Identical: true}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data, ok := fs.GetFile("out/summary.json")
	if !ok {
		t.Fatal("expected the summary file to be written")
	}
	if !strings.HasSuffix(string(data), "\n") {
		t.Error("expected a trailing newline")
	}
	if !strings.Contains(string(data), `"identical":true`) {
		t.Errorf("unexpected content %q", data)
	}
}

func TestWriter_Failure(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.WriteFileFunc = func(path string, data []byte) error {
		return errors.New("disk full")
	}
	w := NewWriter(fs, NewTextFormatter())
	if err := w.Write("summary.txt", &Summary{}); err == nil {
		t.Error("expected a write error to propagate")
	}
}
