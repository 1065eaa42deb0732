// Package report turns scenario results into artifacts and terminal output.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/entrhq/dirtycheck/pkg/scenario"
)

// Summary is the outcome of one run.
type Summary struct {
	RunID     string            `json:"run_id"`
	BaseURL   string            `json:"base_url,omitempty"`
	StartedAt time.Time         `json:"started_at"`
	Duration  time.Duration     `json:"duration"`
	Results   []scenario.Result `json:"results"`
	Counts    Counts            `json:"counts"`
}

// Counts tallies results by outcome.
type Counts struct {
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// NewSummary builds a summary for results of a run that began at start.
func NewSummary(runID string, start time.Time, results []scenario.Result) *Summary {
	s := &Summary{
		RunID:     runID,
		StartedAt: start,
		Duration:  time.Since(start),
		Results:   results,
	}
	for _, r := range results {
		switch {
		case r.Skipped:
			s.Counts.Skipped++
		case r.Passed:
			s.Counts.Passed++
		default:
			s.Counts.Failed++
		}
	}
	return s
}

// Passed reports whether every result passed.
func (s *Summary) Passed() bool {
	return scenario.Passed(s.Results)
}

// Failures returns the results that did not pass.
func (s *Summary) Failures() []scenario.Result {
	var out []scenario.Result
	for _, r := range s.Results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}

// Writer writes run artifacts into a directory
type Writer struct {
	outputDir string
}

// NewWriter creates a new artifact writer
func NewWriter(outputDir string) *Writer {
	return &Writer{outputDir: outputDir}
}

// WriteAll writes the JSON report and the markdown summary
func (w *Writer) WriteAll(summary *Summary) error {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := w.WriteJSON(summary); err != nil {
		return fmt.Errorf("failed to write report JSON: %w", err)
	}

	if err := w.WriteMarkdown(summary); err != nil {
		return fmt.Errorf("failed to write summary markdown: %w", err)
	}

	return nil
}

// WriteJSON writes the full summary as report.json
func (w *Writer) WriteJSON(summary *Summary) error {
	path := filepath.Join(w.outputDir, "report.json")

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	if writeErr := os.WriteFile(path, data, 0600); writeErr != nil {
		return fmt.Errorf("failed to write %s: %w", path, writeErr)
	}
	return nil
}

// WriteMarkdown writes a human-readable summary.md
func (w *Writer) WriteMarkdown(summary *Summary) error {
	path := filepath.Join(w.outputDir, "summary.md")

	if writeErr := os.WriteFile(path, []byte(Markdown(summary)), 0600); writeErr != nil {
		return fmt.Errorf("failed to write %s: %w", path, writeErr)
	}
	return nil
}

// Markdown renders the summary as markdown.
func Markdown(summary *Summary) string {
	var md strings.Builder

	md.WriteString("# Dirty State Check\n\n")
	md.WriteString(fmt.Sprintf("**Run:** %s\n\n", summary.RunID))
	if summary.BaseURL != "" {
		md.WriteString(fmt.Sprintf("**Site:** %s\n\n", summary.BaseURL))
	}
	md.WriteString(fmt.Sprintf("**Started:** %s\n\n", summary.StartedAt.Format(time.RFC3339)))
	md.WriteString(fmt.Sprintf("**Duration:** %s\n\n", summary.Duration.Round(time.Millisecond)))
	md.WriteString(fmt.Sprintf("**Passed:** %d, **Failed:** %d, **Skipped:** %d\n\n",
		summary.Counts.Passed, summary.Counts.Failed, summary.Counts.Skipped))

	md.WriteString("## Scenarios\n\n")
	for _, r := range summary.Results {
		md.WriteString(fmt.Sprintf("%s %s\n", mark(r), r.Name))
		if r.Error != "" {
			md.WriteString(fmt.Sprintf("   Error: %s\n", r.Error))
		}
		for _, c := range r.Console {
			md.WriteString(fmt.Sprintf("   Console %s: %s\n", c.Level, c.Text))
		}
	}
	md.WriteString("\n")

	for _, r := range summary.Failures() {
		if r.Snapshot == "" {
			continue
		}
		md.WriteString(fmt.Sprintf("### Snapshot: %s\n\n```html\n%s\n```\n\n", r.Name, r.Snapshot))
	}

	return md.String()
}

func mark(r scenario.Result) string {
	switch {
	case r.Skipped:
		return "⏭️"
	case r.Passed:
		return "✅"
	default:
		return "❌"
	}
}
