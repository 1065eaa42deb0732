package report

import (
	"fmt"
	"io"

	"github.com/alecthomas/chroma/v2/quick"
)

// Highlight writes markup with terminal syntax colouring.
func Highlight(w io.Writer, markup string) error {
	if err := quick.Highlight(w, markup, "html", "terminal256", "monokai"); err != nil {
		return fmt.Errorf("failed to highlight snapshot: %w", err)
	}
	return nil
}

// RenderSnapshots cleans and highlights the snapshot of every failed result.
func RenderSnapshots(w io.Writer, summary *Summary, maxLength int) error {
	for _, r := range summary.Failures() {
		if r.Snapshot == "" {
			continue
		}
		cleaned, err := CleanSnapshot(r.Snapshot, maxLength)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, headerStyle.Render("snapshot: "+r.Name)); err != nil {
			return err
		}
		if err := Highlight(w, cleaned.HTML); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
