package report

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
)

// writeClipboard is replaced in tests.
var writeClipboard = func(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("clipboard is not supported on this system")
	}
	return clipboard.WriteAll(text)
}

// Digest is a plain-text list of failures suitable for pasting into an issue.
func Digest(summary *Summary) string {
	failures := summary.Failures()
	if len(failures) == 0 {
		return fmt.Sprintf("run %s: all %d scenarios passed\n", summary.RunID, len(summary.Results))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "run %s: %d of %d scenarios failed\n", summary.RunID, len(failures), len(summary.Results))
	for _, r := range failures {
		fmt.Fprintf(&b, "- %s\n  %s\n", r.Name, r.Error)
	}
	return b.String()
}

// CopyToClipboard places the failure digest on the system clipboard.
func CopyToClipboard(summary *Summary) error {
	if err := writeClipboard(Digest(summary)); err != nil {
		return fmt.Errorf("failed to copy report: %w", err)
	}
	return nil
}
