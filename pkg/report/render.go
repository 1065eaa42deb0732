package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/dirtycheck/pkg/scenario"
)

var (
	salmonPink = lipgloss.Color("#FFB3BA")
	mintGreen  = lipgloss.Color("#A8E6CF")
	mutedGray  = lipgloss.Color("#6B7280")
	errorRed   = lipgloss.Color("203")
)

var (
	headerStyle  = lipgloss.NewStyle().Foreground(salmonPink).Bold(true)
	passStyle    = lipgloss.NewStyle().Foreground(mintGreen)
	failStyle    = lipgloss.NewStyle().Foreground(errorRed).Bold(true)
	skipStyle    = lipgloss.NewStyle().Foreground(mutedGray)
	detailStyle  = lipgloss.NewStyle().Foreground(mutedGray).PaddingLeft(4)
	summaryStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(salmonPink).
			Padding(0, 1)
)

// Render writes a styled result listing followed by a totals box.
func Render(w io.Writer, summary *Summary) error {
	lines := []string{headerStyle.Render("Multi-entity dirty state")}
	for _, r := range summary.Results {
		lines = append(lines, resultLine(r))
		if r.Error != "" {
			lines = append(lines, detailStyle.Render(r.Error))
		}
		for _, c := range r.Console {
			lines = append(lines, detailStyle.Render(fmt.Sprintf("console %s: %s", c.Level, c.Text)))
		}
	}

	totals := fmt.Sprintf("%d passed  %d failed  %d skipped  in %s",
		summary.Counts.Passed, summary.Counts.Failed, summary.Counts.Skipped,
		summary.Duration.Round(time.Millisecond))
	border := mintGreen
	if !summary.Passed() {
		border = errorRed
	}
	lines = append(lines, "", summaryStyle.BorderForeground(border).Render(totals))

	_, err := fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, lines...))
	return err
}

func resultLine(r scenario.Result) string {
	name := strings.ReplaceAll(r.Name, "/", " › ")
	switch {
	case r.Skipped:
		return skipStyle.Render("- " + name)
	case r.Passed:
		return passStyle.Render("✓ " + name)
	default:
		return failStyle.Render("✗ " + name)
	}
}
