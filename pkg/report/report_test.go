package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/dirtycheck/pkg/browser"
	"github.com/entrhq/dirtycheck/pkg/scenario"
)

const panelSnapshot = `<div class="entities-saved-states__panel">
	<script>window.__dirty = true;</script>
	<style>.x { color: red; }</style>
	<!-- list -->
	<div class="components-checkbox-control">
		<input type="checkbox" checked id="inspector-checkbox-control-1" onclick="x()">
		<label class="components-checkbox-control__label" for="inspector-checkbox-control-1">
			<strong>Test Template Name Edit</strong>
		</label>
	</div>
	<button type="button" class="editor-entities-saved-states__save-button" style="margin:0">Save</button>
</div>`

func sampleSummary() *Summary {
	results := []scenario.Result{
		{Name: "suite/loads clean", Passed: true, Duration: time.Second},
		{
			Name:     "suite/edit/parent only",
			Error:    "parent dirty: got false, want true",
			Console:  []browser.ConsoleEntry{{Level: "warning", Text: "deprecated"}},
			Snapshot: panelSnapshot,
		},
		{Name: "suite/edit/child only", Skipped: true, Error: "before all: boom"},
	}
	s := NewSummary("run-1", time.Now().Add(-2*time.Second), results)
	s.BaseURL = "http://localhost:8889"
	return s
}

func TestNewSummary_Counts(t *testing.T) {
	s := sampleSummary()

	assert.Equal(t, Counts{Passed: 1, Failed: 1, Skipped: 1}, s.Counts)
	assert.False(t, s.Passed())
	assert.Len(t, s.Failures(), 2)
	assert.GreaterOrEqual(t, s.Duration, 2*time.Second)
}

func TestWriter_WriteAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	s := sampleSummary()

	require.NoError(t, NewWriter(dir).WriteAll(s))

	data, err := os.ReadFile(filepath.Join(dir, "report.json"))
	require.NoError(t, err)
	var decoded Summary
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "run-1", decoded.RunID)
	assert.Equal(t, s.Counts, decoded.Counts)
	require.Len(t, decoded.Results, 3)
	assert.Equal(t, "deprecated", decoded.Results[1].Console[0].Text)

	md, err := os.ReadFile(filepath.Join(dir, "summary.md"))
	require.NoError(t, err)
	assert.Contains(t, string(md), "**Passed:** 1, **Failed:** 1, **Skipped:** 1")
	assert.Contains(t, string(md), "❌ suite/edit/parent only")
	assert.Contains(t, string(md), "### Snapshot: suite/edit/parent only")
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleSummary()))

	out := buf.String()
	assert.Contains(t, out, "suite › loads clean")
	assert.Contains(t, out, "parent dirty: got false, want true")
	assert.Contains(t, out, "console warning: deprecated")
	assert.Contains(t, out, "1 passed")
}

func TestCleanSnapshot(t *testing.T) {
	cleaned, err := CleanSnapshot(panelSnapshot, 0)
	require.NoError(t, err)

	assert.False(t, cleaned.Truncated)
	assert.Equal(t, []string{"Test Template Name Edit"}, cleaned.Labels)
	for _, want := range []string{
		`<div class="entities-saved-states__panel">`,
		`type="checkbox"`,
		`checked=""`,
		`<strong>Test Template Name Edit</strong>`,
		`class="editor-entities-saved-states__save-button"`,
	} {
		assert.Contains(t, cleaned.HTML, want)
	}
	for _, unwanted := range []string{"<script", "__dirty", "<style", "color: red", "list", "onclick", "margin:0"} {
		assert.NotContains(t, cleaned.HTML, unwanted)
	}
}

func TestCleanSnapshot_Truncates(t *testing.T) {
	raw := "<p>" + strings.Repeat("word ", 100) + "</p>"

	cleaned, err := CleanSnapshot(raw, 50)
	require.NoError(t, err)
	assert.True(t, cleaned.Truncated)
	assert.Contains(t, cleaned.HTML, "wo...")
	assert.Less(t, len(cleaned.HTML), 80)
}

func TestHighlight(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Highlight(&buf, `<strong class="x">Header</strong>`))
	assert.Contains(t, buf.String(), "Header")
	assert.Contains(t, buf.String(), "\x1b[", "expected terminal escapes")
}

func TestRenderSnapshots_OnlyFailures(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderSnapshots(&buf, sampleSummary(), 0))

	out := buf.String()
	assert.Contains(t, out, "snapshot: suite/edit/parent only")
	assert.NotContains(t, out, "window.__dirty")
}

func TestDigest(t *testing.T) {
	digest := Digest(sampleSummary())
	assert.Contains(t, digest, "run run-1: 2 of 3 scenarios failed")
	assert.Contains(t, digest, "- suite/edit/parent only\n  parent dirty: got false, want true")

	passing := NewSummary("run-2", time.Now(), []scenario.Result{{Name: "a", Passed: true}})
	assert.Equal(t, "run run-2: all 1 scenarios passed\n", Digest(passing))
}

func TestCopyToClipboard(t *testing.T) {
	original := writeClipboard
	t.Cleanup(func() { writeClipboard = original })

	var copied string
	writeClipboard = func(text string) error {
		copied = text
		return nil
	}
	require.NoError(t, CopyToClipboard(sampleSummary()))
	assert.Equal(t, Digest(sampleSummary()), copied)

	writeClipboard = func(string) error { return errors.New("no display") }
	assert.ErrorContains(t, CopyToClipboard(sampleSummary()), "no display")
}
