package scenario

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/gobwas/glob"

	"github.com/entrhq/dirtycheck/pkg/browser"
	"github.com/entrhq/dirtycheck/pkg/logging"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("scenario")
	if err != nil {
		debugLog.Warnf("Failed to initialize scenario logger, using stderr fallback: %v", err)
	}
}

// Console is the capture facility reset around every scenario.
type Console interface {
	Entries(levels ...string) []browser.ConsoleEntry
	Reset()
}

// Snapshotter captures markup for failure reports.
type Snapshotter interface {
	Snapshot(ctx context.Context, selector string) (string, error)
}

// Runner executes groups strictly in order.
type Runner struct {
	filter        glob.Glob
	console       Console
	snapshotter   Snapshotter
	snapshotOf    string
	consoleLevels []string
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner) error

// WithFilter runs only scenarios whose slash-separated full name matches the
// glob pattern, e.g. "*/Multi-entity edit/*".
func WithFilter(pattern string) RunnerOption {
	return func(r *Runner) error {
		if pattern == "" {
			return nil
		}
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return fmt.Errorf("invalid filter %q: %w", pattern, err)
		}
		r.filter = g
		return nil
	}
}

// WithConsole records console output per scenario at the given levels
// (warning and error when none are given).
func WithConsole(c Console, levels ...string) RunnerOption {
	return func(r *Runner) error {
		r.console = c
		if len(levels) > 0 {
			r.consoleLevels = levels
		}
		return nil
	}
}

// WithSnapshots attaches the markup of selector to failed results.
func WithSnapshots(s Snapshotter, selector string) RunnerOption {
	return func(r *Runner) error {
		r.snapshotter = s
		r.snapshotOf = selector
		return nil
	}
}

// NewRunner creates a runner.
func NewRunner(opts ...RunnerOption) (*Runner, error) {
	r := &Runner{consoleLevels: []string{"warning", "error"}}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Run executes root and returns one result per selected scenario plus one
// per failing after-all hook.
func (r *Runner) Run(ctx context.Context, root *Group) []Result {
	return r.runGroup(ctx, root, "")
}

func (r *Runner) selected(name string) bool {
	return r.filter == nil || r.filter.Match(name)
}

// count returns how many scenarios below g the filter selects.
func (r *Runner) count(g *Group, prefix string) int {
	base := path.Join(prefix, g.Name)
	n := 0
	for _, s := range g.Scenarios {
		if r.selected(path.Join(base, s.Name)) {
			n++
		}
	}
	for _, child := range g.Groups {
		n += r.count(child, base)
	}
	return n
}

func (r *Runner) runGroup(ctx context.Context, g *Group, prefix string) []Result {
	base := path.Join(prefix, g.Name)
	if r.count(g, prefix) == 0 {
		return nil
	}

	if g.BeforeAll != nil {
		debugLog.Infof("%s: before all", base)
		if err := g.BeforeAll(ctx); err != nil {
			debugLog.Errorf("%s: before all failed: %v", base, err)
			results := r.skipGroup(g, prefix, fmt.Errorf("before all: %w", err))
			// A partial setup still needs tearing down
			return append(results, r.afterAll(ctx, g, base)...)
		}
		r.resetConsole()
	}

	var results []Result
	for _, s := range g.Scenarios {
		name := path.Join(base, s.Name)
		if !r.selected(name) {
			continue
		}
		results = append(results, r.runScenario(ctx, g, name, s))
	}
	for _, child := range g.Groups {
		results = append(results, r.runGroup(ctx, child, base)...)
	}

	return append(results, r.afterAll(ctx, g, base)...)
}

// afterAll runs the group's teardown and reports a failure as a result.
func (r *Runner) afterAll(ctx context.Context, g *Group, base string) []Result {
	if g.AfterAll == nil {
		return nil
	}
	debugLog.Infof("%s: after all", base)
	if err := g.AfterAll(ctx); err != nil {
		debugLog.Errorf("%s: after all failed: %v", base, err)
		return []Result{{
			Name:  path.Join(base, "after all"),
			Error: err.Error(),
		}}
	}
	return nil
}

func (r *Runner) runScenario(ctx context.Context, g *Group, name string, s Scenario) Result {
	debugLog.Infof("%s: running", name)
	r.resetConsole()

	start := time.Now()
	err := s.Run(ctx)

	var snapshot string
	if err != nil {
		snapshot = r.snapshot(ctx)
	}

	if g.AfterEach != nil {
		if hookErr := g.AfterEach(ctx); hookErr != nil {
			err = errors.Join(err, fmt.Errorf("after each: %w", hookErr))
		}
	}

	result := Result{
		Name:     name,
		Passed:   err == nil,
		Duration: time.Since(start),
		Snapshot: snapshot,
	}
	if err != nil {
		result.Error = err.Error()
		debugLog.Errorf("%s: failed: %v", name, err)
	} else {
		debugLog.Infof("%s: passed", name)
	}

	if r.console != nil {
		result.Console = r.console.Entries(r.consoleLevels...)
	}
	r.resetConsole()
	return result
}

func (r *Runner) snapshot(ctx context.Context) string {
	if r.snapshotter == nil {
		return ""
	}
	html, err := r.snapshotter.Snapshot(ctx, r.snapshotOf)
	if err != nil {
		debugLog.Warnf("snapshot of %q failed: %v", r.snapshotOf, err)
		return ""
	}
	return html
}

// skipGroup fails every selected scenario below g with cause.
func (r *Runner) skipGroup(g *Group, prefix string, cause error) []Result {
	base := path.Join(prefix, g.Name)
	var results []Result
	for _, s := range g.Scenarios {
		name := path.Join(base, s.Name)
		if !r.selected(name) {
			continue
		}
		results = append(results, Result{Name: name, Skipped: true, Error: cause.Error()})
	}
	for _, child := range g.Groups {
		results = append(results, r.skipGroup(child, base, cause)...)
	}
	return results
}

func (r *Runner) resetConsole() {
	if r.console != nil {
		r.console.Reset()
	}
}

// Passed reports whether every result passed.
func Passed(results []Result) bool {
	for _, res := range results {
		if !res.Passed {
			return false
		}
	}
	return true
}
