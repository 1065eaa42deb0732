// Package scenario runs ordered browser scenarios with before/after hooks and
// defines the multi-entity dirty-state suite.
package scenario

import (
	"context"
	"fmt"
	"time"

	"github.com/entrhq/dirtycheck/pkg/browser"
)

// Hook runs around scenarios.
type Hook func(ctx context.Context) error

// Scenario is one named check.
type Scenario struct {
	Name string
	Run  func(ctx context.Context) error
}

// Group is a named set of scenarios and nested groups sharing hooks. Hooks
// that are nil are skipped.
type Group struct {
	Name      string
	BeforeAll Hook
	AfterAll  Hook
	AfterEach Hook

	Scenarios []Scenario
	Groups    []*Group
}

// Add appends a scenario and returns the group for chaining.
func (g *Group) Add(name string, run func(ctx context.Context) error) *Group {
	g.Scenarios = append(g.Scenarios, Scenario{Name: name, Run: run})
	return g
}

// Nest appends a child group and returns it.
func (g *Group) Nest(name string) *Group {
	child := &Group{Name: name}
	g.Groups = append(g.Groups, child)
	return child
}

// Result is the outcome of one scenario or of a failing group hook.
type Result struct {
	Name     string                 `json:"name"`
	Passed   bool                   `json:"passed"`
	Skipped  bool                   `json:"skipped,omitempty"`
	Error    string                 `json:"error,omitempty"`
	Duration time.Duration          `json:"duration"`
	Console  []browser.ConsoleEntry `json:"console,omitempty"`
	Snapshot string                 `json:"snapshot,omitempty"`
}

// AssertionError reports an observed value that differs from the expected one.
type AssertionError struct {
	What string
	Got  any
	Want any
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s: got %v, want %v", e.What, e.Got, e.Want)
}

// Expect returns an *AssertionError when got differs from want.
func Expect[T comparable](what string, got, want T) error {
	if got != want {
		return &AssertionError{What: what, Got: got, Want: want}
	}
	return nil
}
