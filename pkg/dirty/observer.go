package dirty

import (
	"context"
	"fmt"
	"time"

	"github.com/entrhq/dirtycheck/pkg/poll"
)

// Logger receives the observer's debug trace.
type Logger interface {
	Debugf(format string, v ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}

// Observer answers whether entities currently carry unsaved changes by
// reading the editor's save panel, which lists exactly the dirty entities.
//
// An element that does not show up within its bound is a negative answer.
// Probe and click failures, and a cancelled context, are returned as errors
// so a broken page is never reported as a clean one.
type Observer struct {
	surface   Surface
	selectors Selectors
	timing    Timing
	logger    Logger
}

// ObserverOption configures an Observer.
type ObserverOption func(*Observer)

// WithSelectors overrides the default save panel selectors.
func WithSelectors(s Selectors) ObserverOption {
	return func(o *Observer) {
		o.selectors = s
	}
}

// WithTiming overrides the default wait bounds. Zero fields keep their defaults.
func WithTiming(t Timing) ObserverOption {
	return func(o *Observer) {
		if t.Interval > 0 {
			o.timing.Interval = t.Interval
		}
		if t.PanelProbe > 0 {
			o.timing.PanelProbe = t.PanelProbe
		}
		if t.EntityProbe > 0 {
			o.timing.EntityProbe = t.EntityProbe
		}
		if t.Settle > 0 {
			o.timing.Settle = t.Settle
		}
	}
}

// WithLogger sets the logger for the observer's debug trace.
func WithLogger(l Logger) ObserverOption {
	return func(o *Observer) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewObserver creates an observer reading the given surface.
func NewObserver(surface Surface, opts ...ObserverOption) *Observer {
	o := &Observer{
		surface:   surface,
		selectors: DefaultSelectors(),
		timing:    DefaultTiming(),
		logger:    nopLogger{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Timing returns the bounds in effect.
func (o *Observer) Timing() Timing {
	return o.timing
}

// Selectors returns the selectors in effect.
func (o *Observer) Selectors() Selectors {
	return o.selectors
}

func (o *Observer) policy(bound time.Duration) poll.Policy {
	return poll.Policy{Interval: o.timing.Interval, Timeout: bound}
}

// await polls until selector is visible or the bound expires.
func (o *Observer) await(ctx context.Context, selector string, bound time.Duration) (poll.Result, error) {
	return poll.Until(ctx, o.policy(bound), func(ctx context.Context) (bool, error) {
		return o.surface.Visible(ctx, selector)
	})
}

// CheckPanelOpen makes sure the save panel is open. It returns false when the
// save button is disabled, meaning no entity is dirty.
func (o *Observer) CheckPanelOpen(ctx context.Context) (bool, error) {
	result, err := o.await(ctx, o.selectors.Panel, o.timing.PanelProbe)
	if err != nil {
		return false, fmt.Errorf("checking for save panel: %w", err)
	}
	if result == poll.Found {
		o.logger.Debugf("save panel already open")
		return true, nil
	}

	result, err = o.await(ctx, o.selectors.SaveButton, o.timing.PanelProbe)
	if err != nil {
		return false, fmt.Errorf("checking for save button: %w", err)
	}
	if result == poll.NotFound {
		o.logger.Debugf("save button disabled, nothing dirty")
		return false, nil
	}

	if err := o.surface.Click(ctx, o.selectors.SaveButton); err != nil {
		return false, fmt.Errorf("clicking save button: %w", err)
	}

	result, err = o.await(ctx, o.selectors.Panel, o.timing.Settle)
	if err != nil {
		return false, fmt.Errorf("waiting for save panel: %w", err)
	}
	if result == poll.NotFound {
		return false, ErrPanelNotShown
	}

	o.logger.Debugf("save panel opened")
	return true, nil
}

// IsEntityDirty reports whether the entity labelled name has unsaved changes.
// It opens the save panel if needed but never changes any entity.
func (o *Observer) IsEntityDirty(ctx context.Context, name string) (bool, error) {
	selector, err := o.selectors.EntitySelector(name)
	if err != nil {
		return false, err
	}

	open, err := o.CheckPanelOpen(ctx)
	if err != nil {
		return false, err
	}
	if !open {
		return false, nil
	}

	result, err := o.await(ctx, selector, o.timing.EntityProbe)
	if err != nil {
		return false, fmt.Errorf("looking up %q in save panel: %w", name, err)
	}

	dirty := result == poll.Found
	o.logger.Debugf("entity %q dirty=%t", name, dirty)
	return dirty, nil
}

// SaveAll commits every dirty entity. It is a no-op when nothing is dirty and
// returns only once the save panel has closed.
func (o *Observer) SaveAll(ctx context.Context) error {
	open, err := o.CheckPanelOpen(ctx)
	if err != nil {
		return err
	}
	if !open {
		o.logger.Debugf("save all: nothing to save")
		return nil
	}

	if err := o.surface.Click(ctx, o.selectors.CommitButton); err != nil {
		return fmt.Errorf("clicking commit button: %w", err)
	}

	closed, err := poll.Until(ctx, o.policy(o.timing.Settle), func(ctx context.Context) (bool, error) {
		visible, err := o.surface.Visible(ctx, o.selectors.Panel)
		return !visible, err
	})
	if err != nil {
		return fmt.Errorf("waiting for save to finish: %w", err)
	}
	if closed == poll.NotFound {
		return ErrPanelNotClosed
	}

	o.logger.Debugf("save all: committed")
	return nil
}

// Classify reports the dirty flag of each entity, in order.
func (o *Observer) Classify(ctx context.Context, entities ...Entity) ([]State, error) {
	states := make([]State, 0, len(entities))
	for _, e := range entities {
		d, err := o.IsEntityDirty(ctx, e.Name)
		if err != nil {
			return nil, fmt.Errorf("classifying %s: %w", e, err)
		}
		states = append(states, State{Entity: e, Dirty: d})
	}
	return states, nil
}
