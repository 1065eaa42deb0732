// Package dirtytest provides an in-memory editor that honours the save panel
// contract, for exercising the observer and scenarios without a browser.
package dirtytest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/entrhq/dirtycheck/pkg/dirty"
)

// ErrNotClickable is returned when clicking an element that is not shown.
var ErrNotClickable = errors.New("element not clickable")

type entity struct {
	kind  dirty.Kind
	dirty bool
	saved bool
	draft bool
}

// CMS is a fake editor session. Entities become dirty through edits and are
// cleared by committing the save panel or by reloading.
type CMS struct {
	mu        sync.Mutex
	selectors dirty.Selectors
	entities  map[string]*entity
	panelOpen bool

	// pending counts probes left before a requested panel shows up
	pending    int
	requested  bool
	panelDelay int
	neverOpen  bool
	probeErr   error

	probes int
	clicks []string
	saves  int
}

// New creates an empty fake editor using the default selectors.
func New() *CMS {
	return &CMS{
		selectors: dirty.DefaultSelectors(),
		entities:  make(map[string]*entity),
	}
}

// SetPanelDelay makes the panel appear only after n further probes once the
// save button has been clicked.
func (c *CMS) SetPanelDelay(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.panelDelay = n
}

// SetNeverOpen makes the save button click silently do nothing.
func (c *CMS) SetNeverOpen(never bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.neverOpen = never
}

// SetProbeError makes every Visible call fail with err.
func (c *CMS) SetProbeError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.probeErr = err
}

// Insert adds a new, unsaved and therefore dirty, entity.
func (c *CMS) Insert(name string, kind dirty.Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entities[name] = &entity{kind: kind, dirty: true}
}

// InsertDraft adds an auto-draft entity. Drafts come back dirty on every
// reload until they have been saved once.
func (c *CMS) InsertDraft(name string, kind dirty.Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entities[name] = &entity{kind: kind, dirty: true, draft: true}
}

// Edit marks an existing entity dirty.
func (c *CMS) Edit(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entities[name]
	if !ok {
		return fmt.Errorf("no entity %q", name)
	}
	e.dirty = true
	return nil
}

// Reload discards unsaved work: never-saved entities vanish, unsaved drafts
// come back dirty, and every other entity comes back clean.
func (c *CMS) Reload() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for name, e := range c.entities {
		switch {
		case e.saved:
			e.dirty = false
		case e.draft:
			e.dirty = true
		default:
			delete(c.entities, name)
		}
	}
	c.panelOpen = false
	c.requested = false
}

// Dirty returns the names of dirty entities, sorted.
func (c *CMS) Dirty() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirtyLocked()
}

func (c *CMS) dirtyLocked() []string {
	var names []string
	for name, e := range c.entities {
		if e.dirty {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// PanelOpen reports whether the save panel is shown.
func (c *CMS) PanelOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.panelOpen
}

// Probes returns the number of Visible calls so far.
func (c *CMS) Probes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.probes
}

// Clicks returns the selectors clicked so far.
func (c *CMS) Clicks() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.clicks...)
}

// Saves returns the number of commits performed.
func (c *CMS) Saves() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saves
}

// Visible implements dirty.Surface.
func (c *CMS) Visible(ctx context.Context, selector string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.probes++
	if c.probeErr != nil {
		return false, c.probeErr
	}

	if c.requested && !c.panelOpen {
		if c.pending > 0 {
			c.pending--
		} else {
			c.panelOpen = true
			c.requested = false
		}
	}

	switch selector {
	case c.selectors.Panel:
		return c.panelOpen, nil
	case c.selectors.SaveButton:
		return len(c.dirtyLocked()) > 0, nil
	case c.selectors.CommitButton:
		return c.panelOpen, nil
	}

	if name, ok := c.entityName(selector); ok {
		if !c.panelOpen {
			return false, nil
		}
		for listed, e := range c.entities {
			if e.dirty && strings.Contains(listed, name) {
				return true, nil
			}
		}
		return false, nil
	}

	return false, nil
}

// Click implements dirty.Surface.
func (c *CMS) Click(ctx context.Context, selector string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.clicks = append(c.clicks, selector)

	switch selector {
	case c.selectors.SaveButton:
		if len(c.dirtyLocked()) == 0 {
			return fmt.Errorf("%w: %s", ErrNotClickable, selector)
		}
		if c.neverOpen {
			return nil
		}
		c.requested = true
		c.pending = c.panelDelay
		return nil

	case c.selectors.CommitButton:
		if !c.panelOpen {
			return fmt.Errorf("%w: %s", ErrNotClickable, selector)
		}
		for _, e := range c.entities {
			if e.dirty {
				e.dirty = false
				e.saved = true
			}
		}
		c.panelOpen = false
		c.saves++
		return nil
	}

	return fmt.Errorf("%w: %s", ErrNotClickable, selector)
}

// entityName extracts the quoted name from an entity label selector.
func (c *CMS) entityName(selector string) (string, bool) {
	parts := strings.SplitN(c.selectors.EntityLabel, "%s", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.HasPrefix(selector, parts[0]) || !strings.HasSuffix(selector, parts[1]) {
		return "", false
	}
	lit := strings.TrimSuffix(strings.TrimPrefix(selector, parts[0]), parts[1])
	if len(lit) < 2 {
		return "", false
	}
	return lit[1 : len(lit)-1], true
}
