package dirty

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Surface is the part of a browser page the observer needs. Visible must
// answer immediately without waiting; the observer does its own polling.
type Surface interface {
	Visible(ctx context.Context, selector string) (bool, error)
	Click(ctx context.Context, selector string) error
}

// Kind distinguishes a top-level document from an embedded one.
type Kind string

const (
	// KindParent is a top-level editable document such as a template
	KindParent Kind = "parent"

	// KindChild is a nested document such as a template part
	KindChild Kind = "child"
)

// Entity is an independently saveable unit of editable content, identified by
// the label it carries in the save panel.
type Entity struct {
	Name string
	Kind Kind
}

// Parent returns a parent entity with the given name.
func Parent(name string) Entity {
	return Entity{Name: name, Kind: KindParent}
}

// Child returns a child entity with the given name.
func Child(name string) Entity {
	return Entity{Name: name, Kind: KindChild}
}

func (e Entity) String() string {
	return fmt.Sprintf("%s %q", e.Kind, e.Name)
}

// State is an entity together with its observed dirty flag.
type State struct {
	Entity Entity
	Dirty  bool
}

// Selectors locate the save panel and its parts.
type Selectors struct {
	// Panel matches the open save panel
	Panel string

	// SaveButton matches the header save button only while it is enabled
	SaveButton string

	// CommitButton persists every listed entity and closes the panel
	CommitButton string

	// EntityLabel is an XPath template for a listed entity; %s receives an
	// XPath string literal holding the entity name
	EntityLabel string
}

// DefaultSelectors returns the selectors of the block editor's site editor.
func DefaultSelectors() Selectors {
	return Selectors{
		Panel:        ".entities-saved-states__panel",
		SaveButton:   ".edit-site-save-button__button[aria-disabled=false]",
		CommitButton: "button.editor-entities-saved-states__save-button",
		EntityLabel:  `xpath=//label[@class="components-checkbox-control__label"]//strong[contains(text(),%s)]`,
	}
}

// EntitySelector returns the selector matching the panel item for name.
func (s Selectors) EntitySelector(name string) (string, error) {
	lit, err := xpathLiteral(name)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(s.EntityLabel, lit), nil
}

// xpathLiteral quotes s as an XPath 1.0 string literal. XPath 1.0 has no
// escape sequences, so a name holding both quote kinds cannot be expressed.
func xpathLiteral(s string) (string, error) {
	switch {
	case !strings.Contains(s, `"`):
		return `"` + s + `"`, nil
	case !strings.Contains(s, "'"):
		return "'" + s + "'", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnquotableName, s)
	}
}

// Timing bounds every wait the observer performs.
type Timing struct {
	// Interval is the delay between probes
	Interval time.Duration

	// PanelProbe bounds the check for an already open panel and for an
	// enabled save button
	PanelProbe time.Duration

	// EntityProbe bounds the search for an entity in the open panel
	EntityProbe time.Duration

	// Settle bounds the wait for the panel to open after clicking save and to
	// close after committing
	Settle time.Duration
}

// Default timing values
const (
	DefaultInterval    = 25 * time.Millisecond
	DefaultPanelProbe  = 100 * time.Millisecond
	DefaultEntityProbe = 500 * time.Millisecond
	DefaultSettle      = 3000 * time.Millisecond
)

// DefaultTiming returns the bounds used when none are configured.
func DefaultTiming() Timing {
	return Timing{
		Interval:    DefaultInterval,
		PanelProbe:  DefaultPanelProbe,
		EntityProbe: DefaultEntityProbe,
		Settle:      DefaultSettle,
	}
}
