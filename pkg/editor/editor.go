// Package editor drives the site editor: it creates a template and a nested
// template part and makes edits scoped to exactly one of them.
package editor

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/entrhq/dirtycheck/pkg/logging"
	"github.com/entrhq/dirtycheck/pkg/wpadmin"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("editor")
	if err != nil {
		debugLog.Warnf("Failed to initialize editor logger, using stderr fallback: %v", err)
	}
}

// Page is the browser surface the editor is driven through.
type Page interface {
	Click(ctx context.Context, selector string) error
	Fill(ctx context.Context, selector, value string) error
	Type(ctx context.Context, text string) error
	Press(ctx context.Context, key string) error
	WaitFor(ctx context.Context, selector string, timeout time.Duration) error
}

// Visitor opens admin pages.
type Visitor interface {
	Visit(ctx context.Context, adminPath string, query url.Values) error
}

const (
	templatePartInnerBlocks = `.wp-block[data-type="core/template-part"] .block-editor-inner-blocks`
	newPartInnerBlocks      = `div[data-type="core/template-part"] .block-editor-inner-blocks`
	templatePartBlock       = `div[data-type="core/template-part"]`
	templatePartParagraph   = `.wp-block[data-type="core/template-part"] .wp-block[data-type="core/paragraph"]`

	templateSwitcher  = `button.components-dropdown-menu__toggle[aria-label="Switch Template"]`
	switcherPopover   = `.edit-site-template-switcher__popover`
	newTemplateButton = `xpath=//div[contains(@class, "edit-site-template-switcher__popover")]//button[contains(., "New")]`
	modalFrame        = `.components-modal__frame`
	addTemplateButton = `xpath=//div[contains(@class, "components-modal__frame")]//button[contains(., "Add")]`

	globalInserter   = `.edit-site-header [aria-label="Add block"]`
	inserterSearch   = `.block-editor-inserter__search-input`
	blockAppender    = `.block-editor-button-block-appender`
	inserterMenu     = `.block-editor-inserter__menu`
	paragraphInserts = `button.editor-block-list-item-paragraph`
)

// DefaultSettle bounds the wait for a newly created template to load.
const DefaultSettle = 3 * time.Second

// SiteEditor is a page object for the site editor.
type SiteEditor struct {
	page    Page
	visitor Visitor
	settle  time.Duration
}

// New creates a site editor page object.
func New(page Page, visitor Visitor) *SiteEditor {
	return &SiteEditor{page: page, visitor: visitor, settle: DefaultSettle}
}

// SetSettle changes the bound used after creating a template.
func (e *SiteEditor) SetSettle(d time.Duration) {
	if d > 0 {
		e.settle = d
	}
}

// Visit opens the site editor and waits for its template part to load.
func (e *SiteEditor) Visit(ctx context.Context) error {
	if err := e.visitor.Visit(ctx, "admin.php", wpadmin.SiteEditorQuery()); err != nil {
		return fmt.Errorf("opening site editor: %w", err)
	}
	if err := e.page.WaitFor(ctx, templatePartInnerBlocks, 0); err != nil {
		return fmt.Errorf("waiting for template part: %w", err)
	}
	debugLog.Debugf("site editor loaded")
	return nil
}

// CreateTemplate adds a template through the template switcher and waits
// until the editor shows it.
func (e *SiteEditor) CreateTemplate(ctx context.Context, name string) error {
	steps := []func() error{
		func() error { return e.page.Click(ctx, templateSwitcher) },
		func() error { return e.page.WaitFor(ctx, switcherPopover, 0) },
		func() error { return e.page.Click(ctx, newTemplateButton) },
		func() error { return e.page.WaitFor(ctx, modalFrame, 0) },
		func() error { return e.page.Press(ctx, "Tab") },
		func() error { return e.page.Press(ctx, "Tab") },
		func() error { return e.page.Type(ctx, name) },
		func() error { return e.page.Click(ctx, addTemplateButton) },
		func() error { return e.page.WaitFor(ctx, switcherShowing(KebabCase(name)), e.settle) },
	}
	if err := run(steps); err != nil {
		return fmt.Errorf("creating template %q: %w", name, err)
	}
	debugLog.Infof("created template %q", name)
	return nil
}

func switcherShowing(slug string) string {
	return fmt.Sprintf(`xpath=//button[contains(@class, "components-dropdown-menu__toggle")][contains(text(), "%s")]`, slug)
}

// CreateTemplatePart inserts a new template part block into the current
// template, naming it and assigning it to theme.
func (e *SiteEditor) CreateTemplatePart(ctx context.Context, name, theme string) error {
	steps := []func() error{
		func() error { return e.InsertBlock(ctx, "Template Part") },
		func() error { return e.page.Type(ctx, name) },
		func() error { return e.page.Press(ctx, "Tab") },
		func() error { return e.page.Type(ctx, theme) },
		func() error { return e.page.Press(ctx, "Tab") },
		func() error { return e.page.Press(ctx, "Enter") },
		func() error { return e.page.WaitFor(ctx, newPartInnerBlocks, 0) },
	}
	if err := run(steps); err != nil {
		return fmt.Errorf("creating template part %q: %w", name, err)
	}
	debugLog.Infof("created template part %q for theme %q", name, theme)
	return nil
}

// InsertBlock inserts a block through the global inserter.
func (e *SiteEditor) InsertBlock(ctx context.Context, title string) error {
	steps := []func() error{
		func() error { return e.page.Click(ctx, globalInserter) },
		func() error { return e.page.WaitFor(ctx, inserterSearch, 0) },
		func() error { return e.page.Fill(ctx, inserterSearch, title) },
		func() error {
			return e.page.Click(ctx, fmt.Sprintf(`xpath=//button//span[contains(text(), "%s")]`, title))
		},
	}
	if err := run(steps); err != nil {
		return fmt.Errorf("inserting %q block: %w", title, err)
	}
	return nil
}

// EditTemplatePart types each line into the template part, one paragraph per line.
func (e *SiteEditor) EditTemplatePart(ctx context.Context, lines []string) error {
	if err := e.page.Click(ctx, templatePartBlock); err != nil {
		return fmt.Errorf("focusing template part: %w", err)
	}
	for _, line := range lines {
		if err := e.page.Type(ctx, line); err != nil {
			return err
		}
		if err := e.page.Press(ctx, "Enter"); err != nil {
			return err
		}
	}
	return nil
}

// AppendParagraph adds a paragraph to the template itself, outside any
// template part, and types text into it.
func (e *SiteEditor) AppendParagraph(ctx context.Context, text string) error {
	steps := []func() error{
		func() error { return e.page.Click(ctx, blockAppender) },
		func() error { return e.page.WaitFor(ctx, inserterMenu, 0) },
		func() error { return e.page.Click(ctx, paragraphInserts) },
		func() error { return e.page.Type(ctx, text) },
	}
	if err := run(steps); err != nil {
		return fmt.Errorf("editing template: %w", err)
	}
	return nil
}

// EditTemplatePartParagraph types text into a paragraph inside the template part.
func (e *SiteEditor) EditTemplatePartParagraph(ctx context.Context, text string) error {
	if err := e.page.Click(ctx, templatePartParagraph); err != nil {
		return fmt.Errorf("editing template part: %w", err)
	}
	if err := e.page.Type(ctx, text); err != nil {
		return fmt.Errorf("editing template part: %w", err)
	}
	return nil
}

func run(steps []func() error) error {
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// KebabCase lower-cases s and joins its words with dashes, which is how the
// template switcher shows a template's slug. Case changes inside a word
// ("fooBar") start a new word.
func KebabCase(s string) string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}

	var prev rune
	for _, r := range s {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
		case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
		prev = r
	}
	flush()
	return strings.Join(words, "-")
}
