package editor

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePage struct {
	calls  []string
	failOn string
}

func (p *fakePage) record(call string) error {
	p.calls = append(p.calls, call)
	if p.failOn != "" && strings.Contains(call, p.failOn) {
		return errors.New("element not found")
	}
	return nil
}

func (p *fakePage) Click(ctx context.Context, selector string) error {
	return p.record("click " + selector)
}

func (p *fakePage) Fill(ctx context.Context, selector, value string) error {
	return p.record("fill " + selector + "=" + value)
}

func (p *fakePage) Type(ctx context.Context, text string) error {
	return p.record("type " + text)
}

func (p *fakePage) Press(ctx context.Context, key string) error {
	return p.record("press " + key)
}

func (p *fakePage) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	if timeout > 0 {
		return p.record("wait " + selector + " " + timeout.String())
	}
	return p.record("wait " + selector)
}

type fakeVisitor struct {
	visits []string
}

func (v *fakeVisitor) Visit(ctx context.Context, adminPath string, query url.Values) error {
	v.visits = append(v.visits, adminPath+"?"+query.Encode())
	return nil
}

func TestVisit(t *testing.T) {
	page, visitor := &fakePage{}, &fakeVisitor{}
	e := New(page, visitor)

	require.NoError(t, e.Visit(context.Background()))

	assert.Equal(t, []string{"admin.php?page=gutenberg-edit-site"}, visitor.visits)
	assert.Equal(t, []string{"wait " + templatePartInnerBlocks}, page.calls)
}

func TestCreateTemplate(t *testing.T) {
	page := &fakePage{}
	e := New(page, &fakeVisitor{})

	require.NoError(t, e.CreateTemplate(context.Background(), "Test Template Name Edit"))

	assert.Equal(t, []string{
		"click " + templateSwitcher,
		"wait " + switcherPopover,
		"click " + newTemplateButton,
		"wait " + modalFrame,
		"press Tab",
		"press Tab",
		"type Test Template Name Edit",
		"click " + addTemplateButton,
		"wait " + switcherShowing("test-template-name-edit") + " 3s",
	}, page.calls)
}

func TestCreateTemplate_StopsAtFirstFailure(t *testing.T) {
	page := &fakePage{failOn: modalFrame}
	e := New(page, &fakeVisitor{})

	err := e.CreateTemplate(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `creating template "x"`)
	assert.Len(t, page.calls, 4)
}

func TestCreateTemplatePart(t *testing.T) {
	page := &fakePage{}
	e := New(page, &fakeVisitor{})

	require.NoError(t, e.CreateTemplatePart(context.Background(), "Test Template Part Name Edit", "test-theme"))

	assert.Equal(t, []string{
		"click " + globalInserter,
		"wait " + inserterSearch,
		"fill " + inserterSearch + "=Template Part",
		`click xpath=//button//span[contains(text(), "Template Part")]`,
		"type Test Template Part Name Edit",
		"press Tab",
		"type test-theme",
		"press Tab",
		"press Enter",
		"wait " + newPartInnerBlocks,
	}, page.calls)
}

func TestEditTemplatePart(t *testing.T) {
	page := &fakePage{}
	e := New(page, &fakeVisitor{})

	require.NoError(t, e.EditTemplatePart(context.Background(), []string{
		"Default template part test text.",
		"Second paragraph test.",
	}))

	assert.Equal(t, []string{
		"click " + templatePartBlock,
		"type Default template part test text.",
		"press Enter",
		"type Second paragraph test.",
		"press Enter",
	}, page.calls)
}

func TestAppendParagraph(t *testing.T) {
	page := &fakePage{}
	e := New(page, &fakeVisitor{})

	require.NoError(t, e.AppendParagraph(context.Background(), "Test."))

	assert.Equal(t, []string{
		"click " + blockAppender,
		"wait " + inserterMenu,
		"click " + paragraphInserts,
		"type Test.",
	}, page.calls)
}

func TestEditTemplatePartParagraph(t *testing.T) {
	page := &fakePage{}
	e := New(page, &fakeVisitor{})

	require.NoError(t, e.EditTemplatePartParagraph(context.Background(), "Some more test words!"))

	assert.Equal(t, []string{
		"click " + templatePartParagraph,
		"type Some more test words!",
	}, page.calls)
}

func TestSetSettle(t *testing.T) {
	page := &fakePage{}
	e := New(page, &fakeVisitor{})
	e.SetSettle(0)
	e.SetSettle(5 * time.Second)

	require.NoError(t, e.CreateTemplate(context.Background(), "A"))
	assert.True(t, strings.HasSuffix(page.calls[len(page.calls)-1], " 5s"))
}

func TestKebabCase(t *testing.T) {
	tests := map[string]string{
		"Test Template Name Edit": "test-template-name-edit",
		"test-template":           "test-template",
		"fooBar baz":              "foo-bar-baz",
		"  Header__Main  ":        "header-main",
		"Part 2 v3":               "part-2-v3",
		"":                        "",
	}
	for in, want := range tests {
		assert.Equal(t, want, KebabCase(in), in)
	}
}
