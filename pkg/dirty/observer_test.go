package dirty_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/dirtycheck/pkg/dirty"
	"github.com/entrhq/dirtycheck/pkg/dirty/dirtytest"
)

const (
	templateName     = "Test Template Name Edit"
	templatePartName = "Test Template Part Name Edit"
)

// fastTiming keeps negative answers quick in tests.
var fastTiming = dirty.Timing{
	Interval:    time.Millisecond,
	PanelProbe:  10 * time.Millisecond,
	EntityProbe: 20 * time.Millisecond,
	Settle:      100 * time.Millisecond,
}

func newObserver(cms *dirtytest.CMS) *dirty.Observer {
	return dirty.NewObserver(cms, dirty.WithTiming(fastTiming))
}

// savedPair returns a fake editor holding a saved template and template part.
func savedPair(t *testing.T) (*dirtytest.CMS, *dirty.Observer) {
	t.Helper()
	cms := dirtytest.New()
	cms.Insert(templateName, dirty.KindParent)
	cms.Insert(templatePartName, dirty.KindChild)
	obs := newObserver(cms)
	require.NoError(t, obs.SaveAll(context.Background()))
	require.Empty(t, cms.Dirty())
	return cms, obs
}

func TestCheckPanelOpen_NothingDirty(t *testing.T) {
	cms := dirtytest.New()
	obs := newObserver(cms)

	open, err := obs.CheckPanelOpen(context.Background())
	require.NoError(t, err)
	assert.False(t, open)
	assert.Empty(t, cms.Clicks(), "a disabled save button must not be clicked")
}

func TestCheckPanelOpen_OpensPanelWhenDirty(t *testing.T) {
	cms := dirtytest.New()
	cms.Insert(templateName, dirty.KindParent)
	obs := newObserver(cms)

	open, err := obs.CheckPanelOpen(context.Background())
	require.NoError(t, err)
	assert.True(t, open)
	assert.True(t, cms.PanelOpen())
	assert.Equal(t, []string{dirty.DefaultSelectors().SaveButton}, cms.Clicks())
}

func TestCheckPanelOpen_AlreadyOpenDoesNotClick(t *testing.T) {
	cms := dirtytest.New()
	cms.Insert(templateName, dirty.KindParent)
	obs := newObserver(cms)

	_, err := obs.CheckPanelOpen(context.Background())
	require.NoError(t, err)

	open, err := obs.CheckPanelOpen(context.Background())
	require.NoError(t, err)
	assert.True(t, open)
	assert.Len(t, cms.Clicks(), 1)
}

func TestCheckPanelOpen_WaitsForSlowPanel(t *testing.T) {
	cms := dirtytest.New()
	cms.Insert(templateName, dirty.KindParent)
	cms.SetPanelDelay(5)
	obs := newObserver(cms)

	open, err := obs.CheckPanelOpen(context.Background())
	require.NoError(t, err)
	assert.True(t, open)
}

func TestCheckPanelOpen_PanelNeverShownIsAnError(t *testing.T) {
	cms := dirtytest.New()
	cms.Insert(templateName, dirty.KindParent)
	cms.SetNeverOpen(true)
	obs := newObserver(cms)

	open, err := obs.CheckPanelOpen(context.Background())
	assert.False(t, open)
	assert.ErrorIs(t, err, dirty.ErrPanelNotShown)
}

func TestCheckPanelOpen_PageErrorSurfaces(t *testing.T) {
	crashed := errors.New("page crashed")
	cms := dirtytest.New()
	cms.SetProbeError(crashed)
	obs := newObserver(cms)

	open, err := obs.CheckPanelOpen(context.Background())
	assert.False(t, open)
	assert.ErrorIs(t, err, crashed)
}

func TestCheckPanelOpen_ClosedAfterSaveAndReload(t *testing.T) {
	cms := dirtytest.New()
	cms.Insert(templateName, dirty.KindParent)
	cms.Insert(templatePartName, dirty.KindChild)
	require.NoError(t, cms.Edit(templatePartName))
	obs := newObserver(cms)

	require.NoError(t, obs.SaveAll(context.Background()))
	cms.Reload()

	open, err := obs.CheckPanelOpen(context.Background())
	require.NoError(t, err)
	assert.False(t, open)
}

func TestIsEntityDirty_CleanAfterLoad(t *testing.T) {
	cms, obs := savedPair(t)
	cms.Reload()

	for _, name := range []string{templateName, templatePartName} {
		d, err := obs.IsEntityDirty(context.Background(), name)
		require.NoError(t, err)
		assert.False(t, d, name)
	}
}

func TestIsEntityDirty_ParentOnly(t *testing.T) {
	cms, obs := savedPair(t)
	require.NoError(t, cms.Edit(templateName))

	parent, err := obs.IsEntityDirty(context.Background(), templateName)
	require.NoError(t, err)
	child, err := obs.IsEntityDirty(context.Background(), templatePartName)
	require.NoError(t, err)

	assert.True(t, parent)
	assert.False(t, child)
}

func TestIsEntityDirty_ChildOnly(t *testing.T) {
	cms, obs := savedPair(t)
	require.NoError(t, cms.Edit(templatePartName))

	parent, err := obs.IsEntityDirty(context.Background(), templateName)
	require.NoError(t, err)
	child, err := obs.IsEntityDirty(context.Background(), templatePartName)
	require.NoError(t, err)

	assert.False(t, parent)
	assert.True(t, child)
}

func TestIsEntityDirty_Idempotent(t *testing.T) {
	cms, obs := savedPair(t)
	require.NoError(t, cms.Edit(templatePartName))

	for _, name := range []string{templateName, templatePartName} {
		first, err := obs.IsEntityDirty(context.Background(), name)
		require.NoError(t, err)
		second, err := obs.IsEntityDirty(context.Background(), name)
		require.NoError(t, err)
		assert.Equal(t, first, second, name)
	}
	assert.Equal(t, []string{templatePartName}, cms.Dirty(), "queries must not change entities")
}

func TestIsEntityDirty_UnquotableName(t *testing.T) {
	cms := dirtytest.New()
	obs := newObserver(cms)

	_, err := obs.IsEntityDirty(context.Background(), `Bob's "part"`)
	assert.ErrorIs(t, err, dirty.ErrUnquotableName)
	assert.Zero(t, cms.Probes())
}

func TestIsEntityDirty_NameWithDoubleQuote(t *testing.T) {
	cms := dirtytest.New()
	cms.Insert(`The "Main" Header`, dirty.KindChild)
	obs := newObserver(cms)

	d, err := obs.IsEntityDirty(context.Background(), `"Main"`)
	require.NoError(t, err)
	assert.True(t, d)
}

func TestSaveAll_ClearsEveryListedEntity(t *testing.T) {
	cms := dirtytest.New()
	cms.Insert(templateName, dirty.KindParent)
	cms.Insert(templatePartName, dirty.KindChild)
	obs := newObserver(cms)

	require.NoError(t, obs.SaveAll(context.Background()))

	assert.Empty(t, cms.Dirty())
	assert.Equal(t, 1, cms.Saves())
	for _, name := range []string{templateName, templatePartName} {
		d, err := obs.IsEntityDirty(context.Background(), name)
		require.NoError(t, err)
		assert.False(t, d, name)
	}
}

func TestSaveAll_NoopWhenClean(t *testing.T) {
	cms := dirtytest.New()
	obs := newObserver(cms)

	require.NoError(t, obs.SaveAll(context.Background()))
	assert.Zero(t, cms.Saves())
}

func TestClassify(t *testing.T) {
	cms, obs := savedPair(t)
	require.NoError(t, cms.Edit(templateName))

	states, err := obs.Classify(context.Background(),
		dirty.Parent(templateName),
		dirty.Child(templatePartName),
	)
	require.NoError(t, err)
	assert.Equal(t, []dirty.State{
		{Entity: dirty.Parent(templateName), Dirty: true},
		{Entity: dirty.Child(templatePartName), Dirty: false},
	}, states)
}

func TestObserver_CancelledContext(t *testing.T) {
	cms := dirtytest.New()
	obs := newObserver(cms)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := obs.IsEntityDirty(ctx, templateName)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithTiming_ZeroFieldsKeepDefaults(t *testing.T) {
	obs := dirty.NewObserver(dirtytest.New(), dirty.WithTiming(dirty.Timing{Settle: time.Second}))

	timing := obs.Timing()
	assert.Equal(t, time.Second, timing.Settle)
	assert.Equal(t, dirty.DefaultPanelProbe, timing.PanelProbe)
	assert.Equal(t, dirty.DefaultEntityProbe, timing.EntityProbe)
	assert.Equal(t, dirty.DefaultInterval, timing.Interval)
}

func TestEntitySelector(t *testing.T) {
	sel := dirty.DefaultSelectors()

	got, err := sel.EntitySelector("Header")
	require.NoError(t, err)
	assert.Equal(t,
		`xpath=//label[@class="components-checkbox-control__label"]//strong[contains(text(),"Header")]`,
		got)

	got, err = sel.EntitySelector(`a "b"`)
	require.NoError(t, err)
	assert.Contains(t, got, `contains(text(),'a "b"')`)
}
