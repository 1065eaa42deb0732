package browser_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/dirtycheck/pkg/browser"
	"github.com/entrhq/dirtycheck/pkg/dirty"
)

// startFixtureSession serves testdata over HTTP and opens it in headless
// Chromium. It skips unless DIRTYCHECK_BROWSER is set, since it needs the
// Playwright driver and a browser installed.
func startFixtureSession(t *testing.T) *browser.Session {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	if os.Getenv("DIRTYCHECK_BROWSER") == "" {
		t.Skip("DIRTYCHECK_BROWSER not set")
	}

	srv := httptest.NewServer(http.FileServer(http.Dir("testdata")))
	t.Cleanup(srv.Close)

	manager := browser.NewSessionManager()
	require.NoError(t, manager.Initialize(false, nil))
	t.Cleanup(func() { _ = manager.Shutdown() })

	session, err := manager.StartSession("fixture", browser.SessionOptions{Headless: true})
	require.NoError(t, err)

	require.NoError(t, session.Navigate(context.Background(), srv.URL+"/save_panel.html", browser.NavigateOptions{
		WaitUntil: "load",
	}))
	return session
}

func TestSession_ObserverAgainstFixture(t *testing.T) {
	session := startFixtureSession(t)
	ctx := context.Background()
	obs := dirty.NewObserver(session)

	open, err := obs.CheckPanelOpen(ctx)
	require.NoError(t, err)
	assert.False(t, open, "nothing edited yet")

	require.NoError(t, session.Click(ctx, "#edit-child"))

	parent, err := obs.IsEntityDirty(ctx, "Test Template Name Edit")
	require.NoError(t, err)
	child, err := obs.IsEntityDirty(ctx, "Test Template Part Name Edit")
	require.NoError(t, err)
	assert.False(t, parent)
	assert.True(t, child)

	require.NoError(t, obs.SaveAll(ctx))

	open, err = obs.CheckPanelOpen(ctx)
	require.NoError(t, err)
	assert.False(t, open)

	warnings := session.Console().Entries("warning")
	if assert.Len(t, warnings, 1) {
		assert.Equal(t, "dirty: Test Template Part Name Edit", warnings[0].Text)
	}
}

func TestSession_WaitForTimeout(t *testing.T) {
	session := startFixtureSession(t)

	err := session.WaitFor(context.Background(), ".never-rendered", 50*time.Millisecond)
	require.Error(t, err)
	assert.True(t, browser.IsTimeout(err))
}

func TestSession_Snapshot(t *testing.T) {
	session := startFixtureSession(t)
	ctx := context.Background()

	html, err := session.Snapshot(ctx, "#panel-root")
	require.NoError(t, err)
	assert.Empty(t, html)

	doc, err := session.Snapshot(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, doc, "edit-site-save-button__button")
}
