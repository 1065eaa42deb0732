package browser

import (
	"time"

	"github.com/playwright-community/playwright-go"
)

// Session is one browser with a single page, driven strictly sequentially.
type Session struct {
	// Name identifies the session in logs and in the manager
	Name string

	// Browser is the Playwright browser instance
	Browser playwright.Browser

	// Context is the isolated browser context holding cookies and storage
	Context playwright.BrowserContext

	// Page is the page every operation acts on
	Page playwright.Page

	// Headless indicates if the browser runs without a window
	Headless bool

	// CreatedAt is when the session was started
	CreatedAt time.Time

	// LastUsedAt is when the last operation ran
	LastUsedAt time.Time

	// CurrentURL is the page URL after the last navigation or click
	CurrentURL string

	console *ConsoleRecorder
}

// SessionOptions configures a new browser session.
type SessionOptions struct {
	// Headless controls whether the browser runs without a visible window
	Headless bool

	// Viewport sets the initial viewport size
	Viewport *Viewport

	// Timeout is the default bound for Playwright actions
	Timeout time.Duration

	// SlowMo delays every Playwright operation, useful when watching a run
	SlowMo time.Duration
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}

// NavigateOptions configures page navigation behavior.
type NavigateOptions struct {
	// WaitUntil is one of "load", "domcontentloaded", "networkidle", "commit"
	WaitUntil string

	// Timeout bounds the navigation (0 means the session default)
	Timeout time.Duration
}

// Default values for sessions
const (
	DefaultTimeout        = 30 * time.Second
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
	DefaultMaxSessions    = 2
)

// millis converts d for Playwright, where 0 would mean "no timeout".
func millis(d time.Duration) *float64 {
	ms := d.Milliseconds()
	if d > 0 && ms == 0 {
		ms = 1
	}
	return playwright.Float(float64(ms))
}
