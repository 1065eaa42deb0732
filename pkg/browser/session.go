package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// UpdateLastUsed updates the LastUsedAt timestamp to the current time.
func (s *Session) UpdateLastUsed() {
	s.LastUsedAt = time.Now()
}

// begin marks the session used and refuses to act once ctx has ended.
func (s *Session) begin(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.UpdateLastUsed()
	return nil
}

// Console returns the recorder capturing this page's console output.
func (s *Session) Console() *ConsoleRecorder {
	return s.console
}

// Navigate loads url in the session's page.
func (s *Session) Navigate(ctx context.Context, url string, opts NavigateOptions) error {
	if err := s.begin(ctx); err != nil {
		return err
	}

	if _, err := s.Page.Goto(url, opts.gotoOptions()); err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}

	s.CurrentURL = s.Page.URL()
	return nil
}

func (o NavigateOptions) gotoOptions() playwright.PageGotoOptions {
	gotoOpts := playwright.PageGotoOptions{}
	if o.WaitUntil != "" {
		state := playwright.WaitUntilState(o.WaitUntil)
		gotoOpts.WaitUntil = &state
	}
	if o.Timeout > 0 {
		gotoOpts.Timeout = millis(o.Timeout)
	}
	return gotoOpts
}

// URL returns the page's current URL.
func (s *Session) URL() string {
	return s.Page.URL()
}

// WaitForLoad waits until the page fires its load event.
func (s *Session) WaitForLoad(ctx context.Context) error {
	if err := s.begin(ctx); err != nil {
		return err
	}
	if err := s.Page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateLoad,
	}); err != nil {
		return fmt.Errorf("waiting for load failed: %w", err)
	}
	s.CurrentURL = s.Page.URL()
	return nil
}

// Visible reports, without waiting, whether the first element matching
// selector is visible. Selectors prefixed with "xpath=" are XPath.
func (s *Session) Visible(ctx context.Context, selector string) (bool, error) {
	if err := s.begin(ctx); err != nil {
		return false, err
	}
	visible, err := s.Page.Locator(selector).First().IsVisible()
	if err != nil {
		return false, fmt.Errorf("visibility check for %s failed: %w", selector, err)
	}
	return visible, nil
}

// Exists reports, without waiting, whether any element matches selector.
func (s *Session) Exists(ctx context.Context, selector string) (bool, error) {
	if err := s.begin(ctx); err != nil {
		return false, err
	}
	n, err := s.Page.Locator(selector).Count()
	if err != nil {
		return false, fmt.Errorf("count for %s failed: %w", selector, err)
	}
	return n > 0, nil
}

// Click clicks the first element matching selector.
func (s *Session) Click(ctx context.Context, selector string) error {
	if err := s.begin(ctx); err != nil {
		return err
	}
	if err := s.Page.Locator(selector).First().Click(); err != nil {
		return fmt.Errorf("click on %s failed: %w", selector, err)
	}
	s.CurrentURL = s.Page.URL()
	return nil
}

// Fill replaces the value of the input matching selector.
func (s *Session) Fill(ctx context.Context, selector, value string) error {
	if err := s.begin(ctx); err != nil {
		return err
	}
	if err := s.Page.Locator(selector).First().Fill(value); err != nil {
		return fmt.Errorf("fill of %s failed: %w", selector, err)
	}
	return nil
}

// Checked reports whether the checkbox matching selector is checked.
func (s *Session) Checked(ctx context.Context, selector string) (bool, error) {
	if err := s.begin(ctx); err != nil {
		return false, err
	}
	checked, err := s.Page.Locator(selector).First().IsChecked()
	if err != nil {
		return false, fmt.Errorf("checked state of %s failed: %w", selector, err)
	}
	return checked, nil
}

// Select picks value in the <select> matching selector.
func (s *Session) Select(ctx context.Context, selector, value string) error {
	if err := s.begin(ctx); err != nil {
		return err
	}
	_, err := s.Page.Locator(selector).First().SelectOption(playwright.SelectOptionValues{
		Values: playwright.StringSlice(value),
	})
	if err != nil {
		return fmt.Errorf("select %q in %s failed: %w", value, selector, err)
	}
	return nil
}

// Type sends text to the focused element as individual key presses.
func (s *Session) Type(ctx context.Context, text string) error {
	if err := s.begin(ctx); err != nil {
		return err
	}
	if err := s.Page.Keyboard().Type(text); err != nil {
		return fmt.Errorf("typing failed: %w", err)
	}
	return nil
}

// Press presses a single key such as "Tab" or "Enter".
func (s *Session) Press(ctx context.Context, key string) error {
	if err := s.begin(ctx); err != nil {
		return err
	}
	if err := s.Page.Keyboard().Press(key); err != nil {
		return fmt.Errorf("pressing %s failed: %w", key, err)
	}
	return nil
}

// WaitFor waits until an element matching selector is visible. A zero
// timeout uses the session default. Timeouts are returned as errors that
// match playwright.ErrTimeout.
func (s *Session) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	if err := s.begin(ctx); err != nil {
		return err
	}
	opts := playwright.LocatorWaitForOptions{
		State: playwright.WaitForSelectorStateVisible,
	}
	if timeout > 0 {
		opts.Timeout = millis(timeout)
	}
	if err := s.Page.Locator(selector).First().WaitFor(opts); err != nil {
		return fmt.Errorf("wait for %s failed: %w", selector, err)
	}
	return nil
}

// IsTimeout reports whether err came from a Playwright timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, playwright.ErrTimeout)
}

// Snapshot returns the inner HTML of the first element matching selector,
// or of the whole document when selector is empty.
func (s *Session) Snapshot(ctx context.Context, selector string) (string, error) {
	if err := s.begin(ctx); err != nil {
		return "", err
	}
	if selector == "" {
		content, err := s.Page.Content()
		if err != nil {
			return "", fmt.Errorf("page content failed: %w", err)
		}
		return content, nil
	}

	loc := s.Page.Locator(selector).First()
	n, err := loc.Count()
	if err != nil {
		return "", fmt.Errorf("count for %s failed: %w", selector, err)
	}
	if n == 0 {
		return "", nil
	}
	inner, err := loc.InnerHTML()
	if err != nil {
		return "", fmt.Errorf("inner html of %s failed: %w", selector, err)
	}
	return inner, nil
}
