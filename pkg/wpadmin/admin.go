// Package wpadmin drives the CMS admin screens that surround the site editor:
// admin URLs, login, experimental feature toggles and bulk cleanup.
package wpadmin

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/entrhq/dirtycheck/pkg/browser"
	"github.com/entrhq/dirtycheck/pkg/logging"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("wpadmin")
	if err != nil {
		debugLog.Warnf("Failed to initialize wpadmin logger, using stderr fallback: %v", err)
	}
}

// Page is the browser surface the admin screens are driven through.
type Page interface {
	Navigate(ctx context.Context, url string, opts browser.NavigateOptions) error
	URL() string
	WaitForLoad(ctx context.Context) error
	WaitFor(ctx context.Context, selector string, timeout time.Duration) error
	Exists(ctx context.Context, selector string) (bool, error)
	Click(ctx context.Context, selector string) error
	Fill(ctx context.Context, selector, value string) error
	Checked(ctx context.Context, selector string) (bool, error)
	Select(ctx context.Context, selector, value string) error
}

// Credentials log a user into the admin.
type Credentials struct {
	Username string
	Password string
}

// Admin drives the admin screens of one site.
type Admin struct {
	page    Page
	baseURL string
	creds   Credentials
}

// New creates an Admin for the site at baseURL.
func New(page Page, baseURL string, creds Credentials) *Admin {
	return &Admin{
		page:    page,
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
	}
}

// Query builds admin query arguments from key/value pairs.
func Query(kv ...string) url.Values {
	q := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		q.Set(kv[i], kv[i+1])
	}
	return q
}

// SiteEditorQuery is the query selecting the site editor on admin.php.
func SiteEditorQuery() url.Values {
	return Query("page", "gutenberg-edit-site")
}

// URL returns the address of an admin page, e.g.
// URL("admin.php", Query("page", "gutenberg-edit-site")).
func (a *Admin) URL(adminPath string, query url.Values) string {
	u := a.baseURL + "/wp-admin/" + strings.TrimLeft(adminPath, "/")
	if enc := query.Encode(); enc != "" {
		u += "?" + enc
	}
	return u
}

func isLoginPage(u string) bool {
	return strings.Contains(u, "wp-login.php")
}

// Visit opens an admin page, logging in first if the site redirects there.
func (a *Admin) Visit(ctx context.Context, adminPath string, query url.Values) error {
	target := a.URL(adminPath, query)
	debugLog.Debugf("visiting %s", target)

	if err := a.page.Navigate(ctx, target, browser.NavigateOptions{WaitUntil: "load"}); err != nil {
		return err
	}
	if !isLoginPage(a.page.URL()) {
		return a.checkErrorPage(ctx)
	}

	if err := a.Login(ctx); err != nil {
		return err
	}
	if err := a.page.Navigate(ctx, target, browser.NavigateOptions{WaitUntil: "load"}); err != nil {
		return err
	}
	if isLoginPage(a.page.URL()) {
		return fmt.Errorf("still on login page after logging in as %q", a.creds.Username)
	}
	return a.checkErrorPage(ctx)
}

// checkErrorPage fails when the CMS rendered its fatal error screen.
func (a *Admin) checkErrorPage(ctx context.Context) error {
	broken, err := a.page.Exists(ctx, "body#error-page")
	if err != nil {
		return err
	}
	if broken {
		return fmt.Errorf("admin page %s rendered an error page", a.page.URL())
	}
	return nil
}

// Login submits the login form, opening it first unless it is already shown.
func (a *Admin) Login(ctx context.Context) error {
	if !isLoginPage(a.page.URL()) {
		if err := a.page.Navigate(ctx, a.baseURL+"/wp-login.php", browser.NavigateOptions{WaitUntil: "load"}); err != nil {
			return err
		}
	}

	if err := a.page.Fill(ctx, "#user_login", a.creds.Username); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if err := a.page.Fill(ctx, "#user_pass", a.creds.Password); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if err := a.page.Click(ctx, "#wp-submit"); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if err := a.page.WaitForLoad(ctx); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	debugLog.Infof("logged in as %s", a.creds.Username)
	return nil
}
