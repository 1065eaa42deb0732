package config

import (
	"fmt"
	"net/url"
	"sync"
)

const (
	// SectionIDSite is the identifier for the site section
	SectionIDSite = "site"

	defaultBaseURL  = "http://localhost:8889"
	defaultUsername = "admin"
	defaultPassword = "password"
	defaultTheme    = "test-theme"
)

// SiteSection holds where the site lives and how to log in.
type SiteSection struct {
	BaseURL  string `json:"base_url"`
	Username string `json:"username"`
	Password string `json:"password"`
	Theme    string `json:"theme"`
	mu       sync.RWMutex
}

// NewSiteSection creates a site section pointing at a local test install.
func NewSiteSection() *SiteSection {
	s := &SiteSection{}
	s.Reset()
	return s
}

// ID returns the section identifier.
func (s *SiteSection) ID() string {
	return SectionIDSite
}

// Title returns the section title.
func (s *SiteSection) Title() string {
	return "Site"
}

// Description returns the section description.
func (s *SiteSection) Description() string {
	return "Address of the site under test and the admin account used to log in."
}

// Data returns the current configuration data.
func (s *SiteSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"base_url": s.BaseURL,
		"username": s.Username,
		"password": s.Password,
		"theme":    s.Theme,
	}
}

// SetData updates the configuration from the provided data.
func (s *SiteSection) SetData(data map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		var target *string
		switch key {
		case "base_url":
			target = &s.BaseURL
		case "username":
			target = &s.Username
		case "password":
			target = &s.Password
		case "theme":
			target = &s.Theme
		default:
			// Ignore unknown keys for forward compatibility
			continue
		}

		v, err := stringValue(key, value)
		if err != nil {
			return err
		}
		*target = v
	}
	return nil
}

// Validate validates the current configuration.
func (s *SiteSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, err := url.Parse(s.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url must be http or https, got %q", s.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("base_url has no host: %q", s.BaseURL)
	}
	if s.Username == "" {
		return fmt.Errorf("username is required")
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *SiteSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.BaseURL = defaultBaseURL
	s.Username = defaultUsername
	s.Password = defaultPassword
	s.Theme = defaultTheme
}

// Credentials returns the login pair.
func (s *SiteSection) Credentials() (string, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Username, s.Password
}
