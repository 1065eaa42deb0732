package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/entrhq/dirtycheck/pkg/browser"
)

const (
	// SectionIDBrowser is the identifier for the browser section
	SectionIDBrowser = "browser"

	defaultHeadless       = true
	defaultSlowMo         = time.Duration(0)
	defaultViewportWidth  = 1280
	defaultViewportHeight = 720
	defaultActionTimeout  = 30 * time.Second
)

// BrowserSection configures the Chromium session.
type BrowserSection struct {
	Headless       bool          `json:"headless"`
	SlowMo         time.Duration `json:"slow_mo"`
	ViewportWidth  int           `json:"viewport_width"`
	ViewportHeight int           `json:"viewport_height"`
	Timeout        time.Duration `json:"timeout"`
	mu             sync.RWMutex
}

// NewBrowserSection creates a browser section with default settings.
func NewBrowserSection() *BrowserSection {
	s := &BrowserSection{}
	s.Reset()
	return s
}

// ID returns the section identifier.
func (s *BrowserSection) ID() string {
	return SectionIDBrowser
}

// Title returns the section title.
func (s *BrowserSection) Title() string {
	return "Browser"
}

// Description returns the section description.
func (s *BrowserSection) Description() string {
	return "Chromium launch options, viewport size and the default action timeout."
}

// Data returns the current configuration data.
func (s *BrowserSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"headless":        s.Headless,
		"slow_mo":         s.SlowMo.String(),
		"viewport_width":  s.ViewportWidth,
		"viewport_height": s.ViewportHeight,
		"timeout":         s.Timeout.String(),
	}
}

// SetData updates the configuration from the provided data.
func (s *BrowserSection) SetData(data map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	for key, value := range data {
		switch key {
		case "headless":
			s.Headless, err = boolValue(key, value)
		case "slow_mo":
			s.SlowMo, err = durationValue(key, value)
		case "viewport_width":
			s.ViewportWidth, err = intValue(key, value)
		case "viewport_height":
			s.ViewportHeight, err = intValue(key, value)
		case "timeout":
			s.Timeout, err = durationValue(key, value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Validate validates the current configuration.
func (s *BrowserSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.ViewportWidth < 320 || s.ViewportHeight < 240 {
		return fmt.Errorf("viewport must be at least 320x240, got %dx%d", s.ViewportWidth, s.ViewportHeight)
	}
	if s.Timeout < time.Second {
		return fmt.Errorf("timeout must be at least 1s, got %v", s.Timeout)
	}
	if s.SlowMo < 0 {
		return fmt.Errorf("slow_mo must not be negative, got %v", s.SlowMo)
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *BrowserSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Headless = defaultHeadless
	s.SlowMo = defaultSlowMo
	s.ViewportWidth = defaultViewportWidth
	s.ViewportHeight = defaultViewportHeight
	s.Timeout = defaultActionTimeout
}

// SessionOptions converts the section into browser session options.
func (s *BrowserSection) SessionOptions() browser.SessionOptions {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return browser.SessionOptions{
		Headless: s.Headless,
		Viewport: &browser.Viewport{Width: s.ViewportWidth, Height: s.ViewportHeight},
		Timeout:  s.Timeout,
		SlowMo:   s.SlowMo,
	}
}
