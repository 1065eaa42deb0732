package config

import (
	"sync"
)

var (
	// globalManager is the singleton configuration manager instance
	globalManager *Manager
	globalMu      sync.Mutex
)

// Initialize creates and initializes the global configuration manager.
// This should be called once at application startup.
func Initialize(configPath string) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	manager, err := Load(configPath)
	if err != nil {
		return err
	}

	globalManager = manager
	return nil
}

// Load creates a manager with the site, browser and timing sections and
// loads them from the file at configPath.
func Load(configPath string) (*Manager, error) {
	store, err := NewFileStore(configPath, WithSecret(SectionIDSite, "password"))
	if err != nil {
		return nil, err
	}

	manager := NewManager(store)
	for _, section := range []Section{
		NewSiteSection(),
		NewBrowserSection(),
		NewTimingSection(),
	} {
		if err := manager.RegisterSection(section); err != nil {
			return nil, err
		}
	}

	if err := manager.LoadAll(); err != nil {
		return nil, err
	}
	return manager, nil
}

// Global returns the global configuration manager.
// Panics if Initialize has not been called.
func Global() *Manager {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalManager == nil {
		panic("config not initialized: call config.Initialize first")
	}

	return globalManager
}

// IsInitialized returns true if the global configuration has been initialized.
func IsInitialized() bool {
	globalMu.Lock()
	defer globalMu.Unlock()
	return globalManager != nil
}

func globalSection[T Section](id string) T {
	var zero T
	if !IsInitialized() {
		return zero
	}
	section, ok := Global().GetSection(id)
	if !ok {
		return zero
	}
	typed, ok := section.(T)
	if !ok {
		return zero
	}
	return typed
}

// GetSite returns the site section from global config.
// Returns nil if config is not initialized.
func GetSite() *SiteSection {
	return globalSection[*SiteSection](SectionIDSite)
}

// GetBrowser returns the browser section from global config.
// Returns nil if config is not initialized.
func GetBrowser() *BrowserSection {
	return globalSection[*BrowserSection](SectionIDBrowser)
}

// GetTiming returns the timing section from global config.
// Returns nil if config is not initialized.
func GetTiming() *TimingSection {
	return globalSection[*TimingSection](SectionIDTiming)
}
