package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings_FlagsOverrideSavedConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(configPath, []byte(`{
  "version": "1.0",
  "sections": {
    "site": {"base_url": "http://saved.test", "username": "saved", "theme": "saved-theme"},
    "browser": {"headless": true},
    "timing": {"settle": "2s"}
  }
}`), 0600))

	cfg, err := loadSettings(&CLIConfig{
		ConfigFile: configPath,
		BaseURL:    "http://flag.test",
		Headless:   false,
		Filter:     "*/Multi-entity edit/*",
		set:        map[string]bool{"headless": true},
	})
	require.NoError(t, err)

	assert.Equal(t, "http://flag.test", cfg.site.BaseURL)
	assert.Equal(t, "saved", cfg.site.Username)
	assert.False(t, cfg.browser.Headless)
	assert.Equal(t, "2s", cfg.timing.Settle.String())
	assert.Equal(t, "saved-theme", cfg.suite.Theme)
	assert.Equal(t, "*/Multi-entity edit/*", cfg.suite.Filter)
	assert.Equal(t, "Test Template Name Edit", cfg.suite.TemplateName)
}

func TestLoadSettings_SuiteFile(t *testing.T) {
	dir := t.TempDir()
	suitePath := filepath.Join(dir, "suite.yaml")
	require.NoError(t, os.WriteFile(suitePath, []byte("template_name: Landing\ntheme: other\n"), 0600))

	cfg, err := loadSettings(&CLIConfig{
		ConfigFile: filepath.Join(dir, "config.json"),
		SuiteFile:  suitePath,
		set:        map[string]bool{},
	})
	require.NoError(t, err)

	assert.Equal(t, "Landing", cfg.suite.TemplateName)
	assert.Equal(t, "other", cfg.suite.Theme)
	assert.True(t, cfg.browser.Headless)
}

func TestLoadSettings_SuiteFileWithoutThemeUsesSiteTheme(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(configPath, []byte(`{
  "version": "1.0",
  "sections": {"site": {"theme": "site-theme"}}
}`), 0600))
	suitePath := filepath.Join(dir, "suite.yaml")
	require.NoError(t, os.WriteFile(suitePath, []byte("template_name: Landing\n"), 0600))

	cfg, err := loadSettings(&CLIConfig{
		ConfigFile: configPath,
		SuiteFile:  suitePath,
		set:        map[string]bool{},
	})
	require.NoError(t, err)

	assert.Equal(t, "site-theme", cfg.suite.Theme)
	assert.Equal(t, "Landing", cfg.suite.TemplateName)
	assert.Equal(t, "Test Template Part Name Edit", cfg.suite.TemplatePartName)
}

func TestLoadSettings_InvalidBaseURL(t *testing.T) {
	_, err := loadSettings(&CLIConfig{
		ConfigFile: filepath.Join(t.TempDir(), "config.json"),
		BaseURL:    "localhost",
		set:        map[string]bool{},
	})
	assert.ErrorContains(t, err, "base_url")
}
