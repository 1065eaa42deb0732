// Package main runs the multi-entity dirty state suite against a live site
// editor and reports which scenarios passed.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/entrhq/dirtycheck/pkg/browser"
	appconfig "github.com/entrhq/dirtycheck/pkg/config"
	"github.com/entrhq/dirtycheck/pkg/dirty"
	"github.com/entrhq/dirtycheck/pkg/editor"
	"github.com/entrhq/dirtycheck/pkg/logging"
	"github.com/entrhq/dirtycheck/pkg/report"
	"github.com/entrhq/dirtycheck/pkg/scenario"
	"github.com/entrhq/dirtycheck/pkg/wpadmin"
)

const (
	version     = "0.1.0"
	sessionName = "dirtycheck"
)

// errScenariosFailed signals a completed run with failing scenarios.
var errScenariosFailed = errors.New("scenarios failed")

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigFile    string
	SuiteFile     string
	BaseURL       string
	Username      string
	Password      string
	Headless      bool
	Install       bool
	Filter        string
	OutputDir     string
	LogLevel      string
	Timeout       time.Duration
	ShowSnapshots bool
	CopyReport    bool
	ShowVersion   bool

	// set records flags given explicitly, which override saved config
	set map[string]bool
}

func main() {
	config := parseFlags()

	if config.ShowVersion {
		fmt.Printf("dirtycheck v%s\n", version)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nShutting down gracefully...")
		cancel()
	}()

	err := run(ctx, config)
	cancel()
	switch {
	case errors.Is(err, errScenariosFailed):
		os.Exit(1)
	case err != nil:
		log.Printf("Run failed: %v", err)
		os.Exit(2)
	}
}

// parseFlags parses command line flags
func parseFlags() *CLIConfig {
	config := &CLIConfig{}

	flag.StringVar(&config.ConfigFile, "config", "", "Path to settings file (default ~/.dirtycheck/config.json)")
	flag.StringVar(&config.SuiteFile, "suite", "", "Path to suite options file (YAML)")
	flag.StringVar(&config.BaseURL, "base-url", "", "Site address, overrides the saved setting")
	flag.StringVar(&config.Username, "user", "", "Admin username, overrides the saved setting")
	flag.StringVar(&config.Password, "password", os.Getenv("DIRTYCHECK_PASSWORD"), "Admin password")
	flag.BoolVar(&config.Headless, "headless", true, "Run Chromium without a window")
	flag.BoolVar(&config.Install, "install", false, "Install the Playwright driver and Chromium before running")
	flag.StringVar(&config.Filter, "filter", "", "Glob over scenario names, e.g. '*/Multi-entity edit/*'")
	flag.StringVar(&config.OutputDir, "output", "dirtycheck-report", "Directory for report.json and summary.md")
	flag.StringVar(&config.LogLevel, "log-level", "info", "Log level: debug, info, warn or error")
	flag.DurationVar(&config.Timeout, "timeout", 10*time.Minute, "Overall run timeout")
	flag.BoolVar(&config.ShowSnapshots, "snapshots", false, "Print highlighted save panel snapshots of failures")
	flag.BoolVar(&config.CopyReport, "copy", false, "Copy a failure digest to the clipboard")
	flag.BoolVar(&config.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "dirtycheck - checks that site editor edits dirty only their own entity\n\n")
		fmt.Fprintf(os.Stderr, "Usage: dirtycheck [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  dirtycheck -base-url http://localhost:8889 -install\n")
		fmt.Fprintf(os.Stderr, "  dirtycheck -headless=false -filter '*/Multi-entity edit/*'\n\n")
	}

	flag.Parse()

	config.set = make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		config.set[f.Name] = true
	})
	return config
}

// settings is the merged result of saved config, suite file and flags.
type settings struct {
	site    *appconfig.SiteSection
	browser browser.SessionOptions
	timing  dirty.Timing
	suite   scenario.Options
}

func loadSettings(cli *CLIConfig) (*settings, error) {
	if err := appconfig.Initialize(cli.ConfigFile); err != nil {
		return nil, fmt.Errorf("failed to initialize configuration: %w", err)
	}

	site := appconfig.GetSite()
	if cli.BaseURL != "" {
		site.BaseURL = cli.BaseURL
	}
	if cli.Username != "" {
		site.Username = cli.Username
	}
	if cli.set["password"] || cli.Password != "" {
		site.Password = cli.Password
	}
	if err := appconfig.Global().ValidateAll(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	s := &settings{
		site:    site,
		browser: appconfig.GetBrowser().SessionOptions(),
		timing:  appconfig.GetTiming().Timing(),
		suite:   scenario.Options{},
	}
	if cli.set["headless"] {
		s.browser.Headless = cli.Headless
	}

	if cli.SuiteFile != "" {
		opts, err := scenario.LoadOptions(cli.SuiteFile)
		if err != nil {
			return nil, err
		}
		s.suite = opts
	}
	if s.suite.Theme == "" {
		s.suite.Theme = site.Theme
	}
	if cli.Filter != "" {
		s.suite.Filter = cli.Filter
	}
	s.suite = s.suite.WithDefaults()
	return s, nil
}

// run executes the suite and writes the report
func run(ctx context.Context, cli *CLIConfig) error {
	level, err := logging.ParseLevel(cli.LogLevel)
	if err != nil {
		return err
	}
	logging.SetLevel(level)

	logger, err := logging.NewLogger("dirtycheck")
	if err != nil {
		log.Printf("Warning: %v", err)
	}
	defer logger.Close()

	cfg, err := loadSettings(cli)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, cli.Timeout)
	defer cancel()

	manager := browser.NewSessionManager()
	if err := manager.Initialize(cli.Install, os.Stderr); err != nil {
		return err
	}
	defer func() {
		if err := manager.Shutdown(); err != nil {
			logger.Warnf("browser shutdown: %v", err)
		}
	}()

	session, err := manager.StartSession(sessionName, cfg.browser)
	if err != nil {
		return err
	}
	logger.Infof("run %s against %s", logging.GetRunID(), cfg.site.BaseURL)

	user, pass := cfg.site.Credentials()
	admin := wpadmin.New(session, cfg.site.BaseURL, wpadmin.Credentials{Username: user, Password: pass})
	siteEditor := editor.New(session, admin)
	siteEditor.SetSettle(cfg.timing.Settle)
	observer := dirty.NewObserver(session,
		dirty.WithTiming(cfg.timing),
		dirty.WithLogger(logger),
	)

	runner, err := scenario.NewRunner(
		scenario.WithFilter(cfg.suite.Filter),
		scenario.WithConsole(session.Console()),
		scenario.WithSnapshots(session, observer.Selectors().Panel),
	)
	if err != nil {
		return err
	}

	start := time.Now()
	results := runner.Run(ctx, scenario.MultiEntity(scenario.Env{
		Admin:    admin,
		Editor:   siteEditor,
		Observer: observer,
		Options:  cfg.suite,
	}))

	summary := report.NewSummary(logging.GetRunID(), start, results)
	summary.BaseURL = cfg.site.BaseURL

	if err := report.Render(os.Stdout, summary); err != nil {
		return err
	}
	if cli.ShowSnapshots {
		if err := report.RenderSnapshots(os.Stdout, summary, report.DefaultSnapshotLength); err != nil {
			logger.Warnf("snapshot rendering: %v", err)
		}
	}
	if err := report.NewWriter(cli.OutputDir).WriteAll(summary); err != nil {
		return err
	}
	if cli.CopyReport {
		if err := report.CopyToClipboard(summary); err != nil {
			logger.Warnf("%v", err)
		}
	}

	if !summary.Passed() {
		return errScenariosFailed
	}
	return nil
}
