// Package main is the entry point for hackdash, a terminal dashboard for
// Hackatime coding stats. It loads configuration, starts the services and
// runs the Bubble Tea program.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/hackdash/internal/app"
	"github.com/j-veylop/hackdash/internal/config"
	"github.com/j-veylop/hackdash/internal/logger"
	"github.com/j-veylop/hackdash/internal/services"
	"github.com/j-veylop/hackdash/internal/ui/tabs/dashboard"
	"github.com/j-veylop/hackdash/internal/ui/tabs/feed"
	"github.com/j-veylop/hackdash/internal/ui/tabs/info"
	"github.com/j-veylop/hackdash/internal/ui/tabs/trends"
	"github.com/j-veylop/hackdash/internal/version"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "-v" || os.Args[1] == "--version") {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		printUsage()
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// The TUI owns the terminal, so logs go to a file.
	logFile, err := logger.Setup(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		logger.Discard()
	} else {
		defer func() { _ = logFile.Close() }()
	}
	logger.Info("starting hackdash", "version", version.GetVersion(), "env_file", cfg.EnvFile)

	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	model := app.NewModel(svcManager)

	state := model.GetState()
	model.SetTabs([]app.Tab{
		dashboard.New(state, cfg.DailyGoalHours),
		trends.New(state, svcManager),
		feed.New(state),
		info.New(state, cfg),
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	logger.Info("hackdash stopped")
	return nil
}

func printUsage() {
	fmt.Println(`hackdash - Hackatime coding stats in your terminal

Usage:
  hackdash [flags]

Flags:
  -h, --help      Show this help message
  -v, --version   Show version information

Keyboard Shortcuts:
  1-4             Switch tabs (Dashboard, Trends, Feed, Info)
  Tab/Shift+Tab   Navigate between tabs
  j/k, Up/Down    Scroll or move the selection
  i               Enter your Slack ID (Dashboard)
  t               Cycle the history range (Trends)
  c               Copy link (Feed) or stats URL (Info)
  r               Refresh stats, or the feed on the Feed tab
  ?               Toggle help
  q, Ctrl+C       Quit

Environment Variables:
  SLACK_ID                Slack member ID to track (overrides the identity file)
  HACKATIME_BASE_URL      Stats API root (default: https://hackatime.hackclub.com/api/v1)
  HACKATIME_API_KEY       Optional bearer token
  FEED_URL                Program feed (default: https://ysws.hackclub.com/feed.xml)
  DATABASE_PATH           SQLite cache path
  IDENTITY_PATH           Identity JSON file path
  LOG_PATH, LOG_LEVEL     Log file and level (default: info)
  QUERY_TIMEOUT           Per-range query timeout (default: 10s)
  PARALLEL_QUERIES        Run range queries concurrently (default: false)
  STATS_REFRESH_INTERVAL  Stats polling interval (default: 5m)
  FEED_REFRESH_INTERVAL   Feed polling interval (default: 30m)
  DAILY_GOAL_HOURS        Daily coding goal (default: 2)

Configuration:
  hackdash looks for a .env file in the following locations:
  - Current directory
  - ~/.config/hackdash/.env
  - ~/.hackdash/.env
  - Parent directories`)
}
