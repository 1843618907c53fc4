// Package config contains everything related to configuration
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	DatabasePath         string
	IdentityPath         string
	LogPath              string
	LogLevel             string
	HackatimeBaseURL     string
	HackatimeAPIKey      string
	SlackID              string
	FeedURL              string
	HackClubClientID     string
	HackClubClientSecret string
	HackClubAuthURL      string
	EnvFile              string
	QueryTimeout         time.Duration
	StatsRefreshInterval time.Duration
	FeedRefreshInterval  time.Duration
	DailyGoalHours       float64
	MaxConcurrentQueries int
	HistoryKeepDays      int
	ParallelQueries      bool
}

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	var envFile string
	for _, path := range getEnvPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				envFile = path
			}
			break
		}
	}

	cfg := FromEnv()
	cfg.EnvFile = envFile

	for _, path := range []string{cfg.DatabasePath, cfg.IdentityPath, cfg.LogPath} {
		if err := ensureDir(filepath.Dir(path)); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// FromEnv builds a Config from the process environment without touching
// the filesystem.
func FromEnv() *Config {
	cfg := &Config{
		DatabasePath:         getEnvString("DATABASE_PATH", defaultPath("hackdash.db")),
		IdentityPath:         getEnvString("IDENTITY_PATH", defaultPath("identity.json")),
		LogPath:              getEnvString("LOG_PATH", defaultPath("hackdash.log")),
		LogLevel:             strings.ToLower(getEnvString("LOG_LEVEL", defaultLogLevel)),
		HackatimeBaseURL:     strings.TrimRight(getEnvString("HACKATIME_BASE_URL", defaultHackatimeBaseURL), "/"),
		HackatimeAPIKey:      getEnvString("HACKATIME_API_KEY", ""),
		SlackID:              strings.TrimSpace(getEnvString("SLACK_ID", "")),
		FeedURL:              getEnvString("FEED_URL", defaultFeedURL),
		HackClubClientID:     getEnvString("HACKCLUB_CLIENT_ID", ""),
		HackClubClientSecret: getEnvString("HACKCLUB_CLIENT_SECRET", ""),
		HackClubAuthURL:      strings.TrimRight(getEnvString("HACKCLUB_AUTH_URL", defaultHackClubAuthURL), "/"),
		QueryTimeout:         getEnvDuration("QUERY_TIMEOUT", defaultQueryTimeout),
		ParallelQueries:      getEnvBool("PARALLEL_QUERIES", false),
		MaxConcurrentQueries: getEnvInt("MAX_CONCURRENT_QUERIES", defaultMaxConcurrentQueries),
		StatsRefreshInterval: getEnvDuration("STATS_REFRESH_INTERVAL", defaultStatsRefreshInterval),
		FeedRefreshInterval:  getEnvDuration("FEED_REFRESH_INTERVAL", defaultFeedRefreshInterval),
		DailyGoalHours:       getEnvFloat("DAILY_GOAL_HOURS", defaultDailyGoalHours),
		HistoryKeepDays:      getEnvInt("HISTORY_KEEP_DAYS", defaultHistoryKeepDays),
	}
	cfg.normalize()
	return cfg
}

// normalize replaces out-of-range values with defaults.
func (c *Config) normalize() {
	if c.QueryTimeout <= 0 {
		c.QueryTimeout = defaultQueryTimeout
	}
	if c.MaxConcurrentQueries <= 0 {
		c.MaxConcurrentQueries = defaultMaxConcurrentQueries
	}
	if c.MaxConcurrentQueries > maxConcurrentLimit {
		c.MaxConcurrentQueries = maxConcurrentLimit
	}
	if c.StatsRefreshInterval < minRefreshInterval {
		c.StatsRefreshInterval = defaultStatsRefreshInterval
	}
	if c.FeedRefreshInterval < minRefreshInterval {
		c.FeedRefreshInterval = defaultFeedRefreshInterval
	}
	if c.DailyGoalHours <= 0 {
		c.DailyGoalHours = defaultDailyGoalHours
	}
	if c.HistoryKeepDays < 0 {
		c.HistoryKeepDays = defaultHistoryKeepDays
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		c.LogLevel = defaultLogLevel
	}
}

// OAuthConfigured reports whether refresh-token resolution is possible.
func (c *Config) OAuthConfigured() bool {
	return c.HackClubClientID != ""
}

// Dir returns the default application directory.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appDirName)
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	// Home directory locations
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", appDirName, ".env"),
			filepath.Join(home, "."+appDirName, ".env"),
		)
	}

	// Parent directories (useful for development)
	if cwd, err := os.Getwd(); err == nil {
		parent := filepath.Dir(cwd)
		paths = append(paths, filepath.Join(parent, ".env"))
		grandparent := filepath.Dir(parent)
		paths = append(paths, filepath.Join(grandparent, ".env"))
	}

	return paths
}

// defaultPath returns name inside the application directory, or name
// itself when there is no home directory.
func defaultPath(name string) string {
	dir := Dir()
	if dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
