// Package config contains everything related to configuration
package config

import "time"

// appDirName is the directory under ~/.config holding all app files.
const appDirName = "hackdash"

// Default values
const (
	defaultHackatimeBaseURL     = "https://hackatime.hackclub.com/api/v1"
	defaultFeedURL              = "https://ysws.hackclub.com/feed.xml"
	defaultHackClubAuthURL      = "https://auth.hackclub.com"
	defaultLogLevel             = "info"
	defaultQueryTimeout         = 10 * time.Second
	defaultMaxConcurrentQueries = 4
	defaultStatsRefreshInterval = 5 * time.Minute
	defaultFeedRefreshInterval  = 30 * time.Minute
	defaultDailyGoalHours       = 2.0
	defaultHistoryKeepDays      = 730
)

// Lower bounds that keep the API from being hammered by a typo.
const (
	minRefreshInterval = 30 * time.Second
	maxConcurrentLimit = 14
)
