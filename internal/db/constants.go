package db

// Snapshot keys.
const (
	// CachedStatsKey holds the last successful full aggregation.
	CachedStatsKey = "cachedStats"
)

// sqlDateLayout matches the date column of daily_hours.
const sqlDateLayout = "2006-01-02"

// sqlTimeLayout is how DATETIME columns are written so SQLite date functions
// can read them.
const sqlTimeLayout = "2006-01-02 15:04:05"
