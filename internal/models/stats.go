// Package models defines data structures and domain types.
package models

import "time"

// Language is one per-language total from the statistics API.
type Language struct {
	Name         string  `json:"name"`
	Text         string  `json:"text,omitempty"`
	Digital      string  `json:"digital,omitempty"`
	TotalSeconds float64 `json:"total_seconds"`
	Percent      float64 `json:"percent,omitempty"`
	Hours        int     `json:"hours,omitempty"`
	Minutes      int     `json:"minutes,omitempty"`
}

// StatsSummary is the data object of a statistics response.
type StatsSummary struct {
	Username                  string     `json:"username"`
	UserID                    string     `json:"user_id"`
	Status                    string     `json:"status,omitempty"`
	Start                     string     `json:"start,omitempty"`
	End                       string     `json:"end,omitempty"`
	Range                     string     `json:"range,omitempty"`
	HumanReadableRange        string     `json:"human_readable_range,omitempty"`
	HumanReadableTotal        string     `json:"human_readable_total,omitempty"`
	HumanReadableDailyAverage string     `json:"human_readable_daily_average,omitempty"`
	Languages                 []Language `json:"languages"`
	TotalSeconds              float64    `json:"total_seconds"`
	DailyAverage              float64    `json:"daily_average,omitempty"`
	IsCodingActivityVisible   bool       `json:"is_coding_activity_visible,omitempty"`
	IsOtherUsageVisible       bool       `json:"is_other_usage_visible,omitempty"`
}

// TotalHours returns TotalSeconds as fractional hours, unrounded.
func (s *StatsSummary) TotalHours() float64 {
	if s == nil {
		return 0
	}
	return s.TotalSeconds / 3600
}

// Snapshot is the most recent full aggregation: the two headline totals and
// the three bucketed series.
type Snapshot struct {
	UserID    string          `json:"userId,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	AllTime   *StatsSummary   `json:"allTimeStats"`
	Today     *StatsSummary   `json:"todayStats"`
	Daily     []DailyBucket   `json:"weeklyData"`
	Weekly    []WeeklyBucket  `json:"monthlyData"`
	Monthly   []MonthlyBucket `json:"threeMonthData"`
}

// Age returns how old the snapshot is relative to now.
func (s *Snapshot) Age(now time.Time) time.Duration {
	if s == nil || s.Timestamp.IsZero() {
		return 0
	}
	return now.Sub(s.Timestamp)
}

// Username returns the display name from the all-time summary, if any.
func (s *Snapshot) Username() string {
	if s == nil || s.AllTime == nil {
		return ""
	}
	return s.AllTime.Username
}

// BelongsTo reports whether the snapshot was aggregated for userID.
// Snapshots written before the owner was recorded belong to nobody.
func (s *Snapshot) BelongsTo(userID string) bool {
	return s != nil && userID != "" && s.UserID == userID
}
