// Package models defines data structures and domain types.
package models

import (
	"fmt"
	"math"
	"time"
)

// TimeRange is a half-open [Start, End) window of UTC instants used as a
// statistics query key.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewTimeRange builds a range from two instants, normalizing both to UTC.
func NewTimeRange(start, end time.Time) TimeRange {
	return TimeRange{Start: start.UTC(), End: end.UTC()}
}

// Valid reports whether Start is strictly before End.
func (r TimeRange) Valid() bool {
	return r.Start.Before(r.End)
}

// Duration returns End - Start.
func (r TimeRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// StartParam returns Start as an ISO-8601 instant for query strings.
func (r TimeRange) StartParam() string {
	return r.Start.UTC().Format(time.RFC3339)
}

// EndParam returns End as an ISO-8601 instant for query strings.
func (r TimeRange) EndParam() string {
	return r.End.UTC().Format(time.RFC3339)
}

// String returns a compact "start..end" rendering.
func (r TimeRange) String() string {
	return fmt.Sprintf("%s..%s", r.StartParam(), r.EndParam())
}

// RangeSample is the tagged result of querying one TimeRange. A failed query
// carries Err and is never treated as missing downstream.
type RangeSample struct {
	Err     error
	Range   TimeRange
	Seconds float64
}

// OK reports whether the query succeeded.
func (s RangeSample) OK() bool {
	return s.Err == nil
}

// Hours collapses the sample to rounded hours. Failed samples count as 0.
func (s RangeSample) Hours() float64 {
	if !s.OK() || s.Seconds <= 0 {
		return 0
	}
	return RoundHours(s.Seconds)
}

// RoundHours converts seconds to hours rounded half-up to 2 decimals.
func RoundHours(seconds float64) float64 {
	return math.Round(seconds/3600*100) / 100
}

// DailyBucket holds the hours coded on one local calendar day.
type DailyBucket struct {
	Date   string  `json:"date"`
	Hours  float64 `json:"hours"`
	Failed bool    `json:"failed,omitempty"`
}

// DailyDateLayout is the layout of DailyBucket.Date.
const DailyDateLayout = "2006-01-02"

// Day parses Date in loc. It returns the zero time if Date is malformed.
func (b DailyBucket) Day(loc *time.Location) time.Time {
	t, err := time.ParseInLocation(DailyDateLayout, b.Date, loc)
	if err != nil {
		return time.Time{}
	}
	return t
}

// WeeklyBucket holds the hours coded in one Monday-anchored week.
type WeeklyBucket struct {
	WeekStart time.Time `json:"weekStart"`
	WeekEnd   time.Time `json:"weekEnd"`
	Label     string    `json:"label"`
	Hours     float64   `json:"hours"`
	Failed    bool      `json:"failed,omitempty"`
}

// MonthlyBucket holds the hours coded in one calendar month.
type MonthlyBucket struct {
	MonthStart time.Time `json:"monthStart"`
	MonthEnd   time.Time `json:"monthEnd"`
	Label      string    `json:"label"`
	Hours      float64   `json:"hours"`
	Failed     bool      `json:"failed,omitempty"`
}
