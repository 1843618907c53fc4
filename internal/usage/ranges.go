package usage

import (
	"time"

	"github.com/j-veylop/hackdash/internal/models"
)

// Series lengths.
const (
	DailyBuckets   = 14
	WeeklyBuckets  = 4
	MonthlyBuckets = 3
)

// Bucket label layouts.
const (
	WeekLabelLayout  = "Jan 2"
	MonthLabelLayout = "Jan"
)

// DayRanges returns the 14 local calendar days ending with now's day, oldest
// first. Each boundary is its own local midnight so DST days keep their
// true 23 or 25 hour length.
func DayRanges(now time.Time) []models.TimeRange {
	y, m, d := now.Date()
	loc := now.Location()

	ranges := make([]models.TimeRange, 0, DailyBuckets)
	for i := DailyBuckets - 1; i >= 0; i-- {
		start := time.Date(y, m, d-i, 0, 0, 0, 0, loc)
		end := time.Date(y, m, d-i+1, 0, 0, 0, 0, loc)
		ranges = append(ranges, models.NewTimeRange(start, end))
	}
	return ranges
}

// WeekStart returns local midnight of the Monday on or before now.
func WeekStart(now time.Time) time.Time {
	back := int(now.Weekday()) - 1
	if now.Weekday() == time.Sunday {
		back = 6
	}
	y, m, d := now.Date()
	return time.Date(y, m, d-back, 0, 0, 0, 0, now.Location())
}

// WeekRanges returns the current week and the three before it, oldest first.
func WeekRanges(now time.Time) []models.TimeRange {
	ws := WeekStart(now)
	y, m, d := ws.Date()
	loc := ws.Location()

	ranges := make([]models.TimeRange, 0, WeeklyBuckets)
	for i := WeeklyBuckets - 1; i >= 0; i-- {
		start := time.Date(y, m, d-7*i, 0, 0, 0, 0, loc)
		end := time.Date(y, m, d-7*i+7, 0, 0, 0, 0, loc)
		ranges = append(ranges, models.NewTimeRange(start, end))
	}
	return ranges
}

// MonthRanges returns the current calendar month and the two before it,
// oldest first.
func MonthRanges(now time.Time) []models.TimeRange {
	y, m, _ := now.Date()
	loc := now.Location()

	ranges := make([]models.TimeRange, 0, MonthlyBuckets)
	for i := MonthlyBuckets - 1; i >= 0; i-- {
		start := time.Date(y, m-time.Month(i), 1, 0, 0, 0, 0, loc)
		end := time.Date(y, m-time.Month(i)+1, 1, 0, 0, 0, 0, loc)
		ranges = append(ranges, models.NewTimeRange(start, end))
	}
	return ranges
}

// TodayRange returns [local midnight, next local midnight) for now's day.
func TodayRange(now time.Time) models.TimeRange {
	y, m, d := now.Date()
	loc := now.Location()
	return models.NewTimeRange(
		time.Date(y, m, d, 0, 0, 0, 0, loc),
		time.Date(y, m, d+1, 0, 0, 0, 0, loc),
	)
}
