package usage

import (
	"math"

	"github.com/j-veylop/hackdash/internal/models"
)

// NotAvailable is shown when no language has any recorded time.
const NotAvailable = "N/A"

// StreakThresholdHours is the minimum a day needs to extend a streak.
// A day at exactly the threshold breaks it.
const StreakThresholdHours = 0.25

// Streak counts the trailing days whose hours exceed StreakThresholdHours.
func Streak(daily []models.DailyBucket) int {
	streak := 0
	for i := len(daily) - 1; i >= 0; i-- {
		if daily[i].Hours <= StreakThresholdHours {
			break
		}
		streak++
	}
	return streak
}

// WeekOverWeekChange compares the last 7 days with the 7 before them as an
// integer percentage. It is 0 with fewer than 14 days or an empty prior week.
func WeekOverWeekChange(daily []models.DailyBucket) int {
	n := len(daily)
	if n < 2*7 {
		return 0
	}

	thisWeek := sumHours(daily[n-7:])
	lastWeek := sumHours(daily[n-14 : n-7])
	if lastWeek == 0 {
		return 0
	}
	// Halves round toward +Inf, so -12.5 becomes -12.
	return int(math.Floor((thisWeek-lastWeek)/lastWeek*100 + 0.5))
}

// FavoriteLanguage returns the first language, in API order, with any time.
// It does not pick the largest.
func FavoriteLanguage(summary *models.StatsSummary) string {
	if summary == nil {
		return NotAvailable
	}
	for _, lang := range summary.Languages {
		if lang.TotalSeconds > 0 {
			return lang.Name
		}
	}
	return NotAvailable
}

// TodayHours returns today's total rounded to one decimal.
func TodayHours(summary *models.StatsSummary) float64 {
	if summary == nil {
		return 0
	}
	return math.Round(summary.TotalSeconds/3600*10) / 10
}

// AllTimeHours returns the all-time total rounded to whole hours.
func AllTimeHours(summary *models.StatsSummary) int {
	if summary == nil {
		return 0
	}
	return int(math.Round(summary.TotalSeconds / 3600))
}

// LastDays returns at most the final n buckets.
func LastDays(daily []models.DailyBucket, n int) []models.DailyBucket {
	if n <= 0 {
		return nil
	}
	if len(daily) <= n {
		return daily
	}
	return daily[len(daily)-n:]
}

// WeekTotal sums the final 7 days.
func WeekTotal(daily []models.DailyBucket) float64 {
	return sumHours(LastDays(daily, 7))
}

func sumHours(days []models.DailyBucket) float64 {
	total := 0.0
	for _, d := range days {
		total += d.Hours
	}
	return total
}
