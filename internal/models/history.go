// Package models defines data structures and domain types.
package models

import "time"

// HistoryRange represents the selected trends history window.
type HistoryRange int

const (
	// HistoryRange30Days shows the last 30 days of recorded history.
	HistoryRange30Days HistoryRange = iota
	// HistoryRange90Days shows the last 90 days of recorded history.
	HistoryRange90Days
	// HistoryRangeAllTime shows all recorded history.
	HistoryRangeAllTime
)

// String returns the display name for a history range.
func (h HistoryRange) String() string {
	switch h {
	case HistoryRange30Days:
		return "30 Days"
	case HistoryRange90Days:
		return "90 Days"
	case HistoryRangeAllTime:
		return "All Time"
	default:
		return "Unknown"
	}
}

// Days returns the number of days for the range (0 = unlimited).
func (h HistoryRange) Days() int {
	switch h {
	case HistoryRange30Days:
		return 30
	case HistoryRange90Days:
		return 90
	case HistoryRangeAllTime:
		return 0
	default:
		return 30
	}
}

// Next cycles to the next history range.
func (h HistoryRange) Next() HistoryRange {
	return (h + 1) % 3
}

// DailyHistoryPoint is one persisted day of coding hours.
type DailyHistoryPoint struct {
	Date  time.Time
	Hours float64
}

// DailyHistory is an ascending run of persisted days.
type DailyHistory struct {
	Points []DailyHistoryPoint
	Range  HistoryRange
}

// HasData returns true if any day has been recorded.
func (d *DailyHistory) HasData() bool {
	return d != nil && len(d.Points) > 0
}

// Values returns the hours of each point in order.
func (d *DailyHistory) Values() []float64 {
	if d == nil {
		return nil
	}
	values := make([]float64, len(d.Points))
	for i, p := range d.Points {
		values[i] = p.Hours
	}
	return values
}

// Total returns the sum of all recorded hours.
func (d *DailyHistory) Total() float64 {
	total := 0.0
	for _, v := range d.Values() {
		total += v
	}
	return total
}

// ActiveDays counts days with any recorded time.
func (d *DailyHistory) ActiveDays() int {
	n := 0
	for _, v := range d.Values() {
		if v > 0 {
			n++
		}
	}
	return n
}

// GetPeakDay returns the day with the most hours.
func (d *DailyHistory) GetPeakDay() (peakDay time.Time, peakVal float64) {
	if d == nil {
		return time.Time{}, 0
	}
	for _, p := range d.Points {
		if p.Hours > peakVal {
			peakVal = p.Hours
			peakDay = p.Date
		}
	}
	return peakDay, peakVal
}

// WeekdayAverages returns the mean hours per weekday, indexed Sunday=0.
func (d *DailyHistory) WeekdayAverages() [7]float64 {
	var sums [7]float64
	var counts [7]int
	if d != nil {
		for _, p := range d.Points {
			wd := p.Date.Weekday()
			sums[wd] += p.Hours
			counts[wd]++
		}
	}
	var avgs [7]float64
	for i := range sums {
		if counts[i] > 0 {
			avgs[i] = sums[i] / float64(counts[i])
		}
	}
	return avgs
}
