package db

import (
	"testing"
	"time"

	"github.com/j-veylop/hackdash/internal/models"
)

var historyNow = time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC)

func dateAgo(days int) string {
	return historyNow.AddDate(0, 0, -days).Format(sqlDateLayout)
}

func TestUpsertDailyHistory(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	n, err := db.UpsertDailyHistory([]models.DailyBucket{
		{Date: dateAgo(2), Hours: 1.5},
		{Date: dateAgo(1), Hours: 0, Failed: true},
		{Date: dateAgo(0), Hours: 3},
		{Date: "bogus", Hours: 9},
	})
	if err != nil {
		t.Fatalf("UpsertDailyHistory failed: %v", err)
	}
	if n != 2 {
		t.Errorf("written = %d, want 2", n)
	}

	points, err := db.GetDailyHistory(0, historyNow)
	if err != nil {
		t.Fatalf("GetDailyHistory failed: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("points = %d, want 2", len(points))
	}
	if points[0].Hours != 1.5 || points[1].Hours != 3 {
		t.Errorf("points = %+v", points)
	}
	if !points[0].Date.Before(points[1].Date) {
		t.Error("points should be ascending")
	}
}

func TestUpsertDailyHistory_FailedKeepsPrevious(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	if _, err := db.UpsertDailyHistory([]models.DailyBucket{{Date: dateAgo(1), Hours: 4}}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if _, err := db.UpsertDailyHistory([]models.DailyBucket{{Date: dateAgo(1), Hours: 0, Failed: true}}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if _, err := db.UpsertDailyHistory([]models.DailyBucket{{Date: dateAgo(0), Hours: 1}}); err != nil {
		t.Fatalf("third upsert: %v", err)
	}
	if _, err := db.UpsertDailyHistory([]models.DailyBucket{{Date: dateAgo(0), Hours: 2}}); err != nil {
		t.Fatalf("fourth upsert: %v", err)
	}

	points, err := db.GetDailyHistory(0, historyNow)
	if err != nil {
		t.Fatalf("GetDailyHistory failed: %v", err)
	}
	if len(points) != 2 || points[0].Hours != 4 || points[1].Hours != 2 {
		t.Errorf("points = %+v, want [4 2]", points)
	}
}

func TestGetDailyHistory_Window(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	buckets := []models.DailyBucket{
		{Date: dateAgo(120), Hours: 1},
		{Date: dateAgo(60), Hours: 2},
		{Date: dateAgo(29), Hours: 3},
		{Date: dateAgo(30), Hours: 4},
		{Date: dateAgo(0), Hours: 5},
	}
	if _, err := db.UpsertDailyHistory(buckets); err != nil {
		t.Fatalf("UpsertDailyHistory failed: %v", err)
	}

	tests := []struct {
		name string
		r    models.HistoryRange
		want int
	}{
		{"30Days", models.HistoryRange30Days, 2},
		{"90Days", models.HistoryRange90Days, 4},
		{"AllTime", models.HistoryRangeAllTime, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := db.GetDailyHistoryRange(tt.r, historyNow)
			if err != nil {
				t.Fatalf("GetDailyHistoryRange failed: %v", err)
			}
			if len(h.Points) != tt.want {
				t.Errorf("points = %d, want %d", len(h.Points), tt.want)
			}
			if h.Range != tt.r {
				t.Errorf("Range = %v, want %v", h.Range, tt.r)
			}
		})
	}
}

func TestPruneDailyHistory(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	buckets := []models.DailyBucket{
		{Date: dateAgo(400), Hours: 1},
		{Date: dateAgo(366), Hours: 1},
		{Date: dateAgo(10), Hours: 1},
	}
	if _, err := db.UpsertDailyHistory(buckets); err != nil {
		t.Fatalf("UpsertDailyHistory failed: %v", err)
	}

	deleted, err := db.PruneDailyHistory(365, historyNow)
	if err != nil {
		t.Fatalf("PruneDailyHistory failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}

	if n, _ := db.PruneDailyHistory(0, historyNow); n != 0 {
		t.Errorf("PruneDailyHistory(0) deleted %d", n)
	}
}

func TestClearDailyHistory(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	if _, err := db.UpsertDailyHistory([]models.DailyBucket{{Date: dateAgo(1), Hours: 2}}); err != nil {
		t.Fatalf("UpsertDailyHistory failed: %v", err)
	}
	if err := db.ClearDailyHistory(); err != nil {
		t.Fatalf("ClearDailyHistory failed: %v", err)
	}

	points, err := db.GetDailyHistory(0, historyNow)
	if err != nil {
		t.Fatalf("GetDailyHistory failed: %v", err)
	}
	if len(points) != 0 {
		t.Errorf("points = %d, want 0", len(points))
	}
}
