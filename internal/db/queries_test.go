package db

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/j-veylop/hackdash/internal/models"
)

func sampleSnapshot(hours float64) *models.Snapshot {
	return &models.Snapshot{
		Timestamp: time.Date(2025, 3, 12, 15, 30, 0, 0, time.UTC),
		AllTime: &models.StatsSummary{
			Username:     "orpheus",
			TotalSeconds: 360000,
			Languages:    []models.Language{{Name: "Go", TotalSeconds: 3600}},
		},
		Today: &models.StatsSummary{TotalSeconds: hours * 3600},
		Daily: []models.DailyBucket{
			{Date: "2025-03-11", Hours: 1},
			{Date: "2025-03-12", Hours: hours},
		},
		Weekly: []models.WeeklyBucket{{
			WeekStart: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			WeekEnd:   time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC),
			Label:     "Mar 10",
			Hours:     hours + 1,
		}},
		Monthly: []models.MonthlyBucket{{
			MonthStart: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			MonthEnd:   time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
			Label:      "Mar",
			Hours:      hours + 10,
			Failed:     true,
		}},
	}
}

func TestSaveLoadSnapshot(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	snap := sampleSnapshot(2)
	if err := db.SaveSnapshot(CachedStatsKey, snap); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	got, err := db.LoadSnapshot(CachedStatsKey)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if !reflect.DeepEqual(got, snap) {
		t.Errorf("LoadSnapshot() = %+v, want %+v", got, snap)
	}
}

func TestLoadSnapshot_Missing(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	got, err := db.LoadSnapshot(CachedStatsKey)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil snapshot, got %+v", got)
	}
}

func TestSaveSnapshot_ReplacesWholesale(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	if err := db.SaveSnapshot(CachedStatsKey, sampleSnapshot(2)); err != nil {
		t.Fatalf("first save: %v", err)
	}

	second := sampleSnapshot(5)
	second.Daily = second.Daily[:1]
	second.Monthly = nil
	if err := db.SaveSnapshot(CachedStatsKey, second); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := db.LoadSnapshot(CachedStatsKey)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if len(got.Daily) != 1 || got.Monthly != nil {
		t.Errorf("snapshot was merged instead of replaced: %+v", got)
	}
	if got.Today.TotalSeconds != 5*3600 {
		t.Errorf("Today.TotalSeconds = %v, want %v", got.Today.TotalSeconds, 5*3600)
	}

	var count int
	if err := db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM snapshots").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("snapshot rows = %d, want 1", count)
	}
}

func TestSaveSnapshot_Nil(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	if err := db.SaveSnapshot(CachedStatsKey, nil); err == nil {
		t.Error("expected error saving nil snapshot")
	}
}

func TestDeleteSnapshot(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	if err := db.SaveSnapshot(CachedStatsKey, sampleSnapshot(1)); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if err := db.DeleteSnapshot(CachedStatsKey); err != nil {
		t.Fatalf("DeleteSnapshot failed: %v", err)
	}
	got, err := db.LoadSnapshot(CachedStatsKey)
	if err != nil || got != nil {
		t.Errorf("LoadSnapshot after delete = %v, %v", got, err)
	}
}

func TestLoadSnapshot_Corrupt(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	_, err := db.ExecContext(context.Background(),
		"INSERT INTO snapshots (key, payload) VALUES (?, ?)", CachedStatsKey, "{not json")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := db.LoadSnapshot(CachedStatsKey); err == nil {
		t.Error("expected decode error")
	}
}
