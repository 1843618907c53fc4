package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestRoundHours(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		want    float64
	}{
		{"Zero", 0, 0},
		{"OneHourOneMinute", 3661, 1.02},
		{"HalfHour", 1800, 0.5},
		{"BelowHalf", 17, 0},
		{"TwoHours", 7200, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RoundHours(tt.seconds); got != tt.want {
				t.Errorf("RoundHours(%v) = %v, want %v", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestRangeSample_Hours(t *testing.T) {
	tests := []struct {
		name   string
		sample RangeSample
		want   float64
		wantOK bool
	}{
		{"Success", RangeSample{Seconds: 3661}, 1.02, true},
		{"Failure", RangeSample{Seconds: 3661, Err: errors.New("boom")}, 0, false},
		{"Negative", RangeSample{Seconds: -5}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sample.Hours(); got != tt.want {
				t.Errorf("Hours() = %v, want %v", got, tt.want)
			}
			if got := tt.sample.OK(); got != tt.wantOK {
				t.Errorf("OK() = %v, want %v", got, tt.wantOK)
			}
		})
	}
}

func TestTimeRange(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	r := NewTimeRange(
		time.Date(2025, 1, 1, 0, 0, 0, 0, loc),
		time.Date(2025, 1, 2, 0, 0, 0, 0, loc),
	)

	if r.Start.Location() != time.UTC || r.End.Location() != time.UTC {
		t.Error("NewTimeRange should normalize to UTC")
	}
	if !r.Valid() {
		t.Error("Valid() = false, want true")
	}
	if r.Duration() != 24*time.Hour {
		t.Errorf("Duration() = %v, want 24h", r.Duration())
	}
	if got := r.StartParam(); got != "2024-12-31T22:00:00Z" {
		t.Errorf("StartParam() = %q", got)
	}
	if got := r.EndParam(); got != "2025-01-01T22:00:00Z" {
		t.Errorf("EndParam() = %q", got)
	}

	empty := NewTimeRange(r.Start, r.Start)
	if empty.Valid() {
		t.Error("empty range should be invalid")
	}
}

func TestDailyBucket_Day(t *testing.T) {
	b := DailyBucket{Date: "2025-03-09", Hours: 1}
	got := b.Day(time.UTC)
	if !got.Equal(time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Day() = %v", got)
	}

	bad := DailyBucket{Date: "not-a-date"}
	if !bad.Day(time.UTC).IsZero() {
		t.Error("malformed date should parse to zero time")
	}
}

func TestSnapshot_JSONKeys(t *testing.T) {
	snap := Snapshot{
		Timestamp: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		AllTime:   &StatsSummary{Username: "orpheus", TotalSeconds: 7200},
		Daily:     []DailyBucket{{Date: "2025-01-01", Hours: 2}},
	}
	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for _, key := range []string{"timestamp", "allTimeStats", "todayStats", "weeklyData", "monthlyData", "threeMonthData"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}
}

func TestSnapshot_Helpers(t *testing.T) {
	var nilSnap *Snapshot
	if nilSnap.Username() != "" || nilSnap.Age(time.Now()) != 0 {
		t.Error("nil snapshot helpers should return zero values")
	}

	ts := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	snap := &Snapshot{Timestamp: ts, AllTime: &StatsSummary{Username: "orpheus"}}
	if got := snap.Username(); got != "orpheus" {
		t.Errorf("Username() = %q", got)
	}
	if got := snap.Age(ts.Add(90 * time.Second)); got != 90*time.Second {
		t.Errorf("Age() = %v", got)
	}
}

func TestStatsSummary_TotalHours(t *testing.T) {
	s := &StatsSummary{TotalSeconds: 5400}
	if got := s.TotalHours(); got != 1.5 {
		t.Errorf("TotalHours() = %v, want 1.5", got)
	}
	var nilSummary *StatsSummary
	if nilSummary.TotalHours() != 0 {
		t.Error("nil TotalHours() should be 0")
	}
}
