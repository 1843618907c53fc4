package usage

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/j-veylop/hackdash/internal/models"
)

type fakeSource struct {
	rangeFn   func(ctx context.Context, r models.TimeRange) (float64, error)
	summaryFn func(r *models.TimeRange) (*models.StatsSummary, error)
	calls     atomic.Int32
}

func (f *fakeSource) RangeTotal(ctx context.Context, _ string, r models.TimeRange) (float64, error) {
	f.calls.Add(1)
	return f.rangeFn(ctx, r)
}

func (f *fakeSource) Summary(_ context.Context, _ string, r *models.TimeRange) (*models.StatsSummary, error) {
	if f.summaryFn == nil {
		return &models.StatsSummary{Username: "orpheus"}, nil
	}
	return f.summaryFn(r)
}

func constant(seconds float64) func(context.Context, models.TimeRange) (float64, error) {
	return func(context.Context, models.TimeRange) (float64, error) {
		return seconds, nil
	}
}

// byDay returns a distinct total per range so ordering mistakes show up.
func byDay(_ context.Context, r models.TimeRange) (float64, error) {
	return float64(r.Start.YearDay()) * 360, nil
}

var testNow = time.Date(2025, 3, 12, 15, 30, 0, 0, time.UTC)

func TestNew_Defaults(t *testing.T) {
	a := New(&fakeSource{}, Config{})
	cfg := a.Config()
	if cfg.QueryTimeout != 10*time.Second {
		t.Errorf("QueryTimeout = %v, want 10s", cfg.QueryTimeout)
	}
	if cfg.MaxConcurrent != 4 {
		t.Errorf("MaxConcurrent = %d, want 4", cfg.MaxConcurrent)
	}
	if cfg.Parallel {
		t.Error("Parallel should default to false")
	}
}

func TestDailySeries(t *testing.T) {
	src := &fakeSource{rangeFn: constant(3661)}
	a := New(src, DefaultConfig())

	daily, err := a.DailySeries(context.Background(), "U123", testNow)
	if err != nil {
		t.Fatalf("DailySeries: %v", err)
	}
	if len(daily) != DailyBuckets {
		t.Fatalf("len = %d, want %d", len(daily), DailyBuckets)
	}
	if daily[0].Date != "2025-02-27" || daily[13].Date != "2025-03-12" {
		t.Errorf("dates = %s..%s, want 2025-02-27..2025-03-12", daily[0].Date, daily[13].Date)
	}
	for i, b := range daily {
		if b.Hours != 1.02 {
			t.Errorf("bucket %d hours = %v, want 1.02", i, b.Hours)
		}
		if b.Failed {
			t.Errorf("bucket %d marked failed", i)
		}
		if i > 0 && daily[i-1].Date >= b.Date {
			t.Errorf("dates not ascending at %d: %s >= %s", i, daily[i-1].Date, b.Date)
		}
	}
	if got := src.calls.Load(); got != DailyBuckets {
		t.Errorf("queries = %d, want %d", got, DailyBuckets)
	}
}

func TestDailySeries_LocalDates(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	now := time.Date(2025, 3, 13, 1, 0, 0, 0, loc)
	a := New(&fakeSource{rangeFn: constant(0)}, DefaultConfig())

	daily, err := a.DailySeries(context.Background(), "U123", now)
	if err != nil {
		t.Fatalf("DailySeries: %v", err)
	}
	if got := daily[13].Date; got != "2025-03-13" {
		t.Errorf("today = %s, want local date 2025-03-13", got)
	}
}

func TestWeeklySeries(t *testing.T) {
	a := New(&fakeSource{rangeFn: constant(7200)}, DefaultConfig())

	weekly, err := a.WeeklySeries(context.Background(), "U123", utc(2025, 3, 16, 12))
	if err != nil {
		t.Fatalf("WeeklySeries: %v", err)
	}
	wantLabels := []string{"Feb 17", "Feb 24", "Mar 3", "Mar 10"}
	if len(weekly) != len(wantLabels) {
		t.Fatalf("len = %d, want %d", len(weekly), len(wantLabels))
	}
	for i, w := range weekly {
		if w.Label != wantLabels[i] {
			t.Errorf("week %d label = %q, want %q", i, w.Label, wantLabels[i])
		}
		if w.Hours != 2 {
			t.Errorf("week %d hours = %v, want 2", i, w.Hours)
		}
		if w.WeekStart.Weekday() != time.Monday {
			t.Errorf("week %d starts on %v", i, w.WeekStart.Weekday())
		}
	}
}

func TestMonthlySeries(t *testing.T) {
	a := New(&fakeSource{rangeFn: constant(36000)}, DefaultConfig())

	monthly, err := a.MonthlySeries(context.Background(), "U123", utc(2025, 1, 15, 8))
	if err != nil {
		t.Fatalf("MonthlySeries: %v", err)
	}
	wantLabels := []string{"Nov", "Dec", "Jan"}
	for i, m := range monthly {
		if m.Label != wantLabels[i] {
			t.Errorf("month %d label = %q, want %q", i, m.Label, wantLabels[i])
		}
		if m.Hours != 10 {
			t.Errorf("month %d hours = %v, want 10", i, m.Hours)
		}
	}
	if !monthly[2].MonthEnd.Equal(utc(2025, 2, 1, 0)) {
		t.Errorf("last month end = %v", monthly[2].MonthEnd)
	}
}

func TestSeries_AllFailuresYieldZeros(t *testing.T) {
	src := &fakeSource{rangeFn: func(context.Context, models.TimeRange) (float64, error) {
		return 0, errors.New("service unavailable")
	}}
	a := New(src, DefaultConfig())
	ctx := context.Background()

	daily, err := a.DailySeries(ctx, "U123", testNow)
	if err != nil {
		t.Fatalf("DailySeries: %v", err)
	}
	weekly, err := a.WeeklySeries(ctx, "U123", testNow)
	if err != nil {
		t.Fatalf("WeeklySeries: %v", err)
	}
	monthly, err := a.MonthlySeries(ctx, "U123", testNow)
	if err != nil {
		t.Fatalf("MonthlySeries: %v", err)
	}

	if len(daily) != 14 || len(weekly) != 4 || len(monthly) != 3 {
		t.Fatalf("lengths = %d/%d/%d, want 14/4/3", len(daily), len(weekly), len(monthly))
	}
	for _, b := range daily {
		if b.Hours != 0 || !b.Failed {
			t.Errorf("daily %s = %v failed=%v", b.Date, b.Hours, b.Failed)
		}
	}
	for _, b := range weekly {
		if b.Hours != 0 || !b.Failed {
			t.Errorf("weekly %s = %v failed=%v", b.Label, b.Hours, b.Failed)
		}
	}
	for _, b := range monthly {
		if b.Hours != 0 || !b.Failed {
			t.Errorf("monthly %s = %v failed=%v", b.Label, b.Hours, b.Failed)
		}
	}
}

func TestSeries_PartialFailure(t *testing.T) {
	failDay := utc(2025, 3, 5, 0)
	src := &fakeSource{rangeFn: func(_ context.Context, r models.TimeRange) (float64, error) {
		if r.Start.Equal(failDay) {
			return 0, errors.New("timeout")
		}
		return 3600, nil
	}}
	a := New(src, DefaultConfig())

	daily, err := a.DailySeries(context.Background(), "U123", testNow)
	if err != nil {
		t.Fatalf("DailySeries: %v", err)
	}
	for _, b := range daily {
		if b.Date == "2025-03-05" {
			if b.Hours != 0 || !b.Failed {
				t.Errorf("failed day = %+v", b)
			}
			continue
		}
		if b.Hours != 1 || b.Failed {
			t.Errorf("day %s = %+v", b.Date, b)
		}
	}
}

func TestSeries_IdentityRequired(t *testing.T) {
	src := &fakeSource{rangeFn: constant(1)}
	a := New(src, DefaultConfig())
	ctx := context.Background()

	if _, err := a.DailySeries(ctx, "", testNow); !errors.Is(err, ErrIdentityRequired) {
		t.Errorf("DailySeries err = %v, want ErrIdentityRequired", err)
	}
	if _, err := a.WeeklySeries(ctx, "", testNow); !errors.Is(err, ErrIdentityRequired) {
		t.Errorf("WeeklySeries err = %v, want ErrIdentityRequired", err)
	}
	if _, err := a.MonthlySeries(ctx, "", testNow); !errors.Is(err, ErrIdentityRequired) {
		t.Errorf("MonthlySeries err = %v, want ErrIdentityRequired", err)
	}
	if got := src.calls.Load(); got != 0 {
		t.Errorf("queries issued without identity: %d", got)
	}
}

func TestSeries_QueryTimeout(t *testing.T) {
	src := &fakeSource{rangeFn: func(ctx context.Context, _ models.TimeRange) (float64, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	}}
	a := New(src, Config{QueryTimeout: 5 * time.Millisecond})

	monthly, err := a.MonthlySeries(context.Background(), "U123", testNow)
	if err != nil {
		t.Fatalf("MonthlySeries: %v", err)
	}
	for _, m := range monthly {
		if !m.Failed || m.Hours != 0 {
			t.Errorf("month %s = %+v, want failed zero", m.Label, m)
		}
	}
}

func TestSeries_ParallelMatchesSequential(t *testing.T) {
	jittered := func(ctx context.Context, r models.TimeRange) (float64, error) {
		// Later ranges finish first.
		time.Sleep(time.Duration(400-r.Start.YearDay()) * 10 * time.Microsecond)
		return byDay(ctx, r)
	}

	seq := New(&fakeSource{rangeFn: byDay}, DefaultConfig())
	par := New(&fakeSource{rangeFn: jittered}, Config{Parallel: true, MaxConcurrent: 3})
	ctx := context.Background()

	seqDaily, _ := seq.DailySeries(ctx, "U123", testNow)
	parDaily, _ := par.DailySeries(ctx, "U123", testNow)
	if !reflect.DeepEqual(seqDaily, parDaily) {
		t.Errorf("parallel daily differs:\n seq=%v\n par=%v", seqDaily, parDaily)
	}

	seqWeekly, _ := seq.WeeklySeries(ctx, "U123", testNow)
	parWeekly, _ := par.WeeklySeries(ctx, "U123", testNow)
	if !reflect.DeepEqual(seqWeekly, parWeekly) {
		t.Errorf("parallel weekly differs:\n seq=%v\n par=%v", seqWeekly, parWeekly)
	}
}

func TestSeries_Idempotent(t *testing.T) {
	a := New(&fakeSource{rangeFn: byDay}, DefaultConfig())
	ctx := context.Background()

	run := func() []byte {
		daily, _ := a.DailySeries(ctx, "U123", testNow)
		weekly, _ := a.WeeklySeries(ctx, "U123", testNow)
		monthly, _ := a.MonthlySeries(ctx, "U123", testNow)
		data, err := json.Marshal([]any{daily, weekly, monthly})
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		return data
	}

	first, second := run(), run()
	if string(first) != string(second) {
		t.Errorf("runs differ:\n%s\n%s", first, second)
	}
}
