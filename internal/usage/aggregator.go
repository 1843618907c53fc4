// Package usage turns per-range statistics totals into the daily, weekly and
// monthly hour series shown on the dashboard.
package usage

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/j-veylop/hackdash/internal/logger"
	"github.com/j-veylop/hackdash/internal/models"
)

var (
	// ErrIdentityRequired is returned when no user id is available.
	ErrIdentityRequired = errors.New("user id is required")
	// ErrBaseline wraps a failed all-time or today summary fetch.
	ErrBaseline = errors.New("failed to fetch baseline statistics")
)

// RangeQuerier returns the total coded seconds for a user within a range.
type RangeQuerier interface {
	RangeTotal(ctx context.Context, userID string, r models.TimeRange) (float64, error)
}

// Config holds configuration for the aggregator.
type Config struct {
	QueryTimeout  time.Duration
	MaxConcurrent int
	Parallel      bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		QueryTimeout:  10 * time.Second,
		MaxConcurrent: 4,
	}
}

// Aggregator builds hour series from a RangeQuerier. It holds no state
// between calls.
type Aggregator struct {
	querier RangeQuerier
	config  Config
}

// New creates a new aggregator.
func New(q RangeQuerier, config Config) *Aggregator {
	def := DefaultConfig()
	if config.QueryTimeout <= 0 {
		config.QueryTimeout = def.QueryTimeout
	}
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = def.MaxConcurrent
	}
	return &Aggregator{querier: q, config: config}
}

// Config returns the effective configuration.
func (a *Aggregator) Config() Config {
	return a.config
}

// DailySeries returns hours for the 14 days ending today, oldest first.
func (a *Aggregator) DailySeries(ctx context.Context, userID string, now time.Time) ([]models.DailyBucket, error) {
	if userID == "" {
		return nil, ErrIdentityRequired
	}

	ranges := DayRanges(now)
	samples := a.Sample(ctx, userID, ranges)

	buckets := make([]models.DailyBucket, len(samples))
	for i, s := range samples {
		buckets[i] = models.DailyBucket{
			Date:   s.Range.Start.In(now.Location()).Format(models.DailyDateLayout),
			Hours:  s.Hours(),
			Failed: !s.OK(),
		}
	}
	return buckets, nil
}

// WeeklySeries returns hours for the current week and the three before it.
func (a *Aggregator) WeeklySeries(ctx context.Context, userID string, now time.Time) ([]models.WeeklyBucket, error) {
	if userID == "" {
		return nil, ErrIdentityRequired
	}

	ranges := WeekRanges(now)
	samples := a.Sample(ctx, userID, ranges)

	buckets := make([]models.WeeklyBucket, len(samples))
	for i, s := range samples {
		buckets[i] = models.WeeklyBucket{
			WeekStart: s.Range.Start,
			WeekEnd:   s.Range.End,
			Label:     s.Range.Start.In(now.Location()).Format(WeekLabelLayout),
			Hours:     s.Hours(),
			Failed:    !s.OK(),
		}
	}
	return buckets, nil
}

// MonthlySeries returns hours for the current month and the two before it.
func (a *Aggregator) MonthlySeries(ctx context.Context, userID string, now time.Time) ([]models.MonthlyBucket, error) {
	if userID == "" {
		return nil, ErrIdentityRequired
	}

	ranges := MonthRanges(now)
	samples := a.Sample(ctx, userID, ranges)

	buckets := make([]models.MonthlyBucket, len(samples))
	for i, s := range samples {
		buckets[i] = models.MonthlyBucket{
			MonthStart: s.Range.Start,
			MonthEnd:   s.Range.End,
			Label:      s.Range.Start.In(now.Location()).Format(MonthLabelLayout),
			Hours:      s.Hours(),
			Failed:     !s.OK(),
		}
	}
	return buckets, nil
}

// Sample queries every range and returns one sample per range in the same
// order. Failures are recorded on the sample, never returned.
func (a *Aggregator) Sample(ctx context.Context, userID string, ranges []models.TimeRange) []models.RangeSample {
	samples := make([]models.RangeSample, len(ranges))

	if !a.config.Parallel {
		for i, r := range ranges {
			samples[i] = a.sampleOne(ctx, userID, r)
		}
		return samples
	}

	var g errgroup.Group
	g.SetLimit(a.config.MaxConcurrent)
	for i, r := range ranges {
		g.Go(func() error {
			samples[i] = a.sampleOne(ctx, userID, r)
			return nil
		})
	}
	_ = g.Wait()

	return samples
}

func (a *Aggregator) sampleOne(ctx context.Context, userID string, r models.TimeRange) models.RangeSample {
	qctx, cancel := context.WithTimeout(ctx, a.config.QueryTimeout)
	defer cancel()

	seconds, err := a.querier.RangeTotal(qctx, userID, r)
	if err != nil {
		logger.Warn("range query failed",
			"user", userID,
			"start", r.StartParam(),
			"end", r.EndParam(),
			"error", err,
		)
		return models.RangeSample{Range: r, Err: err}
	}
	return models.RangeSample{Range: r, Seconds: seconds}
}
