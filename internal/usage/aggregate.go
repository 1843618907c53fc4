package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/j-veylop/hackdash/internal/models"
)

// StatsSource serves both range totals and full summaries. A nil range on
// Summary asks for all-time statistics.
type StatsSource interface {
	RangeQuerier
	Summary(ctx context.Context, userID string, r *models.TimeRange) (*models.StatsSummary, error)
}

// Aggregate performs a full run: the all-time and today summaries followed by
// the daily, weekly and monthly series. A failed summary aborts the run with
// an error wrapping ErrBaseline; failed series ranges only zero their bucket.
// If ctx ends during the run the partial result is discarded.
func (a *Aggregator) Aggregate(ctx context.Context, src StatsSource, userID string, now time.Time) (*models.Snapshot, error) {
	if userID == "" {
		return nil, ErrIdentityRequired
	}

	allTime, err := a.summary(ctx, src, userID, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: all-time: %w", ErrBaseline, err)
	}

	today := TodayRange(now)
	todayStats, err := a.summary(ctx, src, userID, &today)
	if err != nil {
		return nil, fmt.Errorf("%w: today: %w", ErrBaseline, err)
	}

	// Series queries go through src so the run reads from one backend.
	series := &Aggregator{querier: src, config: a.config}

	daily, err := series.DailySeries(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	weekly, err := series.WeeklySeries(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	monthly, err := series.MonthlySeries(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("aggregation interrupted: %w", err)
	}

	return &models.Snapshot{
		UserID:    userID,
		Timestamp: now.UTC(),
		AllTime:   allTime,
		Today:     todayStats,
		Daily:     daily,
		Weekly:    weekly,
		Monthly:   monthly,
	}, nil
}

func (a *Aggregator) summary(ctx context.Context, src StatsSource, userID string, r *models.TimeRange) (*models.StatsSummary, error) {
	qctx, cancel := context.WithTimeout(ctx, a.config.QueryTimeout)
	defer cancel()
	return src.Summary(qctx, userID, r)
}
