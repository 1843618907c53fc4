package db

import (
	"context"
	"fmt"
	"time"

	"github.com/j-veylop/hackdash/internal/logger"
	"github.com/j-veylop/hackdash/internal/models"
)

// UpsertDailyHistory records the hours of each successfully fetched day.
// Failed buckets are skipped so an outage never overwrites real history.
func (db *DB) UpsertDailyHistory(buckets []models.DailyBucket) (int, error) {
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO daily_hours (date, hours, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			hours = excluded.hours,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare daily history upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().UTC().Format(sqlTimeLayout)
	written := 0
	for _, b := range buckets {
		if b.Failed {
			continue
		}
		if _, err := time.Parse(sqlDateLayout, b.Date); err != nil {
			logger.Warn("skipping malformed daily bucket", "date", b.Date)
			continue
		}
		if _, err := stmt.ExecContext(ctx, b.Date, b.Hours, now); err != nil {
			return 0, fmt.Errorf("failed to upsert daily history %s: %w", b.Date, err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit daily history: %w", err)
	}
	return written, nil
}

// GetDailyHistory returns recorded days on or after the cutoff, ascending.
// days <= 0 returns everything. now anchors the cutoff in local time.
func (db *DB) GetDailyHistory(days int, now time.Time) ([]models.DailyHistoryPoint, error) {
	query := "SELECT date, hours FROM daily_hours"
	var args []any
	if days > 0 {
		y, m, d := now.Date()
		cutoff := time.Date(y, m, d-days+1, 0, 0, 0, 0, now.Location())
		query += " WHERE date >= ?"
		args = append(args, cutoff.Format(sqlDateLayout))
	}
	query += " ORDER BY date ASC"

	rows, err := db.QueryContext(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily history: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("failed to close rows", "error", err)
		}
	}()

	var points []models.DailyHistoryPoint
	for rows.Next() {
		var dateStr string
		var hours float64
		if err := rows.Scan(&dateStr, &hours); err != nil {
			return nil, fmt.Errorf("failed to scan daily history: %w", err)
		}
		date, err := time.ParseInLocation(sqlDateLayout, dateStr, now.Location())
		if err != nil {
			logger.Warn("skipping malformed history row", "date", dateStr)
			continue
		}
		points = append(points, models.DailyHistoryPoint{Date: date, Hours: hours})
	}

	return points, rows.Err()
}

// GetDailyHistoryRange wraps GetDailyHistory for a trends selector.
func (db *DB) GetDailyHistoryRange(r models.HistoryRange, now time.Time) (*models.DailyHistory, error) {
	points, err := db.GetDailyHistory(r.Days(), now)
	if err != nil {
		return nil, err
	}
	return &models.DailyHistory{Points: points, Range: r}, nil
}

// PruneDailyHistory deletes days older than keepDays before now.
func (db *DB) PruneDailyHistory(keepDays int, now time.Time) (int64, error) {
	if keepDays <= 0 {
		return 0, nil
	}
	y, m, d := now.Date()
	cutoff := time.Date(y, m, d-keepDays+1, 0, 0, 0, 0, now.Location())

	result, err := db.ExecContext(context.Background(),
		"DELETE FROM daily_hours WHERE date < ?", cutoff.Format(sqlDateLayout))
	if err != nil {
		return 0, fmt.Errorf("failed to prune daily history: %w", err)
	}
	return result.RowsAffected()
}

// ClearDailyHistory deletes every recorded day. History belongs to one
// user, so it is dropped when the tracked user changes.
func (db *DB) ClearDailyHistory() error {
	if _, err := db.ExecContext(context.Background(), "DELETE FROM daily_hours"); err != nil {
		return fmt.Errorf("failed to clear daily history: %w", err)
	}
	return nil
}
