package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/j-veylop/hackdash/internal/logger"
	"github.com/j-veylop/hackdash/internal/models"
)

const titleKeyPrefix = "title:"

// ReplaceFeedItems swaps the stored catalog for items, keeping their order.
func (db *DB) ReplaceFeedItems(items []models.FeedItem) error {
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM feed_items"); err != nil {
		return fmt.Errorf("failed to clear feed items: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO feed_items (link, title, snippet, published, status, position, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare feed insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	fetchedAt := time.Now().UTC().Format(sqlTimeLayout)
	for i := range items {
		item := &items[i]
		var published sql.NullString
		if !item.Published.IsZero() {
			published = nullString(item.Published.UTC().Format(sqlTimeLayout))
		}
		link := item.Link
		if link == "" {
			// Link is the key; fall back to the title for link-less entries.
			link = titleKeyPrefix + item.Title
		}
		if _, err := stmt.ExecContext(ctx,
			link,
			item.Title,
			nullString(item.Snippet),
			published,
			string(item.Status),
			i,
			fetchedAt,
		); err != nil {
			return fmt.Errorf("failed to insert feed item %q: %w", item.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit feed items: %w", err)
	}
	return nil
}

// GetFeedItems returns the stored catalog in feed order.
func (db *DB) GetFeedItems() ([]models.FeedItem, error) {
	rows, err := db.QueryContext(context.Background(), `
		SELECT link, title, snippet, published, status
		FROM feed_items
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query feed items: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("failed to close rows", "error", err)
		}
	}()

	var items []models.FeedItem
	for rows.Next() {
		var item models.FeedItem
		var snippet, published sql.NullString
		var status string
		if err := rows.Scan(&item.Link, &item.Title, &snippet, &published, &status); err != nil {
			return nil, fmt.Errorf("failed to scan feed item: %w", err)
		}
		item.Snippet = snippet.String
		if published.Valid {
			if t, ok := parseTimeString(published.String); ok {
				item.Published = t
			}
		}
		if s, ok := models.ParseFeedStatus(status); ok {
			item.Status = s
		} else {
			item.Status = models.FeedStatusActive
		}
		if strings.HasPrefix(item.Link, titleKeyPrefix) {
			item.Link = ""
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// parseTimeString accepts the layouts modernc.org/sqlite may hand back for a
// DATETIME column.
func parseTimeString(s string) (time.Time, bool) {
	layouts := []string{
		sqlTimeLayout,
		time.RFC3339,
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05 -0700 MST",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
