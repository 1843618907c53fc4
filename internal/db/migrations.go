package db

import (
	"context"
	"fmt"
)

const snapshotsSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	key TEXT PRIMARY KEY,
	payload TEXT NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`

const dailyHoursSchema = `
CREATE TABLE IF NOT EXISTS daily_hours (
	date TEXT PRIMARY KEY,
	hours REAL NOT NULL DEFAULT 0,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`

const feedItemsSchema = `
CREATE TABLE IF NOT EXISTS feed_items (
	link TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	snippet TEXT,
	published DATETIME,
	status TEXT NOT NULL DEFAULT 'active',
	position INTEGER NOT NULL DEFAULT 0,
	fetched_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_feed_items_position ON feed_items(position);`

// padLegacyDates rewrites unpadded "2025-3-5" keys, as written by older
// exports, to "2025-03-05" so string ordering matches date ordering.
const padLegacyDates = `
UPDATE OR REPLACE daily_hours
SET date = printf('%04d-%02d-%02d',
	CAST(substr(date, 1, 4) AS INTEGER),
	CAST(substr(date, 6, instr(substr(date, 6), '-') - 1) AS INTEGER),
	CAST(substr(substr(date, 6), instr(substr(date, 6), '-') + 1) AS INTEGER))
WHERE length(date) < 10 AND date LIKE '____-%-%';`

// migrations run in order; the count applied is kept in PRAGMA user_version.
// Append only.
var migrations = []string{
	snapshotsSchema,
	dailyHoursSchema,
	feedItemsSchema,
	padLegacyDates,
}

// SchemaVersion returns the applied migration count.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	if err := db.QueryRowContext(context.Background(), "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

func (db *DB) migrate() error {
	version, err := db.SchemaVersion()
	if err != nil {
		return err
	}

	ctx := context.Background()
	for i := version; i < len(migrations); i++ {
		if _, err := db.ExecContext(ctx, migrations[i]); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		// PRAGMA does not accept bound parameters.
		if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			return fmt.Errorf("failed to record schema version %d: %w", i+1, err)
		}
	}
	return nil
}
