package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/j-veylop/hackdash/internal/models"
)

// SaveSnapshot stores snap under key, replacing whatever was there.
func (db *DB) SaveSnapshot(key string, snap *models.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("snapshot is nil")
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	query := `
		INSERT INTO snapshots (key, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`

	_, err = db.ExecContext(context.Background(), query,
		key,
		string(payload),
		time.Now().UTC().Format(sqlTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	return nil
}

// LoadSnapshot returns the snapshot under key, or nil if none is stored.
func (db *DB) LoadSnapshot(key string) (*models.Snapshot, error) {
	var payload string
	err := db.QueryRowContext(context.Background(),
		"SELECT payload FROM snapshots WHERE key = ?", key,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var snap models.Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	return &snap, nil
}

// DeleteSnapshot removes the snapshot under key.
func (db *DB) DeleteSnapshot(key string) error {
	_, err := db.ExecContext(context.Background(), "DELETE FROM snapshots WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
