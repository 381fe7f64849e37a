package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GetStorageItem returns the value stored for browserID and key.
// The bool is false when no row exists.
func (db *DB) GetStorageItem(browserID, key string) (string, bool, error) {
	var value string
	err := db.QueryRow(
		`SELECT value FROM browser_storage WHERE browser_id = ? AND key = ?`,
		browserID, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get storage item %s: %w", key, err)
	}
	return value, true, nil
}

// SetStorageItem stores value for browserID and key
func (db *DB) SetStorageItem(browserID, key, value string) error {
	_, err := db.Exec(`
		INSERT INTO browser_storage (browser_id, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(browser_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, browserID, key, value, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set storage item %s: %w", key, err)
	}
	return nil
}

// RemoveStorageItem deletes the row for browserID and key, if any
func (db *DB) RemoveStorageItem(browserID, key string) error {
	_, err := db.Exec(`DELETE FROM browser_storage WHERE browser_id = ? AND key = ?`, browserID, key)
	if err != nil {
		return fmt.Errorf("failed to remove storage item %s: %w", key, err)
	}
	return nil
}
