package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RuntimeEvent is a recorded event raised by the embedded runtime
type RuntimeEvent struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Payload   string    `json:"payload,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateRuntimeEvent inserts a new runtime event record
func (db *DB) CreateRuntimeEvent(name, payload string) (*RuntimeEvent, error) {
	event := &RuntimeEvent{
		ID:        "evt-" + uuid.NewString(),
		Name:      name,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}

	var stored sql.NullString
	if payload != "" {
		stored = sql.NullString{String: payload, Valid: true}
	}

	_, err := db.Exec(
		`INSERT INTO runtime_events (id, name, payload, created_at) VALUES (?, ?, ?, ?)`,
		event.ID, event.Name, stored, event.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create runtime event: %w", err)
	}

	return event, nil
}

// ListRuntimeEvents returns up to limit events, newest first.
// An empty name lists every event.
func (db *DB) ListRuntimeEvents(name string, limit int) ([]*RuntimeEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT id, name, payload, created_at FROM runtime_events`
	args := []any{}
	if name != "" {
		query += ` WHERE name = ?`
		args = append(args, name)
	}
	query += ` ORDER BY rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runtime events: %w", err)
	}
	defer rows.Close()

	var events []*RuntimeEvent
	for rows.Next() {
		var (
			event   RuntimeEvent
			payload sql.NullString
		)
		if err := rows.Scan(&event.ID, &event.Name, &payload, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan runtime event: %w", err)
		}
		event.Payload = payload.String
		events = append(events, &event)
	}

	return events, rows.Err()
}

// PruneRuntimeEvents keeps the newest keep events and deletes the rest.
// Returns the number of deleted rows.
func (db *DB) PruneRuntimeEvents(keep int) (int64, error) {
	result, err := db.Exec(`
		DELETE FROM runtime_events WHERE rowid NOT IN (
			SELECT rowid FROM runtime_events ORDER BY rowid DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runtime events: %w", err)
	}
	return result.RowsAffected()
}
