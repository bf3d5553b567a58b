package db

import (
	"context"
	"fmt"
)

// schema is portable between SQLite and PostgreSQL: every timestamp is
// stored as fixed-width UTC text so comparisons and ordering work on both.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS events (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		timezone    TEXT NOT NULL DEFAULT 'UTC',
		created_at  TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS event_dates (
		event_id TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		date     TEXT NOT NULL,
		PRIMARY KEY (event_id, date)
	)`,
	`CREATE TABLE IF NOT EXISTS event_time_config (
		event_id              TEXT PRIMARY KEY REFERENCES events(id) ON DELETE CASCADE,
		start_time            TEXT NOT NULL,
		end_time              TEXT NOT NULL,
		slot_duration_minutes INTEGER NOT NULL DEFAULT 30
	)`,
	`CREATE TABLE IF NOT EXISTS participants (
		id         TEXT PRIMARY KEY,
		event_id   TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		name       TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_participants_event ON participants(event_id)`,
	`CREATE TABLE IF NOT EXISTS availability (
		participant_id TEXT NOT NULL REFERENCES participants(id) ON DELETE CASCADE,
		event_id       TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		slot_start     TEXT NOT NULL,
		slot_end       TEXT NOT NULL,
		PRIMARY KEY (participant_id, slot_start)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_availability_event ON availability(event_id)`,
	`CREATE TABLE IF NOT EXISTS scheduled_meetings (
		event_id    TEXT PRIMARY KEY REFERENCES events(id) ON DELETE CASCADE,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		slots       TEXT NOT NULL,
		created_at  TEXT NOT NULL
	)`,
}

// migrate creates the schema if it does not exist.
func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}
	return nil
}
