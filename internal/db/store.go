// Package db provides SQL storage for polls on SQLite or PostgreSQL.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/javiermolinar/quorum/internal/poll"
	"github.com/javiermolinar/quorum/internal/slot"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrUnknownDriver is returned by Open for unsupported drivers.
var ErrUnknownDriver = errors.New("unknown database driver")

// timeLayout is fixed width so stored instants sort lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Store implements poll.Repository on top of sqlx.
type Store struct {
	db     *sqlx.DB
	driver string
}

// New opens a SQLite database at path and runs migrations.
func New(path string) (*Store, error) {
	return Open(context.Background(), DriverSQLite, path)
}

// Open connects with the given driver and DSN and runs migrations. For
// SQLite the DSN is a file path.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if driver == DriverSQLite {
		// A single connection serializes writers and avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{db: db, driver: driver}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Driver returns the driver name.
func (s *Store) Driver() string {
	return s.driver
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

type eventRow struct {
	ID          string `db:"id"`
	Title       string `db:"title"`
	Description string `db:"description"`
	Timezone    string `db:"timezone"`
	CreatedAt   string `db:"created_at"`
}

type timeConfigRow struct {
	StartTime           string `db:"start_time"`
	EndTime             string `db:"end_time"`
	SlotDurationMinutes int    `db:"slot_duration_minutes"`
}

type participantRow struct {
	ID        string `db:"id"`
	EventID   string `db:"event_id"`
	Name      string `db:"name"`
	CreatedAt string `db:"created_at"`
}

type availabilityRow struct {
	ParticipantID string `db:"participant_id"`
	SlotStart     string `db:"slot_start"`
	SlotEnd       string `db:"slot_end"`
}

type meetingRow struct {
	EventID     string `db:"event_id"`
	Title       string `db:"title"`
	Description string `db:"description"`
	Slots       string `db:"slots"`
	CreatedAt   string `db:"created_at"`
}

// CreateEvent stores an event with its dates and time config.
func (s *Store) CreateEvent(ctx context.Context, e *poll.Event) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO events (id, title, description, timezone, created_at)
		VALUES (?, ?, ?, ?, ?)`),
		e.ID, e.Title, e.Description, e.Timezone, formatTime(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}

	for _, d := range e.Dates {
		_, err = tx.ExecContext(ctx, tx.Rebind(`INSERT INTO event_dates (event_id, date) VALUES (?, ?)`),
			e.ID, d.Format(slot.DateLayout))
		if err != nil {
			return fmt.Errorf("inserting event date: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO event_time_config (event_id, start_time, end_time, slot_duration_minutes)
		VALUES (?, ?, ?, ?)`),
		e.ID, e.TimeConfig.StartTime, e.TimeConfig.EndTime, e.TimeConfig.SlotDurationMinutes,
	)
	if err != nil {
		return fmt.Errorf("inserting time config: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetEvent retrieves an event by ID.
func (s *Store) GetEvent(ctx context.Context, id string) (*poll.Event, error) {
	var row eventRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`
		SELECT id, title, description, timezone, created_at FROM events WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, poll.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying event: %w", err)
	}

	var dates []string
	err = s.db.SelectContext(ctx, &dates, s.db.Rebind(`
		SELECT date FROM event_dates WHERE event_id = ? ORDER BY date`), id)
	if err != nil {
		return nil, fmt.Errorf("querying event dates: %w", err)
	}

	var tc timeConfigRow
	err = s.db.GetContext(ctx, &tc, s.db.Rebind(`
		SELECT start_time, end_time, slot_duration_minutes FROM event_time_config WHERE event_id = ?`), id)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("querying time config: %w", err)
	}

	e := &poll.Event{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		Timezone:    row.Timezone,
		TimeConfig: poll.TimeConfig{
			StartTime:           tc.StartTime,
			EndTime:             tc.EndTime,
			SlotDurationMinutes: tc.SlotDurationMinutes,
		},
	}
	if e.CreatedAt, err = parseTime(row.CreatedAt); err != nil {
		return nil, err
	}
	for _, ds := range dates {
		d, err := time.Parse(slot.DateLayout, ds)
		if err != nil {
			return nil, fmt.Errorf("parsing event date %q: %w", ds, err)
		}
		e.Dates = append(e.Dates, d)
	}
	return e, nil
}

// CreateParticipant stores a participant and their availability.
func (s *Store) CreateParticipant(ctx context.Context, p *poll.Participant) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.GetContext(ctx, &exists, tx.Rebind(`SELECT COUNT(*) FROM events WHERE id = ?`), p.EventID)
	if err != nil {
		return fmt.Errorf("checking event: %w", err)
	}
	if exists == 0 {
		return poll.ErrEventNotFound
	}

	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO participants (id, event_id, name, created_at) VALUES (?, ?, ?, ?)`),
		p.ID, p.EventID, p.Name, formatTime(p.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting participant: %w", err)
	}

	if err := insertAvailability(ctx, tx, p.EventID, p.ID, p.Availability); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetParticipant retrieves a participant with their availability.
func (s *Store) GetParticipant(ctx context.Context, id string) (*poll.Participant, error) {
	var row participantRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`
		SELECT id, event_id, name, created_at FROM participants WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, poll.ErrParticipantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying participant: %w", err)
	}
	return s.loadParticipant(ctx, row)
}

// FindParticipantByName returns the earliest participant with name.
func (s *Store) FindParticipantByName(ctx context.Context, eventID, name string) (*poll.Participant, error) {
	var row participantRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`
		SELECT id, event_id, name, created_at FROM participants
		WHERE event_id = ? AND name = ?
		ORDER BY created_at, id
		LIMIT 1`), eventID, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, poll.ErrParticipantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying participant: %w", err)
	}
	return s.loadParticipant(ctx, row)
}

func (s *Store) loadParticipant(ctx context.Context, row participantRow) (*poll.Participant, error) {
	var av []availabilityRow
	err := s.db.SelectContext(ctx, &av, s.db.Rebind(`
		SELECT participant_id, slot_start, slot_end FROM availability
		WHERE participant_id = ? ORDER BY slot_start`), row.ID)
	if err != nil {
		return nil, fmt.Errorf("querying availability: %w", err)
	}

	p, err := toParticipant(row)
	if err != nil {
		return nil, err
	}
	for _, a := range av {
		rec, err := toAvailability(a)
		if err != nil {
			return nil, err
		}
		p.Availability = append(p.Availability, rec)
	}
	return p, nil
}

// ListParticipants returns the participants of an event in creation order.
func (s *Store) ListParticipants(ctx context.Context, eventID string) ([]*poll.Participant, error) {
	var rows []participantRow
	err := s.db.SelectContext(ctx, &rows, s.db.Rebind(`
		SELECT id, event_id, name, created_at FROM participants
		WHERE event_id = ? ORDER BY created_at, id`), eventID)
	if err != nil {
		return nil, fmt.Errorf("querying participants: %w", err)
	}

	var av []availabilityRow
	err = s.db.SelectContext(ctx, &av, s.db.Rebind(`
		SELECT participant_id, slot_start, slot_end FROM availability
		WHERE event_id = ? ORDER BY slot_start`), eventID)
	if err != nil {
		return nil, fmt.Errorf("querying availability: %w", err)
	}

	byParticipant := make(map[string][]slot.Availability, len(rows))
	for _, a := range av {
		rec, err := toAvailability(a)
		if err != nil {
			return nil, err
		}
		byParticipant[a.ParticipantID] = append(byParticipant[a.ParticipantID], rec)
	}

	participants := make([]*poll.Participant, 0, len(rows))
	for _, r := range rows {
		p, err := toParticipant(r)
		if err != nil {
			return nil, err
		}
		p.Availability = byParticipant[r.ID]
		participants = append(participants, p)
	}
	return participants, nil
}

// ReplaceAvailability swaps a participant's availability in one transaction.
func (s *Store) ReplaceAvailability(ctx context.Context, eventID, participantID string, records []slot.Availability) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var owner string
	err = tx.GetContext(ctx, &owner, tx.Rebind(`SELECT event_id FROM participants WHERE id = ?`), participantID)
	if errors.Is(err, sql.ErrNoRows) {
		return poll.ErrParticipantNotFound
	}
	if err != nil {
		return fmt.Errorf("querying participant: %w", err)
	}
	if owner != eventID {
		return poll.ErrParticipantMismatch
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM availability WHERE participant_id = ?`), participantID); err != nil {
		return fmt.Errorf("deleting availability: %w", err)
	}
	if err := insertAvailability(ctx, tx, eventID, participantID, records); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func insertAvailability(ctx context.Context, tx *sqlx.Tx, eventID, participantID string, records []slot.Availability) error {
	seen := make(map[string]bool, len(records))
	query := tx.Rebind(`
		INSERT INTO availability (participant_id, event_id, slot_start, slot_end)
		VALUES (?, ?, ?, ?)`)
	for _, r := range records {
		start := formatTime(r.SlotStart)
		if seen[start] {
			continue
		}
		seen[start] = true
		if _, err := tx.ExecContext(ctx, query, participantID, eventID, start, formatTime(r.SlotEnd)); err != nil {
			return fmt.Errorf("inserting availability: %w", err)
		}
	}
	return nil
}

// CreateScheduledMeeting stores the meeting of an event.
func (s *Store) CreateScheduledMeeting(ctx context.Context, m *poll.ScheduledMeeting) error {
	slots, err := json.Marshal(m.Slots)
	if err != nil {
		return fmt.Errorf("encoding slots: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var events, meetings int
	if err := tx.GetContext(ctx, &events, tx.Rebind(`SELECT COUNT(*) FROM events WHERE id = ?`), m.EventID); err != nil {
		return fmt.Errorf("checking event: %w", err)
	}
	if events == 0 {
		return poll.ErrEventNotFound
	}
	if err := tx.GetContext(ctx, &meetings, tx.Rebind(`SELECT COUNT(*) FROM scheduled_meetings WHERE event_id = ?`), m.EventID); err != nil {
		return fmt.Errorf("checking meeting: %w", err)
	}
	if meetings > 0 {
		return poll.ErrAlreadyScheduled
	}

	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO scheduled_meetings (event_id, title, description, slots, created_at)
		VALUES (?, ?, ?, ?, ?)`),
		m.EventID, m.Title, m.Description, string(slots), formatTime(m.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting meeting: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetScheduledMeeting returns the meeting of an event.
func (s *Store) GetScheduledMeeting(ctx context.Context, eventID string) (*poll.ScheduledMeeting, error) {
	var row meetingRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`
		SELECT event_id, title, description, slots, created_at FROM scheduled_meetings
		WHERE event_id = ?`), eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, poll.ErrNotScheduled
	}
	if err != nil {
		return nil, fmt.Errorf("querying meeting: %w", err)
	}

	m := &poll.ScheduledMeeting{
		EventID:     row.EventID,
		Title:       row.Title,
		Description: row.Description,
	}
	if err := json.Unmarshal([]byte(row.Slots), &m.Slots); err != nil {
		return nil, fmt.Errorf("decoding slots: %w", err)
	}
	if m.CreatedAt, err = parseTime(row.CreatedAt); err != nil {
		return nil, err
	}
	return m, nil
}

// DeleteExpiredEvents removes events whose last date is before cutoff.
func (s *Store) DeleteExpiredEvents(ctx context.Context, cutoff time.Time) ([]string, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var ids []string
	err = tx.SelectContext(ctx, &ids, tx.Rebind(`
		SELECT event_id FROM event_dates
		GROUP BY event_id
		HAVING MAX(date) < ?
		ORDER BY event_id`), cutoff.UTC().Format(slot.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("querying expired events: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	// Children first, so this works without foreign key enforcement.
	tables := []struct{ table, column string }{
		{"availability", "event_id"},
		{"participants", "event_id"},
		{"scheduled_meetings", "event_id"},
		{"event_time_config", "event_id"},
		{"event_dates", "event_id"},
		{"events", "id"},
	}
	for _, t := range tables {
		query, args, err := sqlx.In(fmt.Sprintf(`DELETE FROM %s WHERE %s IN (?)`, t.table, t.column), ids)
		if err != nil {
			return nil, fmt.Errorf("building delete for %s: %w", t.table, err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
			return nil, fmt.Errorf("deleting from %s: %w", t.table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return ids, nil
}

func toParticipant(r participantRow) (*poll.Participant, error) {
	createdAt, err := parseTime(r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &poll.Participant{
		ID:        r.ID,
		EventID:   r.EventID,
		Name:      r.Name,
		CreatedAt: createdAt,
	}, nil
}

func toAvailability(r availabilityRow) (slot.Availability, error) {
	start, err := parseTime(r.SlotStart)
	if err != nil {
		return slot.Availability{}, err
	}
	end, err := parseTime(r.SlotEnd)
	if err != nil {
		return slot.Availability{}, err
	}
	return slot.Availability{SlotStart: start, SlotEnd: end}, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		// Rows written by other tools may use plain RFC 3339.
		t, err = time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
		}
	}
	return t.UTC(), nil
}

var _ poll.Repository = (*Store)(nil)
