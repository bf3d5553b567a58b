// Package poll defines the domain types for quorum: events, participants,
// their availability and the meeting finally scheduled.
package poll

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // timezone validation must not depend on the host
	"unicode/utf8"

	"github.com/javiermolinar/quorum/internal/dateutil"
	"github.com/javiermolinar/quorum/internal/slot"
)

// Limits enforced on user input.
const (
	MaxTitleLen        = 100
	MaxDescriptionLen  = 500
	MaxDates           = 31
	MinSlotMinutes     = 15
	MaxSlotMinutes     = 120
	DefaultSlotMinutes = 30
	MaxNameLen         = 50
)

// Validation errors.
var (
	ErrEmptyTitle          = errors.New("title cannot be empty")
	ErrTitleTooLong        = fmt.Errorf("title must be at most %d characters", MaxTitleLen)
	ErrDescriptionTooLong  = fmt.Errorf("description must be at most %d characters", MaxDescriptionLen)
	ErrNoDates             = errors.New("at least one date is required")
	ErrTooManyDates        = fmt.Errorf("at most %d dates are allowed", MaxDates)
	ErrInvalidTimeFormat   = errors.New("time must be in HH:MM format")
	ErrEndBeforeStart      = errors.New("end time must be after start time")
	ErrInvalidSlotDuration = fmt.Errorf("slot duration must be between %d and %d minutes", MinSlotMinutes, MaxSlotMinutes)
	ErrInvalidTimezone     = errors.New("unknown timezone")
	ErrEmptyName           = errors.New("name cannot be empty")
	ErrNameTooLong         = fmt.Errorf("name must be at most %d characters", MaxNameLen)
	ErrNoSlots             = errors.New("at least one slot is required")
	ErrInvalidSlot         = errors.New("slot end must be after slot start")
)

// Domain errors.
var (
	ErrEventNotFound       = errors.New("event not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrParticipantMismatch = errors.New("participant does not belong to this event")
	ErrAlreadyScheduled    = errors.New("meeting already scheduled")
	ErrNotScheduled        = errors.New("meeting not scheduled")
)

// ValidationError ties a validation failure to the offending field.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// TimeConfig is the daily window shared by every date of an event.
type TimeConfig struct {
	StartTime           string `json:"startTime"`
	EndTime             string `json:"endTime"`
	SlotDurationMinutes int    `json:"slotDurationMinutes"`
}

// Event is a meeting poll.
type Event struct {
	ID          string
	Title       string
	Description string
	Timezone    string
	Dates       []time.Time
	TimeConfig  TimeConfig
	CreatedAt   time.Time
}

// EventInput is the raw form of a new event.
type EventInput struct {
	Title               string
	Description         string
	Timezone            string
	Dates               []string // YYYY-MM-DD
	StartTime           string
	EndTime             string
	SlotDurationMinutes int
}

// NewEvent validates in and returns an event with a fresh ID. Duplicate dates
// are dropped and the rest sorted. An empty timezone means UTC and a zero
// duration means DefaultSlotMinutes.
func NewEvent(in EventInput) (*Event, error) {
	title := strings.TrimSpace(in.Title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	description := strings.TrimSpace(in.Description)
	if utf8.RuneCountInString(description) > MaxDescriptionLen {
		return nil, invalid("description", ErrDescriptionTooLong)
	}

	tz := strings.TrimSpace(in.Timezone)
	if tz == "" {
		tz = "UTC"
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return nil, invalid("timezone", fmt.Errorf("%w: %s", ErrInvalidTimezone, tz))
	}

	dates, err := parseDates(in.Dates)
	if err != nil {
		return nil, err
	}

	cfg := TimeConfig{
		StartTime:           in.StartTime,
		EndTime:             in.EndTime,
		SlotDurationMinutes: in.SlotDurationMinutes,
	}
	if cfg.SlotDurationMinutes == 0 {
		cfg.SlotDurationMinutes = DefaultSlotMinutes
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	id, err := NewID()
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:          id,
		Title:       title,
		Description: description,
		Timezone:    tz,
		Dates:       dates,
		TimeConfig:  cfg,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

func validateTitle(title string) error {
	if title == "" {
		return invalid("title", ErrEmptyTitle)
	}
	if utf8.RuneCountInString(title) > MaxTitleLen {
		return invalid("title", ErrTitleTooLong)
	}
	return nil
}

func parseDates(raw []string) ([]time.Time, error) {
	seen := make(map[string]bool, len(raw))
	var dates []time.Time
	for _, s := range raw {
		d, err := dateutil.ParseStrictDate(strings.TrimSpace(s))
		if err != nil {
			return nil, invalid("dates", fmt.Errorf("%w: %q", err, s))
		}
		key := d.Format(slot.DateLayout)
		if seen[key] {
			continue
		}
		seen[key] = true
		dates = append(dates, d)
	}
	if len(dates) == 0 {
		return nil, invalid("dates", ErrNoDates)
	}
	if len(dates) > MaxDates {
		return nil, invalid("dates", ErrTooManyDates)
	}
	dateutil.SortDates(dates)
	return dates, nil
}

// Validate checks the window and slot duration.
func (c TimeConfig) Validate() error {
	start, ok := slot.ParseClock(c.StartTime)
	if !ok {
		return invalid("startTime", ErrInvalidTimeFormat)
	}
	end, ok := slot.ParseClock(c.EndTime)
	if !ok {
		return invalid("endTime", ErrInvalidTimeFormat)
	}
	if end <= start {
		return invalid("endTime", ErrEndBeforeStart)
	}
	if c.SlotDurationMinutes < MinSlotMinutes || c.SlotDurationMinutes > MaxSlotMinutes {
		return invalid("slotDurationMinutes", ErrInvalidSlotDuration)
	}
	return nil
}

// Location returns the event timezone, falling back to UTC.
func (e *Event) Location() *time.Location {
	loc, err := time.LoadLocation(e.Timezone)
	if err != nil || e.Timezone == "" {
		return time.UTC
	}
	return loc
}

// SlotConfig returns the grid configuration of the event.
func (e *Event) SlotConfig() slot.Config {
	return slot.Config{
		Dates:       e.Dates,
		StartTime:   e.TimeConfig.StartTime,
		EndTime:     e.TimeConfig.EndTime,
		SlotMinutes: e.TimeConfig.SlotDurationMinutes,
		Location:    e.Location(),
	}
}

// Slots generates the event's slots.
func (e *Event) Slots() []slot.TimeSlot {
	c := e.SlotConfig()
	return slot.Generate(c.Dates, c.StartTime, c.EndTime, c.SlotMinutes, c.Location)
}

// Layout builds the event's grid.
func (e *Event) Layout() *slot.Layout {
	return e.SlotConfig().Build()
}

// LastDate returns the latest candidate date, or the zero time when there are none.
func (e *Event) LastDate() time.Time {
	var last time.Time
	for _, d := range e.Dates {
		if d.After(last) {
			last = d
		}
	}
	return last
}

// DateStrings returns the candidate dates as YYYY-MM-DD.
func (e *Event) DateStrings() []string {
	out := make([]string, len(e.Dates))
	for i, d := range e.Dates {
		out[i] = d.Format(slot.DateLayout)
	}
	return out
}

// Participant is one respondent of an event.
type Participant struct {
	ID           string
	EventID      string
	Name         string
	Availability []slot.Availability
	CreatedAt    time.Time
}

// NewParticipant validates the name and availability and assigns an ID.
func NewParticipant(eventID, name string, availability []slot.Availability) (*Participant, error) {
	name = strings.TrimSpace(name)
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := ValidateAvailability(availability); err != nil {
		return nil, err
	}
	id, err := NewID()
	if err != nil {
		return nil, err
	}
	return &Participant{
		ID:           id,
		EventID:      eventID,
		Name:         name,
		Availability: availability,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// ValidateName checks a participant name.
func ValidateName(name string) error {
	if name == "" {
		return invalid("name", ErrEmptyName)
	}
	if utf8.RuneCountInString(name) > MaxNameLen {
		return invalid("name", ErrNameTooLong)
	}
	return nil
}

// ValidateAvailability checks that every record is a non-empty interval.
func ValidateAvailability(records []slot.Availability) error {
	for i, r := range records {
		if !r.SlotEnd.After(r.SlotStart) {
			return invalid(fmt.Sprintf("availability[%d]", i), ErrInvalidSlot)
		}
	}
	return nil
}

// ScheduledMeeting is the final slot choice for an event.
type ScheduledMeeting struct {
	EventID     string
	Title       string
	Description string
	Slots       []slot.Availability
	CreatedAt   time.Time
}

// NewScheduledMeeting validates a meeting proposal.
func NewScheduledMeeting(eventID, title, description string, slots []slot.Availability) (*ScheduledMeeting, error) {
	title = strings.TrimSpace(title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	description = strings.TrimSpace(description)
	if utf8.RuneCountInString(description) > MaxDescriptionLen {
		return nil, invalid("description", ErrDescriptionTooLong)
	}
	if len(slots) == 0 {
		return nil, invalid("slots", ErrNoSlots)
	}
	if err := ValidateAvailability(slots); err != nil {
		return nil, err
	}
	return &ScheduledMeeting{
		EventID:     eventID,
		Title:       title,
		Description: description,
		Slots:       slots,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// Start returns the earliest slot start.
func (m *ScheduledMeeting) Start() time.Time {
	var start time.Time
	for i, s := range m.Slots {
		if i == 0 || s.SlotStart.Before(start) {
			start = s.SlotStart
		}
	}
	return start
}

// End returns the latest slot end.
func (m *ScheduledMeeting) End() time.Time {
	var end time.Time
	for _, s := range m.Slots {
		if s.SlotEnd.After(end) {
			end = s.SlotEnd
		}
	}
	return end
}
