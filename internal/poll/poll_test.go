package poll

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/javiermolinar/quorum/internal/slot"
)

func validInput() EventInput {
	return EventInput{
		Title:               "Team sync",
		Description:         "Weekly planning",
		Timezone:            "Europe/Madrid",
		Dates:               []string{"2025-03-02", "2025-03-01", "2025-03-02"},
		StartTime:           "09:00",
		EndTime:             "17:00",
		SlotDurationMinutes: 30,
	}
}

func TestNewEvent(t *testing.T) {
	e, err := NewEvent(validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(e.ID) != IDLength {
		t.Errorf("ID %q has length %d, want %d", e.ID, len(e.ID), IDLength)
	}
	if got := e.DateStrings(); len(got) != 2 || got[0] != "2025-03-01" {
		t.Errorf("Dates = %v, want sorted and deduplicated", got)
	}
	if len(e.Slots()) != 32 {
		t.Errorf("Slots() = %d, want 32", len(e.Slots()))
	}
	if e.LastDate().Format(slot.DateLayout) != "2025-03-02" {
		t.Errorf("LastDate() = %v", e.LastDate())
	}
}

func TestNewEvent_Defaults(t *testing.T) {
	in := validInput()
	in.Timezone = ""
	in.SlotDurationMinutes = 0
	e, err := NewEvent(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Timezone != "UTC" || e.Location() != time.UTC {
		t.Errorf("Timezone = %q", e.Timezone)
	}
	if e.TimeConfig.SlotDurationMinutes != DefaultSlotMinutes {
		t.Errorf("SlotDurationMinutes = %d", e.TimeConfig.SlotDurationMinutes)
	}
}

func TestNewEvent_Validation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*EventInput)
		want   error
		field  string
	}{
		{"empty title", func(in *EventInput) { in.Title = "   " }, ErrEmptyTitle, "title"},
		{"long title", func(in *EventInput) { in.Title = strings.Repeat("a", 101) }, ErrTitleTooLong, "title"},
		{"long description", func(in *EventInput) { in.Description = strings.Repeat("d", 501) }, ErrDescriptionTooLong, "description"},
		{"bad timezone", func(in *EventInput) { in.Timezone = "Mars/Olympus" }, ErrInvalidTimezone, "timezone"},
		{"no dates", func(in *EventInput) { in.Dates = nil }, ErrNoDates, "dates"},
		{"bad date", func(in *EventInput) { in.Dates = []string{"03/01/2025"} }, nil, "dates"},
		{"bad start", func(in *EventInput) { in.StartTime = "9am" }, ErrInvalidTimeFormat, "startTime"},
		{"end before start", func(in *EventInput) { in.EndTime = "08:00" }, ErrEndBeforeStart, "endTime"},
		{"short slot", func(in *EventInput) { in.SlotDurationMinutes = 10 }, ErrInvalidSlotDuration, "slotDurationMinutes"},
		{"long slot", func(in *EventInput) { in.SlotDurationMinutes = 180 }, ErrInvalidSlotDuration, "slotDurationMinutes"},
		{"too many dates", func(in *EventInput) {
			in.Dates = nil
			start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
			for i := 0; i < 32; i++ {
				in.Dates = append(in.Dates, start.AddDate(0, 0, i).Format(slot.DateLayout))
			}
		}, ErrTooManyDates, "dates"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.modify(&in)
			_, err := NewEvent(in)
			if err == nil {
				t.Fatal("expected an error")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error %v is not a ValidationError", err)
			}
			if verr.Field != tt.field {
				t.Errorf("Field = %q, want %q", verr.Field, tt.field)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewParticipant(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	av := []slot.Availability{{SlotStart: start, SlotEnd: start.Add(30 * time.Minute)}}

	p, err := NewParticipant("evt", "  Alice ", av)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "Alice" || p.EventID != "evt" || len(p.ID) != IDLength {
		t.Errorf("participant = %+v", p)
	}

	if _, err := NewParticipant("evt", "", nil); !errors.Is(err, ErrEmptyName) {
		t.Errorf("empty name error = %v", err)
	}
	if _, err := NewParticipant("evt", strings.Repeat("n", 51), nil); !errors.Is(err, ErrNameTooLong) {
		t.Errorf("long name error = %v", err)
	}
	bad := []slot.Availability{{SlotStart: start, SlotEnd: start}}
	if _, err := NewParticipant("evt", "Bob", bad); !errors.Is(err, ErrInvalidSlot) {
		t.Errorf("empty slot error = %v", err)
	}
}

func TestNewScheduledMeeting(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	slots := []slot.Availability{
		{SlotStart: start.Add(30 * time.Minute), SlotEnd: start.Add(60 * time.Minute)},
		{SlotStart: start, SlotEnd: start.Add(30 * time.Minute)},
	}

	m, err := NewScheduledMeeting("evt", "Kickoff", "", slots)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.Start().Equal(start) || !m.End().Equal(start.Add(time.Hour)) {
		t.Errorf("span = %v - %v", m.Start(), m.End())
	}

	if _, err := NewScheduledMeeting("evt", "Kickoff", "", nil); !errors.Is(err, ErrNoSlots) {
		t.Errorf("no slots error = %v", err)
	}
	if _, err := NewScheduledMeeting("evt", "", "", slots); !errors.Is(err, ErrEmptyTitle) {
		t.Errorf("empty title error = %v", err)
	}
}

func TestNewID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := NewID()
		if err != nil {
			t.Fatalf("NewID: %v", err)
		}
		if len(id) != IDLength {
			t.Fatalf("id %q has length %d", id, len(id))
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
