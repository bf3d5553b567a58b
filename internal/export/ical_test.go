package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-ical"

	"github.com/javiermolinar/quorum/internal/poll"
	"github.com/javiermolinar/quorum/internal/slot"
)

func at(hour, min int) time.Time {
	return time.Date(2025, 3, 1, hour, min, 0, 0, time.UTC)
}

func TestBlocks(t *testing.T) {
	slots := []slot.Availability{
		{SlotStart: at(10, 0), SlotEnd: at(10, 30)},
		{SlotStart: at(9, 0), SlotEnd: at(9, 30)},
		{SlotStart: at(9, 30), SlotEnd: at(10, 0)},
		{SlotStart: at(14, 0), SlotEnd: at(14, 30)},
	}
	blocks := Blocks(slots)
	if len(blocks) != 2 {
		t.Fatalf("Blocks() = %d, want 2", len(blocks))
	}
	if !blocks[0].SlotStart.Equal(at(9, 0)) || !blocks[0].SlotEnd.Equal(at(10, 30)) {
		t.Errorf("first block = %v - %v", blocks[0].SlotStart, blocks[0].SlotEnd)
	}
	if !blocks[1].SlotStart.Equal(at(14, 0)) {
		t.Errorf("second block starts at %v", blocks[1].SlotStart)
	}
	if Blocks(nil) != nil {
		t.Error("Blocks(nil) should be nil")
	}
}

func TestEncode(t *testing.T) {
	m := &poll.ScheduledMeeting{
		EventID:     "abc123",
		Title:       "Team Sync",
		Description: "Quarterly planning",
		Slots: []slot.Availability{
			{SlotStart: at(9, 0), SlotEnd: at(9, 30)},
			{SlotStart: at(9, 30), SlotEnd: at(10, 0)},
		},
	}
	e := &poll.Event{ID: "abc123", Timezone: "Europe/Madrid"}

	var buf bytes.Buffer
	if err := Encode(&buf, e, m, []string{"Alice", "Bob"}, at(8, 0)); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	cal, err := ical.NewDecoder(&buf).Decode()
	if err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	events := cal.Events()
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	ev := events[0]

	summary, _ := ev.Props.Text(ical.PropSummary)
	if summary != "Team Sync" {
		t.Errorf("SUMMARY = %q", summary)
	}
	start, err := ev.DateTimeStart(time.UTC)
	if err != nil || !start.Equal(at(9, 0)) {
		t.Errorf("DTSTART = %v, %v", start, err)
	}
	end, err := ev.DateTimeEnd(time.UTC)
	if err != nil || !end.Equal(at(10, 0)) {
		t.Errorf("DTEND = %v, %v", end, err)
	}
	desc, _ := ev.Props.Text(ical.PropDescription)
	if !strings.Contains(desc, "Alice, Bob") {
		t.Errorf("DESCRIPTION = %q", desc)
	}
	uid, _ := ev.Props.Text(ical.PropUID)
	if uid != UID("abc123", at(9, 0)) {
		t.Errorf("UID = %q", uid)
	}
}

func TestEncode_NoSlots(t *testing.T) {
	var buf bytes.Buffer
	err := Encode(&buf, nil, &poll.ScheduledMeeting{Title: "x"}, nil, at(8, 0))
	if err != poll.ErrNoSlots {
		t.Errorf("error = %v, want %v", err, poll.ErrNoSlots)
	}
}

func TestUID_Stable(t *testing.T) {
	if UID("a", at(9, 0)) != UID("a", at(9, 0)) {
		t.Error("UID must be deterministic")
	}
	if UID("a", at(9, 0)) == UID("b", at(9, 0)) {
		t.Error("UID must differ per event")
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Team Sync", "team-sync.ics"},
		{"Café Q&A!", "cafe-q-and-a.ics"},
		{"!!!", "meeting.ics"},
	}
	for _, tt := range tests {
		if got := Filename(&poll.ScheduledMeeting{Title: tt.title}); got != tt.want {
			t.Errorf("Filename(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}
