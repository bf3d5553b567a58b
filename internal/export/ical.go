// Package export renders scheduled meetings as iCalendar files.
package export

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/javiermolinar/quorum/internal/poll"
	"github.com/javiermolinar/quorum/internal/slot"
)

// ProductID identifies quorum in exported calendars.
const ProductID = "-//quorum//EN"

// uidNamespace scopes meeting UIDs so re-exports produce the same UID.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("quorum"))

// Blocks merges contiguous or overlapping slots into continuous intervals,
// sorted by start.
func Blocks(slots []slot.Availability) []slot.Availability {
	if len(slots) == 0 {
		return nil
	}
	sorted := make([]slot.Availability, len(slots))
	copy(sorted, slots)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].SlotStart.Before(sorted[j].SlotStart)
	})

	blocks := []slot.Availability{sorted[0]}
	for _, s := range sorted[1:] {
		last := &blocks[len(blocks)-1]
		if !s.SlotStart.After(last.SlotEnd) {
			if s.SlotEnd.After(last.SlotEnd) {
				last.SlotEnd = s.SlotEnd
			}
			continue
		}
		blocks = append(blocks, s)
	}
	return blocks
}

// Calendar builds a VCALENDAR with one VEVENT per continuous block of the
// meeting. attendees, when given, are listed in each description.
func Calendar(e *poll.Event, m *poll.ScheduledMeeting, attendees []string, now time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, ProductID)

	description := m.Description
	if len(attendees) > 0 {
		line := "Available: " + strings.Join(attendees, ", ")
		if description != "" {
			description += "\n\n" + line
		} else {
			description = line
		}
	}

	for _, b := range Blocks(m.Slots) {
		ve := ical.NewComponent(ical.CompEvent)
		ve.Props.SetText(ical.PropUID, UID(m.EventID, b.SlotStart))
		ve.Props.SetText(ical.PropSummary, m.Title)
		ve.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
		ve.Props.SetDateTime(ical.PropDateTimeStart, b.SlotStart.UTC())
		ve.Props.SetDateTime(ical.PropDateTimeEnd, b.SlotEnd.UTC())
		if description != "" {
			ve.Props.SetText(ical.PropDescription, description)
		}
		if e != nil && e.Timezone != "" && e.Timezone != "UTC" {
			ve.Props.SetText(ical.PropComment, "Poll timezone: "+e.Timezone)
		}
		cal.Children = append(cal.Children, ve)
	}
	return cal
}

// Encode writes the meeting as an .ics stream.
func Encode(w io.Writer, e *poll.Event, m *poll.ScheduledMeeting, attendees []string, now time.Time) error {
	if len(m.Slots) == 0 {
		return poll.ErrNoSlots
	}
	if err := ical.NewEncoder(w).Encode(Calendar(e, m, attendees, now)); err != nil {
		return fmt.Errorf("encoding calendar: %w", err)
	}
	return nil
}

// UID returns the stable iCalendar UID of a block.
func UID(eventID string, start time.Time) string {
	name := eventID + "/" + start.UTC().Format(time.RFC3339)
	return uuid.NewSHA1(uidNamespace, []byte(name)).String()
}

// Filename returns a file-system friendly name for the meeting.
func Filename(m *poll.ScheduledMeeting) string {
	name := slug.Make(m.Title)
	if name == "" {
		name = "meeting"
	}
	return name + ".ics"
}
