// Package slot generates the discrete time slots of a meeting poll and
// gives each slot a canonical key.
package slot

import (
	"time"
)

// Date and clock layouts used for slot identity.
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
	LabelLayout = "3:04 PM"
)

// TimeSlot is a half-open interval [Start, End) on one calendar date.
type TimeSlot struct {
	Start time.Time
	End   time.Time
	Date  string // YYYY-MM-DD of Start in the event location
	Time  string // HH:MM of Start in the event location
}

// Key returns the canonical identity of the slot.
func (s TimeSlot) Key() Key {
	return NewKey(s.Date, s.Time)
}

// Availability returns the absolute instant pair persisted for this slot.
func (s TimeSlot) Availability() Availability {
	return Availability{SlotStart: s.Start.UTC(), SlotEnd: s.End.UTC()}
}

// Generate produces the slots for every date, date by date in input order.
// For each date, slots start at startTime and step by durationMinutes; a slot is
// kept only if it ends no later than endTime, so a trailing partial slot is dropped.
// Malformed times, a non-positive duration, or a window with start >= end yield
// no slots for that date. Only the calendar day of each date is used; it is
// interpreted in loc (UTC when nil).
func Generate(dates []time.Time, startTime, endTime string, durationMinutes int, loc *time.Location) []TimeSlot {
	if loc == nil {
		loc = time.UTC
	}
	startMins, okStart := ParseClock(startTime)
	endMins, okEnd := ParseClock(endTime)
	if !okStart || !okEnd || durationMinutes <= 0 || startMins >= endMins {
		return nil
	}

	step := time.Duration(durationMinutes) * time.Minute
	var slots []TimeSlot
	for _, d := range dates {
		y, m, day := d.Date()
		current := time.Date(y, m, day, startMins/60, startMins%60, 0, 0, loc)
		windowEnd := time.Date(y, m, day, endMins/60, endMins%60, 0, 0, loc)

		for {
			slotEnd := current.Add(step)
			if slotEnd.After(windowEnd) {
				break
			}
			slots = append(slots, TimeSlot{
				Start: current,
				End:   slotEnd,
				Date:  current.Format(DateLayout),
				Time:  current.Format(ClockLayout),
			})
			current = slotEnd
		}
	}
	return slots
}

// Labels returns the row labels for a window, one per slot of a single date and
// in the same order. It applies the same trailing-slot policy as Generate.
func Labels(startTime, endTime string, durationMinutes int) []string {
	startMins, okStart := ParseClock(startTime)
	endMins, okEnd := ParseClock(endTime)
	if !okStart || !okEnd || durationMinutes <= 0 || startMins >= endMins {
		return nil
	}

	var labels []string
	base := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	for m := startMins; m+durationMinutes <= endMins; m += durationMinutes {
		labels = append(labels, base.Add(time.Duration(m)*time.Minute).Format(LabelLayout))
	}
	return labels
}

// GroupByDate groups slots by their Date, preserving slot order within each date.
func GroupByDate(slots []TimeSlot) map[string][]TimeSlot {
	grouped := make(map[string][]TimeSlot)
	for _, s := range slots {
		grouped[s.Date] = append(grouped[s.Date], s)
	}
	return grouped
}

// Keys returns the key of every slot, in slot order.
func Keys(slots []TimeSlot) []Key {
	keys := make([]Key, len(slots))
	for i, s := range slots {
		keys[i] = s.Key()
	}
	return keys
}
