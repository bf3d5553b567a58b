package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/javiermolinar/quorum/internal/export"
	"github.com/javiermolinar/quorum/internal/poll"
	"github.com/javiermolinar/quorum/internal/slot"
)

// ErrUnknownSlot is returned for a slot argument outside the event grid.
var ErrUnknownSlot = errors.New("slot is not on the event grid")

// parseSlots resolves slot arguments against the grid of e. Each argument is
// "YYYY-MM-DD HH:MM" for a single slot or "YYYY-MM-DD HH:MM-HH:MM" for every
// slot starting in that half-open range. A "T" may replace the space.
func parseSlots(e *poll.Event, args []string) (slot.Set, error) {
	layout := e.Layout()
	set := slot.NewSet()

	for _, arg := range args {
		raw := strings.Replace(strings.TrimSpace(arg), "T", " ", 1)
		date, clocks, ok := strings.Cut(raw, " ")
		if !ok {
			return nil, fmt.Errorf("slot %q: expected \"YYYY-MM-DD HH:MM\"", arg)
		}
		from, to, isRange := strings.Cut(strings.TrimSpace(clocks), "-")

		start, ok := slot.ParseClock(from)
		if !ok {
			return nil, fmt.Errorf("slot %q: %w", arg, poll.ErrInvalidTimeFormat)
		}
		if !isRange {
			k := slot.NewKey(date, slot.FormatClock(start))
			if !layout.Contains(k) {
				return nil, fmt.Errorf("%w: %s", ErrUnknownSlot, arg)
			}
			set.Add(k)
			continue
		}

		end, ok := slot.ParseClock(to)
		if !ok {
			return nil, fmt.Errorf("slot %q: %w", arg, poll.ErrInvalidTimeFormat)
		}
		matched := 0
		for _, k := range layout.Keys() {
			d, c := k.Parts()
			m, _ := slot.ParseClock(c)
			if d == date && m >= start && m < end {
				set.Add(k)
				matched++
			}
		}
		if matched == 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSlot, arg)
		}
	}
	return set, nil
}

// formatBlocks merges contiguous slots and formats each block in loc, e.g.
// "Mon Jan 6 9:00 AM–10:30 AM".
func formatBlocks(slots []slot.Availability, loc *time.Location) []string {
	blocks := export.Blocks(slots)
	out := make([]string, 0, len(blocks))
	for _, b := range blocks {
		start, end := b.SlotStart.In(loc), b.SlotEnd.In(loc)
		s := start.Format("Mon Jan 2 " + slot.LabelLayout)
		if start.YearDay() == end.YearDay() && start.Year() == end.Year() {
			s += "–" + end.Format(slot.LabelLayout)
		} else {
			s += " – " + end.Format("Mon Jan 2 "+slot.LabelLayout)
		}
		out = append(out, s)
	}
	return out
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
