// Package dateutil parses the candidate dates of a poll. Dates are calendar
// days, represented as midnight UTC.
package dateutil

import (
	"errors"
	"sort"
	"strings"
	"time"
)

// Layout is the YYYY-MM-DD date layout.
const Layout = "2006-01-02"

// Validation errors.
var (
	ErrInvalidDateFormat  = errors.New("date must be in YYYY-MM-DD format")
	ErrEndDateBeforeStart = errors.New("end date must be on or after start date")
	ErrDateInPast         = errors.New("date is in the past")
	ErrRangeTooLong       = errors.New("date range is too long")
)

// maxRangeDays caps the expansion of a single "a..b" range.
const maxRangeDays = 366

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sun":       time.Sunday,
	"mon":       time.Monday,
	"tue":       time.Tuesday,
	"wed":       time.Wednesday,
	"thu":       time.Thursday,
	"fri":       time.Friday,
	"sat":       time.Saturday,
}

// Day returns the calendar day of t as midnight UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// TruncateToDay returns t at midnight in its own location.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ParseStrictDate parses a YYYY-MM-DD date and nothing else.
func ParseStrictDate(s string) (time.Time, error) {
	if len(s) != len(Layout) {
		return time.Time{}, ErrInvalidDateFormat
	}
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	return t, nil
}

// ParseRelativeDate parses a date that can be:
//   - "today" or empty: the day of relativeTo
//   - "tomorrow"
//   - a weekday name ("monday", "mon"): its next occurrence, never today
//   - "next-<weekday>" or "next-week" (same weekday, seven days on)
//   - an absolute YYYY-MM-DD date
//
// Input is case-insensitive. Absolute dates before relativeTo's day return
// ErrDateInPast.
func ParseRelativeDate(s string, relativeTo time.Time) (time.Time, error) {
	today := Day(relativeTo)
	input := strings.ToLower(strings.TrimSpace(s))

	switch input {
	case "", "today":
		return today, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	case "next-week":
		return today.AddDate(0, 0, 7), nil
	}

	name := strings.TrimPrefix(input, "next-")
	if wd, ok := weekdays[name]; ok {
		return nextWeekday(today, wd), nil
	}
	if name != input {
		return time.Time{}, ErrInvalidDateFormat
	}

	d, err := ParseStrictDate(input)
	if err != nil {
		return time.Time{}, err
	}
	if d.Before(today) {
		return time.Time{}, ErrDateInPast
	}
	return d, nil
}

func nextWeekday(today time.Time, target time.Weekday) time.Time {
	days := int(target) - int(today.Weekday())
	if days <= 0 {
		days += 7
	}
	return today.AddDate(0, 0, days)
}

// DateRange is an inclusive span of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange validates a range; an empty end means a single day.
func NewDateRange(start, end string, relativeTo time.Time) (*DateRange, error) {
	s, err := ParseRelativeDate(start, relativeTo)
	if err != nil {
		return nil, err
	}
	e := s
	if strings.TrimSpace(end) != "" {
		e, err = ParseRelativeDate(end, relativeTo)
		if err != nil {
			return nil, err
		}
	}
	if e.Before(s) {
		return nil, ErrEndDateBeforeStart
	}
	if int(e.Sub(s).Hours()/24) >= maxRangeDays {
		return nil, ErrRangeTooLong
	}
	return &DateRange{Start: s, End: e}, nil
}

// Days returns every day of the range in order.
func (r *DateRange) Days() []time.Time {
	var days []time.Time
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// ParseDateList parses a comma-separated list of dates and "start..end"
// ranges, e.g. "tomorrow, 2025-03-10..2025-03-12". The result is sorted with
// duplicates removed.
func ParseDateList(s string, relativeTo time.Time) ([]time.Time, error) {
	seen := make(map[time.Time]bool)
	var dates []time.Time
	add := func(d time.Time) {
		if !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}

	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if start, end, ok := strings.Cut(item, ".."); ok {
			r, err := NewDateRange(start, end, relativeTo)
			if err != nil {
				return nil, err
			}
			for _, d := range r.Days() {
				add(d)
			}
			continue
		}
		d, err := ParseRelativeDate(item, relativeTo)
		if err != nil {
			return nil, err
		}
		add(d)
	}
	SortDates(dates)
	return dates, nil
}

// FormatDates joins dates as YYYY-MM-DD.
func FormatDates(dates []time.Time) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.Format(Layout)
	}
	return out
}

// SortDates sorts dates chronologically in place.
func SortDates(dates []time.Time) {
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})
}
