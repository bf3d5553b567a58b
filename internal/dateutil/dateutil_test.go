package dateutil

import (
	"errors"
	"testing"
	"time"
)

// Wednesday, 2025-01-15, mid-afternoon in a non-UTC zone.
var refTime = time.Date(2025, 1, 15, 15, 30, 0, 0, time.FixedZone("CET", 3600))

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseStrictDate(t *testing.T) {
	t.Run("valid date", func(t *testing.T) {
		got, err := ParseStrictDate("2025-01-15")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got.Equal(day(2025, 1, 15)) {
			t.Errorf("got %v", got)
		}
	})

	for _, input := range []string{"", "01-15-2025", "2025-1-5", "2025-02-30", "tomorrow"} {
		t.Run("invalid "+input, func(t *testing.T) {
			if _, err := ParseStrictDate(input); !errors.Is(err, ErrInvalidDateFormat) {
				t.Errorf("ParseStrictDate(%q) error = %v, want %v", input, err, ErrInvalidDateFormat)
			}
		})
	}
}

func TestParseRelativeDate(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"", day(2025, 1, 15)},
		{"today", day(2025, 1, 15)},
		{"TOMORROW", day(2025, 1, 16)},
		{"next-week", day(2025, 1, 22)},
		{"friday", day(2025, 1, 17)},
		{"wed", day(2025, 1, 22)},
		{"monday", day(2025, 1, 20)},
		{"next-monday", day(2025, 1, 20)},
		{"2025-02-01", day(2025, 2, 1)},
		{"2025-01-15", day(2025, 1, 15)},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRelativeDate(tt.input, refTime)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseRelativeDate(%q) = %v, want %v", tt.input, got.Format(Layout), tt.want.Format(Layout))
			}
		})
	}
}

func TestParseRelativeDate_Errors(t *testing.T) {
	tests := []struct {
		input string
		want  error
	}{
		{"2025-01-14", ErrDateInPast},
		{"next-someday", ErrInvalidDateFormat},
		{"yesterday", ErrInvalidDateFormat},
		{"15/01/2025", ErrInvalidDateFormat},
	}
	for _, tt := range tests {
		if _, err := ParseRelativeDate(tt.input, refTime); !errors.Is(err, tt.want) {
			t.Errorf("ParseRelativeDate(%q) error = %v, want %v", tt.input, err, tt.want)
		}
	}
}

func TestNewDateRange(t *testing.T) {
	r, err := NewDateRange("2025-01-20", "2025-01-22", refTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	days := r.Days()
	if len(days) != 3 || !days[2].Equal(day(2025, 1, 22)) {
		t.Errorf("Days() = %v", FormatDates(days))
	}

	single, err := NewDateRange("tomorrow", "", refTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(single.Days()) != 1 {
		t.Errorf("single-day range has %d days", len(single.Days()))
	}

	if _, err := NewDateRange("2025-01-22", "2025-01-20", refTime); !errors.Is(err, ErrEndDateBeforeStart) {
		t.Errorf("reversed range error = %v", err)
	}
	if _, err := NewDateRange("2025-01-20", "2027-01-20", refTime); !errors.Is(err, ErrRangeTooLong) {
		t.Errorf("long range error = %v", err)
	}
}

func TestParseDateList(t *testing.T) {
	got, err := ParseDateList("2025-01-21, tomorrow, 2025-01-20..2025-01-22, ,2025-01-16", refTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"2025-01-16", "2025-01-20", "2025-01-21", "2025-01-22"}
	gotStr := FormatDates(got)
	if len(gotStr) != len(want) {
		t.Fatalf("ParseDateList() = %v, want %v", gotStr, want)
	}
	for i := range want {
		if gotStr[i] != want[i] {
			t.Errorf("date %d = %s, want %s", i, gotStr[i], want[i])
		}
	}

	if _, err := ParseDateList("2025-01-20, bogus", refTime); !errors.Is(err, ErrInvalidDateFormat) {
		t.Errorf("error = %v, want %v", err, ErrInvalidDateFormat)
	}
}

func TestDay(t *testing.T) {
	got := Day(refTime)
	if !got.Equal(day(2025, 1, 15)) || got.Location() != time.UTC {
		t.Errorf("Day() = %v", got)
	}
	if tr := TruncateToDay(refTime); tr.Hour() != 0 || tr.Location() != refTime.Location() {
		t.Errorf("TruncateToDay() = %v", tr)
	}
}
