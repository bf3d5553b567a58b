package slot

import "fmt"

// MinutesPerDay is 24 hours * 60 minutes.
const MinutesPerDay = 24 * 60

// ParseClock converts "HH:MM" (or "H:MM") to minutes since midnight.
// The second return value is false for anything that is not a valid 24-hour time.
func ParseClock(s string) (int, bool) {
	var hourPart, minPart string
	switch {
	case len(s) == 5 && s[2] == ':':
		hourPart, minPart = s[0:2], s[3:5]
	case len(s) == 4 && s[1] == ':':
		hourPart, minPart = s[0:1], s[2:4]
	default:
		return 0, false
	}
	if !isDigits(hourPart) || !isDigits(minPart) {
		return 0, false
	}

	hours := atoi(hourPart)
	mins := atoi(minPart)
	if hours > 23 || mins > 59 {
		return 0, false
	}
	return hours*60 + mins, true
}

// FormatClock converts minutes since midnight to "HH:MM".
func FormatClock(m int) string {
	if m < 0 {
		m = 0
	}
	if m >= MinutesPerDay {
		m = MinutesPerDay - 1
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// ValidClock reports whether s is a valid "HH:MM" time.
func ValidClock(s string) bool {
	_, ok := ParseClock(s)
	return ok
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return s != ""
}

func atoi(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n
}
