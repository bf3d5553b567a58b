package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// FormatDuration formats minutes as "Xh Ym".
func FormatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	h := minutes / 60
	m := minutes % 60
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}

// FormatNames joins names with commas and truncates the result to width,
// ending with "+N" for the names that did not fit.
func FormatNames(names []string, width int) string {
	if len(names) == 0 {
		return ""
	}
	full := strings.Join(names, ", ")
	if width <= 0 || ansi.StringWidth(full) <= width {
		return full
	}
	for n := len(names) - 1; n > 0; n-- {
		s := strings.Join(names[:n], ", ") + fmt.Sprintf(" +%d", len(names)-n)
		if ansi.StringWidth(s) <= width {
			return s
		}
	}
	return ansi.Truncate(full, width, "…")
}

// FormatAvailability formats the tooltip line of a heatmap cell.
func FormatAvailability(count, total int) string {
	return fmt.Sprintf("%d / %d available", count, total)
}
