package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// PlaceBox renders content in a lipgloss.Place box with background fill.
func PlaceBox(w, h int, vAlign lipgloss.Position, content string, bg lipgloss.Color) string {
	placed := lipgloss.Place(w, h, lipgloss.Left, vAlign, content, lipgloss.WithWhitespaceBackground(bg))
	return PadLines(placed, w, h, bg)
}

// PadLines pads every line to width and the block to height, filling with
// bg. Lines wider than width are left alone; extra lines are dropped.
func PadLines(content string, width, height int, bg lipgloss.Color) string {
	if width <= 0 || height <= 0 {
		return content
	}
	lines := strings.Split(content, "\n")
	for len(lines) < height {
		lines = append(lines, "")
	}
	lines = lines[:height]

	fill := lipgloss.NewStyle().Background(bg)
	for i, line := range lines {
		if w := lipgloss.Width(line); w < width {
			lines[i] = line + fill.Render(strings.Repeat(" ", width-w))
		}
	}
	return strings.Join(lines, "\n")
}

// Fit truncates s to width and pads it with spaces to exactly width cells.
func Fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = ansi.Truncate(s, width, "…")
	if w := ansi.StringWidth(s); w < width {
		s += strings.Repeat(" ", width-w)
	}
	return s
}

// Center pads s on both sides to width, truncating when it does not fit.
func Center(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = ansi.Truncate(s, width, "")
	gap := width - ansi.StringWidth(s)
	left := gap / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
}

// Overlay centers box over base, splicing it line by line so the base stays
// visible around it.
func Overlay(base, box string, width, height int, boxBg lipgloss.Color) string {
	boxLines := strings.Split(box, "\n")
	boxW := 0
	for _, line := range boxLines {
		boxW = max(boxW, lipgloss.Width(line))
	}
	if boxW == 0 {
		return base
	}
	boxW = min(boxW, width)

	top := max((height-len(boxLines))/2, 0)
	left := max((width-boxW)/2, 0)

	fill := lipgloss.NewStyle().Background(boxBg)
	for i, line := range boxLines {
		w := lipgloss.Width(line)
		if w > boxW {
			line = ansi.Cut(line, 0, boxW)
		} else if w < boxW {
			line += fill.Render(strings.Repeat(" ", boxW-w))
		}
		boxLines[i] = reapplyBackground(line, boxBg) + ansi.ResetStyle
	}

	baseLines := strings.Split(PadLines(base, width, height, lipgloss.Color("")), "\n")
	for i, line := range boxLines {
		row := top + i
		if row >= len(baseLines) {
			break
		}
		b := baseLines[row]
		baseLines[row] = ansi.Cut(b, 0, left) + line + ansi.Cut(b, left+boxW, width)
	}
	return strings.Join(baseLines, "\n")
}

// reapplyBackground restores bg after every reset inside line so nested
// styles do not punch holes in the box.
func reapplyBackground(line string, bg lipgloss.Color) string {
	if bg == "" {
		return line
	}
	seq := ansi.Style{}.BackgroundColor(ansi.HexColor(string(bg))).String()
	line = strings.ReplaceAll(line, "\x1b[0m", "\x1b[0m"+seq)
	line = strings.ReplaceAll(line, "\x1b[49m", "\x1b[49m"+seq)
	return line
}
