package view

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// FooterLine renders content in style, truncated to width.
func FooterLine(width int, style lipgloss.Style, content string) string {
	frameW, _ := style.GetFrameSize()
	contentWidth := max(width-frameW, 0)
	if contentWidth > 0 {
		content = ansi.Truncate(content, contentWidth, "…")
	}
	return style.Width(contentWidth).Render(content)
}

// RenderFooter stacks the footer lines at the bottom of a height-line box.
func RenderFooter(width, height int, bg lipgloss.Color, lines ...string) string {
	if height <= 0 {
		return ""
	}
	if len(lines) > height {
		lines = lines[len(lines)-height:]
	}
	s := ""
	for i, line := range lines {
		if i > 0 {
			s += "\n"
		}
		s += line
	}
	return PlaceBox(width, height, lipgloss.Bottom, s, bg)
}
