package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// GridCell is the rendered content of one cell.
type GridCell struct {
	Text  string
	Style lipgloss.Style
}

// Grid describes the visible window of a date × time grid. Row and column
// indices passed to Cell are relative to the window.
type Grid struct {
	Headers     []string
	Labels      []string
	LabelW      int
	ColW        int
	Gap         int
	Cell        func(row, col int) (GridCell, bool)
	LabelStyle  lipgloss.Style
	HeaderStyle lipgloss.Style
	GapStyle    lipgloss.Style
}

// RenderGrid renders a header line followed by one line per label. A cell
// reported missing is drawn as gap.
func RenderGrid(g Grid) string {
	gap := g.GapStyle.Render(strings.Repeat(" ", g.Gap))
	lines := make([]string, 0, len(g.Labels)+1)

	var header strings.Builder
	header.WriteString(g.GapStyle.Render(strings.Repeat(" ", g.LabelW)))
	for _, h := range g.Headers {
		header.WriteString(gap)
		header.WriteString(g.HeaderStyle.Render(Center(h, g.ColW)))
	}
	lines = append(lines, header.String())

	blank := g.GapStyle.Render(strings.Repeat(" ", g.ColW))
	for row, label := range g.Labels {
		var line strings.Builder
		line.WriteString(g.LabelStyle.Render(Fit(label, g.LabelW)))
		for col := range g.Headers {
			line.WriteString(gap)
			cell, ok := g.Cell(row, col)
			if !ok {
				line.WriteString(blank)
				continue
			}
			line.WriteString(cell.Style.Render(Center(cell.Text, g.ColW)))
		}
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

// LegendItem is one swatch of a legend.
type LegendItem struct {
	Swatch lipgloss.Style
	Label  string
}

// Legend renders each item as a two-cell swatch followed by its label.
func Legend(items []LegendItem, text lipgloss.Style) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, item.Swatch.Render("  ")+text.Render(" "+item.Label))
	}
	return strings.Join(parts, text.Render("  "))
}
