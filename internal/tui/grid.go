package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/quorum/internal/selection"
	"github.com/javiermolinar/quorum/internal/slot"
)

// Screen layout, in terminal cells.
const (
	marginX   = 1
	headerH   = 2 // title and meta lines
	footerH   = 4 // info, legend, status and help lines
	gridGap   = 1
	minColW   = 7
	maxColW   = 14
	minLabelW = 8
)

// gridGeometry maps grid coordinates to screen cells for the visible window.
type gridGeometry struct {
	originX, originY int // top-left of the first visible cell
	labelW, colW     int
	rowOffset        int
	colOffset        int
	visibleRows      int
	visibleCols      int
}

// cellRect returns the screen rectangle of c, false when c is scrolled out.
func (g gridGeometry) cellRect(c slot.Coord) (selection.Rect, bool) {
	if !g.visible(c) {
		return selection.Rect{}, false
	}
	return selection.Rect{
		Left:   g.originX + (c.Col-g.colOffset)*(g.colW+gridGap),
		Top:    g.originY + c.Row - g.rowOffset,
		Width:  g.colW,
		Height: 1,
	}, true
}

// coordAt returns the grid coordinate under the screen point (x, y). Gaps
// between columns and anything outside the visible window report false.
func (g gridGeometry) coordAt(x, y int) (slot.Coord, bool) {
	if g.colW <= 0 || x < g.originX || y < g.originY {
		return slot.Coord{}, false
	}
	dx := x - g.originX
	stride := g.colW + gridGap
	if dx%stride >= g.colW {
		return slot.Coord{}, false
	}
	col, row := dx/stride, y-g.originY
	if col >= g.visibleCols || row >= g.visibleRows {
		return slot.Coord{}, false
	}
	return slot.Coord{Col: col + g.colOffset, Row: row + g.rowOffset}, true
}

// inBounds reports whether (x, y) lies in the box spanned by the visible
// cells, including the gaps between columns.
func (g gridGeometry) inBounds(x, y int) bool {
	if g.colW <= 0 || g.visibleCols <= 0 || g.visibleRows <= 0 {
		return false
	}
	right := g.originX + g.visibleCols*(g.colW+gridGap) - gridGap
	bottom := g.originY + g.visibleRows
	return x >= g.originX && x < right && y >= g.originY && y < bottom
}

func (g gridGeometry) visible(c slot.Coord) bool {
	return c.Row >= g.rowOffset && c.Row < g.rowOffset+g.visibleRows &&
		c.Col >= g.colOffset && c.Col < g.colOffset+g.visibleCols
}

// relayout sizes the grid window for the terminal, scrolls it so the cursor
// stays visible and re-registers every visible cell with the engine.
func (m *Model) relayout() {
	if m.layout == nil || m.width == 0 || m.height == 0 {
		return
	}

	labelW := minLabelW
	for _, l := range m.layout.Labels() {
		labelW = max(labelW, lipgloss.Width(l))
	}

	cols, rows := m.layout.Columns(), m.layout.Rows()
	avail := m.width - 2*marginX - labelW
	colW := minColW
	if cols > 0 {
		colW = min(max(avail/cols-gridGap, minColW), maxColW)
	}

	g := m.geo
	g.labelW = labelW
	g.colW = colW
	g.originX = marginX + labelW + gridGap
	g.originY = headerH + 1
	g.visibleCols = min(max(avail/(colW+gridGap), 1), max(cols, 1))
	g.visibleRows = min(max(m.height-g.originY-footerH, 1), max(rows, 1))
	g.colOffset = scrollTo(g.colOffset, m.cursor.Col, g.visibleCols, cols)
	g.rowOffset = scrollTo(g.rowOffset, m.cursor.Row, g.visibleRows, rows)
	m.geo = g

	m.registerCells()
}

// scrollTo returns the offset that keeps pos within a window of size visible
// over total items, moving as little as possible.
func scrollTo(offset, pos, visible, total int) int {
	if pos < offset {
		offset = pos
	}
	if pos >= offset+visible {
		offset = pos - visible + 1
	}
	return max(min(offset, total-visible), 0)
}

func (m *Model) registerCells() {
	m.engine.ResetGeometry()
	for row := m.geo.rowOffset; row < m.geo.rowOffset+m.geo.visibleRows; row++ {
		for col := m.geo.colOffset; col < m.geo.colOffset+m.geo.visibleCols; col++ {
			c := slot.Coord{Col: col, Row: row}
			s, ok := m.layout.At(c)
			if !ok {
				continue
			}
			if r, ok := m.geo.cellRect(c); ok {
				m.engine.RegisterCell(s.Key(), r)
			}
		}
	}
}

// moveCursor moves the cursor by (dc, dr), clamped to the grid, and scrolls
// when it leaves the window.
func (m *Model) moveCursor(dc, dr int) {
	if m.layout == nil {
		return
	}
	c := slot.Coord{
		Col: min(max(m.cursor.Col+dc, 0), max(m.layout.Columns()-1, 0)),
		Row: min(max(m.cursor.Row+dr, 0), max(m.layout.Rows()-1, 0)),
	}
	if c == m.cursor {
		return
	}
	m.cursor = c
	if !m.geo.visible(c) {
		m.relayout()
	}
}

// scroll moves the row window by delta without moving the cursor off-grid.
func (m *Model) scroll(delta int) {
	if m.layout == nil {
		return
	}
	rows := m.layout.Rows()
	offset := max(min(m.geo.rowOffset+delta, rows-m.geo.visibleRows), 0)
	if offset == m.geo.rowOffset {
		return
	}
	m.geo.rowOffset = offset
	m.cursor.Row = min(max(m.cursor.Row, offset), offset+m.geo.visibleRows-1)
	m.registerCells()
}

// cursorKey returns the key under the cursor.
func (m Model) cursorKey() (slot.Key, bool) {
	if m.layout == nil {
		return slot.Key{}, false
	}
	s, ok := m.layout.At(m.cursor)
	if !ok {
		return slot.Key{}, false
	}
	return s.Key(), true
}
