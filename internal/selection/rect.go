package selection

import "github.com/javiermolinar/quorum/internal/slot"

// RectEngine selects rectangles of grid cells addressed by (column, row).
// Unlike Engine, the gesture mode is decided on release: if every covered cell
// is already selected the rectangle is removed, otherwise it is added.
// A RectEngine is not safe for concurrent use.
type RectEngine struct {
	layout   *slot.Layout
	selected slot.Set
	onChange func(slot.Set)

	active  bool
	start   slot.Coord
	current slot.Coord
}

// NewRectEngine creates a rectangle engine over layout.
func NewRectEngine(layout *slot.Layout, opts ...Option) *RectEngine {
	o := buildOptions(opts)
	selected := slot.NewSet()
	if o.initial != nil {
		selected = o.initial.Clone()
	}
	return &RectEngine{
		layout:   layout,
		selected: selected,
		onChange: o.onChange,
	}
}

// Layout returns the grid the engine works on.
func (e *RectEngine) Layout() *slot.Layout {
	return e.layout
}

// Begin starts a rectangle at c. Coordinates outside the grid are ignored.
func (e *RectEngine) Begin(c slot.Coord) {
	if !e.inBounds(c) {
		return
	}
	e.active = true
	e.start = c
	e.current = c
}

// Update extends the rectangle to c while a gesture is active.
func (e *RectEngine) Update(c slot.Coord) {
	if !e.active || !e.inBounds(c) {
		return
	}
	e.current = c
}

// Covered returns every existing cell in the inclusive rectangle between the
// start and current coordinates. Cells missing from a short column are skipped.
func (e *RectEngine) Covered() slot.Set {
	covered := slot.NewSet()
	if !e.active {
		return covered
	}
	minCol, maxCol := min(e.start.Col, e.current.Col), max(e.start.Col, e.current.Col)
	minRow, maxRow := min(e.start.Row, e.current.Row), max(e.start.Row, e.current.Row)
	for col := minCol; col <= maxCol; col++ {
		for row := minRow; row <= maxRow; row++ {
			if s, ok := e.layout.At(slot.Coord{Col: col, Row: row}); ok {
				covered.Add(s.Key())
			}
		}
	}
	return covered
}

// WouldDeselect reports whether releasing now would remove the covered cells.
func (e *RectEngine) WouldDeselect() bool {
	return e.allSelected(e.Covered())
}

// End commits the rectangle and fires OnChange once. No-op when inactive.
func (e *RectEngine) End() {
	if !e.active {
		return
	}
	covered := e.Covered()
	deselect := e.allSelected(covered)

	next := e.selected.Clone()
	for k := range covered {
		if deselect {
			next.Remove(k)
		} else {
			next.Add(k)
		}
	}
	e.active = false
	e.commit(next)
}

// Cancel discards the active rectangle without committing. Used when the
// pointer leaves the grid or is released outside it.
func (e *RectEngine) Cancel() {
	e.active = false
}

// Active reports whether a rectangle is being drawn.
func (e *RectEngine) Active() bool {
	return e.active
}

// CellState returns the visual state of k.
func (e *RectEngine) CellState(k slot.Key) CellState {
	if e.active {
		if c, ok := e.layout.Position(k); ok && e.inRect(c) {
			if e.WouldDeselect() {
				return CellPendingDeselect
			}
			return CellPendingSelect
		}
	}
	if e.selected.Has(k) {
		return CellSelected
	}
	return CellNone
}

// Selection returns a copy of the committed selection.
func (e *RectEngine) Selection() slot.Set {
	return e.selected.Clone()
}

// SetSelection replaces the committed selection and cancels any gesture.
func (e *RectEngine) SetSelection(s slot.Set) {
	e.active = false
	if s == nil {
		s = slot.NewSet()
	}
	e.commit(s.Clone())
}

// Clear empties the committed selection.
func (e *RectEngine) Clear() {
	e.active = false
	e.commit(slot.NewSet())
}

// Slots returns the selected grid slots in generation order.
func (e *RectEngine) Slots() []slot.TimeSlot {
	return slot.SlotsFor(e.selected, e.layout.Slots())
}

// Availability returns the selected slots as absolute instant pairs.
func (e *RectEngine) Availability() []slot.Availability {
	return slot.KeysToAvailability(e.selected, e.layout.Slots())
}

func (e *RectEngine) allSelected(covered slot.Set) bool {
	if covered.Len() == 0 {
		return false
	}
	for k := range covered {
		if !e.selected.Has(k) {
			return false
		}
	}
	return true
}

func (e *RectEngine) inBounds(c slot.Coord) bool {
	return c.Col >= 0 && c.Col < e.layout.Columns() && c.Row >= 0 && c.Row < e.layout.Rows()
}

func (e *RectEngine) inRect(c slot.Coord) bool {
	return c.Col >= min(e.start.Col, e.current.Col) && c.Col <= max(e.start.Col, e.current.Col) &&
		c.Row >= min(e.start.Row, e.current.Row) && c.Row <= max(e.start.Row, e.current.Row)
}

func (e *RectEngine) commit(next slot.Set) {
	e.selected = next
	if e.onChange != nil {
		e.onChange(next.Clone())
	}
}
