package slot

import (
	"sort"
	"time"
)

// Config is the time configuration of one poll grid.
type Config struct {
	Dates       []time.Time
	StartTime   string // HH:MM
	EndTime     string // HH:MM
	SlotMinutes int
	Location    *time.Location
}

// Build generates the slots and labels for the config and lays them out.
func (c Config) Build() *Layout {
	slots := Generate(c.Dates, c.StartTime, c.EndTime, c.SlotMinutes, c.Location)
	labels := Labels(c.StartTime, c.EndTime, c.SlotMinutes)
	return NewLayout(c.Dates, slots, labels)
}

// Coord addresses a cell by date column and time row.
type Coord struct {
	Col int
	Row int
}

// Layout arranges slots into a rectangle: one column per distinct date in
// chronological order, one row per time label.
type Layout struct {
	slots     []TimeSlot
	labels    []string
	dates     []string
	byDate    map[string][]TimeSlot
	positions map[Key]Coord
	rows      int
}

// NewLayout builds a layout. Columns are the distinct calendar days of dates,
// sorted; a column with no slots is kept but empty.
func NewLayout(dates []time.Time, slots []TimeSlot, labels []string) *Layout {
	l := &Layout{
		slots:     slots,
		labels:    labels,
		byDate:    GroupByDate(slots),
		positions: make(map[Key]Coord, len(slots)),
		rows:      len(labels),
	}

	seen := make(map[string]bool)
	for _, d := range dates {
		ds := d.Format(DateLayout)
		if !seen[ds] {
			seen[ds] = true
			l.dates = append(l.dates, ds)
		}
	}
	for ds := range l.byDate {
		if !seen[ds] {
			seen[ds] = true
			l.dates = append(l.dates, ds)
		}
	}
	sort.Strings(l.dates)

	for col, ds := range l.dates {
		for row, s := range l.byDate[ds] {
			l.positions[s.Key()] = Coord{Col: col, Row: row}
			if row+1 > l.rows {
				l.rows = row + 1
			}
		}
	}
	return l
}

// Slots returns every slot in generation order.
func (l *Layout) Slots() []TimeSlot {
	return l.slots
}

// Keys returns every slot key in generation order.
func (l *Layout) Keys() []Key {
	return Keys(l.slots)
}

// Labels returns the row labels.
func (l *Layout) Labels() []string {
	return l.labels
}

// Dates returns the column dates (YYYY-MM-DD) in chronological order.
func (l *Layout) Dates() []string {
	return l.dates
}

// Columns returns the number of date columns.
func (l *Layout) Columns() int {
	return len(l.dates)
}

// Rows returns the number of time rows.
func (l *Layout) Rows() int {
	return l.rows
}

// At returns the slot at a cell. Cells outside the grid, or beyond the end of
// a shorter column, report false.
func (l *Layout) At(c Coord) (TimeSlot, bool) {
	if c.Col < 0 || c.Col >= len(l.dates) || c.Row < 0 {
		return TimeSlot{}, false
	}
	col := l.byDate[l.dates[c.Col]]
	if c.Row >= len(col) {
		return TimeSlot{}, false
	}
	return col[c.Row], true
}

// Position returns the cell of a key.
func (l *Layout) Position(k Key) (Coord, bool) {
	c, ok := l.positions[k]
	return c, ok
}

// Contains reports whether k is a cell of this layout.
func (l *Layout) Contains(k Key) bool {
	_, ok := l.positions[k]
	return ok
}

// Lookup returns the slot with key k.
func (l *Layout) Lookup(k Key) (TimeSlot, bool) {
	c, ok := l.positions[k]
	if !ok {
		return TimeSlot{}, false
	}
	return l.At(c)
}
