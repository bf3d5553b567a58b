package selection

import (
	"testing"
	"time"

	"github.com/javiermolinar/quorum/internal/slot"
)

// testGrid returns a 2x2 layout (two dates, 09:00 and 09:30).
func testGrid(t *testing.T) *slot.Layout {
	t.Helper()
	d1, _ := time.Parse(slot.DateLayout, "2025-03-01")
	d2, _ := time.Parse(slot.DateLayout, "2025-03-02")
	return slot.Config{
		Dates:       []time.Time{d1, d2},
		StartTime:   "09:00",
		EndTime:     "10:00",
		SlotMinutes: 30,
	}.Build()
}

func key(t *testing.T, l *slot.Layout, col, row int) slot.Key {
	t.Helper()
	s, ok := l.At(slot.Coord{Col: col, Row: row})
	if !ok {
		t.Fatalf("no cell at %d,%d", col, row)
	}
	return s.Key()
}

// registerGrid lays cells out 8 columns wide and 1 row tall starting at (10, 2).
func registerGrid(t *testing.T, e *Engine, l *slot.Layout) {
	t.Helper()
	for col := 0; col < l.Columns(); col++ {
		for row := 0; row < l.Rows(); row++ {
			e.RegisterCell(key(t, l, col, row), Rect{Left: 10 + col*8, Top: 2 + row, Width: 8, Height: 1})
		}
	}
}

func TestEngine_DragSelectIsUnion(t *testing.T) {
	l := testGrid(t)
	pre := key(t, l, 0, 1)
	e := New(WithInitialSelection(slot.NewSet(pre)))
	registerGrid(t, e, l)

	e.Begin(key(t, l, 0, 0))
	if e.Mode() != ModeSelect {
		t.Fatalf("Mode() = %v, want select", e.Mode())
	}
	e.Update(key(t, l, 1, 0), l.Keys())
	e.End()

	want := slot.NewSet(pre, key(t, l, 0, 0), key(t, l, 1, 0))
	if got := e.Selection(); !got.Equal(want) {
		t.Errorf("Selection() = %v, want %v", got.Sorted(), want.Sorted())
	}
	if e.Active() {
		t.Error("gesture should be inactive after End")
	}
}

func TestEngine_DragDeselectIsDifference(t *testing.T) {
	l := testGrid(t)
	all := slot.NewSet(l.Keys()...)
	e := New(WithInitialSelection(all))
	registerGrid(t, e, l)

	e.Begin(key(t, l, 0, 0))
	if e.Mode() != ModeDeselect {
		t.Fatalf("Mode() = %v, want deselect", e.Mode())
	}
	e.Update(key(t, l, 1, 0), l.Keys())
	e.End()

	want := slot.NewSet(key(t, l, 0, 1), key(t, l, 1, 1))
	if got := e.Selection(); !got.Equal(want) {
		t.Errorf("Selection() = %v, want %v", got.Sorted(), want.Sorted())
	}
}

func TestEngine_DragIsDirectionAgnostic(t *testing.T) {
	l := testGrid(t)
	e := New()
	registerGrid(t, e, l)

	e.Begin(key(t, l, 1, 1))
	e.Update(key(t, l, 0, 0), l.Keys())
	if got := e.Pending().Len(); got != 4 {
		t.Fatalf("pending = %d cells, want 4", got)
	}
	e.End()
	if got := e.Selection().Len(); got != 4 {
		t.Errorf("Selection() has %d cells, want 4", got)
	}
}

func TestEngine_PressReleaseTogglesOneCell(t *testing.T) {
	l := testGrid(t)
	e := New()
	registerGrid(t, e, l)
	k := key(t, l, 1, 1)

	e.Begin(k)
	e.End()
	if !e.Selection().Equal(slot.NewSet(k)) {
		t.Fatalf("Selection() = %v, want only %s", e.Selection().Sorted(), k)
	}

	e.Begin(k)
	e.End()
	if e.Selection().Len() != 0 {
		t.Errorf("second press should deselect, got %v", e.Selection().Sorted())
	}
}

func TestEngine_TapTwiceIsIdempotent(t *testing.T) {
	l := testGrid(t)
	initial := slot.NewSet(key(t, l, 0, 0))
	calls := 0
	e := New(
		WithTapToToggle(true),
		WithInitialSelection(initial),
		WithOnChange(func(slot.Set) { calls++ }),
	)
	k := key(t, l, 1, 0)

	e.Begin(k)
	if !e.Selection().Has(k) {
		t.Fatal("first tap should select")
	}
	if e.Active() {
		t.Error("tap mode must not start a gesture")
	}
	e.Tap(k)

	if !e.Selection().Equal(initial) {
		t.Errorf("Selection() = %v, want %v", e.Selection().Sorted(), initial.Sorted())
	}
	if calls != 2 {
		t.Errorf("OnChange called %d times, want 2", calls)
	}
}

func TestEngine_MissingGeometryFallsBackToHoveredCell(t *testing.T) {
	l := testGrid(t)
	e := New()
	a, b := key(t, l, 0, 0), key(t, l, 1, 1)

	e.Begin(a)
	e.Update(b, l.Keys())
	if !e.Pending().Equal(slot.NewSet(b)) {
		t.Fatalf("Pending() = %v, want only %s", e.Pending().Sorted(), b)
	}
	e.End()
	if !e.Selection().Equal(slot.NewSet(b)) {
		t.Errorf("Selection() = %v, want only %s", e.Selection().Sorted(), b)
	}
}

func TestEngine_OnChangeOnlyOnCommit(t *testing.T) {
	l := testGrid(t)
	var got []slot.Set
	e := New(WithOnChange(func(s slot.Set) { got = append(got, s) }))
	registerGrid(t, e, l)

	e.Begin(key(t, l, 0, 0))
	e.Update(key(t, l, 1, 0), l.Keys())
	e.Update(key(t, l, 1, 1), l.Keys())
	if len(got) != 0 {
		t.Fatalf("OnChange fired %d times during drag", len(got))
	}
	e.End()
	if len(got) != 1 || got[0].Len() != 4 {
		t.Fatalf("OnChange calls = %d, want one with 4 cells", len(got))
	}

	// The callback receives a copy.
	got[0].Add(slot.NewKey("2030-01-01", "00:00"))
	if e.Selection().Len() != 4 {
		t.Error("mutating the callback set leaked into the engine")
	}

	e.SetSelection(slot.NewSet(key(t, l, 0, 0)))
	e.Clear()
	if len(got) != 3 {
		t.Errorf("OnChange calls = %d, want 3", len(got))
	}
}

func TestEngine_SecondBeginRestartsGesture(t *testing.T) {
	l := testGrid(t)
	e := New()
	registerGrid(t, e, l)

	e.Begin(key(t, l, 0, 0))
	e.Update(key(t, l, 1, 1), l.Keys())
	e.Begin(key(t, l, 1, 0))
	e.End()

	want := slot.NewSet(key(t, l, 1, 0))
	if !e.Selection().Equal(want) {
		t.Errorf("Selection() = %v, want %v", e.Selection().Sorted(), want.Sorted())
	}
}

func TestEngine_CellState(t *testing.T) {
	l := testGrid(t)
	selected := key(t, l, 1, 1)
	e := New(WithInitialSelection(slot.NewSet(selected)))
	registerGrid(t, e, l)

	if got := e.CellState(selected); got != CellSelected {
		t.Errorf("CellState(selected) = %v", got)
	}
	if got := e.CellState(key(t, l, 0, 0)); got != CellNone {
		t.Errorf("CellState(unselected) = %v", got)
	}

	e.Begin(key(t, l, 0, 0))
	e.Update(key(t, l, 0, 1), l.Keys())
	if got := e.CellState(key(t, l, 0, 1)); got != CellPendingSelect {
		t.Errorf("CellState(pending) = %v, want pending-select", got)
	}
	e.Cancel()
	if got := e.CellState(key(t, l, 0, 1)); got != CellNone {
		t.Errorf("CellState after cancel = %v, want none", got)
	}

	e.Begin(selected)
	if got := e.CellState(selected); got != CellPendingDeselect {
		t.Errorf("CellState(pending deselect) = %v", got)
	}
}

func TestEngine_HitTest(t *testing.T) {
	l := testGrid(t)
	e := New()
	registerGrid(t, e, l)

	tests := []struct {
		x, y int
		want slot.Key
		ok   bool
	}{
		{x: 10, y: 2, want: key(t, l, 0, 0), ok: true},
		{x: 17, y: 3, want: key(t, l, 0, 1), ok: true},
		{x: 18, y: 3, want: key(t, l, 1, 1), ok: true},
		{x: 9, y: 2},
		{x: 26, y: 2},
		{x: 12, y: 4},
	}
	for _, tt := range tests {
		got, ok := e.HitTest(tt.x, tt.y)
		if ok != tt.ok || got != tt.want {
			t.Errorf("HitTest(%d,%d) = %s,%v want %s,%v", tt.x, tt.y, got, ok, tt.want, tt.ok)
		}
	}

	e.ResetGeometry()
	if _, ok := e.HitTest(10, 2); ok {
		t.Error("HitTest should miss after ResetGeometry")
	}
}

func TestEngine_UpdateWithoutBeginIsNoop(t *testing.T) {
	l := testGrid(t)
	e := New()
	registerGrid(t, e, l)

	e.Update(key(t, l, 1, 1), l.Keys())
	e.End()
	if e.Selection().Len() != 0 {
		t.Errorf("Selection() = %v, want empty", e.Selection().Sorted())
	}
}
