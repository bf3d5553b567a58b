// Package selection implements the interactive slot selection models: a
// drag/tap engine driven by screen geometry and a rectangle engine driven by
// grid coordinates.
package selection

import "github.com/javiermolinar/quorum/internal/slot"

// CellState is the visual state of one cell.
type CellState int

const (
	CellNone CellState = iota
	CellSelected
	CellPendingSelect
	CellPendingDeselect
)

// String returns a short name for the state.
func (s CellState) String() string {
	switch s {
	case CellSelected:
		return "selected"
	case CellPendingSelect:
		return "pending-select"
	case CellPendingDeselect:
		return "pending-deselect"
	default:
		return "none"
	}
}

// Mode is the direction of an active gesture.
type Mode int

const (
	ModeNone Mode = iota
	ModeSelect
	ModeDeselect
)

// String returns a short name for the mode.
func (m Mode) String() string {
	switch m {
	case ModeSelect:
		return "select"
	case ModeDeselect:
		return "deselect"
	default:
		return "none"
	}
}

type options struct {
	tapToToggle bool
	initial     slot.Set
	onChange    func(slot.Set)
}

// Option configures an engine.
type Option func(*options)

// WithTapToToggle makes every press toggle a single cell immediately instead
// of starting a drag. Ignored by RectEngine.
func WithTapToToggle(on bool) Option {
	return func(o *options) {
		o.tapToToggle = on
	}
}

// WithInitialSelection seeds the committed selection. The set is copied.
func WithInitialSelection(s slot.Set) Option {
	return func(o *options) {
		o.initial = s
	}
}

// WithOnChange registers a callback invoked once per committed mutation with
// a copy of the new selection. It is never invoked mid-gesture.
func WithOnChange(fn func(slot.Set)) Option {
	return func(o *options) {
		o.onChange = fn
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Engine is the primary selection model. A press fixes the gesture mode from
// the pressed cell's membership; moving the pointer recomputes the pending set
// from the bounding box of the start and current cells; release commits.
// An Engine is not safe for concurrent use.
type Engine struct {
	selected    slot.Set
	tapToToggle bool
	onChange    func(slot.Set)
	geo         *geometry

	active  bool
	mode    Mode
	start   slot.Key
	current slot.Key
	pending slot.Set
}

// New creates an engine with an empty selection unless WithInitialSelection is given.
func New(opts ...Option) *Engine {
	o := buildOptions(opts)
	selected := slot.NewSet()
	if o.initial != nil {
		selected = o.initial.Clone()
	}
	return &Engine{
		selected:    selected,
		tapToToggle: o.tapToToggle,
		onChange:    o.onChange,
		geo:         newGeometry(),
		pending:     slot.NewSet(),
	}
}

// TapToToggle reports whether the engine runs in tap mode.
func (e *Engine) TapToToggle() bool {
	return e.tapToToggle
}

// RegisterCell records the on-screen rectangle of a cell.
func (e *Engine) RegisterCell(k slot.Key, r Rect) {
	e.geo.register(k, r)
}

// ResetGeometry forgets every registered rectangle. Call it before a relayout.
func (e *Engine) ResetGeometry() {
	e.geo.reset()
}

// CellRect returns the registered rectangle of a cell.
func (e *Engine) CellRect(k slot.Key) (Rect, bool) {
	return e.geo.lookup(k)
}

// HitTest returns the cell whose registered rectangle contains (x, y).
func (e *Engine) HitTest(x, y int) (slot.Key, bool) {
	return e.geo.hit(x, y)
}

// Begin starts a gesture on k. In tap mode it toggles k and returns.
// Beginning while a gesture is active restarts it; the abandoned pending set
// is dropped without being committed.
func (e *Engine) Begin(k slot.Key) {
	if e.tapToToggle {
		e.Tap(k)
		return
	}
	e.active = true
	e.start = k
	e.current = k
	if e.selected.Has(k) {
		e.mode = ModeDeselect
	} else {
		e.mode = ModeSelect
	}
	e.pending = slot.NewSet(k)
}

// Update moves the gesture to k and recomputes the pending set: every key of
// allKeys whose registered rectangle has its centre inside the bounding box of
// the start and current cells. If either of those two cells has no registered
// geometry, the pending set is just k. No-op when no gesture is active.
func (e *Engine) Update(k slot.Key, allKeys []slot.Key) {
	if !e.active {
		return
	}
	e.current = k

	startRect, okStart := e.geo.lookup(e.start)
	currentRect, okCurrent := e.geo.lookup(k)
	if !okStart || !okCurrent {
		e.pending = slot.NewSet(k)
		return
	}

	box := boundingBox(startRect, currentRect)
	pending := slot.NewSet()
	for _, key := range allKeys {
		r, ok := e.geo.lookup(key)
		if !ok {
			continue
		}
		if box.containsCenter(r) {
			pending.Add(key)
		}
	}
	e.pending = pending
}

// End commits the pending set: union in select mode, difference in deselect
// mode. The new selection replaces the old one in a single step and OnChange
// fires once. No-op when no gesture is active.
func (e *Engine) End() {
	if !e.active {
		return
	}
	next := e.selected.Clone()
	for k := range e.pending {
		if e.mode == ModeSelect {
			next.Add(k)
		} else {
			next.Remove(k)
		}
	}
	e.resetGesture()
	e.commit(next)
}

// Cancel drops the active gesture without committing.
func (e *Engine) Cancel() {
	e.resetGesture()
}

// Tap toggles a single cell and commits immediately.
func (e *Engine) Tap(k slot.Key) {
	next := e.selected.Clone()
	if next.Has(k) {
		next.Remove(k)
	} else {
		next.Add(k)
	}
	e.commit(next)
}

// CellState returns the visual state of k.
func (e *Engine) CellState(k slot.Key) CellState {
	if e.active && e.pending.Has(k) {
		if e.mode == ModeSelect {
			return CellPendingSelect
		}
		return CellPendingDeselect
	}
	if e.selected.Has(k) {
		return CellSelected
	}
	return CellNone
}

// Selection returns a copy of the committed selection.
func (e *Engine) Selection() slot.Set {
	return e.selected.Clone()
}

// SetSelection replaces the committed selection, dropping any active gesture.
func (e *Engine) SetSelection(s slot.Set) {
	e.resetGesture()
	if s == nil {
		s = slot.NewSet()
	}
	e.commit(s.Clone())
}

// Clear empties the committed selection.
func (e *Engine) Clear() {
	e.resetGesture()
	e.commit(slot.NewSet())
}

// Active reports whether a drag gesture is in progress.
func (e *Engine) Active() bool {
	return e.active
}

// Mode returns the direction of the active gesture, or ModeNone.
func (e *Engine) Mode() Mode {
	if !e.active {
		return ModeNone
	}
	return e.mode
}

// Pending returns a copy of the keys under the active gesture.
func (e *Engine) Pending() slot.Set {
	if !e.active {
		return slot.NewSet()
	}
	return e.pending.Clone()
}

func (e *Engine) resetGesture() {
	e.active = false
	e.mode = ModeNone
	e.start = slot.Key{}
	e.current = slot.Key{}
	e.pending = slot.NewSet()
}

func (e *Engine) commit(next slot.Set) {
	e.selected = next
	if e.onChange != nil {
		e.onChange(next.Clone())
	}
}
