// Package tui provides the terminal user interface for quorum: a respondent
// grid driven by mouse drags and an organizer heatmap with rectangle
// selection for scheduling.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/quorum/internal/heatmap"
	"github.com/javiermolinar/quorum/internal/logger"
	"github.com/javiermolinar/quorum/internal/poll"
	"github.com/javiermolinar/quorum/internal/selection"
	"github.com/javiermolinar/quorum/internal/slot"
	"github.com/javiermolinar/quorum/internal/tui/commands"
	"github.com/javiermolinar/quorum/internal/tui/theme"
)

// Screen is one of the two grids.
type Screen int

const (
	ScreenRespond Screen = iota // mark own availability
	ScreenHeatmap               // review everyone's and pick the meeting
)

// String returns the tab label of the screen.
func (s Screen) String() string {
	if s == ScreenHeatmap {
		return "Heatmap"
	}
	return "Respond"
}

type promptKind int

const (
	promptNone promptKind = iota
	promptName
	promptTitle
)

// Model is the main TUI model.
type Model struct {
	// Dependencies
	svc     commands.Service
	eventID string
	now     func() time.Time

	// Theme and styles
	styles *Styles
	keys   keyMap
	help   help.Model

	// Event state
	screen   Screen
	event    *poll.Event
	layout   *slot.Layout
	name     string
	saved    slot.Set // selection as last loaded or submitted
	meeting  *poll.ScheduledMeeting
	loading  bool
	loadErr  error
	tapMode  bool
	engine   *selection.Engine
	rect     *selection.RectEngine
	base     *heatmap.Result
	result   *heatmap.Result // base minus excluded respondents
	excluded map[string]bool

	// Cursor and pointer
	cursor   slot.Coord
	hover    slot.Coord
	hovering bool
	ranging  bool // keyboard range started with "v"

	// Name / meeting title prompt
	prompt        textinput.Model
	promptKind    promptKind
	submitOnName  bool
	scheduleSlots []slot.Availability

	// Terminal dimensions and layout
	width  int
	height int
	geo    gridGeometry

	// Messages
	statusMsg  string
	statusErr  bool
	statusTime time.Time
}

// Option configures optional model behavior.
type Option func(*Model)

// WithName sets the respondent name; their saved selection is loaded on start.
func WithName(name string) Option {
	return func(m *Model) {
		m.name = name
	}
}

// WithScreen selects the screen shown first.
func WithScreen(s Screen) Option {
	return func(m *Model) {
		m.screen = s
	}
}

// WithTheme sets the theme by name.
func WithTheme(name string) Option {
	return func(m *Model) {
		t, err := theme.Load(name)
		if err != nil {
			logger.Warn("loading theme", "theme", name, "err", err)
			return
		}
		m.styles = NewStyles(t)
	}
}

// WithTapToToggle makes every press on the respondent grid toggle one cell.
func WithTapToToggle(on bool) Option {
	return func(m *Model) {
		m.tapMode = on
	}
}

// WithClock overrides the clock used to mark today's column.
func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		m.now = now
	}
}

// New creates a new TUI model for one event.
func New(svc commands.Service, eventID string, opts ...Option) Model {
	ti := textinput.New()
	ti.CharLimit = poll.MaxTitleLen
	ti.Width = 40

	t, _ := theme.Load("")
	m := Model{
		svc:      svc,
		eventID:  eventID,
		now:      time.Now,
		styles:   NewStyles(t),
		keys:     defaultKeyMap(),
		help:     help.New(),
		loading:  true,
		saved:    slot.NewSet(),
		excluded: make(map[string]bool),
		prompt:   ti,
		engine:   selection.New(),
	}
	for _, opt := range opts {
		opt(&m)
	}

	m.keys.screen = m.screen
	m.help.Styles = m.styles.Help
	m.prompt.PromptStyle = m.styles.Modal.Body
	m.prompt.TextStyle = m.styles.Modal.Body
	m.prompt.PlaceholderStyle = m.styles.Modal.Hint
	return m
}

// Init loads the event and its heatmap.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		commands.LoadEvent(m.svc, m.eventID, m.name),
		commands.LoadHeatmap(m.svc, m.eventID),
	)
}

// Screen returns the active screen.
func (m Model) Screen() Screen {
	return m.screen
}

// Name returns the respondent name.
func (m Model) Name() string {
	return m.name
}

// Selection returns the respondent's committed selection.
func (m Model) Selection() slot.Set {
	return m.engine.Selection()
}

// Planned returns the slots chosen on the heatmap.
func (m Model) Planned() slot.Set {
	if m.rect == nil {
		return slot.NewSet()
	}
	return m.rect.Selection()
}

// Unsaved reports whether the selection differs from the last submission.
func (m Model) Unsaved() bool {
	return !m.engine.Selection().Equal(m.saved)
}

// applyEvent installs a loaded event, rebuilding both engines when the grid
// changes. The respondent selection is replaced by selected.
func (m *Model) applyEvent(e *poll.Event, name string, selected slot.Set) {
	sameGrid := m.event != nil && m.layout != nil && m.event.ID == e.ID && sameConfig(m.event, e)
	m.event = e
	m.name = name
	m.saved = selected.Clone()
	m.loading = false
	m.loadErr = nil

	if !sameGrid {
		m.layout = e.Layout()
		m.rect = selection.NewRectEngine(m.layout, selection.WithOnChange(logChange("plan")))
		m.cursor = slot.Coord{}
		m.geo = gridGeometry{}
	}
	m.ranging = false
	m.engine = selection.New(
		selection.WithTapToToggle(m.tapMode),
		selection.WithInitialSelection(selected),
		selection.WithOnChange(logChange("respond")),
	)
	m.relayout()
}

// applyHeatmap installs a freshly aggregated result, keeping exclusions for
// names that still respond.
func (m *Model) applyHeatmap(e *poll.Event, r *heatmap.Result) {
	if m.event == nil {
		m.applyEvent(e, m.name, slot.NewSet())
	}
	m.base = r
	known := make(map[string]bool)
	for _, n := range r.Names() {
		known[n] = true
	}
	for n := range m.excluded {
		if !known[n] {
			delete(m.excluded, n)
		}
	}
	m.refreshResult()
}

func (m *Model) refreshResult() {
	if m.base == nil {
		m.result = nil
		return
	}
	var names []string
	for _, n := range m.base.Names() {
		if m.excluded[n] {
			names = append(names, n)
		}
	}
	m.result = m.base.Exclude(names...)
}

func sameConfig(a, b *poll.Event) bool {
	if a.TimeConfig != b.TimeConfig || a.Timezone != b.Timezone || len(a.Dates) != len(b.Dates) {
		return false
	}
	for i := range a.Dates {
		if !a.Dates[i].Equal(b.Dates[i]) {
			return false
		}
	}
	return true
}

func logChange(surface string) func(slot.Set) {
	return func(s slot.Set) {
		logger.Debug("selection committed", "surface", surface, "slots", s.Len())
	}
}
