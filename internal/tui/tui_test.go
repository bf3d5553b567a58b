package tui

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/quorum/internal/heatmap"
	"github.com/javiermolinar/quorum/internal/poll"
	"github.com/javiermolinar/quorum/internal/slot"
	"github.com/javiermolinar/quorum/internal/tui/commands"
)

var testNow = time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC)

type fakeService struct {
	event      *poll.Event
	responses  map[string]slot.Set
	respondErr error
	meeting    *poll.ScheduledMeeting
}

func newFakeService(t *testing.T) *fakeService {
	t.Helper()
	e, err := poll.NewEvent(poll.EventInput{
		Title:     "Planning",
		Dates:     []string{"2025-01-07", "2025-01-06"},
		StartTime: "09:00",
		EndTime:   "11:00",
	})
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	return &fakeService{event: e, responses: map[string]slot.Set{}}
}

func (f *fakeService) GetEvent(ctx context.Context, id string) (*poll.Event, error) {
	if id != f.event.ID {
		return nil, poll.ErrEventNotFound
	}
	return f.event, nil
}

func (f *fakeService) SavedSelection(ctx context.Context, e *poll.Event, name string) (slot.Set, error) {
	if s, ok := f.responses[name]; ok {
		return s.Clone(), nil
	}
	return slot.NewSet(), nil
}

func (f *fakeService) Respond(ctx context.Context, eventID, name string, selected slot.Set) (*poll.Participant, error) {
	if f.respondErr != nil {
		return nil, f.respondErr
	}
	f.responses[name] = selected.Clone()
	return &poll.Participant{ID: "p-" + name, EventID: eventID, Name: name}, nil
}

func (f *fakeService) Aggregate(ctx context.Context, eventID string) (*poll.Event, *heatmap.Result, error) {
	names := make([]string, 0, len(f.responses))
	for n := range f.responses {
		names = append(names, n)
	}
	sort.Strings(names)
	resp := make([]heatmap.Respondent, 0, len(names))
	for _, n := range names {
		resp = append(resp, heatmap.Respondent{Name: n, Keys: f.responses[n]})
	}
	return f.event, heatmap.Aggregate(f.event.Slots(), resp), nil
}

func (f *fakeService) Schedule(ctx context.Context, eventID, title, description string, slots []slot.Availability) (*poll.ScheduledMeeting, error) {
	if f.meeting != nil {
		return nil, poll.ErrAlreadyScheduled
	}
	f.meeting = &poll.ScheduledMeeting{EventID: eventID, Title: title, Slots: slots}
	return f.meeting, nil
}

// loadedModel returns a model sized 100x30 with the event and heatmap loaded.
func loadedModel(t *testing.T, svc *fakeService, opts ...Option) Model {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	m := New(svc, svc.event.ID, opts...)
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m = update(t, m, commands.LoadEvent(svc, svc.event.ID, m.name)())
	m = update(t, m, commands.LoadHeatmap(svc, svc.event.ID)())
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(Model)
	if !ok {
		t.Fatalf("Update returned %T", updated)
	}
	return model
}

func updateCmd(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// center returns the screen point in the middle of a grid cell.
func center(t *testing.T, m Model, col, row int) (int, int) {
	t.Helper()
	r, ok := m.geo.cellRect(slot.Coord{Col: col, Row: row})
	if !ok {
		t.Fatalf("cell (%d,%d) not visible", col, row)
	}
	return r.Left + r.Width/2, r.Top
}

func press(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func drag(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft}
}

func hover(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonNone}
}

func release(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonNone}
}

func keyAt(t *testing.T, m Model, col, row int) slot.Key {
	t.Helper()
	s, ok := m.layout.At(slot.Coord{Col: col, Row: row})
	if !ok {
		t.Fatalf("no slot at (%d,%d)", col, row)
	}
	return s.Key()
}

func keysAt(t *testing.T, m Model, coords ...[2]int) slot.Set {
	t.Helper()
	set := slot.NewSet()
	for _, c := range coords {
		set.Add(keyAt(t, m, c[0], c[1]))
	}
	return set
}

func run(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	return cmd()
}

func TestLoadBuildsGridInDateOrder(t *testing.T) {
	m := loadedModel(t, newFakeService(t))

	if got := m.layout.Dates(); len(got) != 2 || got[0] != "2025-01-06" || got[1] != "2025-01-07" {
		t.Fatalf("Dates() = %v", got)
	}
	if m.layout.Rows() != 4 {
		t.Errorf("Rows() = %d, want 4", m.layout.Rows())
	}
	if m.loading {
		t.Error("expected loading to be cleared")
	}
}

func TestLoadErrorShown(t *testing.T) {
	svc := newFakeService(t)
	m := New(svc, "missing")
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 20})
	m = update(t, m, commands.LoadEvent(svc, "missing", "")())

	if !errors.Is(m.loadErr, poll.ErrEventNotFound) {
		t.Fatalf("loadErr = %v", m.loadErr)
	}
	if !m.statusErr {
		t.Error("expected an error status")
	}
}

func keyMsgBackspace() tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyBackspace}
}
