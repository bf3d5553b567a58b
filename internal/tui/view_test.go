package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/javiermolinar/quorum/internal/slot"
	"github.com/javiermolinar/quorum/internal/tui/commands"
)

func plainView(t *testing.T, m Model) []string {
	t.Helper()
	lipgloss.SetColorProfile(termenv.TrueColor)
	return strings.Split(ansi.Strip(m.View()), "\n")
}

func TestViewBeforeResize(t *testing.T) {
	svc := newFakeService(t)
	m := New(svc, svc.event.ID)
	if got := m.View(); got != "Loading..." {
		t.Errorf("View() = %q", got)
	}
}

func TestViewFillsScreen(t *testing.T) {
	m := loadedModel(t, newFakeService(t), WithName("Ana"))
	lines := plainView(t, m)

	if len(lines) != 30 {
		t.Fatalf("got %d lines, want 30", len(lines))
	}
	for i, l := range lines {
		if w := lipgloss.Width(l); w > 100 {
			t.Errorf("line %d is %d wide", i, w)
		}
	}

	out := strings.Join(lines, "\n")
	for _, want := range []string{"Planning", "Respond", "Heatmap", "Mon Jan 6", "Tue Jan 7", "9:00 AM", "10:30 AM", "[ ]", "as Ana", "30m slots"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestViewGridMatchesGeometry(t *testing.T) {
	m := loadedModel(t, newFakeService(t))
	m.engine.SetSelection(keysAt(t, m, [2]int{1, 2}))
	lines := plainView(t, m)

	r, ok := m.geo.cellRect(slot.Coord{Col: 1, Row: 2})
	if !ok {
		t.Fatal("cell not visible")
	}
	cell := ansi.Cut(lines[r.Top], r.Left, r.Right())
	if strings.TrimSpace(cell) != "✓" {
		t.Errorf("cell text = %q, want ✓", cell)
	}
	label := ansi.Cut(lines[r.Top], marginX, marginX+m.geo.labelW)
	if strings.TrimSpace(label) != "10:00 AM" {
		t.Errorf("row label = %q", label)
	}
}

func TestViewShowsPrompt(t *testing.T) {
	m := loadedModel(t, newFakeService(t))
	m = update(t, m, keyMsg("s"))

	out := strings.Join(plainView(t, m), "\n")
	if !strings.Contains(out, "Submit as") || !strings.Contains(out, "esc cancel") {
		t.Errorf("prompt not rendered:\n%s", out)
	}
}

func TestViewHeatmapLegend(t *testing.T) {
	svc := newFakeService(t)
	m := loadedModel(t, svc)
	m = update(t, m, keyMsg("tab"))

	if !strings.Contains(strings.Join(plainView(t, m), "\n"), "No responses yet") {
		t.Error("expected empty heatmap legend")
	}

	svc.responses["Ana"] = keysAt(t, m, [2]int{0, 0})
	m = update(t, m, commands.LoadHeatmap(svc, svc.event.ID)())
	m = update(t, m, keyMsg("1"))

	out := strings.Join(plainView(t, m), "\n")
	if !strings.Contains(out, "1 Ana") {
		t.Errorf("legend missing respondent:\n%s", out)
	}
	if !strings.Contains(out, "0 / 0 available") {
		t.Errorf("excluding the only respondent should empty the cell:\n%s", out)
	}
}

func TestHelpToggle(t *testing.T) {
	m := loadedModel(t, newFakeService(t))
	m = update(t, m, keyMsg("?"))
	if !m.help.ShowAll {
		t.Fatal("expected full help")
	}
	if !strings.Contains(strings.Join(plainView(t, m), "\n"), "Keys") {
		t.Error("help modal not rendered")
	}
	m = update(t, m, keyMsg("?"))
	if m.help.ShowAll {
		t.Error("expected help to close")
	}
}

func TestResizeKeepsCursorVisible(t *testing.T) {
	m := loadedModel(t, newFakeService(t))
	m = update(t, m, keyMsg("down"))
	m = update(t, m, keyMsg("down"))
	m = update(t, m, keyMsg("down"))
	m = update(t, m, tea.WindowSizeMsg{Width: 25, Height: 9})

	if m.geo.visibleRows != 2 || m.geo.visibleCols != 1 {
		t.Fatalf("window = %d rows x %d cols", m.geo.visibleRows, m.geo.visibleCols)
	}
	if !m.geo.visible(m.cursor) {
		t.Errorf("cursor %+v scrolled out (offset %d)", m.cursor, m.geo.rowOffset)
	}
	if m.geo.rowOffset != 2 {
		t.Errorf("rowOffset = %d, want 2", m.geo.rowOffset)
	}
}

func TestGeometryRoundTrip(t *testing.T) {
	m := loadedModel(t, newFakeService(t))
	for row := range m.layout.Rows() {
		for col := range m.layout.Columns() {
			c := slot.Coord{Col: col, Row: row}
			r, ok := m.geo.cellRect(c)
			if !ok {
				t.Fatalf("%+v not visible", c)
			}
			for _, x := range []int{r.Left, r.Right() - 1} {
				got, ok := m.geo.coordAt(x, r.Top)
				if !ok || got != c {
					t.Errorf("coordAt(%d,%d) = %+v %v, want %+v", x, r.Top, got, ok, c)
				}
			}
		}
	}
	if _, ok := m.geo.coordAt(m.geo.originX+m.geo.colW, m.geo.originY); ok {
		t.Error("column gap should not hit a cell")
	}
	if _, ok := m.geo.coordAt(m.geo.originX-1, m.geo.originY); ok {
		t.Error("label column should not hit a cell")
	}
}
