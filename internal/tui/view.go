package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/javiermolinar/quorum/internal/selection"
	"github.com/javiermolinar/quorum/internal/slot"
	"github.com/javiermolinar/quorum/internal/tui/view"
)

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return view.Render(view.Screen{})
	}

	screen := view.Screen{
		Width:   m.width,
		Height:  m.height,
		Base:    m.renderBase(),
		ModalBg: m.styles.Palette().BgHighlight,
	}
	switch {
	case m.promptKind != promptNone:
		screen.ShowModal = true
		screen.Modal = m.renderPrompt()
	case m.help.ShowAll:
		screen.ShowModal = true
		screen.Modal = view.RenderModal("Keys", m.help.FullHelpView(m.keys.FullHelp()), "? to close", m.styles.Modal)
	}
	return view.Render(screen)
}

func (m Model) innerWidth() int {
	return max(m.width-2*marginX, 0)
}

func (m Model) renderBase() string {
	innerW := m.innerWidth()
	bodyH := max(m.height-headerH-footerH, 0)

	content := strings.Join([]string{
		m.renderHeader(innerW),
		view.PlaceBox(innerW, bodyH, lipgloss.Top, m.renderBody(), m.styles.Palette().Bg),
		m.renderFooter(innerW),
	}, "\n")

	return m.styles.App.Padding(0, marginX).Render(content)
}

func (m Model) renderHeader(width int) string {
	title := "quorum"
	if m.event != nil {
		title = m.event.Title
	}

	tabs := make([]string, 0, 2)
	for _, s := range []Screen{ScreenRespond, ScreenHeatmap} {
		style := m.styles.Tab
		if s == m.screen {
			style = m.styles.TabActive
		}
		tabs = append(tabs, style.Render(s.String()))
	}
	line := m.styles.Title.Render(title) + m.styles.Gap.Render("  ") + strings.Join(tabs, m.styles.Gap.Render(" "))

	return view.PadLines(ansi.Truncate(line, width, "…"), width, 1, m.styles.Palette().Bg) + "\n" +
		view.FooterLine(width, m.styles.Meta, m.metaText())
}

func (m Model) metaText() string {
	if m.event == nil {
		return m.eventID
	}
	tc := m.event.TimeConfig
	start, _ := slot.ParseClock(tc.StartTime)
	end, _ := slot.ParseClock(tc.EndTime)
	parts := []string{
		m.eventID,
		pluralize(len(m.event.Dates), "date"),
		clockLabel(start) + "–" + clockLabel(end),
		view.FormatDuration(tc.SlotDurationMinutes) + " slots",
		m.event.Timezone,
	}
	if m.name != "" {
		parts = append(parts, "as "+m.name)
	}
	if m.meeting != nil {
		parts = append(parts, "scheduled: "+m.meeting.Title)
	}
	return strings.Join(parts, " · ")
}

func (m Model) renderBody() string {
	switch {
	case m.loadErr != nil:
		return m.styles.Error.Render("Could not load event: " + m.loadErr.Error())
	case m.layout == nil:
		return m.styles.Status.Render("Loading event…")
	case len(m.layout.Slots()) == 0:
		return m.styles.Status.Render("This event has no slots.")
	}

	g := m.geo
	dates := m.layout.Dates()
	headers := view.DateLabels(dates[g.colOffset:min(g.colOffset+g.visibleCols, len(dates))], m.now())

	labels := make([]string, 0, g.visibleRows)
	all := m.layout.Labels()
	for row := g.rowOffset; row < g.rowOffset+g.visibleRows; row++ {
		label := ""
		if row < len(all) {
			label = all[row]
		}
		labels = append(labels, label)
	}

	return view.RenderGrid(view.Grid{
		Headers:     headers,
		Labels:      labels,
		LabelW:      g.labelW,
		ColW:        g.colW,
		Gap:         gridGap,
		Cell:        m.renderCell,
		LabelStyle:  m.styles.Label,
		HeaderStyle: m.styles.Header,
		GapStyle:    m.styles.Gap,
	})
}

// renderCell renders the cell at a window-relative position.
func (m Model) renderCell(row, col int) (view.GridCell, bool) {
	c := slot.Coord{Col: col + m.geo.colOffset, Row: row + m.geo.rowOffset}
	s, ok := m.layout.At(c)
	if !ok {
		return view.GridCell{}, false
	}
	k := s.Key()

	var text string
	var style lipgloss.Style
	if m.screen == ScreenHeatmap {
		count, total := m.counts(k)
		state := m.rect.CellState(k)
		text = cellMark(state)
		if count > 0 {
			text += strconv.Itoa(count)
		}
		style = m.styles.heatStyle(count, total)
		if state != selection.CellNone {
			style = style.Underline(true)
		}
		if count > 0 && count == m.result.Max() {
			style = style.Bold(true)
		}
	} else {
		state := m.engine.CellState(k)
		text = cellMark(state)
		style = m.styles.cellStyle(state)
	}

	if c == m.cursor {
		if text == "" {
			text = " "
		}
		text = "[" + text + "]"
		style = style.Bold(true)
	}
	return view.GridCell{Text: text, Style: style}, true
}

func (m Model) counts(k slot.Key) (count, total int) {
	if m.result == nil {
		return 0, 0
	}
	return m.result.Count(k), m.result.Total()
}

func (m Model) renderFooter(width int) string {
	status := m.styles.Status
	text := m.statusMsg
	if m.statusErr {
		status = m.styles.Error
	}
	if text == "" && m.loading {
		text = "Loading…"
	}

	return view.RenderFooter(width, footerH, m.styles.Palette().Bg,
		view.FooterLine(width, m.styles.Info, m.infoText()),
		view.FooterLine(width, m.styles.Legend, m.legendText()),
		view.FooterLine(width, status, text),
		view.FooterLine(width, m.styles.Legend, m.help.ShortHelpView(m.keys.ShortHelp())),
	)
}

// infoText describes the focused cell: the hovered one on the heatmap, the
// cursor otherwise.
func (m Model) infoText() string {
	if m.layout == nil {
		return ""
	}
	focus := m.cursor
	if m.screen == ScreenHeatmap && m.hovering {
		focus = m.hover
	}
	s, ok := m.layout.At(focus)
	if !ok {
		return ""
	}
	parts := []string{m.slotLabel(s)}

	if m.screen == ScreenHeatmap {
		count, total := m.counts(s.Key())
		avail := view.FormatAvailability(count, total)
		if cell, ok := m.resultCell(s.Key()); ok && len(cell) > 0 {
			avail += ": " + view.FormatNames(cell, m.innerWidth()/2)
		}
		parts = append(parts, avail)
		if m.rect.Active() {
			verb := "add"
			if m.rect.WouldDeselect() {
				verb = "remove"
			}
			parts = append(parts, fmt.Sprintf("release to %s %s", verb, pluralize(m.rect.Covered().Len(), "slot")))
		} else if n := m.rect.Selection().Len(); n > 0 {
			parts = append(parts, fmt.Sprintf("%s chosen, p to schedule", pluralize(n, "slot")))
		}
		return strings.Join(parts, " · ")
	}

	parts = append(parts, pluralize(m.engine.Selection().Len(), "slot")+" selected")
	if m.engine.Active() {
		sign := "+"
		if m.engine.Mode() == selection.ModeDeselect {
			sign = "−"
		}
		parts = append(parts, fmt.Sprintf("%s%d pending", sign, m.engine.Pending().Len()))
	}
	if m.Unsaved() {
		parts = append(parts, "unsaved, s to submit")
	}
	return strings.Join(parts, " · ")
}

func (m Model) resultCell(k slot.Key) ([]string, bool) {
	if m.result == nil {
		return nil, false
	}
	cell, ok := m.result.Cell(k)
	return cell.Participants, ok
}

func (m Model) legendText() string {
	if m.screen == ScreenRespond {
		return view.Legend([]view.LegendItem{
			{Swatch: m.styles.CellSelected, Label: "available"},
			{Swatch: m.styles.CellPendingSelect, Label: "adding"},
			{Swatch: m.styles.CellPendingDeselect, Label: "removing"},
		}, m.styles.Legend)
	}
	if m.base == nil || len(m.base.Names()) == 0 {
		return m.styles.Legend.Render("No responses yet")
	}

	total := m.result.Total()
	swatches := m.styles.Palette().Scale.Legend(total)
	items := make([]view.LegendItem, 0, len(swatches))
	for _, sw := range swatches {
		items = append(items, view.LegendItem{Swatch: m.styles.heatStyle(sw.Count, total), Label: strconv.Itoa(sw.Count)})
	}

	names := make([]string, 0, len(m.base.Names()))
	for i, n := range m.base.Names() {
		label := n
		if i < 9 {
			label = strconv.Itoa(i+1) + " " + n
		}
		style := m.styles.Legend
		if m.excluded[n] {
			style = m.styles.Excluded
		}
		names = append(names, style.Render(label))
	}
	return view.Legend(items, m.styles.Legend) + m.styles.Legend.Render("  │ ") + strings.Join(names, m.styles.Legend.Render("  "))
}

func (m Model) renderPrompt() string {
	var title string
	switch m.promptKind {
	case promptName:
		title = "Your name"
		if m.submitOnName {
			title = "Submit as"
		}
	case promptTitle:
		title = fmt.Sprintf("Schedule %s", pluralize(len(m.scheduleSlots), "slot"))
	}
	return view.RenderModal(title, m.prompt.View(), "enter confirm · esc cancel", m.styles.Modal)
}

// slotLabel formats a slot as "Mon Jan 6 9:00 AM".
func (m Model) slotLabel(s slot.TimeSlot) string {
	loc := m.event.Location()
	return s.Start.In(loc).Format("Mon Jan 2 " + slot.LabelLayout)
}

func clockLabel(minutes int) string {
	return time.Date(0, 1, 1, minutes/60, minutes%60, 0, 0, time.UTC).Format(slot.LabelLayout)
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
