package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/quorum/internal/logger"
	"github.com/javiermolinar/quorum/internal/poll"
	"github.com/javiermolinar/quorum/internal/tui/commands"
)

// handleKeyMsg handles keyboard input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	logger.Debug("key", "key", msg.String(), "screen", m.screen)

	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.promptKind != promptNone {
		return m.handlePromptKeys(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Switch):
		m.cancelGestures()
		if m.screen == ScreenRespond {
			m.screen = ScreenHeatmap
		} else {
			m.screen = ScreenRespond
		}
		m.keys.screen = m.screen
		return m, nil
	case key.Matches(msg, m.keys.Copy):
		return m, commands.Copy(m.eventID)
	case key.Matches(msg, m.keys.Reload):
		m.loading = true
		return m, tea.Batch(
			commands.LoadEvent(m.svc, m.eventID, m.name),
			commands.LoadHeatmap(m.svc, m.eventID),
		)
	}

	if m.layout == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(0, -1)
		m.extendRange()
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(0, 1)
		m.extendRange()
		return m, nil
	case key.Matches(msg, m.keys.Left):
		m.moveCursor(-1, 0)
		m.extendRange()
		return m, nil
	case key.Matches(msg, m.keys.Right):
		m.moveCursor(1, 0)
		m.extendRange()
		return m, nil
	}

	if m.screen == ScreenHeatmap {
		return m.handleHeatmapKeys(msg)
	}
	return m.handleRespondKeys(msg)
}

// handleRespondKeys handles keys on the respondent grid.
func (m Model) handleRespondKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	k, onCell := m.cursorKey()

	switch {
	case key.Matches(msg, m.keys.Toggle):
		if m.ranging {
			m.engine.End()
			m.ranging = false
		} else if onCell {
			m.engine.Tap(k)
		}
	case key.Matches(msg, m.keys.Range):
		if m.ranging {
			m.engine.End()
			m.ranging = false
		} else if onCell {
			m.engine.Begin(k)
			m.ranging = m.engine.Active()
		}
	case key.Matches(msg, m.keys.Cancel):
		m.cancelGestures()
	case key.Matches(msg, m.keys.Clear):
		m.cancelGestures()
		m.engine.Clear()
	case key.Matches(msg, m.keys.Submit):
		m.cancelGestures()
		if m.name == "" {
			m.submitOnName = true
			return m.openPrompt(promptName, "")
		}
		return m, commands.Submit(m.svc, m.eventID, m.name, m.engine.Selection())
	case key.Matches(msg, m.keys.Name):
		m.cancelGestures()
		m.submitOnName = false
		return m.openPrompt(promptName, m.name)
	}
	return m, nil
}

// handleHeatmapKeys handles keys on the organizer heatmap.
func (m Model) handleHeatmapKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Toggle):
		if !m.ranging {
			m.rect.Begin(m.cursor)
		}
		m.rect.End()
		m.ranging = false
	case key.Matches(msg, m.keys.Range):
		if m.ranging {
			m.rect.End()
			m.ranging = false
		} else {
			m.rect.Begin(m.cursor)
			m.ranging = m.rect.Active()
		}
	case key.Matches(msg, m.keys.Cancel):
		m.cancelGestures()
	case key.Matches(msg, m.keys.Clear):
		m.cancelGestures()
		m.rect.Clear()
	case key.Matches(msg, m.keys.Exclude):
		i, _ := strconv.Atoi(msg.String())
		m.toggleExcluded(i - 1)
	case key.Matches(msg, m.keys.Include):
		clear(m.excluded)
		m.refreshResult()
	case key.Matches(msg, m.keys.Plan):
		m.cancelGestures()
		slots := m.rect.Availability()
		if len(slots) == 0 {
			return m.setStatus("Select the meeting slots first", true)
		}
		m.scheduleSlots = slots
		return m.openPrompt(promptTitle, m.event.Title)
	}
	return m, nil
}

// handlePromptKeys handles keys while the name or title prompt is open.
func (m Model) handlePromptKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.closePrompt()
		m.submitOnName = false
		m.scheduleSlots = nil
		return m, nil
	case tea.KeyEnter:
		return m.confirmPrompt()
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m Model) openPrompt(kind promptKind, value string) (Model, tea.Cmd) {
	m.promptKind = kind
	switch kind {
	case promptName:
		m.prompt.Placeholder = "Your name"
		m.prompt.CharLimit = poll.MaxNameLen
	case promptTitle:
		m.prompt.Placeholder = "Meeting title"
		m.prompt.CharLimit = poll.MaxTitleLen
	}
	m.prompt.SetValue(value)
	m.prompt.CursorEnd()
	return m, m.prompt.Focus()
}

func (m *Model) closePrompt() {
	m.promptKind = promptNone
	m.prompt.Blur()
	m.prompt.SetValue("")
}

func (m Model) confirmPrompt() (Model, tea.Cmd) {
	value := strings.TrimSpace(m.prompt.Value())

	switch m.promptKind {
	case promptName:
		if err := poll.ValidateName(value); err != nil {
			return m.setStatus(err.Error(), true)
		}
		m.closePrompt()
		if m.submitOnName {
			m.submitOnName = false
			m.name = value
			return m, commands.Submit(m.svc, m.eventID, m.name, m.engine.Selection())
		}
		if value == m.name {
			return m, nil
		}
		m.loading = true
		return m, commands.LoadEvent(m.svc, m.eventID, value)

	case promptTitle:
		slots := m.scheduleSlots
		m.scheduleSlots = nil
		m.closePrompt()
		return m, commands.Schedule(m.svc, m.eventID, value, slots)
	}
	m.closePrompt()
	return m, nil
}

// extendRange follows the cursor with the keyboard range, if one is open.
func (m *Model) extendRange() {
	if !m.ranging {
		return
	}
	if m.screen == ScreenHeatmap {
		m.rect.Update(m.cursor)
		return
	}
	if k, ok := m.cursorKey(); ok {
		m.engine.Update(k, m.layout.Keys())
	}
}

// cancelGestures drops any uncommitted drag or rectangle.
func (m *Model) cancelGestures() {
	m.ranging = false
	m.engine.Cancel()
	if m.rect != nil {
		m.rect.Cancel()
	}
}

// toggleExcluded hides or shows the i-th respondent on the heatmap.
func (m *Model) toggleExcluded(i int) {
	if m.base == nil {
		return
	}
	names := m.base.Names()
	if i < 0 || i >= len(names) {
		return
	}
	n := names[i]
	if m.excluded[n] {
		delete(m.excluded, n)
	} else {
		m.excluded[n] = true
	}
	m.refreshResult()
}
