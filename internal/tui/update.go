package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/quorum/internal/logger"
	"github.com/javiermolinar/quorum/internal/tui/commands"
)

const (
	statusTTL = 3 * time.Second
	errorTTL  = 5 * time.Second
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.MouseMsg:
		return m.handleMouseMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width - 2*marginX
		m.relayout()
		return m, nil

	case commands.EventLoadedMsg:
		m.applyEvent(msg.Event, msg.Name, msg.Selected)
		return m, nil

	case commands.HeatmapLoadedMsg:
		m.applyHeatmap(msg.Event, msg.Result)
		return m, nil

	case commands.SubmittedMsg:
		m.saved = m.engine.Selection()
		var cmd tea.Cmd
		m, cmd = m.setStatus(fmt.Sprintf("Saved %s for %s", pluralize(msg.Slots, "slot"), msg.Participant.Name), false)
		return m, tea.Batch(cmd, commands.LoadHeatmap(m.svc, m.eventID))

	case commands.ScheduledMsg:
		m.meeting = msg.Meeting
		m.rect.Clear()
		return m.setStatus(fmt.Sprintf("Scheduled %q", msg.Meeting.Title), false)

	case commands.CopiedMsg:
		return m.setStatus("Copied event ID "+msg.Text, false)

	case commands.ErrMsg:
		logger.Error("tui command failed", "err", msg.Err)
		if m.event == nil {
			m.loading = false
			m.loadErr = msg.Err
		}
		return m.setStatus("Error: "+msg.Err.Error(), true)

	case commands.StatusMsgCmd:
		return m.setStatus(msg.Msg, false)

	case commands.ClearStatusMsg:
		if !m.now().Before(m.statusTime) {
			m.statusMsg = ""
			m.statusErr = false
		}
		return m, nil
	}

	if m.promptKind != promptNone {
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}
	return m, nil
}

// setStatus shows a transient message and schedules its removal.
func (m Model) setStatus(msg string, isErr bool) (Model, tea.Cmd) {
	ttl := statusTTL
	if isErr {
		ttl = errorTTL
	}
	m.statusMsg = msg
	m.statusErr = isErr
	m.statusTime = m.now().Add(ttl)
	return m, tea.Tick(ttl, func(time.Time) tea.Msg {
		return commands.ClearStatusMsg{}
	})
}
