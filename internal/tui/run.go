package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/quorum/internal/logger"
	"github.com/javiermolinar/quorum/internal/tui/commands"
)

// Run starts the TUI for one event and blocks until the user quits. Mouse
// motion is reported even without a pressed button so the heatmap can follow
// the pointer.
func Run(svc commands.Service, eventID string, opts ...Option) error {
	p := tea.NewProgram(New(svc, eventID, opts...), tea.WithAltScreen(), tea.WithMouseAllMotion())
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("running tui: %w", err)
	}
	if m, ok := final.(Model); ok && m.event != nil && m.Unsaved() {
		logger.Warn("quit with unsubmitted selection", "event", eventID, "name", m.name, "slots", m.Selection().Len())
	}
	return nil
}
