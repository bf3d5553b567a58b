package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/quorum/internal/selection"
	"github.com/javiermolinar/quorum/internal/tui/theme"
	"github.com/javiermolinar/quorum/internal/tui/view"
)

// Styles holds all lipgloss styles for the TUI, derived from a palette.
type Styles struct {
	palette *theme.Palette

	App       lipgloss.Style
	Title     lipgloss.Style
	TabActive lipgloss.Style
	Tab       lipgloss.Style
	Meta      lipgloss.Style

	// Grid chrome
	Label       lipgloss.Style
	Header      lipgloss.Style
	Gap         lipgloss.Style

	// Respondent grid cells by selection state
	CellEmpty           lipgloss.Style
	CellSelected        lipgloss.Style
	CellPendingSelect   lipgloss.Style
	CellPendingDeselect lipgloss.Style

	Info     lipgloss.Style
	Legend   lipgloss.Style
	Excluded lipgloss.Style
	Status   lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style

	Modal view.ModalStyles
	Help  help.Styles
}

// NewStyles creates styles from a theme.
func NewStyles(t *theme.Theme) *Styles {
	p := theme.NewPalette(t)
	base := lipgloss.NewStyle().Background(p.Bg)

	s := &Styles{
		palette: p,

		App:       base.Foreground(p.Fg),
		Title:     base.Foreground(p.Accent).Bold(true),
		TabActive: lipgloss.NewStyle().Background(p.Accent).Foreground(p.TextOnAccent).Bold(true).Padding(0, 1),
		Tab:       base.Foreground(p.FgMuted).Padding(0, 1),
		Meta:      base.Foreground(p.FgMuted),

		Label:       base.Foreground(p.FgMuted),
		Header:      base.Foreground(p.Fg).Bold(true),
		Gap:         base,

		CellEmpty:           lipgloss.NewStyle().Background(p.CellEmpty).Foreground(p.FgMuted),
		CellSelected:        lipgloss.NewStyle().Background(p.CellSelected).Foreground(p.TextOnSelected).Bold(true),
		CellPendingSelect:   lipgloss.NewStyle().Background(p.CellPendingSelect).Foreground(p.TextOnPending),
		CellPendingDeselect: lipgloss.NewStyle().Background(p.CellPendingDeselect).Foreground(p.TextOnPending),

		Info:     base.Foreground(p.Fg),
		Legend:   base.Foreground(p.FgMuted),
		Excluded: base.Foreground(p.FgMuted).Strikethrough(true),
		Status:   base.Foreground(p.FgMuted).Italic(true),
		Error:    base.Foreground(p.Warning).Bold(true),
		Success:  base.Foreground(p.Success),
	}

	s.Modal = view.ModalStyles{
		Frame: lipgloss.NewStyle().
			Background(p.BgHighlight).
			Foreground(p.Fg).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Accent).
			BorderBackground(p.BgHighlight).
			Padding(1, 2),
		Title: lipgloss.NewStyle().Background(p.BgHighlight).Foreground(p.Accent).Bold(true),
		Body:  lipgloss.NewStyle().Background(p.BgHighlight).Foreground(p.Fg),
		Hint:  lipgloss.NewStyle().Background(p.BgHighlight).Foreground(p.FgMuted),
	}

	s.Help = help.New().Styles
	s.Help.ShortKey = base.Foreground(p.Fg)
	s.Help.ShortDesc = base.Foreground(p.FgMuted)
	s.Help.ShortSeparator = base.Foreground(p.BgSelection)
	s.Help.FullKey = s.Help.ShortKey
	s.Help.FullDesc = s.Help.ShortDesc
	s.Help.FullSeparator = s.Help.ShortSeparator
	s.Help.Ellipsis = s.Help.ShortSeparator

	return s
}

// Palette returns the colors the styles were built from.
func (s *Styles) Palette() *theme.Palette {
	return s.palette
}

// cellStyle returns the respondent grid style for a cell state.
func (s *Styles) cellStyle(state selection.CellState) lipgloss.Style {
	switch state {
	case selection.CellSelected:
		return s.CellSelected
	case selection.CellPendingSelect:
		return s.CellPendingSelect
	case selection.CellPendingDeselect:
		return s.CellPendingDeselect
	default:
		return s.CellEmpty
	}
}

// heatStyle returns the heatmap style for count out of total.
func (s *Styles) heatStyle(count, total int) lipgloss.Style {
	scale := s.palette.Scale
	return lipgloss.NewStyle().
		Background(lipgloss.Color(scale.Hex(count, total))).
		Foreground(lipgloss.Color(scale.Foreground(count, total)))
}

// cellMark is the glyph drawn for a selection state.
func cellMark(state selection.CellState) string {
	switch state {
	case selection.CellSelected:
		return "✓"
	case selection.CellPendingSelect:
		return "+"
	case selection.CellPendingDeselect:
		return "−"
	default:
		return ""
	}
}
