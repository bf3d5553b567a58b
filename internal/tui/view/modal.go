package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ModalStyles groups the styles of a modal box.
type ModalStyles struct {
	Frame lipgloss.Style
	Title lipgloss.Style
	Body  lipgloss.Style
	Hint  lipgloss.Style
}

// RenderModal renders a framed box with a title, a body and a hint line.
// Empty sections are skipped.
func RenderModal(title, body, hint string, styles ModalStyles) string {
	var b strings.Builder
	b.WriteString(styles.Title.Render(title))
	if body != "" {
		b.WriteString("\n\n")
		b.WriteString(styles.Body.Render(body))
	}
	if hint != "" {
		b.WriteString("\n\n")
		b.WriteString(styles.Hint.Render(hint))
	}
	return styles.Frame.Render(b.String())
}
