// Package view provides rendering helpers for the TUI.
package view

import "github.com/charmbracelet/lipgloss"

// Screen contains the pre-rendered parts of one frame.
type Screen struct {
	Width       int
	Height      int
	Base        string
	Modal       string
	ShowModal   bool
	ModalBg     lipgloss.Color
	Placeholder string
}

// Render composes the final view output.
func Render(s Screen) string {
	if s.Width == 0 || s.Height == 0 {
		if s.Placeholder != "" {
			return s.Placeholder
		}
		return "Loading..."
	}
	if s.ShowModal && s.Modal != "" {
		return Overlay(s.Base, s.Modal, s.Width, s.Height, s.ModalBg)
	}
	return s.Base
}
