package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/quorum/internal/logger"
	"github.com/javiermolinar/quorum/internal/slot"
)

// handleMouseMsg routes pointer events to the active screen's engine.
// Releases are forwarded wherever they land so a drag that ends outside the
// grid still commits.
func (m Model) handleMouseMsg(msg tea.MouseMsg) (Model, tea.Cmd) {
	if m.layout == nil || m.promptKind != promptNone {
		return m, nil
	}

	if msg.Action == tea.MouseActionPress && tea.MouseEvent(msg).IsWheel() {
		// The window stays put during a gesture so its start cell keeps its rect.
		if m.engine.Active() || m.rect.Active() {
			return m, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.scroll(-1)
		case tea.MouseButtonWheelDown:
			m.scroll(1)
		}
		return m, nil
	}

	if m.screen == ScreenHeatmap {
		return m.handleHeatmapMouse(msg), nil
	}
	return m.handleRespondMouse(msg), nil
}

func (m Model) handleRespondMouse(msg tea.MouseMsg) Model {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m
		}
		k, ok := m.engine.HitTest(msg.X, msg.Y)
		if !ok {
			return m
		}
		m.ranging = false
		m.engine.Begin(k)
		m.focus(k)
		logger.Debug("drag begin", "key", k, "mode", m.engine.Mode(), "x", msg.X, "y", msg.Y)

	case tea.MouseActionMotion:
		k, ok := m.engine.HitTest(msg.X, msg.Y)
		if !ok || !m.engine.Active() {
			return m
		}
		m.engine.Update(k, m.layout.Keys())
		m.focus(k)

	case tea.MouseActionRelease:
		if !m.engine.Active() {
			return m
		}
		pending := m.engine.Pending().Len()
		m.engine.End()
		m.ranging = false
		logger.Debug("drag end", "cells", pending, "selected", m.engine.Selection().Len())
	}
	return m
}

// handleHeatmapMouse drives the rectangle engine. Only leaving the grid's
// bounding box cancels a rectangle; over a gap or a missing cell the last
// covered cell is kept.
func (m Model) handleHeatmapMouse(msg tea.MouseMsg) Model {
	c, onCell := m.geo.coordAt(msg.X, msg.Y)
	if onCell {
		if _, ok := m.layout.At(c); !ok {
			onCell = false
		}
	}
	inBounds := m.geo.inBounds(msg.X, msg.Y)
	m.hover, m.hovering = c, onCell

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !onCell {
			return m
		}
		m.ranging = false
		m.rect.Begin(c)
		m.cursor = c

	case tea.MouseActionMotion:
		if !m.rect.Active() {
			return m
		}
		if !inBounds {
			m.rect.Cancel()
			logger.Debug("rectangle cancelled", "reason", "left grid")
			return m
		}
		if onCell {
			m.rect.Update(c)
			m.cursor = c
		}

	case tea.MouseActionRelease:
		if !m.rect.Active() {
			return m
		}
		if !inBounds {
			m.rect.Cancel()
			logger.Debug("rectangle cancelled", "reason", "released off grid")
			return m
		}
		if onCell {
			m.rect.Update(c)
		}
		deselect := m.rect.WouldDeselect()
		m.rect.End()
		m.ranging = false
		logger.Debug("rectangle committed", "deselect", deselect, "selected", m.rect.Selection().Len())
	}
	return m
}

// focus moves the cursor to k.
func (m *Model) focus(k slot.Key) {
	if c, ok := m.layout.Position(k); ok {
		m.cursor = c
	}
}
