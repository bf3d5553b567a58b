package service

import (
	"time"

	"github.com/javiermolinar/quorum/internal/heatmap"
	"github.com/javiermolinar/quorum/internal/poll"
	"github.com/javiermolinar/quorum/internal/slot"
)

// DateView is one candidate date on the wire.
type DateView struct {
	Date string `json:"date"`
}

// EventView is the wire form of an event.
type EventView struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Timezone    string          `json:"timezone"`
	Dates       []DateView      `json:"dates"`
	TimeConfig  poll.TimeConfig `json:"timeConfig"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// NewEventView converts an event.
func NewEventView(e *poll.Event) EventView {
	dates := make([]DateView, 0, len(e.Dates))
	for _, d := range e.DateStrings() {
		dates = append(dates, DateView{Date: d})
	}
	return EventView{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Timezone:    e.Timezone,
		Dates:       dates,
		TimeConfig:  e.TimeConfig,
		CreatedAt:   e.CreatedAt,
	}
}

// ParticipantView is the wire form of a participant.
type ParticipantView struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Availability []slot.Availability `json:"availability"`
}

// NewParticipantView converts a participant.
func NewParticipantView(p *poll.Participant) ParticipantView {
	av := p.Availability
	if av == nil {
		av = []slot.Availability{}
	}
	return ParticipantView{ID: p.ID, Name: p.Name, Availability: av}
}

// AggregatedView is the aggregated availability of an event.
type AggregatedView struct {
	Event      EventView       `json:"event"`
	Aggregated []heatmap.Entry `json:"aggregated"`
}

// HeatmapCell is one cell of a rendered heatmap.
type HeatmapCell struct {
	Key          string    `json:"key"`
	SlotStart    time.Time `json:"slotStart"`
	SlotEnd      time.Time `json:"slotEnd"`
	Count        int       `json:"count"`
	Participants []string  `json:"participants"`
	Color        string    `json:"color"`
}

// HeatmapRow is one time row across every date column. Cells is nil where
// a column has no slot.
type HeatmapRow struct {
	Label string         `json:"label"`
	Cells []*HeatmapCell `json:"cells"`
}

// HeatmapView is the organizer's heatmap.
type HeatmapView struct {
	EventID      string              `json:"eventId"`
	Total        int                 `json:"total"`
	Participants []string            `json:"participants"`
	Excluded     []string            `json:"excluded"`
	Dates        []string            `json:"dates"`
	Rows         []HeatmapRow        `json:"rows"`
	Legend       []heatmap.Swatch    `json:"legend"`
	Best         []slot.Availability `json:"best"`
}

// MeetingView is the wire form of a scheduled meeting.
type MeetingView struct {
	EventID     string              `json:"eventId"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Slots       []slot.Availability `json:"slots"`
	CreatedAt   time.Time           `json:"createdAt"`
}

// NewMeetingView converts a scheduled meeting.
func NewMeetingView(m *poll.ScheduledMeeting) MeetingView {
	return MeetingView{
		EventID:     m.EventID,
		Title:       m.Title,
		Description: m.Description,
		Slots:       m.Slots,
		CreatedAt:   m.CreatedAt,
	}
}

// buildHeatmap lays an aggregate out as rows of cells.
func buildHeatmap(e *poll.Event, result *heatmap.Result, excluded []string, scale heatmap.Scale) *HeatmapView {
	layout := e.Layout()
	view := &HeatmapView{
		EventID:      e.ID,
		Total:        result.Total(),
		Participants: result.Names(),
		Excluded:     excluded,
		Dates:        layout.Dates(),
		Legend:       scale.Legend(result.Total()),
		Best:         []slot.Availability{},
	}
	if view.Excluded == nil {
		view.Excluded = []string{}
	}

	labels := layout.Labels()
	for row := 0; row < layout.Rows(); row++ {
		r := HeatmapRow{Cells: make([]*HeatmapCell, layout.Columns())}
		if row < len(labels) {
			r.Label = labels[row]
		}
		for col := 0; col < layout.Columns(); col++ {
			s, ok := layout.At(slot.Coord{Col: col, Row: row})
			if !ok {
				continue
			}
			c, _ := result.Cell(s.Key())
			participants := c.Participants
			if participants == nil {
				participants = []string{}
			}
			r.Cells[col] = &HeatmapCell{
				Key:          s.Key().String(),
				SlotStart:    s.Start.UTC(),
				SlotEnd:      s.End.UTC(),
				Count:        c.Count,
				Participants: participants,
				Color:        scale.Hex(c.Count, result.Total()),
			}
		}
		view.Rows = append(view.Rows, r)
	}

	for _, s := range result.Best(layout.Slots()) {
		view.Best = append(view.Best, s.Availability())
	}
	return view
}
