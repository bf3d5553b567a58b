// Package commands provides TUI command constructors and message types.
package commands

import (
	"context"
	"fmt"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/quorum/internal/heatmap"
	"github.com/javiermolinar/quorum/internal/poll"
	"github.com/javiermolinar/quorum/internal/slot"
)

// Service is the subset of the application service the TUI drives.
type Service interface {
	GetEvent(ctx context.Context, id string) (*poll.Event, error)
	SavedSelection(ctx context.Context, e *poll.Event, name string) (slot.Set, error)
	Respond(ctx context.Context, eventID, name string, selected slot.Set) (*poll.Participant, error)
	Aggregate(ctx context.Context, eventID string) (*poll.Event, *heatmap.Result, error)
	Schedule(ctx context.Context, eventID, title, description string, slots []slot.Availability) (*poll.ScheduledMeeting, error)
}

// EventLoadedMsg is sent when an event and a respondent's saved selection are loaded.
type EventLoadedMsg struct {
	Event    *poll.Event
	Name     string
	Selected slot.Set
}

// HeatmapLoadedMsg is sent when the aggregated availability is loaded.
type HeatmapLoadedMsg struct {
	Event  *poll.Event
	Result *heatmap.Result
}

// SubmittedMsg is sent when a response has been saved.
type SubmittedMsg struct {
	Participant *poll.Participant
	Slots       int
}

// ScheduledMsg is sent when the meeting has been scheduled.
type ScheduledMsg struct {
	Meeting *poll.ScheduledMeeting
}

// CopiedMsg is sent when text has been copied to the clipboard.
type CopiedMsg struct {
	Text string
}

// ErrMsg is sent when an error occurs.
type ErrMsg struct {
	Err error
}

// StatusMsgCmd is sent for temporary status messages.
type StatusMsgCmd struct {
	Msg string
}

// ClearStatusMsg is sent to clear the status message.
type ClearStatusMsg struct{}

// LoadEvent loads an event and, when name is set, that respondent's saved selection.
func LoadEvent(svc Service, eventID, name string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		e, err := svc.GetEvent(ctx, eventID)
		if err != nil {
			return ErrMsg{Err: err}
		}

		selected := slot.NewSet()
		if name != "" {
			selected, err = svc.SavedSelection(ctx, e, name)
			if err != nil {
				return ErrMsg{Err: err}
			}
		}

		return EventLoadedMsg{Event: e, Name: name, Selected: selected}
	}
}

// LoadHeatmap loads the aggregated availability of an event.
func LoadHeatmap(svc Service, eventID string) tea.Cmd {
	return func() tea.Msg {
		e, result, err := svc.Aggregate(context.Background(), eventID)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return HeatmapLoadedMsg{Event: e, Result: result}
	}
}

// Submit saves selected as name's availability.
func Submit(svc Service, eventID, name string, selected slot.Set) tea.Cmd {
	return func() tea.Msg {
		p, err := svc.Respond(context.Background(), eventID, name, selected)
		if err != nil {
			return ErrMsg{Err: fmt.Errorf("submitting: %w", err)}
		}
		return SubmittedMsg{Participant: p, Slots: selected.Len()}
	}
}

// Schedule records the final meeting for the chosen slots.
func Schedule(svc Service, eventID, title string, slots []slot.Availability) tea.Cmd {
	return func() tea.Msg {
		if len(slots) == 0 {
			return ErrMsg{Err: poll.ErrNoSlots}
		}
		m, err := svc.Schedule(context.Background(), eventID, title, "", slots)
		if err != nil {
			return ErrMsg{Err: fmt.Errorf("scheduling: %w", err)}
		}
		return ScheduledMsg{Meeting: m}
	}
}

// Copy writes text to the system clipboard.
func Copy(text string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return ErrMsg{Err: fmt.Errorf("copying to clipboard: %w", err)}
		}
		return CopiedMsg{Text: text}
	}
}
