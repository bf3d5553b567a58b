package server

import (
	"github.com/javiermolinar/quorum/internal/poll"
	"github.com/javiermolinar/quorum/internal/service"
	"github.com/javiermolinar/quorum/internal/slot"
)

// CreateEventRequest is the body of POST /api/events.
type CreateEventRequest struct {
	Title               string   `json:"title"`
	Description         string   `json:"description"`
	Timezone            string   `json:"timezone"`
	Dates               []string `json:"dates"`
	StartTime           string   `json:"startTime"`
	EndTime             string   `json:"endTime"`
	SlotDurationMinutes int      `json:"slotDurationMinutes"`
}

func (r CreateEventRequest) input() poll.EventInput {
	return poll.EventInput{
		Title:               r.Title,
		Description:         r.Description,
		Timezone:            r.Timezone,
		Dates:               r.Dates,
		StartTime:           r.StartTime,
		EndTime:             r.EndTime,
		SlotDurationMinutes: r.SlotDurationMinutes,
	}
}

// CreateParticipantRequest is the body of POST .../participants.
type CreateParticipantRequest struct {
	Name         string              `json:"name"`
	Availability []slot.Availability `json:"availability"`
}

// UpdateAvailabilityRequest is the body of PUT .../availability/:participantId.
type UpdateAvailabilityRequest struct {
	Availability []slot.Availability `json:"availability"`
}

// ScheduleRequest is the body of POST .../schedule.
type ScheduleRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Slots       []slot.Availability `json:"slots"`
}

// IDResponse carries the ID of a created resource.
type IDResponse struct {
	ID string `json:"id"`
}

// EventDetail is an event with its respondents and meeting, if scheduled.
type EventDetail struct {
	Event        service.EventView         `json:"event"`
	Participants []service.ParticipantView `json:"participants"`
	Meeting      *service.MeetingView      `json:"meeting,omitempty"`
}

// CleanupResponse reports a cleanup run.
type CleanupResponse struct {
	Deleted int      `json:"deleted"`
	IDs     []string `json:"ids"`
}
