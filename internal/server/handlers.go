package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/javiermolinar/quorum/internal/export"
	"github.com/javiermolinar/quorum/internal/poll"
	"github.com/javiermolinar/quorum/internal/service"
)

// CreateEvent handles POST /api/events
func (s *Server) CreateEvent(c echo.Context) error {
	var req CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	e, err := s.svc.CreateEvent(c.Request().Context(), req.input())
	if err != nil {
		return s.fail(c, err)
	}
	return success(c, http.StatusCreated, IDResponse{ID: e.ID}, "event created")
}

// GetEvent handles GET /api/events/:eventId
func (s *Server) GetEvent(c echo.Context) error {
	ctx := c.Request().Context()
	e, ps, err := s.svc.Participants(ctx, c.Param("eventId"))
	if err != nil {
		return s.fail(c, err)
	}

	detail := EventDetail{
		Event:        service.NewEventView(e),
		Participants: make([]service.ParticipantView, 0, len(ps)),
	}
	for _, p := range ps {
		detail.Participants = append(detail.Participants, service.NewParticipantView(p))
	}

	m, err := s.svc.ScheduledMeeting(ctx, e.ID)
	switch {
	case err == nil:
		mv := service.NewMeetingView(m)
		detail.Meeting = &mv
	case !errors.Is(err, poll.ErrNotScheduled):
		return s.fail(c, err)
	}
	return success(c, http.StatusOK, detail, "event retrieved")
}

// AddParticipant handles POST /api/events/:eventId/participants
func (s *Server) AddParticipant(c echo.Context) error {
	var req CreateParticipantRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	p, err := s.svc.AddParticipant(c.Request().Context(), c.Param("eventId"), req.Name, req.Availability)
	if err != nil {
		return s.fail(c, err)
	}
	return success(c, http.StatusCreated, IDResponse{ID: p.ID}, "participant added")
}

// UpdateAvailability handles PUT /api/events/:eventId/availability/:participantId
func (s *Server) UpdateAvailability(c echo.Context) error {
	var req UpdateAvailabilityRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	err := s.svc.UpdateAvailability(c.Request().Context(), c.Param("eventId"), c.Param("participantId"), req.Availability)
	if err != nil {
		return s.fail(c, err)
	}
	return success(c, http.StatusOK, nil, "availability updated")
}

// Aggregated handles GET /api/events/:eventId/availability
func (s *Server) Aggregated(c echo.Context) error {
	view, err := s.svc.Aggregated(c.Request().Context(), c.Param("eventId"))
	if err != nil {
		return s.fail(c, err)
	}
	return success(c, http.StatusOK, view, "availability retrieved")
}

// Heatmap handles GET /api/events/:eventId/heatmap?exclude=name
func (s *Server) Heatmap(c echo.Context) error {
	view, err := s.svc.Heatmap(c.Request().Context(), c.Param("eventId"), excludeParam(c))
	if err != nil {
		return s.fail(c, err)
	}
	return success(c, http.StatusOK, view, "heatmap retrieved")
}

// Schedule handles POST /api/events/:eventId/schedule
func (s *Server) Schedule(c echo.Context) error {
	var req ScheduleRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	m, err := s.svc.Schedule(c.Request().Context(), c.Param("eventId"), req.Title, req.Description, req.Slots)
	if err != nil {
		return s.fail(c, err)
	}
	return success(c, http.StatusCreated, service.NewMeetingView(m), "meeting scheduled")
}

// GetSchedule handles GET /api/events/:eventId/schedule
func (s *Server) GetSchedule(c echo.Context) error {
	m, err := s.svc.ScheduledMeeting(c.Request().Context(), c.Param("eventId"))
	if err != nil {
		return s.fail(c, err)
	}
	return success(c, http.StatusOK, service.NewMeetingView(m), "meeting retrieved")
}

// ExportSchedule handles GET /api/events/:eventId/schedule.ics
func (s *Server) ExportSchedule(c echo.Context) error {
	e, m, attendees, err := s.svc.Export(c.Request().Context(), c.Param("eventId"))
	if err != nil {
		return s.fail(c, err)
	}
	var buf bytes.Buffer
	if err := export.Encode(&buf, e, m, attendees, time.Now()); err != nil {
		return s.fail(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", export.Filename(m)))
	return c.Blob(http.StatusOK, "text/calendar; charset=utf-8", buf.Bytes())
}

// Cleanup handles GET and DELETE /api/cleanup
func (s *Server) Cleanup(c echo.Context) error {
	ids, err := s.svc.CleanupExpired(c.Request().Context(), s.retention)
	if err != nil {
		return s.fail(c, err)
	}
	if ids == nil {
		ids = []string{}
	}
	return success(c, http.StatusOK, CleanupResponse{Deleted: len(ids), IDs: ids}, "cleanup finished")
}

// excludeParam accepts both repeated and comma-separated exclude values.
func excludeParam(c echo.Context) []string {
	var names []string
	for _, raw := range c.QueryParams()["exclude"] {
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
	}
	return names
}
