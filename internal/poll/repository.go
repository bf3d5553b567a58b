package poll

import (
	"context"
	"time"

	"github.com/javiermolinar/quorum/internal/slot"
)

// Repository defines the storage interface for polls.
type Repository interface {
	// CreateEvent stores an event with its dates and time config.
	CreateEvent(ctx context.Context, event *Event) error

	// GetEvent retrieves an event by ID.
	// Returns ErrEventNotFound if it does not exist.
	GetEvent(ctx context.Context, id string) (*Event, error)

	// CreateParticipant stores a participant and their initial availability
	// in one transaction.
	CreateParticipant(ctx context.Context, p *Participant) error

	// GetParticipant retrieves a participant with their availability.
	GetParticipant(ctx context.Context, id string) (*Participant, error)

	// FindParticipantByName returns the earliest participant of an event with
	// the given name, or ErrParticipantNotFound.
	FindParticipantByName(ctx context.Context, eventID, name string) (*Participant, error)

	// ListParticipants returns every participant of an event, with
	// availability, in creation order.
	ListParticipants(ctx context.Context, eventID string) ([]*Participant, error)

	// ReplaceAvailability atomically replaces a participant's availability.
	// Returns ErrParticipantMismatch if the participant belongs to another event.
	ReplaceAvailability(ctx context.Context, eventID, participantID string, records []slot.Availability) error

	// CreateScheduledMeeting stores the meeting of an event.
	// Returns ErrAlreadyScheduled if one exists.
	CreateScheduledMeeting(ctx context.Context, m *ScheduledMeeting) error

	// GetScheduledMeeting returns the meeting of an event, or ErrNotScheduled.
	GetScheduledMeeting(ctx context.Context, eventID string) (*ScheduledMeeting, error)

	// DeleteExpiredEvents removes every event whose last date is before
	// cutoff, with all dependent rows, and returns the removed IDs.
	DeleteExpiredEvents(ctx context.Context, cutoff time.Time) ([]string, error)

	// Close releases any resources held by the repository.
	Close() error
}
