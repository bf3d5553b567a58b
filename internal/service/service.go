// Package service implements quorum's use cases on top of a poll.Repository:
// creating polls, collecting responses, aggregating and scheduling.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/javiermolinar/quorum/internal/cache"
	"github.com/javiermolinar/quorum/internal/dateutil"
	"github.com/javiermolinar/quorum/internal/heatmap"
	"github.com/javiermolinar/quorum/internal/logger"
	"github.com/javiermolinar/quorum/internal/poll"
	"github.com/javiermolinar/quorum/internal/slot"
)

// DefaultRetention is how long after its last date an event is kept.
const DefaultRetention = 30 * 24 * time.Hour

// Service coordinates storage, caching and aggregation.
type Service struct {
	repo  poll.Repository
	cache cache.Cache
	log   *log.Logger
	scale heatmap.Scale
	now   func() time.Time

	respondMu sync.Mutex // serializes find-or-create by name
}

// Option configures a Service.
type Option func(*Service)

// WithCache sets the read-model cache. The default caches nothing.
func WithCache(c cache.Cache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithScale sets the heatmap colour scale.
func WithScale(scale heatmap.Scale) Option {
	return func(s *Service) {
		s.scale = scale
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates a service.
func New(repo poll.Repository, opts ...Option) *Service {
	s := &Service{
		repo:  repo,
		cache: cache.Noop{},
		log:   logger.With("component", "service"),
		scale: heatmap.DefaultScale(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Repository returns the underlying repository.
func (s *Service) Repository() poll.Repository {
	return s.repo
}

// Scale returns the heatmap colour scale.
func (s *Service) Scale() heatmap.Scale {
	return s.scale
}

// CreateEvent validates and stores a new event.
func (s *Service) CreateEvent(ctx context.Context, in poll.EventInput) (*poll.Event, error) {
	e, err := poll.NewEvent(in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateEvent(ctx, e); err != nil {
		return nil, fmt.Errorf("creating event: %w", err)
	}
	s.log.Info("event created", "id", e.ID, "dates", len(e.Dates), "slots", len(e.Slots()))
	return e, nil
}

// GetEvent returns an event.
func (s *Service) GetEvent(ctx context.Context, id string) (*poll.Event, error) {
	e, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting event %s: %w", id, err)
	}
	return e, nil
}

// Participants returns an event and its participants.
func (s *Service) Participants(ctx context.Context, eventID string) (*poll.Event, []*poll.Participant, error) {
	e, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	ps, err := s.repo.ListParticipants(ctx, eventID)
	if err != nil {
		return nil, nil, fmt.Errorf("listing participants: %w", err)
	}
	return e, ps, nil
}

// AddParticipant registers a respondent with their initial availability.
func (s *Service) AddParticipant(ctx context.Context, eventID, name string, availability []slot.Availability) (*poll.Participant, error) {
	if _, err := s.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	p, err := poll.NewParticipant(eventID, name, availability)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateParticipant(ctx, p); err != nil {
		return nil, fmt.Errorf("creating participant: %w", err)
	}
	s.invalidate(ctx, eventID)
	s.log.Info("participant added", "event", eventID, "participant", p.ID, "slots", len(availability))
	return p, nil
}

// UpdateAvailability replaces a participant's availability.
func (s *Service) UpdateAvailability(ctx context.Context, eventID, participantID string, availability []slot.Availability) error {
	if err := poll.ValidateAvailability(availability); err != nil {
		return err
	}
	if err := s.repo.ReplaceAvailability(ctx, eventID, participantID, availability); err != nil {
		return fmt.Errorf("updating availability: %w", err)
	}
	s.invalidate(ctx, eventID)
	s.log.Info("availability updated", "event", eventID, "participant", participantID, "slots", len(availability))
	return nil
}

// Respond saves selected as name's availability, creating the participant
// on first response and replacing their availability afterwards. Concurrent
// responses under one name through the same Service create one participant.
// Names are not unique in storage: participants added through AddParticipant
// may share one, and Respond then updates the earliest.
func (s *Service) Respond(ctx context.Context, eventID, name string, selected slot.Set) (*poll.Participant, error) {
	s.respondMu.Lock()
	defer s.respondMu.Unlock()

	e, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	records := slot.KeysToAvailability(selected, e.Slots())

	existing, err := s.repo.FindParticipantByName(ctx, eventID, strings.TrimSpace(name))
	switch {
	case err == nil:
		if err := s.UpdateAvailability(ctx, eventID, existing.ID, records); err != nil {
			return nil, err
		}
		existing.Availability = records
		return existing, nil
	case participantMissing(err):
		return s.AddParticipant(ctx, eventID, name, records)
	default:
		return nil, fmt.Errorf("finding participant: %w", err)
	}
}

// SavedSelection returns the keys name previously selected, or an empty set.
func (s *Service) SavedSelection(ctx context.Context, e *poll.Event, name string) (slot.Set, error) {
	p, err := s.repo.FindParticipantByName(ctx, e.ID, strings.TrimSpace(name))
	if participantMissing(err) {
		return slot.NewSet(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding participant: %w", err)
	}
	return slot.AvailabilityToKeys(p.Availability, e.Location()), nil
}

// Aggregate returns the aggregated result for an event.
func (s *Service) Aggregate(ctx context.Context, eventID string) (*poll.Event, *heatmap.Result, error) {
	e, ps, err := s.Participants(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	return e, heatmap.Aggregate(e.Slots(), respondents(e, ps)), nil
}

// Aggregated returns the aggregated read model, served from the cache when
// possible.
func (s *Service) Aggregated(ctx context.Context, eventID string) (*AggregatedView, error) {
	key := cache.AggregateKey(eventID)
	if data, ok, err := s.cache.Get(ctx, key); err != nil {
		s.log.Warn("cache read failed", "key", key, "err", err)
	} else if ok {
		var view AggregatedView
		if err := json.Unmarshal(data, &view); err == nil {
			return &view, nil
		}
		s.log.Warn("discarding corrupt cache entry", "key", key)
	}

	e, result, err := s.Aggregate(ctx, eventID)
	if err != nil {
		return nil, err
	}
	view := &AggregatedView{
		Event:      NewEventView(e),
		Aggregated: result.Entries(e.Slots()),
	}

	if data, err := json.Marshal(view); err == nil {
		if err := s.cache.Set(ctx, key, data); err != nil {
			s.log.Warn("cache write failed", "key", key, "err", err)
		}
	}
	return view, nil
}

// Heatmap returns the organizer's heatmap without the excluded respondents.
func (s *Service) Heatmap(ctx context.Context, eventID string, exclude []string) (*HeatmapView, error) {
	e, result, err := s.Aggregate(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return buildHeatmap(e, result.Exclude(exclude...), exclude, s.scale), nil
}

// Schedule records the final meeting. An empty title falls back to the
// event title.
func (s *Service) Schedule(ctx context.Context, eventID, title, description string, slots []slot.Availability) (*poll.ScheduledMeeting, error) {
	e, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(title) == "" {
		title = e.Title
	}
	m, err := poll.NewScheduledMeeting(eventID, title, description, slots)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateScheduledMeeting(ctx, m); err != nil {
		return nil, fmt.Errorf("scheduling meeting: %w", err)
	}
	s.log.Info("meeting scheduled", "event", eventID, "slots", len(slots), "start", m.Start())
	return m, nil
}

// ScheduledMeeting returns the meeting of an event.
func (s *Service) ScheduledMeeting(ctx context.Context, eventID string) (*poll.ScheduledMeeting, error) {
	m, err := s.repo.GetScheduledMeeting(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("getting meeting: %w", err)
	}
	return m, nil
}

// Export returns an event's meeting and the names of the respondents
// available for every one of its slots.
func (s *Service) Export(ctx context.Context, eventID string) (*poll.Event, *poll.ScheduledMeeting, []string, error) {
	m, err := s.ScheduledMeeting(ctx, eventID)
	if err != nil {
		return nil, nil, nil, err
	}
	e, result, err := s.Aggregate(ctx, eventID)
	if err != nil {
		return nil, nil, nil, err
	}

	keys := slot.AvailabilityToKeys(m.Slots, e.Location())
	attendees := []string{}
	for _, r := range result.Respondents() {
		if keys.Len() == 0 {
			break
		}
		all := true
		for k := range keys {
			if !r.Keys.Has(k) {
				all = false
				break
			}
		}
		if all {
			attendees = append(attendees, r.Name)
		}
	}
	return e, m, attendees, nil
}

// CleanupExpired deletes events whose last date is more than retention in
// the past and returns their IDs.
func (s *Service) CleanupExpired(ctx context.Context, retention time.Duration) ([]string, error) {
	if retention <= 0 {
		retention = DefaultRetention
	}
	cutoff := dateutil.Day(s.now()).Add(-retention)
	ids, err := s.repo.DeleteExpiredEvents(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("deleting expired events: %w", err)
	}
	for _, id := range ids {
		s.invalidate(ctx, id)
	}
	s.log.Info("cleanup finished", "deleted", len(ids), "cutoff", cutoff.Format(dateutil.Layout))
	return ids, nil
}

func (s *Service) invalidate(ctx context.Context, eventID string) {
	key := cache.AggregateKey(eventID)
	if err := s.cache.Delete(ctx, key); err != nil {
		s.log.Warn("cache invalidation failed", "key", key, "err", err)
	}
}

func respondents(e *poll.Event, ps []*poll.Participant) []heatmap.Respondent {
	loc := e.Location()
	out := make([]heatmap.Respondent, 0, len(ps))
	for _, p := range ps {
		out = append(out, heatmap.RespondentFromAvailability(p.Name, p.Availability, loc))
	}
	return out
}
