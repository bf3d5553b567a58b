package service

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/javiermolinar/quorum/internal/cache"
	"github.com/javiermolinar/quorum/internal/db"
	"github.com/javiermolinar/quorum/internal/poll"
	"github.com/javiermolinar/quorum/internal/slot"
)

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	store, err := db.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return New(store, opts...)
}

func createEvent(t *testing.T, svc *Service) *poll.Event {
	t.Helper()
	e, err := svc.CreateEvent(context.Background(), poll.EventInput{
		Title:               "Planning",
		Dates:               []string{"2025-03-01"},
		StartTime:           "09:00",
		EndTime:             "10:00",
		SlotDurationMinutes: 30,
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	return e
}

func TestCreateEvent_Validation(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.CreateEvent(context.Background(), poll.EventInput{Title: "x", Dates: []string{"2025-03-01"}, StartTime: "10:00", EndTime: "09:00"})
	if !IsValidation(err) || !errors.Is(err, poll.ErrEndBeforeStart) {
		t.Errorf("error = %v, want validation error", err)
	}
}

func TestTwoParticipantScenario(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	e := createEvent(t, svc)
	slots := e.Slots()
	k0, k1 := slots[0].Key(), slots[1].Key()

	if _, err := svc.Respond(ctx, e.ID, "A", slot.NewSet(k0)); err != nil {
		t.Fatalf("Respond A: %v", err)
	}
	if _, err := svc.Respond(ctx, e.ID, "B", slot.NewSet(k0, k1)); err != nil {
		t.Fatalf("Respond B: %v", err)
	}

	view, err := svc.Aggregated(ctx, e.ID)
	if err != nil {
		t.Fatalf("Aggregated: %v", err)
	}
	if len(view.Aggregated) != 2 {
		t.Fatalf("aggregated = %d entries, want 2", len(view.Aggregated))
	}
	first, second := view.Aggregated[0], view.Aggregated[1]
	if first.Count != 2 || first.Participants[0] != "A" || first.Participants[1] != "B" {
		t.Errorf("09:00 = %+v", first)
	}
	if second.Count != 1 || second.Participants[0] != "B" {
		t.Errorf("09:30 = %+v", second)
	}

	hm, err := svc.Heatmap(ctx, e.ID, nil)
	if err != nil {
		t.Fatalf("Heatmap: %v", err)
	}
	if hm.Rows[0].Cells[0].Color != "#03a48c" || hm.Rows[1].Cells[0].Color != "#d4f5ef" {
		t.Errorf("colours = %s, %s", hm.Rows[0].Cells[0].Color, hm.Rows[1].Cells[0].Color)
	}
	if len(hm.Legend) != 3 {
		t.Errorf("legend = %d swatches, want 3", len(hm.Legend))
	}
	if len(hm.Best) != 1 || !hm.Best[0].SlotStart.Equal(slots[0].Start) {
		t.Errorf("best = %v", hm.Best)
	}
}

func TestHeatmap_Exclusion(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	e := createEvent(t, svc)
	k0 := e.Slots()[0].Key()

	_, _ = svc.Respond(ctx, e.ID, "A", slot.NewSet(k0))
	_, _ = svc.Respond(ctx, e.ID, "B", slot.NewSet())
	_, _ = svc.Respond(ctx, e.ID, "C", slot.NewSet())

	hm, err := svc.Heatmap(ctx, e.ID, []string{"A"})
	if err != nil {
		t.Fatalf("Heatmap: %v", err)
	}
	if hm.Total != 2 {
		t.Errorf("Total = %d, want 2", hm.Total)
	}
	if c := hm.Rows[0].Cells[0]; c.Count != 0 || c.Color != "#ffffff" {
		t.Errorf("cell = %+v, want empty", c)
	}
}

func TestRespond_ReplacesExisting(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	e := createEvent(t, svc)
	slots := e.Slots()

	first, err := svc.Respond(ctx, e.ID, "Alice", slot.NewSet(slots[0].Key()))
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	second, err := svc.Respond(ctx, e.ID, "Alice", slot.NewSet(slots[1].Key()))
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("second response created a new participant")
	}

	saved, err := svc.SavedSelection(ctx, e, "Alice")
	if err != nil {
		t.Fatalf("SavedSelection: %v", err)
	}
	if !saved.Equal(slot.NewSet(slots[1].Key())) {
		t.Errorf("saved = %v", saved.Sorted())
	}

	none, err := svc.SavedSelection(ctx, e, "Nobody")
	if err != nil || none.Len() != 0 {
		t.Errorf("SavedSelection(Nobody) = %v, %v", none, err)
	}
}

func TestRespond_ConcurrentFirstResponses(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	e := createEvent(t, svc)
	k := e.Slots()[0].Key()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Respond(ctx, e.ID, "Alice", slot.NewSet(k)); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("Respond: %v", err)
	}

	_, ps, err := svc.Participants(ctx, e.ID)
	if err != nil {
		t.Fatalf("Participants: %v", err)
	}
	if len(ps) != 1 {
		t.Errorf("got %d participants, want 1", len(ps))
	}
}

func TestHeatmap_ExcludeSharedName(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	e := createEvent(t, svc)
	slots := e.Slots()
	all := slot.KeysToAvailability(slot.NewSet(slots[0].Key(), slots[1].Key()), slots)

	for _, name := range []string{"Ana", "Ana", "Bo"} {
		if _, err := svc.AddParticipant(ctx, e.ID, name, all); err != nil {
			t.Fatalf("AddParticipant(%s): %v", name, err)
		}
	}

	hm, err := svc.Heatmap(ctx, e.ID, []string{"Ana"})
	if err != nil {
		t.Fatalf("Heatmap: %v", err)
	}
	if hm.Total != 1 {
		t.Errorf("Total = %d, want 1", hm.Total)
	}
	if c := hm.Rows[0].Cells[0]; c.Count != 1 || c.Color != svc.Scale().Hex(1, 1) {
		t.Errorf("cell = %+v, want count 1 at full colour", c)
	}
}

func TestUpdateAvailability_Mismatch(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	e1 := createEvent(t, svc)
	e2 := createEvent(t, svc)

	p, err := svc.AddParticipant(ctx, e1.ID, "Alice", nil)
	if err != nil {
		t.Fatalf("AddParticipant: %v", err)
	}
	err = svc.UpdateAvailability(ctx, e2.ID, p.ID, nil)
	if !errors.Is(err, poll.ErrParticipantMismatch) {
		t.Errorf("error = %v, want %v", err, poll.ErrParticipantMismatch)
	}

	if _, err := svc.AddParticipant(ctx, "missing", "Bob", nil); !IsNotFound(err) {
		t.Errorf("error = %v, want not found", err)
	}
}

func TestAggregated_CacheInvalidation(t *testing.T) {
	ctx := context.Background()
	mem := cache.NewMemory(time.Hour)
	svc := newTestService(t, WithCache(mem))
	e := createEvent(t, svc)
	k0 := e.Slots()[0].Key()

	if _, err := svc.Aggregated(ctx, e.ID); err != nil {
		t.Fatalf("Aggregated: %v", err)
	}
	data, ok, _ := mem.Get(ctx, cache.AggregateKey(e.ID))
	if !ok {
		t.Fatal("aggregate should be cached after the first read")
	}
	var cached AggregatedView
	if err := json.Unmarshal(data, &cached); err != nil || cached.Event.ID != e.ID {
		t.Fatalf("cached view = %+v, %v", cached, err)
	}

	if _, err := svc.Respond(ctx, e.ID, "A", slot.NewSet(k0)); err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if _, ok, _ := mem.Get(ctx, cache.AggregateKey(e.ID)); ok {
		t.Fatal("responding should invalidate the cached aggregate")
	}

	view, _ := svc.Aggregated(ctx, e.ID)
	if view.Aggregated[0].Count != 1 {
		t.Errorf("count = %d, want 1", view.Aggregated[0].Count)
	}
}

func TestSchedule(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	e := createEvent(t, svc)
	av := []slot.Availability{e.Slots()[0].Availability()}

	m, err := svc.Schedule(ctx, e.ID, "", "", av)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if m.Title != e.Title {
		t.Errorf("Title = %q, want event title %q", m.Title, e.Title)
	}
	if _, err := svc.Schedule(ctx, e.ID, "Again", "", av); !errors.Is(err, poll.ErrAlreadyScheduled) {
		t.Errorf("error = %v, want %v", err, poll.ErrAlreadyScheduled)
	}
	if _, err := svc.Schedule(ctx, e.ID, "Empty", "", nil); !IsValidation(err) {
		t.Errorf("error = %v, want validation error", err)
	}

	got, err := svc.ScheduledMeeting(ctx, e.ID)
	if err != nil || len(got.Slots) != 1 {
		t.Errorf("ScheduledMeeting = %+v, %v", got, err)
	}
}

func TestExport_Attendees(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	e := createEvent(t, svc)
	slots := e.Slots()

	_, _ = svc.Respond(ctx, e.ID, "A", slot.NewSet(slots[0].Key(), slots[1].Key()))
	_, _ = svc.Respond(ctx, e.ID, "B", slot.NewSet(slots[0].Key()))

	if _, _, _, err := svc.Export(ctx, e.ID); !IsNotFound(err) {
		t.Fatalf("unscheduled export error = %v, want not found", err)
	}

	av := []slot.Availability{slots[0].Availability(), slots[1].Availability()}
	if _, err := svc.Schedule(ctx, e.ID, "Sync", "", av); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	_, m, attendees, err := svc.Export(ctx, e.ID)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if m.Title != "Sync" {
		t.Errorf("Title = %q", m.Title)
	}
	if len(attendees) != 1 || attendees[0] != "A" {
		t.Errorf("attendees = %v, want [A]", attendees)
	}
}

func TestCleanupExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, WithClock(func() time.Time { return now }))
	e := createEvent(t, svc) // last date 2025-03-01

	ids, err := svc.CleanupExpired(ctx, 90*24*time.Hour)
	if err != nil || len(ids) != 0 {
		t.Fatalf("within retention: %v, %v", ids, err)
	}

	ids, err = svc.CleanupExpired(ctx, 0)
	if err != nil {
		t.Fatalf("CleanupExpired: %v", err)
	}
	if len(ids) != 1 || ids[0] != e.ID {
		t.Errorf("deleted = %v, want [%s]", ids, e.ID)
	}
	if _, err := svc.GetEvent(ctx, e.ID); !IsNotFound(err) {
		t.Errorf("event still present: %v", err)
	}
}
