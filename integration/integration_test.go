package integration

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/javiermolinar/quorum/internal/cache"
	"github.com/javiermolinar/quorum/internal/db"
	"github.com/javiermolinar/quorum/internal/export"
	"github.com/javiermolinar/quorum/internal/poll"
	"github.com/javiermolinar/quorum/internal/service"
	"github.com/javiermolinar/quorum/internal/slot"
)

// openService creates a service over a fresh SQLite file and an in-process
// cache, closed when the test ends.
func openService(t *testing.T, opts ...service.Option) *service.Service {
	t.Helper()
	store, err := db.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	c := cache.NewMemory(time.Minute)
	t.Cleanup(func() { _ = c.Close() })

	return service.New(store, append([]service.Option{service.WithCache(c)}, opts...)...)
}

// createEvent is a helper to create an event over two dates, 09:00-11:00 in
// 30 minute slots.
func createEvent(t *testing.T, svc *service.Service, tz string) *poll.Event {
	t.Helper()
	e, err := svc.CreateEvent(context.Background(), poll.EventInput{
		Title:               "Quarterly planning",
		Description:         "Roadmap review",
		Timezone:            tz,
		Dates:               []string{"2025-03-11", "2025-03-10"},
		StartTime:           "09:00",
		EndTime:             "11:00",
		SlotDurationMinutes: 30,
	})
	if err != nil {
		t.Fatalf("failed to create event: %v", err)
	}
	return e
}

func keys(date string, clocks ...string) []slot.Key {
	out := make([]slot.Key, len(clocks))
	for i, c := range clocks {
		out[i] = slot.NewKey(date, c)
	}
	return out
}

func respond(t *testing.T, svc *service.Service, eventID, name string, ks ...slot.Key) {
	t.Helper()
	if _, err := svc.Respond(context.Background(), eventID, name, slot.NewSet(ks...)); err != nil {
		t.Fatalf("failed to respond as %s: %v", name, err)
	}
}

func TestFullWorkflow(t *testing.T) {
	svc := openService(t)
	ctx := context.Background()

	e := createEvent(t, svc, "Europe/Madrid")
	if got := strings.Join(e.DateStrings(), ","); got != "2025-03-10,2025-03-11" {
		t.Errorf("dates: got %s", got)
	}
	if len(e.Slots()) != 8 {
		t.Fatalf("slots: got %d, want 8", len(e.Slots()))
	}

	// Step 1: three respondents answer
	respond(t, svc, e.ID, "Ana", keys("2025-03-10", "09:00", "09:30", "10:00")...)
	respond(t, svc, e.ID, "Bruno", keys("2025-03-10", "09:30", "10:00", "10:30")...)
	respond(t, svc, e.ID, "Carla", keys("2025-03-11", "09:00")...)

	_, result, err := svc.Aggregate(ctx, e.ID)
	if err != nil {
		t.Fatalf("failed to aggregate: %v", err)
	}
	if result.Total() != 3 {
		t.Errorf("Total: got %d, want 3", result.Total())
	}
	if got := result.Count(slot.NewKey("2025-03-10", "09:30")); got != 2 {
		t.Errorf("count at 09:30: got %d, want 2", got)
	}

	// Step 2: Carla changes her mind and joins the Monday overlap
	respond(t, svc, e.ID, "Carla", keys("2025-03-10", "10:00")...)

	_, result, err = svc.Aggregate(ctx, e.ID)
	if err != nil {
		t.Fatalf("failed to aggregate: %v", err)
	}
	if got := result.Count(slot.NewKey("2025-03-11", "09:00")); got != 0 {
		t.Errorf("replaced answer still counted: got %d", got)
	}
	best := result.Best(e.Slots())
	if len(best) != 1 || best[0].Key() != slot.NewKey("2025-03-10", "10:00") {
		t.Fatalf("Best: got %v", best)
	}

	// Step 3: excluding a respondent lowers the counts and the total
	hm, err := svc.Heatmap(ctx, e.ID, []string{"Carla"})
	if err != nil {
		t.Fatalf("failed to build heatmap: %v", err)
	}
	if hm.Total != 2 || len(hm.Best) != 2 {
		t.Errorf("heatmap without Carla: total %d, best %v", hm.Total, hm.Best)
	}

	// Step 4: schedule the Monday overlap
	chosen := slot.KeysToAvailability(slot.NewSet(keys("2025-03-10", "09:30", "10:00")...), e.Slots())
	m, err := svc.Schedule(ctx, e.ID, "", "", chosen)
	if err != nil {
		t.Fatalf("failed to schedule: %v", err)
	}
	if m.Title != e.Title {
		t.Errorf("Title: got %q, want the event title", m.Title)
	}
	if _, err := svc.Schedule(ctx, e.ID, "Again", "", chosen); !errors.Is(err, poll.ErrAlreadyScheduled) {
		t.Errorf("second schedule: got %v, want ErrAlreadyScheduled", err)
	}

	// Step 5: export lists everyone free for the whole meeting
	ev, meeting, attendees, err := svc.Export(ctx, e.ID)
	if err != nil {
		t.Fatalf("failed to export: %v", err)
	}
	if strings.Join(attendees, ",") != "Ana,Bruno" {
		t.Errorf("attendees: got %v", attendees)
	}
	var buf bytes.Buffer
	if err := export.Encode(&buf, ev, meeting, attendees, time.Now()); err != nil {
		t.Fatalf("failed to encode: %v", err)
	}
	ics := buf.String()
	if n := strings.Count(ics, "BEGIN:VEVENT"); n != 1 {
		t.Errorf("VEVENT count: got %d, want 1", n)
	}
	// 09:30 CET is 08:30 UTC
	if !strings.Contains(ics, "DTSTART:20250310T083000Z") || !strings.Contains(ics, "DTEND:20250310T093000Z") {
		t.Errorf("unexpected times in calendar:\n%s", ics)
	}

	// Step 6: a month after the last date, cleanup removes everything
	later := openServiceOver(t, svc, time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC))
	ids, err := later.CleanupExpired(ctx, 0)
	if err != nil {
		t.Fatalf("failed to clean up: %v", err)
	}
	if len(ids) != 1 || ids[0] != e.ID {
		t.Errorf("deleted: got %v, want [%s]", ids, e.ID)
	}
	if _, err := svc.GetEvent(ctx, e.ID); !errors.Is(err, poll.ErrEventNotFound) {
		t.Errorf("GetEvent after cleanup: got %v, want ErrEventNotFound", err)
	}
	if _, err := svc.ScheduledMeeting(ctx, e.ID); !errors.Is(err, poll.ErrNotScheduled) {
		t.Errorf("meeting after cleanup: got %v, want ErrNotScheduled", err)
	}
}

// openServiceOver returns a service sharing svc's storage with a fixed clock.
func openServiceOver(t *testing.T, svc *service.Service, now time.Time) *service.Service {
	t.Helper()
	return service.New(svc.Repository(), service.WithClock(func() time.Time { return now }))
}

func TestCleanupKeepsRecentEvents(t *testing.T) {
	svc := openService(t)
	ctx := context.Background()
	e := createEvent(t, svc, "")

	// Last date is 2025-03-11; the default window is 30 days.
	within := openServiceOver(t, svc, time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC))
	ids, err := within.CleanupExpired(ctx, 0)
	if err != nil {
		t.Fatalf("failed to clean up: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("deleted %v inside the retention window", ids)
	}
	if _, err := svc.GetEvent(ctx, e.ID); err != nil {
		t.Errorf("event should survive: %v", err)
	}
}

func TestRespondInvalidatesCachedAggregate(t *testing.T) {
	svc := openService(t)
	ctx := context.Background()
	e := createEvent(t, svc, "")

	respond(t, svc, e.ID, "Ana", keys("2025-03-10", "09:00")...)
	if _, _, err := svc.Aggregate(ctx, e.ID); err != nil {
		t.Fatalf("failed to aggregate: %v", err)
	}

	respond(t, svc, e.ID, "Bruno", keys("2025-03-10", "09:00")...)
	_, result, err := svc.Aggregate(ctx, e.ID)
	if err != nil {
		t.Fatalf("failed to aggregate: %v", err)
	}
	if got := result.Count(slot.NewKey("2025-03-10", "09:00")); got != 2 {
		t.Errorf("count after second response: got %d, want 2", got)
	}
}

func TestRespondValidation(t *testing.T) {
	svc := openService(t)
	ctx := context.Background()
	e := createEvent(t, svc, "")

	if _, err := svc.Respond(ctx, e.ID, "   ", slot.NewSet()); err == nil {
		t.Error("expected an error for a blank name")
	}
	if _, err := svc.Respond(ctx, "missing", "Ana", slot.NewSet()); !errors.Is(err, poll.ErrEventNotFound) {
		t.Errorf("unknown event: got %v, want ErrEventNotFound", err)
	}
}
