// Package heatmap aggregates participant availability per slot.
package heatmap

import (
	"time"

	"github.com/javiermolinar/quorum/internal/slot"
)

// Respondent is one participant's saved selection.
type Respondent struct {
	Name string
	Keys slot.Set
}

// RespondentFromAvailability restores a respondent from persisted records,
// keyed by wall-clock time in loc.
func RespondentFromAvailability(name string, records []slot.Availability, loc *time.Location) Respondent {
	return Respondent{Name: name, Keys: slot.AvailabilityToKeys(records, loc)}
}

// Cell is the aggregate of one slot.
type Cell struct {
	Participants []string
	Count        int
}

// Entry is the wire form of one aggregated slot.
type Entry struct {
	SlotStart    time.Time `json:"slotStart"`
	Participants []string  `json:"participants"`
	Count        int       `json:"count"`
}

// Result maps every grid key to its aggregate.
type Result struct {
	cells       map[slot.Key]Cell
	respondents []Respondent
	total       int
}

// Aggregate counts, for every slot, the respondents who selected it. Every
// slot key is present with a zero count even when nobody is available.
// Participant names follow respondent order. Keys outside the grid are ignored.
func Aggregate(slots []slot.TimeSlot, respondents []Respondent) *Result {
	r := &Result{
		cells:       make(map[slot.Key]Cell, len(slots)),
		respondents: respondents,
		total:       len(respondents),
	}
	for _, s := range slots {
		r.cells[s.Key()] = Cell{Participants: []string{}}
	}
	for _, resp := range respondents {
		for k := range resp.Keys {
			cell, ok := r.cells[k]
			if !ok {
				continue
			}
			cell.Participants = append(cell.Participants, resp.Name)
			cell.Count++
			r.cells[k] = cell
		}
	}
	return r
}

// Total returns the number of respondents counted.
func (r *Result) Total() int {
	return r.total
}

// Respondents returns the respondents counted, in order.
func (r *Result) Respondents() []Respondent {
	return r.respondents
}

// Names returns respondent names in order.
func (r *Result) Names() []string {
	names := make([]string, len(r.respondents))
	for i, resp := range r.respondents {
		names[i] = resp.Name
	}
	return names
}

// Cell returns the aggregate of k. ok is false for keys outside the grid.
func (r *Result) Cell(k slot.Key) (Cell, bool) {
	c, ok := r.cells[k]
	return c, ok
}

// Count returns how many respondents selected k.
func (r *Result) Count(k slot.Key) int {
	return r.cells[k].Count
}

// Max returns the highest count of any slot.
func (r *Result) Max() int {
	highest := 0
	for _, c := range r.cells {
		highest = max(highest, c.Count)
	}
	return highest
}

// Best returns the slots with the highest non-zero count, in slot order.
func (r *Result) Best(slots []slot.TimeSlot) []slot.TimeSlot {
	highest := r.Max()
	if highest == 0 {
		return nil
	}
	var best []slot.TimeSlot
	for _, s := range slots {
		if r.cells[s.Key()].Count == highest {
			best = append(best, s)
		}
	}
	return best
}

// Exclude returns a view without the named respondents. Counts are
// recomputed and Total drops by the number of respondents removed, so every
// respondent sharing an excluded name leaves the denominator; unknown names
// are ignored.
func (r *Result) Exclude(names ...string) *Result {
	if len(names) == 0 {
		return r
	}
	excluded := make(map[string]bool, len(names))
	for _, n := range names {
		excluded[n] = true
	}

	kept := make([]Respondent, 0, len(r.respondents))
	for _, resp := range r.respondents {
		if !excluded[resp.Name] {
			kept = append(kept, resp)
		}
	}

	out := &Result{
		cells:       make(map[slot.Key]Cell, len(r.cells)),
		respondents: kept,
		total:       r.total - (len(r.respondents) - len(kept)),
	}
	for k, c := range r.cells {
		participants := make([]string, 0, len(c.Participants))
		for _, p := range c.Participants {
			if !excluded[p] {
				participants = append(participants, p)
			}
		}
		out.cells[k] = Cell{Participants: participants, Count: len(participants)}
	}
	return out
}

// Entries returns one entry per slot, in slot order.
func (r *Result) Entries(slots []slot.TimeSlot) []Entry {
	entries := make([]Entry, 0, len(slots))
	for _, s := range slots {
		c := r.cells[s.Key()]
		participants := c.Participants
		if participants == nil {
			participants = []string{}
		}
		entries = append(entries, Entry{
			SlotStart:    s.Start.UTC(),
			Participants: participants,
			Count:        c.Count,
		})
	}
	return entries
}
