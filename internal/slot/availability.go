package slot

import "time"

// Availability is the persisted form of one selected slot: absolute start and
// end instants. It serializes as {"slotStart": ..., "slotEnd": ...}.
type Availability struct {
	SlotStart time.Time `json:"slotStart"`
	SlotEnd   time.Time `json:"slotEnd"`
}

// KeysToAvailability keeps the slots whose key is selected and returns their
// instant pairs, in slot order.
func KeysToAvailability(selected Set, allSlots []TimeSlot) []Availability {
	result := make([]Availability, 0, len(selected))
	for _, s := range allSlots {
		if selected.Has(s.Key()) {
			result = append(result, s.Availability())
		}
	}
	return result
}

// AvailabilityToKeys converts persisted availability back into keys using the
// wall-clock date and time of each start instant in loc (UTC when nil).
func AvailabilityToKeys(records []Availability, loc *time.Location) Set {
	if loc == nil {
		loc = time.UTC
	}
	keys := make(Set, len(records))
	for _, r := range records {
		local := r.SlotStart.In(loc)
		keys.Add(NewKey(local.Format(DateLayout), local.Format(ClockLayout)))
	}
	return keys
}

// SlotsFor returns the grid slots whose key is in selected, in slot order.
func SlotsFor(selected Set, allSlots []TimeSlot) []TimeSlot {
	var result []TimeSlot
	for _, s := range allSlots {
		if selected.Has(s.Key()) {
			result = append(result, s)
		}
	}
	return result
}
