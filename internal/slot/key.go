package slot

import (
	"sort"
)

// keySeparator joins the date and time parts. The date itself contains
// hyphens, so keys are split by fixed width and never by searching for it.
const keySeparator = "-"

// dateWidth is the length of a YYYY-MM-DD date.
const dateWidth = len(DateLayout)

// Key is the canonical identity of a grid cell: a calendar date plus the
// start time of the slot. Two keys are equal iff their canonical forms are
// equal, so Key can be compared with == and used as a map key.
type Key struct {
	canonical string
}

// NewKey builds the key for a date (YYYY-MM-DD) and start time (HH:MM).
func NewKey(date, clock string) Key {
	return Key{canonical: date + keySeparator + clock}
}

// String returns the canonical form, e.g. "2025-03-01-09:00".
func (k Key) String() string {
	return k.canonical
}

// IsZero reports whether k is the zero Key.
func (k Key) IsZero() bool {
	return k.canonical == ""
}

// Parts splits the key back into date and time for display.
func (k Key) Parts() (date, clock string) {
	return ParseKey(k.canonical)
}

// MarshalText implements encoding.TextMarshaler.
func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.canonical), nil
}

// ParseKey is a best-effort inverse of NewKey, for debugging and display only.
// The first ten characters are the date; the time follows the separator.
func ParseKey(s string) (date, clock string) {
	if len(s) < dateWidth {
		return s, ""
	}
	date = s[:dateWidth]
	rest := s[dateWidth:]
	if len(rest) >= len(keySeparator) && rest[:len(keySeparator)] == keySeparator {
		rest = rest[len(keySeparator):]
	}
	return date, rest
}

// Set is a set of slot keys.
type Set map[Key]struct{}

// NewSet returns a set holding keys.
func NewSet(keys ...Key) Set {
	s := make(Set, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Has reports whether k is in the set.
func (s Set) Has(k Key) bool {
	_, ok := s[k]
	return ok
}

// Add inserts k.
func (s Set) Add(k Key) {
	s[k] = struct{}{}
}

// Remove deletes k.
func (s Set) Remove(k Key) {
	delete(s, k)
}

// Len returns the number of keys.
func (s Set) Len() int {
	return len(s)
}

// Clone returns an independent copy of the set.
func (s Set) Clone() Set {
	c := make(Set, len(s))
	for k := range s {
		c[k] = struct{}{}
	}
	return c
}

// Equal reports whether both sets hold the same keys.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for k := range s {
		if !other.Has(k) {
			return false
		}
	}
	return true
}

// Sorted returns the keys in canonical order, which is chronological for
// keys of one grid.
func (s Set) Sorted() []Key {
	keys := make([]Key, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].canonical < keys[j].canonical
	})
	return keys
}
