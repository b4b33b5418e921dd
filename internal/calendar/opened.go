package calendar

import (
	"encoding/json"
	"fmt"
	"sort"
)

// OpenedSet holds the days revealed at least once
type OpenedSet map[int]struct{}

// NewOpenedSet builds a set from day numbers, ignoring values outside 1..24
func NewOpenedSet(days ...int) OpenedSet {
	s := make(OpenedSet, len(days))
	for _, d := range days {
		if ValidDay(d) {
			s[d] = struct{}{}
		}
	}
	return s
}

// Has reports membership
func (s OpenedSet) Has(day int) bool {
	_, ok := s[day]
	return ok
}

// Add inserts day and reports whether it was new
func (s OpenedSet) Add(day int) bool {
	if s.Has(day) {
		return false
	}
	s[day] = struct{}{}
	return true
}

// Days returns the members in ascending order
func (s OpenedSet) Days() []int {
	days := make([]int, 0, len(s))
	for d := range s {
		days = append(days, d)
	}
	sort.Ints(days)
	return days
}

// Equal reports whether both sets contain the same days
func (s OpenedSet) Equal(other OpenedSet) bool {
	if len(s) != len(other) {
		return false
	}
	for d := range s {
		if !other.Has(d) {
			return false
		}
	}
	return true
}

// MarshalOpened serializes the set as a JSON array of integers
func MarshalOpened(s OpenedSet) ([]byte, error) {
	return json.Marshal(s.Days())
}

// ParseOpened decodes a serialized set. Empty input is an empty set.
func ParseOpened(data []byte) (OpenedSet, error) {
	if len(data) == 0 {
		return NewOpenedSet(), nil
	}
	var days []int
	if err := json.Unmarshal(data, &days); err != nil {
		return NewOpenedSet(), fmt.Errorf("parse opened windows: %w", err)
	}
	return NewOpenedSet(days...), nil
}
