// Package calendar holds the advent calendar state machine: date gating,
// the opened-window set and binding of content to windows.
package calendar

import (
	"fmt"
	"time"
)

const (
	// Month every window is gated against.
	Month = time.December
	// WindowCount is the number of windows, one per day starting at 1.
	WindowCount = 24
)

// Status is the render state of a single window
type Status int

const (
	Locked Status = iota
	Unlocked
	Opened
)

func (s Status) String() string {
	switch s {
	case Locked:
		return "locked"
	case Unlocked:
		return "unlocked"
	case Opened:
		return "opened"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// MarshalText lets Status appear as its name in JSON
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a status name written by MarshalText
func (s *Status) UnmarshalText(b []byte) error {
	switch string(b) {
	case "locked":
		*s = Locked
	case "unlocked":
		*s = Unlocked
	case "opened":
		*s = Opened
	default:
		return fmt.Errorf("unknown window status %q", b)
	}
	return nil
}

// Clickable reports whether clicking the window opens or reopens it
func (s Status) Clickable() bool {
	return s != Locked
}

// Gate decides when a window may be opened for the first time.
type Gate struct {
	Year     int
	Month    time.Month
	Location *time.Location
}

// NewGate builds a December gate. A zero year means the year of now.
func NewGate(year int, loc *time.Location, now time.Time) Gate {
	if loc == nil {
		loc = time.Local
	}
	if year == 0 {
		year = now.In(loc).Year()
	}
	return Gate{Year: year, Month: Month, Location: loc}
}

// Target is local midnight of the window's day
func (g Gate) Target(day int) time.Time {
	loc := g.Location
	if loc == nil {
		loc = time.Local
	}
	return time.Date(g.Year, g.Month, day, 0, 0, 0, 0, loc)
}

// Unlockable reports whether now is on or after the window's target date
func (g Gate) Unlockable(day int, now time.Time) bool {
	return !now.Before(g.Target(day))
}

// ValidDay reports whether day names one of the windows
func ValidDay(day int) bool {
	return day >= 1 && day <= WindowCount
}

// Window is one computed cell of the calendar grid
type Window struct {
	Day        int       `json:"day"`
	Status     Status    `json:"status"`
	Target     time.Time `json:"unlocks_at"`
	HasContent bool      `json:"has_content"`
	Feast      string    `json:"feast,omitempty"`
}

// ComputeWindows derives the render state of all windows. It has no side effects.
func ComputeWindows(gate Gate, entries []DayEntry, opened OpenedSet, now time.Time) []Window {
	feasts := FeastDays(gate.Year)
	windows := make([]Window, 0, WindowCount)
	for day := 1; day <= WindowCount; day++ {
		_, hasContent := FindEntry(entries, day)
		windows = append(windows, Window{
			Day:        day,
			Status:     StatusOf(gate, opened, day, now),
			Target:     gate.Target(day),
			HasContent: hasContent,
			Feast:      feasts[day],
		})
	}
	return windows
}

// StatusOf computes exactly one state for a day. Opened windows never re-lock.
func StatusOf(gate Gate, opened OpenedSet, day int, now time.Time) Status {
	if opened.Has(day) {
		return Opened
	}
	if gate.Unlockable(day, now) {
		return Unlocked
	}
	return Locked
}
