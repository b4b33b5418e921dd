package calendar

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Legacy content types
const (
	TypePhoto   = "photo"
	TypeMessage = "message"
)

// Body is the normalized content of a day. Either field may be empty.
type Body struct {
	Photo   string
	Message string
}

// LegacyBody interprets the older type/content pair
func LegacyBody(kind, content string) Body {
	switch kind {
	case TypePhoto:
		return Body{Photo: content}
	case TypeMessage:
		return Body{Message: content}
	default:
		return Body{}
	}
}

// DualBody carries a photo, a message or both
func DualBody(photo, message string) Body {
	return Body{Photo: photo, Message: message}
}

// Empty reports whether neither a photo nor a message resolved
func (b Body) Empty() bool {
	return b.Photo == "" && b.Message == ""
}

// DayEntry is the content bound to one window
type DayEntry struct {
	Day   int    `validate:"min=1,max=24"`
	Title string `validate:"max=200"`
	Body  Body

	// unknownType keeps a legacy type that resolved to nothing, for diagnostics.
	unknownType string
}

// UnknownType returns the legacy type when it was neither photo nor message
func (e DayEntry) UnknownType() string {
	return e.unknownType
}

// DisplayTitle is the title or the "Day N" fallback
func (e DayEntry) DisplayTitle() string {
	if e.Title != "" {
		return e.Title
	}
	return fmt.Sprintf("Day %d", e.Day)
}

type entryJSON struct {
	Day     int     `json:"day"`
	Title   string  `json:"title,omitempty"`
	Type    string  `json:"type,omitempty"`
	Content string  `json:"content,omitempty"`
	Photo   *string `json:"photo,omitempty"`
	Message *string `json:"message,omitempty"`
}

// UnmarshalJSON accepts both the legacy {type, content} and the {photo, message} shape.
// Explicit photo/message fields win; an absent field falls back to the legacy pair.
func (e *DayEntry) UnmarshalJSON(data []byte) error {
	var raw entryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	legacy := LegacyBody(raw.Type, raw.Content)
	body := DualBody(deref(raw.Photo), deref(raw.Message))
	if body.Photo == "" {
		body.Photo = legacy.Photo
	}
	if body.Message == "" {
		body.Message = legacy.Message
	}

	*e = DayEntry{Day: raw.Day, Title: raw.Title, Body: body}
	if raw.Type != "" && raw.Type != TypePhoto && raw.Type != TypeMessage {
		e.unknownType = raw.Type
	}
	return nil
}

// MarshalJSON always writes the normalized photo/message shape
func (e DayEntry) MarshalJSON() ([]byte, error) {
	out := entryJSON{Day: e.Day, Title: e.Title}
	if e.Body.Photo != "" {
		out.Photo = &e.Body.Photo
	}
	if e.Body.Message != "" {
		out.Message = &e.Body.Message
	}
	return json.Marshal(out)
}

// SortEntries sorts entries by day in ascending order, keeping the order of equal days
func SortEntries(entries []DayEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Day < entries[j].Day
	})
}

// FindEntry returns the first entry for day
func FindEntry(entries []DayEntry, day int) (DayEntry, bool) {
	for _, e := range entries {
		if e.Day == day {
			return e, true
		}
	}
	return DayEntry{}, false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
