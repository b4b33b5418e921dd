package calendar

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDayEntryContentResolution(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantPhoto   string
		wantMessage string
		wantEmpty   bool
	}{
		{
			name:      "Legacy photo",
			input:     `{"day":1,"type":"photo","content":"x.jpg"}`,
			wantPhoto: "x.jpg",
		},
		{
			name:        "Legacy message",
			input:       `{"day":2,"type":"message","content":"Merry"}`,
			wantMessage: "Merry",
		},
		{
			name:        "Photo and message",
			input:       `{"day":3,"photo":"a.jpg","message":"hi"}`,
			wantPhoto:   "a.jpg",
			wantMessage: "hi",
		},
		{
			name:        "Explicit field wins over legacy",
			input:       `{"day":4,"type":"photo","content":"old.jpg","photo":"new.jpg","message":"hi"}`,
			wantPhoto:   "new.jpg",
			wantMessage: "hi",
		},
		{
			name:        "Absent field falls back to legacy",
			input:       `{"day":5,"type":"photo","content":"old.jpg","message":"hi"}`,
			wantPhoto:   "old.jpg",
			wantMessage: "hi",
		},
		{
			name:      "Nothing resolves",
			input:     `{"day":6,"title":"Empty"}`,
			wantEmpty: true,
		},
		{
			name:      "Unknown legacy type",
			input:     `{"day":7,"type":"video","content":"v.mp4"}`,
			wantEmpty: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e DayEntry
			if err := json.Unmarshal([]byte(tt.input), &e); err != nil {
				t.Fatalf("Unmarshal() failed: %v", err)
			}
			if e.Body.Photo != tt.wantPhoto {
				t.Errorf("Photo = %q, want %q", e.Body.Photo, tt.wantPhoto)
			}
			if e.Body.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", e.Body.Message, tt.wantMessage)
			}
			if e.Body.Empty() != tt.wantEmpty {
				t.Errorf("Empty() = %v, want %v", e.Body.Empty(), tt.wantEmpty)
			}
		})
	}
}

func TestDayEntryUnknownType(t *testing.T) {
	var e DayEntry
	if err := json.Unmarshal([]byte(`{"day":7,"type":"video","content":"v.mp4"}`), &e); err != nil {
		t.Fatalf("Unmarshal() failed: %v", err)
	}
	if e.UnknownType() != "video" {
		t.Errorf("UnknownType() = %q, want video", e.UnknownType())
	}

	if err := json.Unmarshal([]byte(`{"day":1,"type":"photo","content":"a.jpg"}`), &e); err != nil {
		t.Fatalf("Unmarshal() failed: %v", err)
	}
	if e.UnknownType() != "" {
		t.Errorf("UnknownType() = %q, want empty", e.UnknownType())
	}
}

func TestDayEntryMarshalsNormalizedShape(t *testing.T) {
	var e DayEntry
	if err := json.Unmarshal([]byte(`{"day":1,"title":"One","type":"photo","content":"x.jpg"}`), &e); err != nil {
		t.Fatalf("Unmarshal() failed: %v", err)
	}

	out, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, `"photo":"x.jpg"`) {
		t.Errorf("missing photo field: %s", s)
	}
	if strings.Contains(s, `"type"`) || strings.Contains(s, `"message"`) {
		t.Errorf("unexpected legacy or empty fields: %s", s)
	}
}

func TestDisplayTitle(t *testing.T) {
	if got := (DayEntry{Day: 9}).DisplayTitle(); got != "Day 9" {
		t.Errorf("DisplayTitle() = %q, want Day 9", got)
	}
	if got := (DayEntry{Day: 9, Title: "Cookies"}).DisplayTitle(); got != "Cookies" {
		t.Errorf("DisplayTitle() = %q, want Cookies", got)
	}
}

func TestSortEntriesIsStable(t *testing.T) {
	entries := []DayEntry{
		{Day: 12, Title: "a"},
		{Day: 3, Title: "b"},
		{Day: 12, Title: "c"},
		{Day: 1, Title: "d"},
	}
	SortEntries(entries)

	var order []string
	for _, e := range entries {
		order = append(order, e.Title)
	}
	if got := strings.Join(order, ""); got != "dbac" {
		t.Errorf("order = %s, want dbac", got)
	}

	first, ok := FindEntry(entries, 12)
	if !ok || first.Title != "a" {
		t.Errorf("FindEntry(12) = %+v, %v; want title a", first, ok)
	}
}

func TestNewOverlay(t *testing.T) {
	o := NewOverlay(DayEntry{Day: 8, Body: DualBody("p.jpg", "msg")})
	if o.Title != "Day 8" || o.Photo != "p.jpg" || o.Message != "msg" || o.Empty {
		t.Errorf("NewOverlay() = %+v", o)
	}

	if !NewOverlay(DayEntry{Day: 8}).Empty {
		t.Error("overlay without photo or message should be empty")
	}
}
