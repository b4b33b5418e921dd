package calendar

// Overlay is what the content panel shows for one day
type Overlay struct {
	Day     int    `json:"day"`
	Title   string `json:"title"`
	Photo   string `json:"photo,omitempty"`
	Message string `json:"message,omitempty"`
	// Empty is set when neither photo nor message resolved.
	Empty bool `json:"empty"`
}

// NewOverlay builds the overlay for an entry. Photo and message may both be shown.
func NewOverlay(e DayEntry) Overlay {
	return Overlay{
		Day:     e.Day,
		Title:   e.DisplayTitle(),
		Photo:   e.Body.Photo,
		Message: e.Body.Message,
		Empty:   e.Body.Empty(),
	}
}
