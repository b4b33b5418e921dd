package app

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/klabast/wb-services/advent-kalender/internal/calendar"
)

// ICSOptions tune the unlock-date calendar
type ICSOptions struct {
	// ReminderTime (HH:MM) adds an alarm on each unlock day
	ReminderTime string
	// Subscription omits alarms and adds publishing headers
	Subscription bool
	Now          time.Time
}

// Export is the JSON export of one profile
type Export struct {
	Profile string            `json:"profile"`
	Year    int               `json:"year"`
	Opened  []int             `json:"opened"`
	Windows []calendar.Window `json:"windows"`
}

// WriteICS writes an iCalendar document with one all-day event per window unlock
func WriteICS(w io.Writer, gate calendar.Gate, windows []calendar.Window, opts ICSOptions) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	fmt.Fprint(w, "BEGIN:VCALENDAR\r\n")
	fmt.Fprint(w, "VERSION:2.0\r\n")
	fmt.Fprintf(w, "PRODID:%s\r\n", ICSProductID)
	if opts.Subscription {
		fmt.Fprint(w, "METHOD:PUBLISH\r\n")
		fmt.Fprint(w, "X-PUBLISHED-TTL:PT12H\r\n")
	}
	fmt.Fprintf(w, "X-WR-CALNAME:Advent calendar %d\r\n", gate.Year)
	if gate.Location != nil && gate.Location != time.Local {
		fmt.Fprintf(w, "X-WR-TIMEZONE:%s\r\n", gate.Location)
	}
	fmt.Fprint(w, "CALSCALE:GREGORIAN\r\n")

	for _, win := range windows {
		date := gate.Target(win.Day)
		summary := fmt.Sprintf("Window %d opens", win.Day)
		if win.Feast != "" {
			summary += " (" + win.Feast + ")"
		}

		fmt.Fprint(w, "BEGIN:VEVENT\r\n")
		fmt.Fprintf(w, "UID:%d-%02d@%s\r\n", gate.Year, win.Day, ICSDomain)
		fmt.Fprintf(w, "DTSTAMP:%s\r\n", now.UTC().Format("20060102T150405Z"))
		fmt.Fprintf(w, "DTSTART;VALUE=DATE:%s\r\n", date.Format("20060102"))
		fmt.Fprintf(w, "DTEND;VALUE=DATE:%s\r\n", date.AddDate(0, 0, 1).Format("20060102"))
		fmt.Fprintf(w, "SUMMARY:%s\r\n", escapeICS(summary))

		if !opts.Subscription && opts.ReminderTime != "" {
			AddAlarm(w, date, 0, opts.ReminderTime, summary)
		}

		fmt.Fprint(w, "END:VEVENT\r\n")
	}

	fmt.Fprint(w, "END:VCALENDAR\r\n")
}

// AddAlarm adds an alarm/reminder to an ICS event
func AddAlarm(w io.Writer, eventDate time.Time, daysBefore int, alarmTime string, description string) {
	// Parse alarm time (HH:MM format)
	parts := strings.Split(alarmTime, ":")
	if len(parts) != 2 {
		return
	}

	hour, err1 := strconv.Atoi(parts[0])
	minute, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return
	}

	// Event starts at midnight; the trigger is relative to that start
	offset := time.Duration(-daysBefore)*24*time.Hour + time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute

	totalMinutes := int(offset.Minutes())
	isNegative := totalMinutes < 0
	if isNegative {
		totalMinutes = -totalMinutes
	}

	days := totalMinutes / (24 * 60)
	remainingMinutes := totalMinutes % (24 * 60)
	hours := remainingMinutes / 60
	minutes := remainingMinutes % 60

	trigger := fmt.Sprintf("P%dDT%dH%dM", days, hours, minutes)
	if isNegative {
		trigger = "-" + trigger
	}

	fmt.Fprint(w, "BEGIN:VALARM\r\n")
	fmt.Fprint(w, "ACTION:DISPLAY\r\n")
	fmt.Fprintf(w, "DESCRIPTION:Reminder: %s\r\n", escapeICS(description))
	fmt.Fprintf(w, "TRIGGER:%s\r\n", trigger)
	fmt.Fprint(w, "END:VALARM\r\n")
}

// WriteCSV writes one row per window
func WriteCSV(w io.Writer, windows []calendar.Window) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"day", "unlocks_at", "status", "has_content", "feast"}); err != nil {
		return err
	}
	for _, win := range windows {
		row := []string{
			strconv.Itoa(win.Day),
			win.Target.Format("2006-01-02"),
			win.Status.String(),
			strconv.FormatBool(win.HasContent),
			win.Feast,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the profile export
func WriteJSON(w io.Writer, export Export) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(export)
}

// GenerateICS serves the unlock-date calendar as a download, or inline when subscribing
func (s *Server) GenerateICS(w http.ResponseWriter, r *http.Request, windows []calendar.Window) {
	opts := ICSOptions{
		ReminderTime: r.URL.Query().Get("reminder"),
		Subscription: r.URL.Query().Get("subscribe") == "true",
		Now:          s.now(),
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	if !opts.Subscription {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=adventskalender_%d.ics", s.gate.Year))
	}
	WriteICS(w, s.gate, windows, opts)
}

// GenerateCSV serves the window table
func (s *Server) GenerateCSV(w http.ResponseWriter, windows []calendar.Window) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=adventskalender_%d.csv", s.gate.Year))
	if err := WriteCSV(w, windows); err != nil {
		s.log.Errorw("Error writing CSV export", "error", err)
	}
}

// GenerateJSON serves the profile export
func (s *Server) GenerateJSON(w http.ResponseWriter, export Export) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=adventskalender_%d.json", s.gate.Year))
	if err := WriteJSON(w, export); err != nil {
		s.log.Errorw("Error encoding JSON export", "error", err)
		http.Error(w, ErrFailedToGenerateJSON, http.StatusInternalServerError)
	}
}

// escapeICS escapes text values per RFC 5545
func escapeICS(s string) string {
	r := strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\n", `\n`)
	return r.Replace(s)
}
