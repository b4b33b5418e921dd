package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/klabast/wb-services/advent-kalender/internal/calendar"
	"github.com/klabast/wb-services/advent-kalender/internal/snow"
)

// Open outcomes reported by the JSON API
const (
	OpenStatusOpened    = "opened"
	OpenStatusLocked    = "locked"
	OpenStatusNoContent = "no_content"
)

// CalendarResponse is the body of GET /api/calendar
type CalendarResponse struct {
	Profile string            `json:"profile"`
	Year    int               `json:"year"`
	Opened  []int             `json:"opened"`
	Windows []calendar.Window `json:"windows"`
	Notice  string            `json:"notice,omitempty"`
}

// OpenResponse is the body of POST /api/windows/{day}/open
type OpenResponse struct {
	Status  string            `json:"status"`
	Notice  string            `json:"notice,omitempty"`
	Overlay *calendar.Overlay `json:"overlay,omitempty"`
	Windows []calendar.Window `json:"windows"`
}

// ServeIndex renders the calendar page. ?day=N shows the overlay of an opened window.
func (s *Server) ServeIndex(w http.ResponseWriter, r *http.Request) {
	profile := s.profile(w, r)
	c, err := s.controller(r.Context(), profile, false)
	if err != nil {
		s.log.WithError(err).Errorw("Error loading profile", "profile", profile)
		WriteBanner(w, http.StatusInternalServerError)
		return
	}

	now := s.now()
	windows := c.Windows(now)
	data := &pageData{
		Year:         s.gate.Year,
		Windows:      make([]windowView, len(windows)),
		NoticeMillis: c.Notices().Interval().Milliseconds(),
	}
	for i, win := range windows {
		data.Windows[i] = windowView{Window: win}
	}

	if raw := r.URL.Query().Get("day"); raw != "" {
		if day, ok := ParseDay(raw); ok {
			if ov, ok := c.Overlay(day); ok {
				data.Overlay = s.overlayView(ov)
			}
		}
	}

	data.Notice, data.NoticeVisible = c.Notices().Current()

	if s.snow != nil {
		data.Snow = s.snow.Snapshot()
		data.SnowStream = true
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := s.renderer.Render(w, data); err != nil {
		if !errors.Is(err, ErrMissingGrid) {
			s.log.Errorw("Error rendering calendar", "error", err)
		}
		WriteBanner(w, http.StatusInternalServerError)
	}
}

// HandleOpenForm opens a window from the no-script form and redirects back to the page
func (s *Server) HandleOpenForm(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	day, ok := ParseDay(r.PathValue("day"))
	if !ok {
		http.Error(w, ErrInvalidDay, http.StatusBadRequest)
		return
	}

	profile := s.profile(w, r)
	c, err := s.controller(r.Context(), profile, true)
	if err != nil {
		s.log.WithError(err).Errorw("Error loading profile", "profile", profile)
		http.Error(w, ErrInternalServer, http.StatusInternalServerError)
		return
	}

	target := "/"
	if _, err := c.Open(r.Context(), day, s.now()); err != nil {
		if !calendar.IsNotice(err) {
			s.log.Errorw("Error opening window", "profile", profile, "day", day, "error", err)
			http.Error(w, ErrFailedToSave, http.StatusInternalServerError)
			return
		}
		s.metrics.ObserveNotice(err)
	} else {
		target = fmt.Sprintf("/?day=%d", day)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// HandleCalendar returns the window states of the caller's profile
func (s *Server) HandleCalendar(w http.ResponseWriter, r *http.Request) {
	profile := s.profile(w, r)
	c, err := s.controller(r.Context(), profile, false)
	if err != nil {
		s.log.WithError(err).Errorw("Error loading profile", "profile", profile)
		http.Error(w, ErrInternalServer, http.StatusInternalServerError)
		return
	}

	notice, _ := c.Notices().Current()
	s.writeJSON(w, http.StatusOK, CalendarResponse{
		Profile: profile,
		Year:    s.gate.Year,
		Opened:  c.Opened().Days(),
		Windows: c.Windows(s.now()),
		Notice:  notice,
	})
}

// HandleOpen opens a window. Locked windows and missing content are regular
// outcomes carrying a notice, not HTTP errors.
func (s *Server) HandleOpen(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	day, ok := ParseDay(r.PathValue("day"))
	if !ok {
		http.Error(w, ErrInvalidDay, http.StatusBadRequest)
		return
	}

	profile := s.profile(w, r)
	c, err := s.controller(r.Context(), profile, true)
	if err != nil {
		s.log.WithError(err).Errorw("Error loading profile", "profile", profile)
		http.Error(w, ErrInternalServer, http.StatusInternalServerError)
		return
	}

	now := s.now()
	ov, err := c.Open(r.Context(), day, now)
	resp := OpenResponse{Status: OpenStatusOpened}

	var gateErr *calendar.GateError
	var missing *calendar.NoContentError
	switch {
	case err == nil:
		resp.Overlay = &ov
	case errors.As(err, &gateErr):
		resp.Status = OpenStatusLocked
		resp.Notice = err.Error()
		s.metrics.ObserveNotice(err)
	case errors.As(err, &missing):
		resp.Status = OpenStatusNoContent
		resp.Notice = err.Error()
		s.metrics.ObserveNotice(err)
	default:
		s.log.Errorw("Error opening window", "profile", profile, "day", day, "error", err)
		http.Error(w, ErrFailedToSave, http.StatusInternalServerError)
		return
	}

	resp.Windows = c.Windows(now)
	s.writeJSON(w, http.StatusOK, resp)
}

// HandleContent returns the loaded content document. The revision doubles as ETag.
func (s *Server) HandleContent(w http.ResponseWriter, r *http.Request) {
	etag := `"` + s.doc.Revision + `"`
	if s.doc.Revision != "" {
		w.Header().Set("ETag", etag)
		if match := r.Header.Get("If-None-Match"); match == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	entries := s.doc.Entries
	if entries == nil {
		entries = []calendar.DayEntry{}
	}
	s.writeJSON(w, http.StatusOK, entries)
}

// HandleSnow streams particle spawns and removals as server-sent events
func (s *Server) HandleSnow(w http.ResponseWriter, r *http.Request) {
	if s.snow == nil {
		http.Error(w, ErrSnowDisabled, http.StatusNotFound)
		return
	}

	rc := http.NewResponseController(w)
	// Streams outlive the server write timeout.
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	events, unsubscribe := s.snow.Subscribe(64)
	defer unsubscribe()

	for _, p := range s.snow.Snapshot() {
		if err := writeEvent(w, snow.Event{Kind: snow.Spawned, Particle: p}); err != nil {
			return
		}
	}
	if err := rc.Flush(); err != nil {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(w, ev); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, ev snow.Event) error {
	data, err := json.Marshal(ev.Particle)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Kind, data)
	return err
}

// HandleExport serves the profile's calendar as ics, csv or json (?format=)
func (s *Server) HandleExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "ics"
	}

	profile := s.profile(w, r)
	c, err := s.controller(r.Context(), profile, false)
	if err != nil {
		s.log.WithError(err).Errorw("Error loading profile", "profile", profile)
		http.Error(w, ErrInternalServer, http.StatusInternalServerError)
		return
	}
	windows := c.Windows(s.now())

	switch format {
	case "ics":
		s.GenerateICS(w, r, windows)
	case "csv":
		s.GenerateCSV(w, windows)
	case "json":
		s.GenerateJSON(w, Export{
			Profile: profile,
			Year:    s.gate.Year,
			Opened:  c.Opened().Days(),
			Windows: windows,
		})
	default:
		http.Error(w, ErrInvalidFormat, http.StatusBadRequest)
	}
}

// HandleHealth reports liveness
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"year":    s.gate.Year,
		"entries": len(s.doc.Entries),
	})
}

// overlayView resolves the photo against the assets directory
func (s *Server) overlayView(ov calendar.Overlay) *overlayView {
	v := &overlayView{Overlay: ov}
	if ov.Photo == "" {
		return v
	}
	if strings.HasPrefix(ov.Photo, "http://") || strings.HasPrefix(ov.Photo, "https://") {
		v.PhotoURL = ov.Photo
		return v
	}

	name := strings.TrimPrefix(path.Clean("/"+ov.Photo), "/")
	v.PhotoURL = AssetsPrefix + name
	if s.assets == nil {
		v.PhotoMissing = true
		return v
	}
	if _, err := fs.Stat(s.assets, name); err != nil {
		s.log.Warnw("Photo not found", "day", ov.Day, "path", ov.Photo)
		v.PhotoMissing = true
	}
	return v
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.ServeIndex)
	mux.HandleFunc("POST /windows/{day}/open", s.HandleOpenForm)

	mux.HandleFunc("GET /api/calendar", s.HandleCalendar)
	mux.HandleFunc("POST /api/windows/{day}/open", s.HandleOpen)
	mux.HandleFunc("GET /api/content", s.HandleContent)
	mux.HandleFunc("GET /api/snow", s.HandleSnow)
	mux.HandleFunc("GET /api/export", s.HandleExport)
	mux.HandleFunc("GET /healthz", s.HandleHealth)

	if s.cfg.Metrics.Enabled {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	static, err := fs.Sub(staticFiles, "static")
	if err == nil {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	}
	if s.assets != nil {
		mux.Handle("GET "+AssetsPrefix, http.StripPrefix(AssetsPrefix, http.FileServerFS(s.assets)))
	}

	var h http.Handler = mux
	h = s.limiter.Middleware(h)
	h = s.metrics.Middleware(h)
	h = s.logRequests(h)
	h = s.recoverPanics(h)
	return h
}
