package app

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/klabast/wb-services/advent-kalender/internal/calendar"
	"github.com/klabast/wb-services/advent-kalender/internal/logger"
	"github.com/klabast/wb-services/advent-kalender/internal/snow"
)

//go:embed static/*
var staticFiles embed.FS

// ErrMissingGrid means the host document has nowhere to put the windows
var ErrMissingGrid = errors.New("host document has no grid mount point")

// pageData is the dot of the host document and every partial
type pageData struct {
	Year          int
	Windows       []windowView
	Overlay       *overlayView
	Notice        string
	NoticeVisible bool
	NoticeMillis  int64
	Snow          []snow.Particle
	SnowStream    bool

	mounted map[string]bool
}

type windowView struct {
	calendar.Window
}

type overlayView struct {
	calendar.Overlay
	PhotoURL     string
	PhotoMissing bool
}

// Renderer executes the host document. The host places the calendar's pieces
// with {{mount "grid" .}} and friends; a dry run at construction finds out
// which mount points it actually uses.
type Renderer struct {
	host     *template.Template
	partials *template.Template
	mounts   map[string]bool
	err      error
}

// NewRenderer parses the host document and checks its mount points. A missing
// grid is not a parse error: the renderer is returned and every Render reports
// ErrMissingGrid so the caller can show the banner.
func NewRenderer(hostSrc string, log *logger.Logger) (*Renderer, error) {
	if log == nil {
		log = logger.NewNop()
	}

	r := &Renderer{}

	partials, err := template.New("partials").Funcs(partialFuncs).Parse(tmplPartials)
	if err != nil {
		return nil, fmt.Errorf("parse partials: %w", err)
	}
	r.partials = partials

	host, err := template.New("host").Funcs(template.FuncMap{"mount": r.mount}).Parse(hostSrc)
	if err != nil {
		return nil, fmt.Errorf("parse host template: %w", err)
	}
	r.host = host

	sample := samplePage()
	if err := r.host.Execute(io.Discard, sample); err != nil {
		return nil, fmt.Errorf("execute host template: %w", err)
	}
	r.mounts = sample.mounted

	for _, m := range Mounts {
		if r.mounts[m] {
			continue
		}
		if m == MountGrid {
			r.err = ErrMissingGrid
			log.Errorw("Calendar grid mount point not found")
			continue
		}
		log.Warnw("Mount point not found, feature disabled", "mount", m)
	}
	return r, nil
}

// Mounted reports whether the host document places the named mount point
func (r *Renderer) Mounted(name string) bool {
	return r.mounts[name]
}

// Err is ErrMissingGrid for a host without a grid
func (r *Renderer) Err() error {
	return r.err
}

// Render executes the host document into w
func (r *Renderer) Render(w io.Writer, data *pageData) error {
	if r.err != nil {
		return r.err
	}
	if data.mounted == nil {
		data.mounted = make(map[string]bool)
	}

	// Buffer so a failing render can still be replaced by the banner.
	var buf bytes.Buffer
	if err := r.host.Execute(&buf, data); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

func (r *Renderer) mount(name string, data *pageData) (template.HTML, error) {
	if data.mounted == nil {
		data.mounted = make(map[string]bool)
	}
	data.mounted[name] = true

	if r.partials.Lookup(name) == nil {
		return "", fmt.Errorf("unknown mount point %q", name)
	}
	var buf bytes.Buffer
	if err := r.partials.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// samplePage fills every optional section so conditional mounts are seen
func samplePage() *pageData {
	gate := calendar.Gate{Year: 2000, Month: calendar.Month, Location: time.UTC}
	windows := calendar.ComputeWindows(gate, nil, calendar.NewOpenedSet(1), gate.Target(2))
	views := make([]windowView, len(windows))
	for i, w := range windows {
		views[i] = windowView{Window: w}
	}
	return &pageData{
		Year:    2000,
		Windows: views,
		Overlay: &overlayView{
			Overlay:  calendar.Overlay{Day: 1, Title: "Day 1", Photo: "a.jpg", Message: "sample"},
			PhotoURL: AssetsPrefix + "a.jpg",
		},
		Notice:        "sample",
		NoticeVisible: true,
		NoticeMillis:  1,
		Snow:          []snow.Particle{{ID: 1, Size: 1, Duration: 1, Opacity: 1}},
		SnowStream:    true,
		mounted:       make(map[string]bool),
	}
}

var partialFuncs = template.FuncMap{
	"fixed": func(f float64) string {
		return fmt.Sprintf("%.2f", f)
	},
	"isOpened": func(s calendar.Status) bool {
		return s == calendar.Opened
	},
}

// WriteBanner replaces the page with the degraded-state message
func WriteBanner(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, tmplBanner)
}

// BannerHandler serves the banner for every request. Used when the server
// could not be built at all.
func BannerHandler(cause error, log *logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if log != nil {
			log.Errorw("Serving error banner", "error", cause, "path", r.URL.Path)
		}
		WriteBanner(w, http.StatusServiceUnavailable)
	})
}
