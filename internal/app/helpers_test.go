package app

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klabast/wb-services/advent-kalender/internal/calendar"
	"github.com/klabast/wb-services/advent-kalender/internal/config"
	"github.com/klabast/wb-services/advent-kalender/internal/content"
	"github.com/klabast/wb-services/advent-kalender/internal/store"
)

type testEnv struct {
	srv     *Server
	store   *store.FileStore
	dataDir string
	assets  string
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Server:   config.ServerConfig{Port: 8080},
		Calendar: config.CalendarConfig{Year: 2024, Timezone: "UTC", NoticeDismiss: time.Minute},
		Content:  config.ContentConfig{Source: "content.json", Timeout: time.Second},
		Assets:   config.AssetsConfig{Dir: filepath.Join(dir, "assets")},
		Store:    config.StoreConfig{Driver: "file", Path: filepath.Join(dir, "data")},
		Snow:     config.SnowConfig{Enabled: false, Interval: time.Second},
		Logger:   config.LoggerConfig{Level: "info", Format: "console", Output: "stdout"},
		Metrics:  config.MetricsConfig{Enabled: true},
	}
}

func newTestEnv(t *testing.T, cfg *config.Config, now time.Time, entries []calendar.DayEntry) *testEnv {
	t.Helper()

	if err := os.MkdirAll(cfg.Assets.Dir, 0755); err != nil {
		t.Fatalf("Failed to create assets dir: %v", err)
	}
	fs, err := store.NewFileStore(cfg.Store.Path)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	srv, err := New(Options{
		Config:  cfg,
		Store:   fs,
		Content: content.Document{Entries: entries, Revision: "rev1"},
		Now:     func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return &testEnv{srv: srv, store: fs, dataDir: cfg.Store.Path, assets: cfg.Assets.Dir}
}

func december(day, hour int) time.Time {
	return time.Date(2024, time.December, day, hour, 0, 0, 0, time.UTC)
}

func sampleEntries() []calendar.DayEntry {
	return []calendar.DayEntry{
		{Day: 1, Title: "First", Body: calendar.LegacyBody(calendar.TypeMessage, "Hello")},
		{Day: 2, Body: calendar.DualBody("two.jpg", "Snow")},
		{Day: 5, Title: "Later", Body: calendar.LegacyBody(calendar.TypeMessage, "Soon")},
	}
}

// do runs a request against the server, replaying the profile cookie if set
func (e *testEnv) do(t *testing.T, method, target, profile string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if profile != "" {
		req.AddCookie(&http.Cookie{Name: ProfileCookie, Value: profile})
	}
	w := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(w, req)
	return w
}

func profileCookie(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == ProfileCookie {
			return c.Value
		}
	}
	t.Fatal("Response did not set a profile cookie")
	return ""
}

func httptestRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

func serve(e *testEnv, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(w, req)
	return w
}
