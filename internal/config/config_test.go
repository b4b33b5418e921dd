package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Calendar.NoticeDismiss != 3*time.Second {
		t.Errorf("Calendar.NoticeDismiss = %v, want 3s", cfg.Calendar.NoticeDismiss)
	}
	if cfg.Snow.Interval != 300*time.Millisecond {
		t.Errorf("Snow.Interval = %v, want 300ms", cfg.Snow.Interval)
	}
	if cfg.Snow.InitialBatch != 30 {
		t.Errorf("Snow.InitialBatch = %d, want 30", cfg.Snow.InitialBatch)
	}
	if cfg.Store.Driver != "file" {
		t.Errorf("Store.Driver = %q, want file", cfg.Store.Driver)
	}
	if cfg.Content.Source != "content.json" {
		t.Errorf("Content.Source = %q, want content.json", cfg.Content.Source)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ADVENT_SERVER_PORT", "9090")
	t.Setenv("ADVENT_CALENDAR_YEAR", "2024")
	t.Setenv("ADVENT_STORE_DRIVER", "sqlite")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Calendar.Year != 2024 {
		t.Errorf("Calendar.Year = %d, want 2024", cfg.Calendar.Year)
	}
	if cfg.Store.Driver != "sqlite" {
		t.Errorf("Store.Driver = %q, want sqlite", cfg.Store.Driver)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	file := filepath.Join(dir, "advent.yaml")
	body := "calendar:\n  timezone: Europe/Berlin\nsnow:\n  enabled: false\n"
	if err := os.WriteFile(file, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Snow.Enabled {
		t.Error("Snow.Enabled should be false from config file")
	}
	loc, err := cfg.Calendar.Location()
	if err != nil {
		t.Fatalf("Location() failed: %v", err)
	}
	if loc.String() != "Europe/Berlin" {
		t.Errorf("Location() = %s, want Europe/Berlin", loc)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"Unknown store driver", "ADVENT_STORE_DRIVER", "postgres"},
		{"Unknown timezone", "ADVENT_CALENDAR_TIMEZONE", "Mars/Olympus"},
		{"Port out of range", "ADVENT_SERVER_PORT", "70000"},
		{"Unknown log format", "ADVENT_LOGGER_FORMAT", "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.val)

			if _, err := Load(""); err == nil {
				t.Errorf("Load() with %s=%s should fail", tt.key, tt.val)
			}
		})
	}
}
