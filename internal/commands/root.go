// Package commands holds the advent-kalender command line.
package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/klabast/wb-services/advent-kalender/internal/calendar"
	"github.com/klabast/wb-services/advent-kalender/internal/config"
	"github.com/klabast/wb-services/advent-kalender/internal/content"
	"github.com/klabast/wb-services/advent-kalender/internal/logger"
	"github.com/klabast/wb-services/advent-kalender/internal/store"
)

var configFile string

// timeNow is the clock used by every command
var timeNow = time.Now

// NewRootCommand builds the command tree
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "advent-kalender",
		Short:         "Advent calendar server",
		Long:          "Serve a 24-window advent calendar whose windows unlock day by day in December",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (yaml, json or toml)")

	root.AddCommand(
		NewServeCommand(),
		NewShowCommand(),
		NewResetCommand(),
		NewExportCommand(),
	)
	return root
}

// Execute runs the command line and exits non-zero on error
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// session is what every command needs before it can touch a calendar
type session struct {
	cfg *config.Config
	log *logger.Logger
}

func loadSession() (*session, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return &session{cfg: cfg, log: log}, nil
}

func (rt *session) close() {
	_ = rt.log.Close()
}

func (rt *session) loadContent(ctx context.Context) content.Document {
	src := content.NewSource(rt.cfg.Content.Source, &http.Client{Timeout: rt.cfg.Content.Timeout})
	return content.Load(ctx, src, rt.cfg.Content.Timeout, rt.log)
}

// openProfile runs the startup sequence for a single profile: opened windows
// from the store first, then content. now also picks the year when none is configured.
func (rt *session) openProfile(ctx context.Context, profile string, now time.Time) (*calendar.Controller, store.Store, error) {
	if err := store.ValidateProfile(profile); err != nil {
		return nil, nil, err
	}

	st, err := store.Open(ctx, rt.cfg.Store)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}

	loc, err := rt.cfg.Calendar.Location()
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	c, err := calendar.NewController(ctx, calendar.Options{
		Profile: profile,
		Gate:    calendar.NewGate(rt.cfg.Calendar.Year, loc, now),
		LoadEntries: func(ctx context.Context) []calendar.DayEntry {
			return rt.loadContent(ctx).Entries
		},
		Store:   st,
		Notices: calendar.NewNoticeSlot(rt.cfg.Calendar.NoticeDismiss),
		Log:     rt.log,
	})
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	return c, st, nil
}
