package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/klabast/wb-services/advent-kalender/internal/app"
	"github.com/klabast/wb-services/advent-kalender/internal/store"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the calendar web server",
		Long:  "Load the content document, open the store and serve the calendar page and its API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := loadSession()
	if err != nil {
		return err
	}
	defer rt.close()

	st, err := store.Open(ctx, rt.cfg.Store)
	if err != nil {
		rt.log.Errorw("Failed to open store", "driver", rt.cfg.Store.Driver, "error", err)
		return app.Serve(ctx, rt.cfg.Server, app.BannerHandler(err, rt.log), rt.log)
	}
	defer st.Close()

	// Content is fully loaded before the first request is accepted.
	doc := rt.loadContent(ctx)

	srv, err := app.New(app.Options{
		Config:  rt.cfg,
		Log:     rt.log,
		Store:   st,
		Content: doc,
		Now:     timeNow,
	})
	if err != nil {
		rt.log.Errorw("Failed to initialize calendar", "error", err)
		return app.Serve(ctx, rt.cfg.Server, app.BannerHandler(err, rt.log), rt.log)
	}

	return srv.Run(ctx)
}
