package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/klabast/wb-services/advent-kalender/internal/calendar"
	"github.com/klabast/wb-services/advent-kalender/internal/ui"
)

// NewShowCommand creates the show command
func NewShowCommand() *cobra.Command {
	var (
		profile string
		at      string
		open    int
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a profile's calendar to the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			now := timeNow()
			if at != "" {
				t, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at: %w", err)
				}
				now = t
			}
			return runShow(cmd.Context(), profile, now, open)
		},
	}

	cmd.Flags().StringVarP(&profile, "profile", "p", "", "Profile id (required)")
	cmd.Flags().StringVar(&at, "at", "", "Pretend the current time is this RFC 3339 timestamp")
	cmd.Flags().IntVar(&open, "open", 0, "Open this window before printing")
	_ = cmd.MarkFlagRequired("profile")
	return cmd
}

func runShow(ctx context.Context, profile string, now time.Time, open int) error {
	rt, err := loadSession()
	if err != nil {
		return err
	}
	defer rt.close()

	c, st, err := rt.openProfile(ctx, profile, now)
	if err != nil {
		return err
	}
	defer st.Close()

	var overlay *calendar.Overlay
	if open != 0 {
		ov, err := c.Open(ctx, open, now)
		switch {
		case err == nil:
			overlay = &ov
		case calendar.IsNotice(err):
			fmt.Println(ui.Bad.Render(ui.IconError + " " + err.Error()))
		default:
			return err
		}
	}

	width := 80
	if term.IsTerminal(int(os.Stdout.Fd())) {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
			width = w
		}
	}

	gate := c.Gate()
	fmt.Println(ui.Heading(ui.IconTree, fmt.Sprintf("Advent Calendar %d", gate.Year)))
	fmt.Println(ui.Grid(c.Windows(now), ui.Columns(width)))
	fmt.Println(ui.Legend())

	if overlay != nil {
		fmt.Println()
		fmt.Println(ui.Heading(ui.IconStar, overlay.Title))
		if overlay.Photo != "" {
			fmt.Println(ui.Muted.Render("Photo: " + overlay.Photo))
		}
		if overlay.Message != "" {
			fmt.Println(overlay.Message)
		}
		if overlay.Empty {
			fmt.Println(ui.Muted.Render("No content for this day."))
		}
	}
	return nil
}
