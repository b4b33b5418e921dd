package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/klabast/wb-services/advent-kalender/internal/app"
)

// NewExportCommand creates the export command
func NewExportCommand() *cobra.Command {
	var (
		profile  string
		format   string
		output   string
		reminder string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a profile's calendar as ics, csv or json",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadSession()
			if err != nil {
				return err
			}
			defer rt.close()

			now := timeNow()
			c, st, err := rt.openProfile(cmd.Context(), profile, now)
			if err != nil {
				return err
			}
			defer st.Close()

			var w io.Writer = os.Stdout
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}

			windows := c.Windows(now)
			switch format {
			case "ics":
				app.WriteICS(w, c.Gate(), windows, app.ICSOptions{ReminderTime: reminder, Now: now})
				return nil
			case "csv":
				return app.WriteCSV(w, windows)
			case "json":
				return app.WriteJSON(w, app.Export{
					Profile: profile,
					Year:    c.Gate().Year,
					Opened:  c.Opened().Days(),
					Windows: windows,
				})
			default:
				return fmt.Errorf("unknown format %q (want ics, csv or json)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&profile, "profile", "p", "", "Profile id (required)")
	cmd.Flags().StringVarP(&format, "format", "f", "ics", "Output format: ics, csv or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().StringVar(&reminder, "reminder", "", "Add an HH:MM reminder to each ics event")
	_ = cmd.MarkFlagRequired("profile")
	return cmd
}
