package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/klabast/wb-services/advent-kalender/internal/ui"
)

// NewResetCommand creates the reset command
func NewResetCommand() *cobra.Command {
	var profile string

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget every opened window of a profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadSession()
			if err != nil {
				return err
			}
			defer rt.close()

			c, st, err := rt.openProfile(cmd.Context(), profile, timeNow())
			if err != nil {
				return err
			}
			defer st.Close()

			if err := c.Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Println(ui.Good.Render("Reset profile " + profile))
			return nil
		},
	}

	cmd.Flags().StringVarP(&profile, "profile", "p", "", "Profile id (required)")
	_ = cmd.MarkFlagRequired("profile")
	return cmd
}
