package main

import (
	"fmt"
	"io"

	"github.com/liftlog/liftlog/internal/models"
	"github.com/spf13/cobra"
)

func newSettingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change preferences",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.db.GetSettings(cmd.Context())
			if err != nil {
				return err
			}
			printSettings(cmd.OutOrStdout(), s)
			return nil
		},
	}

	var unitsFlag, themeFlag string
	set := &cobra.Command{
		Use:   "set",
		Short: "Change display units or theme",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var upd models.SettingsUpdate
			if cmd.Flags().Changed("units") {
				p, err := models.ParseUnitPreference(unitsFlag)
				if err != nil {
					return err
				}
				upd.UnitPreference = &p
			}
			if cmd.Flags().Changed("theme") {
				t, err := models.ParseTheme(themeFlag)
				if err != nil {
					return err
				}
				upd.Theme = &t
			}
			if upd.UnitPreference == nil && upd.Theme == nil {
				return fmt.Errorf("nothing to change (use --units or --theme)")
			}
			s, err := a.db.UpdateSettings(cmd.Context(), upd)
			if err != nil {
				return err
			}
			printSettings(cmd.OutOrStdout(), s)
			return nil
		},
	}
	set.Flags().StringVar(&unitsFlag, "units", "", "metric or imperial")
	set.Flags().StringVar(&themeFlag, "theme", "", "light, dark or system")

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Restore default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.db.ResetSettings(cmd.Context())
			if err != nil {
				return err
			}
			printSettings(cmd.OutOrStdout(), s)
			return nil
		},
	}

	cmd.AddCommand(show, set, reset)
	return cmd
}

func printSettings(w io.Writer, s *models.Settings) {
	fmt.Fprintf(w, "units: %s\ntheme: %s\n", s.UnitPreference, s.Theme)
}
