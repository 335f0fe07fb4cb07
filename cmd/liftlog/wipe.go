package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newWipeCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "wipe",
		Short: "Delete all exercises, workouts and logs (settings are kept)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to delete all data without --yes")
			}
			if err := a.db.DeleteAllData(cmd.Context()); err != nil {
				return err
			}
			a.log.Warn("all data deleted")
			fmt.Fprintln(cmd.OutOrStdout(), "all data deleted")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}
