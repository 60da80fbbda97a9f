package main

import (
	"github.com/spf13/cobra"

	"github.com/amanagarwal0602/randomcafe-sub001/internal/editsession"
)

func newEditModeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit-mode",
		Short: "Inspect or flip in-place editing for this session",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show whether edit mode is on",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var state editsession.State
			err := a.call(cmd.Context(), func() (err error) {
				state, err = a.client.EditMode(cmd.Context())
				return err
			})
			if err != nil {
				return err
			}
			printState(cmd, state)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "toggle",
		Short: "Turn edit mode on or off (admin and staff only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var before, after editsession.State
			err := a.call(cmd.Context(), func() (err error) {
				if before, err = a.client.EditMode(cmd.Context()); err != nil {
					return err
				}
				after, err = a.client.ToggleEditMode(cmd.Context())
				return err
			})
			if err != nil {
				return err
			}
			if before == after && !after.Role.CanEditContent() {
				printf(cmd.OutOrStdout(), "Editing requires an admin or staff account\n")
			}
			printState(cmd, after)
			return nil
		},
	})
	return cmd
}

func printState(cmd *cobra.Command, state editsession.State) {
	mode := "off"
	if state.Active {
		mode = "on"
	}
	printf(cmd.OutOrStdout(), "edit mode: %s (role %s)\n", mode, state.Role)
}
