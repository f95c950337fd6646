package commands

import (
	"github.com/spf13/cobra"

	"github.com/vbonduro/wastenot/internal/domain"
)

func newProfileCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or edit the donor profile",
	}

	cmd.AddCommand(newProfileShowCommand(a))
	cmd.AddCommand(newProfileSetCommand(a))
	return cmd
}

func newProfileShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the profile and impact stats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, cleanup, err := a.openBackend(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			profile, err := backend.GetProfile(cmd.Context())
			if err != nil {
				return err
			}

			if a.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), profile)
			}
			return writeProfile(cmd.OutOrStdout(), profile)
		},
	}
}

func newProfileSetCommand(a *app) *cobra.Command {
	var name, donorType, joinDate string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change profile details, keeping the impact stats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, cleanup, err := a.openBackend(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			var details domain.ProfileDetails
			if cmd.Flags().Changed("name") {
				details.Name = &name
			}
			if cmd.Flags().Changed("type") {
				details.Type = &donorType
			}
			if cmd.Flags().Changed("join-date") {
				details.JoinDate = &joinDate
			}

			updated, err := backend.UpdateProfileDetails(cmd.Context(), details)
			if err != nil {
				return err
			}

			if a.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), updated)
			}
			return writeProfile(cmd.OutOrStdout(), updated)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&donorType, "type", "", "donor type, e.g. \"Restaurant\"")
	cmd.Flags().StringVar(&joinDate, "join-date", "", "join date label, e.g. \"Oct 2024\"")
	return cmd
}
