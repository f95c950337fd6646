package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vbonduro/wastenot/internal/domain"
)

func newDonationsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "donations",
		Aliases: []string{"donation"},
		Short:   "Find and claim donations",
	}

	cmd.AddCommand(newDonationsListCommand(a))
	cmd.AddCommand(newDonationsClaimCommand(a))
	return cmd
}

func newDonationsListCommand(a *app) *cobra.Command {
	var (
		statusFilter string
		query        string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List donations in the order they were made",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := domain.DonationFilter{Query: query}
			switch statusFilter {
			case "all":
			case "available":
				claimed := false
				filter.Claimed = &claimed
			case "claimed":
				claimed := true
				filter.Claimed = &claimed
			default:
				return fmt.Errorf("unknown status %q (want all, available or claimed)", statusFilter)
			}

			backend, cleanup, err := a.openBackend(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			donations, err := backend.ListDonations(cmd.Context(), filter)
			if err != nil {
				return err
			}

			if a.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), donations)
			}
			if len(donations) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "No donations found.")
				return err
			}
			return writeDonations(cmd.OutOrStdout(), donations)
		},
	}

	cmd.Flags().StringVar(&statusFilter, "status", "all", "all, available or claimed")
	cmd.Flags().StringVarP(&query, "query", "q", "", "match food type, description or location")
	return cmd
}

func newDonationsClaimCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "claim <id>",
		Short: "Claim a donation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, cleanup, err := a.openBackend(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			donation, err := backend.ClaimDonation(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("claim %s: %w", args[0], err)
			}

			if a.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), donation)
			}
			return writeDonation(cmd.OutOrStdout(), donation)
		},
	}
}
