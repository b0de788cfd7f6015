package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func powerCommand(c *cli) *cobra.Command {
	power := &cobra.Command{
		Use:   "power",
		Short: "Inspect and repair cached voting power",
	}
	power.AddCommand(&cobra.Command{
		Use:   "show HOLDER",
		Short: "Print a holder's current voting power",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			components, err := c.components()
			if err != nil {
				return err
			}
			defer components.Close()

			result, err := components.Ledger.Queries.VotingPower(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", result.Holder, result.Power)
			return nil
		},
	})
	power.AddCommand(&cobra.Command{
		Use:   "recompute HOLDER...",
		Short: "Rescan positions and overwrite the cached power",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			components, err := c.components()
			if err != nil {
				return err
			}
			defer components.Close()

			for _, holder := range args {
				result, err := components.Ledger.Ledger.RecomputePower(cmd.Context(), holder)
				if err != nil {
					return fmt.Errorf("recompute %s: %w", holder, err)
				}
				status := "ok"
				if result.Drifted() {
					status = "repaired"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\tcached=%d\trecomputed=%d\t%s\n",
					result.Holder, result.Cached, result.Recomputed, status)
			}
			return nil
		},
	})
	return power
}
