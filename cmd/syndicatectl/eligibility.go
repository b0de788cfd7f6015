package main

import (
	"fmt"

	"syndicate/contexts/collective-ownership/governance-engine/application/commands"

	"github.com/spf13/cobra"
)

func eligibilityCommand(c *cli) *cobra.Command {
	var (
		caller   string
		disabled bool
	)
	cmd := &cobra.Command{
		Use:   "eligibility ASSET",
		Short: "Enable or disable governance for an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			components, err := c.components()
			if err != nil {
				return err
			}
			defer components.Close()

			saved, err := components.Governance.Governance.SetAssetEligibility(cmd.Context(), commands.SetAssetEligibilityCommand{
				AssetID:  args[0],
				Eligible: !disabled,
				Caller:   caller,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\teligible=%t\n", saved.AssetID, saved.Eligible)
			return nil
		},
	}
	cmd.Flags().StringVar(&caller, "as", "", "administrator identity performing the change")
	cmd.Flags().BoolVar(&disabled, "disable", false, "turn governance off instead of on")
	_ = cmd.MarkFlagRequired("as")
	return cmd
}
