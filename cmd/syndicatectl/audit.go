package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func auditCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Check fraction conservation for every asset",
		Long: "audit compares each asset's available fractions plus the sum of its positions " +
			"against the total supply and fails if any asset is out of balance.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			components, err := c.components()
			if err != nil {
				return err
			}
			defer components.Close()

			ctx := cmd.Context()
			assets, err := components.Ledger.Queries.ListAssets(ctx)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ASSET\tTOTAL\tAVAILABLE\tHELD\tHOLDERS\tBALANCED")
			unbalanced := 0
			for _, asset := range assets {
				report, err := components.Ledger.Queries.Conservation(ctx, asset.AssetID)
				if err != nil {
					return err
				}
				if !report.Balanced {
					unbalanced++
				}
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%t\n",
					asset.AssetID,
					asset.TotalFractions,
					report.AvailableFractions,
					report.PositionSum,
					report.Holders,
					report.Balanced,
				)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if unbalanced > 0 {
				return fmt.Errorf("%d of %d assets out of balance", unbalanced, len(assets))
			}
			return nil
		},
	}
}
