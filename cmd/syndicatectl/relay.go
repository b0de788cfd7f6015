package main

import (
	"fmt"

	"syndicate/internal/app/bootstrap"
	"syndicate/internal/platform/messaging"

	"github.com/spf13/cobra"
)

func relayCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "relay",
		Short: "Relay one batch from both outboxes and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			components, err := c.components()
			if err != nil {
				return err
			}

			var worker *bootstrap.WorkerApp
			if c.cfg.NATSURL != "" {
				publisher, err := messaging.ConnectNATS(c.cfg.NATSURL, programName, c.logger)
				if err != nil {
					_ = components.Close()
					return err
				}
				worker = bootstrap.NewWorker(components, publisher).WithCloser(publisher.Close)
			} else {
				worker = bootstrap.NewWorker(components, messaging.NewBus(c.logger))
			}
			defer worker.Close()

			if err := worker.RunOnce(cmd.Context()); err != nil {
				return err
			}
			ledgerPending, err := components.LedgerOutbox.ListPendingOutbox(cmd.Context(), 1)
			if err != nil {
				return err
			}
			governancePending, err := components.GovernanceOutbox.ListPendingOutbox(cmd.Context(), 1)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "relay pass complete, backlog remaining: %t\n",
				len(ledgerPending)+len(governancePending) > 0)
			return nil
		},
	}
}
