package main

import (
	"fmt"

	"syndicate/internal/platform/config"
	"syndicate/internal/platform/db"

	"github.com/spf13/cobra"
)

func migrateCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch c.cfg.StorageDriver {
			case config.DriverPostgres:
				database, err := db.Connect(c.cfg.PostgresDSN)
				if err != nil {
					return err
				}
				defer database.Close()
				applied, err := db.Migrate(database, c.logger)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "applied %d migrations\n", applied)
				return nil
			case config.DriverSQLite:
				c.cfg.AutoMigrate = true
				components, err := c.components()
				if err != nil {
					return err
				}
				defer components.Close()
				fmt.Fprintln(cmd.OutOrStdout(), "sqlite schema up to date")
				return nil
			default:
				return fmt.Errorf("nothing to migrate for storage driver %q", c.cfg.StorageDriver)
			}
		},
	}
}
