package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"syndicate/internal/app/bootstrap"
	"syndicate/internal/platform/config"
	"syndicate/internal/platform/logging"

	"github.com/spf13/cobra"
)

const programName = "syndicatectl"

// cli carries the state shared by every subcommand once the persistent
// flags are parsed.
type cli struct {
	configFile string
	debug      bool
	cfg        config.Config
	logger     *slog.Logger
}

func main() {
	if err := newRootCommand(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(out io.Writer) *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:          programName,
		Short:        "Operator tooling for the syndicate ledger and governance engine",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.load()
		},
	}
	root.SetOut(out)
	root.SetErr(out)
	root.PersistentFlags().StringVarP(&c.configFile, "config", "c", os.Getenv(config.ConfigFileEnv), "path to a YAML config file")
	root.PersistentFlags().BoolVarP(&c.debug, "debug", "D", false, "enable debug logging")

	root.AddCommand(
		migrateCommand(c),
		auditCommand(c),
		powerCommand(c),
		eligibilityCommand(c),
		relayCommand(c),
	)
	return root
}

func (c *cli) load() error {
	cfg, err := config.LoadFile(c.configFile)
	if err != nil {
		return err
	}
	if c.debug {
		cfg.Debug = true
	}
	c.cfg = cfg
	c.logger = logging.New(os.Stderr, cfg.Debug).With("process", programName)
	return nil
}

// components builds the object graph against persistent storage. The memory
// driver is rejected since a fresh process would only see an empty ledger.
func (c *cli) components() (*bootstrap.Components, error) {
	if c.cfg.StorageDriver == config.DriverMemory {
		return nil, fmt.Errorf("%s needs a persistent storage driver, got %q", programName, c.cfg.StorageDriver)
	}
	return bootstrap.Build(c.cfg, c.logger)
}
