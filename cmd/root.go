package cmd

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/webhookx-io/showgate/config"
)

var (
	configurationFile string
	verbose           bool
	now               string
)

func initConfig(filename string) (*config.Config, error) {
	cfg := config.New()
	if err := config.Load(filename, cfg); err != nil {
		return nil, errors.Wrap(err, "could not load configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "showgate",
		Short:        "Decide whether a recurring prompt may be shown",
		Long:         ``,
		SilenceUsage: true,
	}

	cmd.SetOut(os.Stdout)
	cmd.PersistentFlags().StringVarP(&configurationFile, "config", "", "", "The configuration filename")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "", false, "Verbose logging.")
	cmd.PersistentFlags().StringVarP(&now, "now", "", "", "Evaluate at this RFC3339 time instead of the current time")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newMigrationsCmd())
	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newShowCmd())
	cmd.AddCommand(newCommitCmd())
	cmd.AddCommand(newBlockCmd())
	cmd.AddCommand(newUnblockCmd())
	cmd.AddCommand(newResetCmd())
	cmd.AddCommand(newNextCmd())
	cmd.AddCommand(newStatusCmd())

	return cmd
}

func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
