package cmd

import (
	"github.com/spf13/cobra"
	"github.com/webhookx-io/showgate"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Long:  `Print the version with a short commit hash.`,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("showgate %s (%s)\n", showgate.VERSION, showgate.COMMIT)
		},
	}
}
