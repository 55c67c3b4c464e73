package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Running the binary without a
// subcommand starts the bot.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "fairway",
		Short:        "Weekly golf pick bot",
		SilenceUsage: true,
	}
	serve := newServeCmd()
	root.RunE = serve.RunE
	root.AddCommand(serve, newAllocateCmd(), newPicksCmd())
	return root
}
