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

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "intake",
		Short:        "Health check questionnaire",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(fillCmd())
	root.AddCommand(renderCmd())
	root.AddCommand(indicatorsCmd())
	return root
}
