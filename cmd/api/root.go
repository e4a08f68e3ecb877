package main

import (
	"github.com/spf13/cobra"
)

type rootOptions struct {
	verbose bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "meeting-analyzer",
		Short:         "Meeting transcript analysis service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Development logging")

	serveCmd := newServeCommand(opts)
	rootCmd.RunE = serveCmd.RunE

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(newMigrateCommand())
	rootCmd.AddCommand(newAnalyzeCommand(opts))
	rootCmd.AddCommand(newSeedCommand(opts))

	return rootCmd
}
