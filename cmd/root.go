package cmd

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "spectrum",
	Short: "Spectrum community data tools",
	Long:  `Command line tools for managing Spectrum communities, channels and their notification jobs.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
