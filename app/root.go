// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "noterelay",
	Short: "noterelay forwards chat messages into a Blinko note service",
	Long: `noterelay accepts normalized chat messages over a webhook and forwards
them as notes to a Blinko instance, handling attachment uploads, tag
annotation and per-user settings.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
