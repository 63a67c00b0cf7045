// Package cli implements the listingcheck command line tool.
package cli

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/makoto1101/check-publication-status/internal/logging"
)

// NewRootCommand builds the command tree.
func NewRootCommand(version string) *cobra.Command {
	var logLevel, logFormat string
	root := &cobra.Command{
		Use:           "listingcheck",
		Short:         "Check item listing status across e-commerce channels",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
			logging.SetupWriter(cmd.ErrOrStderr(), logLevel, logFormat)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")

	root.AddCommand(newRunCommand())
	root.AddCommand(newChannelsCommand())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	})
	return root
}
