package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "appstream-gen",
		Short: "Extract AppStream metadata from a package repository and render issue reports",
		Long: `appstream-gen reads a Debian-family package repository's indexes,
runs each package through the desktop-entry metadata pipeline, and writes
one plain-text issue report per suite/section listing packages by
maintainer, recording a statistics sample for each. The generate command
wires no package-content provider, so no desktop-entry files are read
from package archives.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.InfoLevel)
			}
		},
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(NewGenerateCmd())

	return rootCmd
}
